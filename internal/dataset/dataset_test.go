package dataset_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoplens/internal/dataset"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// writeFixture lays down a complete data directory; individual tests
// override the tables they care about.
func writeFixture(t *testing.T, overrides map[string]string) string {
	t.Helper()

	files := map[string]string{
		"website_sessions.csv": "website_session_id,created_at,user_id,is_repeat_session,utm_source,utm_campaign,utm_content,device_type,http_referer\n" +
			"1,2012-03-19 08:04:16,1,0,gsearch,nonbrand,g_ad_1,mobile,https://www.gsearch.com\n",
		"website_pageviews.csv": "website_pageview_id,created_at,website_session_id,pageview_url\n" +
			"1,2012-03-19 08:04:16,1,/home\n",
		"orders.csv": "order_id,created_at,website_session_id,user_id\n" +
			"1,2012-03-19 08:10:00,1,1\n",
		"order_items.csv": "order_item_id,created_at,order_id,product_id,price_usd,cogs_usd\n" +
			"1,2012-03-19 08:10:00,1,1,49.99,19.49\n",
		"products.csv": "product_id,created_at,product_name\n" +
			"1,2012-01-01 00:00:00,The Original Mr. Fuzzy\n",
		"order_item_refunds.csv": "order_item_refund_id,created_at,order_item_id,order_id,refund_amount_usd\n",
	}
	for name, content := range overrides {
		files[name] = content
	}

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadMissingTableIsFatal(t *testing.T) {
	dir := writeFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "orders.csv")))

	_, err := dataset.Load(discard(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")
}

func TestLoadVersionTracksContent(t *testing.T) {
	dir := writeFixture(t, nil)
	ds1, err := dataset.Load(discard(), dir)
	require.NoError(t, err)

	ds2, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	assert.Equal(t, ds1.Version, ds2.Version)

	sessions := "website_session_id,created_at,user_id,is_repeat_session,utm_source,utm_campaign,utm_content,device_type,http_referer\n" +
		"2,2012-03-20 09:00:00,2,0,bsearch,brand,b_ad_1,desktop,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "website_sessions.csv"), []byte(sessions), 0o644))

	ds3, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	assert.NotEqual(t, ds1.Version, ds3.Version)
}

func TestSourceDerivedFromReferrer(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"website_sessions.csv": "website_session_id,created_at,user_id,is_repeat_session,utm_source,utm_campaign,utm_content,device_type,http_referer\n" +
			"1,2012-03-19 08:04:16,1,0,,,,mobile,https://www.gsearch.com\n" +
			"2,2012-03-19 09:00:00,2,0,,,,desktop,https://www.somesite.com\n" +
			"3,2012-03-19 10:00:00,3,1,socialbook,pilot,sb_1,desktop,https://www.socialbook.com\n",
	})

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	require.Len(t, ds.Sessions, 3)

	derived := ds.Sessions[0]
	assert.Equal(t, "gsearch", derived.UTMSource)
	assert.Equal(t, "unknown", derived.UTMCampaign)
	assert.Equal(t, "unknown", derived.UTMContent)

	assert.Equal(t, "Untracked", ds.Sessions[1].UTMSource)
	assert.Equal(t, "socialbook", ds.Sessions[2].UTMSource)
	assert.True(t, ds.Sessions[2].IsRepeat)
}

func TestDirtyNumericAndTimestampValues(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"order_items.csv": "order_item_id,created_at,order_id,product_id,price_usd,cogs_usd\n" +
			"1,not-a-date,1,1,abc,19.49\n",
	})

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	require.Len(t, ds.OrderItems, 1)

	item := ds.OrderItems[0]
	assert.Zero(t, item.PriceUSD)
	assert.Equal(t, -19.49, item.Margin)
	assert.True(t, item.CreatedAt.IsZero())
}

func TestOrphanOrderDropped(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"orders.csv": "order_id,created_at,website_session_id,user_id\n" +
			"1,2012-03-19 08:10:00,1,1\n" +
			"2,2012-03-19 09:10:00,999,2\n",
	})

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	require.Len(t, ds.Orders, 1)
	assert.Equal(t, int64(1), ds.Orders[0].OrderID)
}

func TestOrderRollupsAndRefunds(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"website_sessions.csv": "website_session_id,created_at,user_id,is_repeat_session,utm_source,utm_campaign,utm_content,device_type,http_referer\n" +
			"1,2012-03-19 08:04:16,1,0,gsearch,nonbrand,g_ad_1,mobile,\n" +
			"2,2012-03-20 10:00:00,2,0,bsearch,brand,b_ad_1,desktop,\n",
		"orders.csv": "order_id,created_at,website_session_id,user_id\n" +
			"1,2012-03-19 08:10:00,1,1\n" +
			"2,2012-03-20 10:05:00,2,2\n",
		"order_items.csv": "order_item_id,created_at,order_id,product_id,price_usd,cogs_usd\n" +
			"1,2012-03-19 08:10:00,1,1,49.99,19.49\n" +
			"2,2012-03-19 08:10:00,1,1,49.99,19.49\n",
		"order_item_refunds.csv": "order_item_refund_id,created_at,order_item_id,order_id,refund_amount_usd\n" +
			"1,2012-03-25 12:00:00,2,1,49.99\n",
	})

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	require.Len(t, ds.Orders, 2)

	withItems := ds.Orders[0]
	assert.InDelta(t, 99.98, withItems.Revenue, 1e-9)
	assert.InDelta(t, 61.00, withItems.Margin, 1e-9)
	assert.Equal(t, int64(2), withItems.ItemCount)

	// Itemless orders keep explicit zeros rather than being dropped.
	empty := ds.Orders[1]
	assert.Zero(t, empty.Revenue)
	assert.Zero(t, empty.ItemCount)

	assert.False(t, ds.OrderItems[0].IsRefunded)
	assert.True(t, ds.OrderItems[1].IsRefunded)
}

func TestLoadAcceptsXLSX(t *testing.T) {
	dir := writeFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "products.csv")))

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"product_id", "created_at", "product_name"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{"1", "2012-01-01 00:00:00", "The Forever Love Bear"}))
	require.NoError(t, book.SaveAs(filepath.Join(dir, "products.xlsx")))
	require.NoError(t, book.Close())

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)
	require.Len(t, ds.Products, 1)
	assert.Equal(t, "The Forever Love Bear", ds.Products[0].ProductName)
}

func TestProductNameFallback(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"products.csv": "product_id,created_at,product_name\n" +
			"1,2012-01-01 00:00:00,\n",
		"order_items.csv": "order_item_id,created_at,order_id,product_id,price_usd,cogs_usd\n" +
			"1,2012-03-19 08:10:00,1,7,49.99,19.49\n",
	})

	ds, err := dataset.Load(discard(), dir)
	require.NoError(t, err)

	names := ds.ProductNames()
	assert.Equal(t, "Product 1", names[1])
	assert.Equal(t, "Product 7", names[7])
}
