package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/cache"
	"shoplens/internal/dataset"
	shttp "shoplens/internal/http"
	"shoplens/internal/testsupport"
)

func testDataset() *dataset.Dataset {
	d19 := testsupport.Day(2012, time.March, 19, 8)
	d20 := testsupport.Day(2012, time.April, 20, 9)

	ds := &dataset.Dataset{
		Sessions: []dataset.Session{
			testsupport.Session(1, d19, "gsearch", "mobile"),
			testsupport.Session(2, d20, "bsearch", "desktop"),
		},
		Pageviews: []dataset.Pageview{
			testsupport.Pageview(1, 1, d19, "/home"),
			testsupport.Pageview(2, 1, d19.Add(time.Minute), "/cart"),
			testsupport.Pageview(3, 2, d20, "/home"),
		},
		Orders: []dataset.Order{testsupport.Order(10, 1, d19.Add(time.Minute))},
		OrderItems: []dataset.OrderItem{
			testsupport.Item(100, 10, 1, d19.Add(time.Minute), 49.99, 19.49),
		},
		Products: testsupport.Catalog(),
		Version:  "test-version-0001",
	}
	return testsupport.Finalize(ds)
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	api := shttp.NewAPI(slog.New(slog.DiscardHandler), testDataset(), cache.New(), nil, 2)
	api.RegisterRoutes(app)
	return app
}

func getJSON(t *testing.T, app *fiber.App, url string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	app := newApp(t)
	var body map[string]string
	status := getJSON(t, app, "/_health", &body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-version", body["dataset"])
}

func TestMetaEndpoint(t *testing.T) {
	app := newApp(t)
	var meta shttp.MetaResponse
	status := getJSON(t, app, "/api/v1/meta", &meta)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "2012-03-19", meta.FirstDate)
	assert.Equal(t, "2012-04-20", meta.LastDate)
	assert.Equal(t, []string{"bsearch", "gsearch"}, meta.UTMSources)
	require.Len(t, meta.Products, 4)
	assert.Equal(t, "The Original Mr. Fuzzy", meta.Products[0].Name)
}

func TestOverviewEndpoint(t *testing.T) {
	app := newApp(t)
	var overview shttp.OverviewResponse
	status := getJSON(t, app, "/api/v1/overview", &overview)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(2), overview.Totals.Sessions)
	assert.Equal(t, 50.0, overview.ConversionRate)
	assert.Equal(t, 50.0, overview.BounceRate)
	assert.Equal(t, "The Original Mr. Fuzzy", overview.TopProduct)

	require.NotEmpty(t, overview.ConversionByDevice)
	labels := []string{overview.ConversionByDevice[0].Label, overview.ConversionByDevice[1].Label}
	assert.ElementsMatch(t, []string{"Mobile", "Desktop"}, labels)
}

func TestOverviewWithDateFilter(t *testing.T) {
	app := newApp(t)
	var overview shttp.OverviewResponse
	status := getJSON(t, app, "/api/v1/overview?from=2012-03-01&to=2012-03-31", &overview)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(1), overview.Totals.Sessions)
	assert.Equal(t, 100.0, overview.ConversionRate)
}

func TestOverviewRejectsBadDate(t *testing.T) {
	app := newApp(t)
	status := getJSON(t, app, "/api/v1/overview?from=19-03-2012", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestOverviewRejectsBadProductID(t *testing.T) {
	app := newApp(t)
	status := getJSON(t, app, "/api/v1/products?products=fuzzy", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEmptySourcesSelectionYieldsEmptyDashboard(t *testing.T) {
	app := newApp(t)
	var overview shttp.OverviewResponse
	status := getJSON(t, app, "/api/v1/overview?sources=", &overview)

	require.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, overview.Totals.Sessions)
	assert.Zero(t, overview.ConversionRate)
}

func TestWebsiteEndpoint(t *testing.T) {
	app := newApp(t)
	var website shttp.WebsiteResponse
	status := getJSON(t, app, "/api/v1/website", &website)

	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, website.FunnelStages, 7)
	assert.Equal(t, "/homepages", website.FunnelStages[0].Stage)
	assert.Equal(t, 100.0, website.FunnelStages[0].Pct)
	require.Len(t, website.LandingPages, 1)
	assert.Equal(t, "/home", website.LandingPages[0].Label)
}

func TestMarketingEndpoint(t *testing.T) {
	app := newApp(t)
	var marketing shttp.MarketingResponse
	status := getJSON(t, app, "/api/v1/marketing?sources=gsearch", &marketing)

	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, marketing.SessionShareBySource, 1)
	assert.Equal(t, "gsearch", marketing.SessionShareBySource[0].Label)
	assert.Equal(t, 100.0, marketing.SessionShareBySource[0].Pct)
}

func TestProductsEndpoint(t *testing.T) {
	app := newApp(t)
	var products shttp.ProductsResponse
	status := getJSON(t, app, "/api/v1/products", &products)

	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, products.RevenueShare, 1)
	assert.Equal(t, "The Original Mr. Fuzzy", products.RevenueShare[0].Label)
	require.Len(t, products.UnitsByDevice, 1)
	assert.Equal(t, "Mobile", products.UnitsByDevice[0].Device)
}
