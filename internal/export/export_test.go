package export_test

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/dataset"
	"shoplens/internal/export"
	"shoplens/internal/testsupport"
)

func exportFixture(version string) *dataset.Dataset {
	at := testsupport.Day(2012, time.March, 19, 8)
	ds := &dataset.Dataset{
		Sessions: []dataset.Session{
			testsupport.Session(1, at, "gsearch", "mobile"),
			testsupport.Session(2, at, "bsearch", "desktop"),
		},
		Pageviews: []dataset.Pageview{
			testsupport.Pageview(1, 1, at, "/home"),
			testsupport.Pageview(2, 1, at.Add(time.Minute), "/cart"),
			testsupport.Pageview(3, 2, at, "/home"),
		},
		Orders: []dataset.Order{testsupport.Order(10, 1, at)},
		OrderItems: []dataset.OrderItem{
			testsupport.Item(100, 10, 1, at, 49.99, 19.49),
		},
		Products: testsupport.Catalog(),
		Version:  version,
	}
	return testsupport.Finalize(ds)
}

func newExporter(t *testing.T) *export.Exporter {
	t.Helper()
	e, err := export.NewExporter(slog.New(slog.DiscardHandler), filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	return e
}

func TestSnapshotWritesStatRows(t *testing.T) {
	e := newExporter(t)
	require.NoError(t, e.Snapshot(exportFixture("v1")))

	var channels []export.ChannelStat
	require.NoError(t, e.DB().Order("source").Find(&channels).Error)
	require.Len(t, channels, 2)
	assert.Equal(t, "bsearch", channels[0].Source)
	assert.Zero(t, channels[0].Orders)
	assert.Equal(t, "gsearch", channels[1].Source)
	assert.Equal(t, 100.0, channels[1].ConversionPct)

	var products []export.ProductStat
	require.NoError(t, e.DB().Find(&products).Error)
	require.Len(t, products, 1)
	assert.Equal(t, "The Original Mr. Fuzzy", products[0].ProductName)
	assert.Equal(t, 100.0, products[0].RevenuePct)

	var funnel []export.FunnelStageStat
	require.NoError(t, e.DB().Order("position").Find(&funnel).Error)
	require.Len(t, funnel, 7)
	assert.Equal(t, "/homepages", funnel[0].Stage)
	assert.Equal(t, int64(2), funnel[0].Visits)

	var landing []export.LandingPageStat
	require.NoError(t, e.DB().Find(&landing).Error)
	require.Len(t, landing, 1)
	assert.Equal(t, "/home", landing[0].URL)
	assert.Equal(t, 50.0, landing[0].BouncePct)
}

func TestSnapshotUpsertsInPlace(t *testing.T) {
	e := newExporter(t)
	require.NoError(t, e.Snapshot(exportFixture("v1")))
	require.NoError(t, e.Snapshot(exportFixture("v1")))

	var count int64
	require.NoError(t, e.DB().Model(&export.ChannelStat{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSnapshotKeepsVersionsApart(t *testing.T) {
	e := newExporter(t)
	require.NoError(t, e.Snapshot(exportFixture("v1")))
	require.NoError(t, e.Snapshot(exportFixture("v2")))

	var count int64
	require.NoError(t, e.DB().Model(&export.ChannelStat{}).Where("dataset_version = ?", "v1").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
