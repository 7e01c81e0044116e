package export

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"shoplens/internal/analytics"
	"shoplens/internal/dataset"
)

// Exporter writes aggregate snapshots into a sqlite database, keyed by
// dataset version so repeated exports of the same data upsert in place.
type Exporter struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewExporter opens (or creates) the sqlite database at path and migrates
// the stat tables.
func NewExporter(logger *slog.Logger, path string) (*Exporter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening export database %s: %w", path, err)
	}

	e := &Exporter{db: db, logger: logger}
	if err := e.migrate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Exporter) migrate() error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&ChannelStat{},
			&ProductStat{},
			&FunnelStageStat{},
			&LandingPageStat{},
		)
	})
	if err != nil {
		return fmt.Errorf("migrating export tables: %w", err)
	}
	return nil
}

// DB exposes the underlying connection for tests and ad-hoc queries.
func (e *Exporter) DB() *gorm.DB {
	return e.db
}

// Snapshot computes the exportable aggregates for a dataset and upserts
// them, one row per dimension value per dataset version.
func (e *Exporter) Snapshot(ds *dataset.Dataset) error {
	channels := e.channelStats(ds)
	products := e.productStats(ds)
	funnel := e.funnelStats(ds)
	landing := e.landingStats(ds)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, channels, "dataset_version", "source",
			"sessions", "orders", "conversion_pct"); err != nil {
			return err
		}
		if err := upsert(tx, products, "dataset_version", "product_name",
			"revenue", "revenue_pct", "units", "refund_pct"); err != nil {
			return err
		}
		if err := upsert(tx, funnel, "dataset_version", "stage",
			"position", "visits", "pct"); err != nil {
			return err
		}
		return upsert(tx, landing, "dataset_version", "url",
			"sessions", "bounce_pct")
	})
	if err != nil {
		return fmt.Errorf("exporting snapshot for dataset %s: %w", shortVersion(ds.Version), err)
	}

	e.logger.Info("exported aggregate snapshot",
		"version", shortVersion(ds.Version),
		"channels", len(channels),
		"products", len(products),
		"funnel_stages", len(funnel),
		"landing_pages", len(landing))
	return nil
}

// upsert inserts rows, updating the stat columns when the version+dimension
// pair already exists. The first two columns name the conflict target.
func upsert[T any](tx *gorm.DB, rows []T, versionCol, dimensionCol string, updateCols ...string) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: versionCol}, {Name: dimensionCol}},
		DoUpdates: clause.AssignmentColumns(append(updateCols, "updated_at")),
	}).Create(&rows).Error
}

func (e *Exporter) channelStats(ds *dataset.Dataset) []ChannelStat {
	rates := analytics.ConversionBySource(ds)
	stats := make([]ChannelStat, 0, len(rates))
	for _, r := range rates {
		stats = append(stats, ChannelStat{
			DatasetVersion: ds.Version,
			Source:         r.Label,
			Sessions:       r.Denominator,
			Orders:         r.Numerator,
			ConversionPct:  r.Pct,
		})
	}
	return stats
}

func (e *Exporter) productStats(ds *dataset.Dataset) []ProductStat {
	revenue := analytics.RevenueShareByProduct(ds)
	refunds := make(map[string]float64)
	for _, r := range analytics.RefundRateByProduct(ds) {
		refunds[r.Label] = r.Pct
	}
	units := make(map[string]int64)
	for _, u := range analytics.UnitsShareByProduct(ds) {
		units[u.Label] = int64(u.Value)
	}

	stats := make([]ProductStat, 0, len(revenue))
	for _, share := range revenue {
		stats = append(stats, ProductStat{
			DatasetVersion: ds.Version,
			ProductName:    share.Label,
			Revenue:        share.Value,
			RevenuePct:     share.Pct,
			Units:          units[share.Label],
			RefundPct:      refunds[share.Label],
		})
	}
	return stats
}

func (e *Exporter) funnelStats(ds *dataset.Dataset) []FunnelStageStat {
	stages := analytics.FunnelStages(ds, analytics.DefaultStageRules())
	stats := make([]FunnelStageStat, 0, len(stages))
	for i, s := range stages {
		stats = append(stats, FunnelStageStat{
			DatasetVersion: ds.Version,
			Stage:          s.Stage,
			Position:       i,
			Visits:         s.Visits,
			Pct:            s.Pct,
		})
	}
	return stats
}

func (e *Exporter) landingStats(ds *dataset.Dataset) []LandingPageStat {
	bounces := make(map[string]float64)
	for _, r := range analytics.BounceRateByLandingPage(ds) {
		bounces[r.Label] = r.Pct
	}

	landing := analytics.LandingPages(ds)
	stats := make([]LandingPageStat, 0, len(landing))
	for _, share := range landing {
		stats = append(stats, LandingPageStat{
			DatasetVersion: ds.Version,
			URL:            share.Label,
			Sessions:       int64(share.Value),
			BouncePct:      bounces[share.Label],
		})
	}
	return stats
}

func shortVersion(version string) string {
	if len(version) > 12 {
		return version[:12]
	}
	return version
}
