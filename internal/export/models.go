// Package export persists computed aggregate tables to sqlite so other
// tools can query them without rerunning the pipeline.
package export

import "time"

// ChannelStat is one UTM source's performance snapshot.
type ChannelStat struct {
	ID             uint    `gorm:"primarykey"`
	DatasetVersion string  `gorm:"index;uniqueIndex:idx_channel_version_source;size:64"`
	Source         string  `gorm:"uniqueIndex:idx_channel_version_source;size:255"`
	Sessions       int64   `gorm:"not null"`
	Orders         int64   `gorm:"not null"`
	ConversionPct  float64 `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductStat is one product's revenue and refund snapshot.
type ProductStat struct {
	ID             uint    `gorm:"primarykey"`
	DatasetVersion string  `gorm:"index;uniqueIndex:idx_product_version_name;size:64"`
	ProductName    string  `gorm:"uniqueIndex:idx_product_version_name;size:255"`
	Revenue        float64 `gorm:"not null"`
	RevenuePct     float64 `gorm:"not null"`
	Units          int64   `gorm:"not null"`
	RefundPct      float64 `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FunnelStageStat is one funnel stage's snapshot, ordered by Position.
type FunnelStageStat struct {
	ID             uint    `gorm:"primarykey"`
	DatasetVersion string  `gorm:"index;uniqueIndex:idx_funnel_version_stage;size:64"`
	Stage          string  `gorm:"uniqueIndex:idx_funnel_version_stage;size:255"`
	Position       int     `gorm:"not null"`
	Visits         int64   `gorm:"not null"`
	Pct            float64 `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LandingPageStat is one landing page's snapshot.
type LandingPageStat struct {
	ID             uint    `gorm:"primarykey"`
	DatasetVersion string  `gorm:"index;uniqueIndex:idx_landing_version_url;size:64"`
	URL            string  `gorm:"uniqueIndex:idx_landing_version_url;size:512"`
	Sessions       int64   `gorm:"not null"`
	BouncePct      float64 `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
