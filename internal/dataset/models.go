// Package dataset loads the six raw e-commerce tables, normalizes dirty
// values into typed rows and enriches them with derived fields. The result
// is an immutable in-memory Dataset every aggregator reads from.
package dataset

import "time"

// Sentinel values assigned during normalization. Sessions with no usable
// acquisition data get SourceUntracked; absent campaign and content fields
// get ValueUnknown.
const (
	SourceUntracked = "Untracked"
	ValueUnknown    = "unknown"
)

// Session is one website visit.
type Session struct {
	SessionID    int64
	CreatedAt    time.Time
	UserID       int64
	IsRepeat     bool
	UTMSource    string
	UTMCampaign  string
	UTMContent   string
	DeviceType   string
	HTTPReferrer string
}

// Pageview is one page load inside a session.
type Pageview struct {
	PageviewID int64
	CreatedAt  time.Time
	SessionID  int64
	URL        string
}

// Order is one purchase. Revenue, Margin and ItemCount are derived from the
// order's items during enrichment; orders without items hold zeros.
type Order struct {
	OrderID   int64
	CreatedAt time.Time
	SessionID int64
	UserID    int64
	Revenue   float64
	Margin    float64
	ItemCount int64
}

// OrderItem is one purchased unit. Margin is price minus cogs; IsRefunded
// comes from the refunds table during enrichment.
type OrderItem struct {
	OrderItemID int64
	CreatedAt   time.Time
	OrderID     int64
	ProductID   int64
	PriceUSD    float64
	CogsUSD     float64
	Margin      float64
	IsRefunded  bool
}

// Product is one catalog entry.
type Product struct {
	ProductID   int64
	CreatedAt   time.Time
	ProductName string
}

// Dataset holds the enriched tables plus a content-hash Version used as a
// cache token. Treat it as read-only once built.
type Dataset struct {
	Sessions   []Session
	Pageviews  []Pageview
	Orders     []Order
	OrderItems []OrderItem
	Products   []Product
	Version    string
}

// ProductNames returns a product id → catalog name lookup covering every
// product referenced by the catalog or by an order item. Ids missing from
// the catalog get a synthetic "Product <id>" label.
func (d *Dataset) ProductNames() map[int64]string {
	names := make(map[int64]string, len(d.Products))
	for _, p := range d.Products {
		names[p.ProductID] = p.ProductName
	}
	for _, item := range d.OrderItems {
		if _, ok := names[item.ProductID]; !ok {
			names[item.ProductID] = syntheticProductName(item.ProductID)
		}
	}
	return names
}
