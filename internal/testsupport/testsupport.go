// Package testsupport builds in-memory datasets for tests without going
// through the file loader.
package testsupport

import (
	"time"

	"shoplens/internal/dataset"
)

// Day builds a UTC timestamp on the given calendar day.
func Day(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// Session builds a session row with sensible defaults for fields most tests
// do not care about.
func Session(id int64, at time.Time, source, device string) dataset.Session {
	return dataset.Session{
		SessionID:   id,
		CreatedAt:   at,
		UserID:      id,
		UTMSource:   source,
		UTMCampaign: "nonbrand",
		UTMContent:  dataset.ValueUnknown,
		DeviceType:  device,
	}
}

// Pageview builds a pageview row.
func Pageview(id, sessionID int64, at time.Time, url string) dataset.Pageview {
	return dataset.Pageview{PageviewID: id, CreatedAt: at, SessionID: sessionID, URL: url}
}

// Order builds an order row; rollup fields are filled by Finalize.
func Order(id, sessionID int64, at time.Time) dataset.Order {
	return dataset.Order{OrderID: id, CreatedAt: at, SessionID: sessionID, UserID: sessionID}
}

// Item builds an order item row; margin and refund flags are filled by
// Finalize.
func Item(id, orderID, productID int64, at time.Time, price, cogs float64) dataset.OrderItem {
	return dataset.OrderItem{
		OrderItemID: id,
		CreatedAt:   at,
		OrderID:     orderID,
		ProductID:   productID,
		PriceUSD:    price,
		CogsUSD:     cogs,
	}
}

// Finalize computes the derived fields the loader would have produced: item
// margins, refund flags and per-order rollups.
func Finalize(ds *dataset.Dataset, refundedItemIDs ...int64) *dataset.Dataset {
	refunded := make(map[int64]bool, len(refundedItemIDs))
	for _, id := range refundedItemIDs {
		refunded[id] = true
	}

	type rollup struct {
		revenue float64
		margin  float64
		items   int64
	}
	rollups := make(map[int64]rollup)
	for i := range ds.OrderItems {
		item := &ds.OrderItems[i]
		item.Margin = item.PriceUSD - item.CogsUSD
		item.IsRefunded = refunded[item.OrderItemID]
		r := rollups[item.OrderID]
		r.revenue += item.PriceUSD
		r.margin += item.Margin
		r.items++
		rollups[item.OrderID] = r
	}
	for i := range ds.Orders {
		r := rollups[ds.Orders[i].OrderID]
		ds.Orders[i].Revenue = r.revenue
		ds.Orders[i].Margin = r.margin
		ds.Orders[i].ItemCount = r.items
	}
	if ds.Version == "" {
		ds.Version = "test-fixture"
	}
	return ds
}

// Catalog returns the four-product demo catalog.
func Catalog() []dataset.Product {
	created := Day(2012, time.March, 19, 0)
	return []dataset.Product{
		{ProductID: 1, CreatedAt: created, ProductName: "The Original Mr. Fuzzy"},
		{ProductID: 2, CreatedAt: created, ProductName: "The Forever Love Bear"},
		{ProductID: 3, CreatedAt: created, ProductName: "The Birthday Sugar Panda"},
		{ProductID: 4, CreatedAt: created, ProductName: "The Hudson River Mini Bear"},
	}
}
