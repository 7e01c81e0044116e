package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"shoplens/internal/pkg/referrers"
)

// Timestamp layouts accepted in raw inputs, tried in order. Anything that
// matches none of them normalizes to the zero time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// normalize types the raw tables into Dataset rows, applying the sentinel
// and coercion rules for dirty values. No row is ever rejected here.
func normalize(logger *slog.Logger, tables map[string]*table) *Dataset {
	ds := &Dataset{}

	sessions := tables["website_sessions"]
	ds.Sessions = make([]Session, 0, len(sessions.rows))
	for _, row := range sessions.rows {
		ds.Sessions = append(ds.Sessions, Session{
			SessionID:    parseInt(sessions.cell(row, "website_session_id")),
			CreatedAt:    parseTimestamp(sessions.cell(row, "created_at")),
			UserID:       parseInt(sessions.cell(row, "user_id")),
			IsRepeat:     parseBool(sessions.cell(row, "is_repeat_session")),
			UTMSource:    resolveSource(sessions.cell(row, "utm_source"), sessions.cell(row, "http_referer", "http_referrer")),
			UTMCampaign:  orUnknown(sessions.cell(row, "utm_campaign")),
			UTMContent:   orUnknown(sessions.cell(row, "utm_content")),
			DeviceType:   sessions.cell(row, "device_type"),
			HTTPReferrer: sessions.cell(row, "http_referer", "http_referrer"),
		})
	}

	pageviews := tables["website_pageviews"]
	ds.Pageviews = make([]Pageview, 0, len(pageviews.rows))
	for _, row := range pageviews.rows {
		ds.Pageviews = append(ds.Pageviews, Pageview{
			PageviewID: parseInt(pageviews.cell(row, "website_pageview_id")),
			CreatedAt:  parseTimestamp(pageviews.cell(row, "created_at")),
			SessionID:  parseInt(pageviews.cell(row, "website_session_id")),
			URL:        pageviews.cell(row, "pageview_url"),
		})
	}

	orders := tables["orders"]
	ds.Orders = make([]Order, 0, len(orders.rows))
	for _, row := range orders.rows {
		ds.Orders = append(ds.Orders, Order{
			OrderID:   parseInt(orders.cell(row, "order_id")),
			CreatedAt: parseTimestamp(orders.cell(row, "created_at")),
			SessionID: parseInt(orders.cell(row, "website_session_id")),
			UserID:    parseInt(orders.cell(row, "user_id")),
		})
	}

	items := tables["order_items"]
	ds.OrderItems = make([]OrderItem, 0, len(items.rows))
	for _, row := range items.rows {
		price := parseFloat(items.cell(row, "price_usd"))
		cogs := parseFloat(items.cell(row, "cogs_usd"))
		ds.OrderItems = append(ds.OrderItems, OrderItem{
			OrderItemID: parseInt(items.cell(row, "order_item_id")),
			CreatedAt:   parseTimestamp(items.cell(row, "created_at")),
			OrderID:     parseInt(items.cell(row, "order_id")),
			ProductID:   parseInt(items.cell(row, "product_id")),
			PriceUSD:    price,
			CogsUSD:     cogs,
			Margin:      price - cogs,
		})
	}

	products := tables["products"]
	ds.Products = make([]Product, 0, len(products.rows))
	for _, row := range products.rows {
		id := parseInt(products.cell(row, "product_id"))
		name := products.cell(row, "product_name")
		if name == "" {
			name = syntheticProductName(id)
		}
		ds.Products = append(ds.Products, Product{
			ProductID:   id,
			CreatedAt:   parseTimestamp(products.cell(row, "created_at")),
			ProductName: name,
		})
	}

	logger.Debug("normalized dataset",
		"sessions", len(ds.Sessions),
		"pageviews", len(ds.Pageviews))
	return ds
}

// resolveSource keeps an explicit utm_source, otherwise derives the channel
// from the referrer, otherwise falls back to the Untracked sentinel.
func resolveSource(utmSource, referrer string) string {
	if utmSource != "" {
		return utmSource
	}
	if channel, ok := referrers.ChannelForReferrer(referrer); ok {
		return channel
	}
	return SourceUntracked
}

func orUnknown(value string) string {
	if value == "" {
		return ValueUnknown
	}
	return value
}

func syntheticProductName(id int64) string {
	return fmt.Sprintf("Product %d", id)
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseInt(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	}
	return false
}
