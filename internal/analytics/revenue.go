package analytics

import (
	"sort"
	"time"

	"shoplens/internal/dataset"
	"shoplens/internal/timeframe"
)

// ProductSeries is one product's monthly revenue series.
type ProductSeries struct {
	Product string                  `json:"product"`
	Series  []timeframe.SeriesPoint `json:"series"`
}

// ProductDeviceUnits is units sold for one product on one device type.
type ProductDeviceUnits struct {
	Product string `json:"product"`
	Device  string `json:"device"`
	Units   int64  `json:"units"`
}

// RevenueShareByProduct returns each product's share of item revenue.
func RevenueShareByProduct(ds *dataset.Dataset) []Share {
	names := ds.ProductNames()
	revenue := make(map[string]float64)
	for _, item := range ds.OrderItems {
		revenue[names[item.ProductID]] += item.PriceUSD
	}
	return sharesOf(revenue)
}

// MarginShareByProduct returns each product's share of item margin.
func MarginShareByProduct(ds *dataset.Dataset) []Share {
	names := ds.ProductNames()
	margin := make(map[string]float64)
	for _, item := range ds.OrderItems {
		margin[names[item.ProductID]] += item.Margin
	}
	return sharesOf(margin)
}

// UnitsShareByProduct returns each product's share of units sold.
func UnitsShareByProduct(ds *dataset.Dataset) []Share {
	names := ds.ProductNames()
	units := make(map[string]float64)
	for _, item := range ds.OrderItems {
		units[names[item.ProductID]]++
	}
	return sharesOf(units)
}

// RefundRateByProduct returns refunded items over sold items per product.
func RefundRateByProduct(ds *dataset.Dataset) []Rate {
	names := ds.ProductNames()
	sold := make(map[string]int64)
	refunded := make(map[string]int64)
	for _, item := range ds.OrderItems {
		name := names[item.ProductID]
		sold[name]++
		if item.IsRefunded {
			refunded[name]++
		}
	}

	rates := make([]Rate, 0, len(sold))
	for name, total := range sold {
		rates = append(rates, Rate{
			Label:       name,
			Numerator:   refunded[name],
			Denominator: total,
			Pct:         pct(float64(refunded[name]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// OverallRefundRate is the percentage of all sold items later refunded.
func OverallRefundRate(ds *dataset.Dataset) float64 {
	var refunded int64
	for _, item := range ds.OrderItems {
		if item.IsRefunded {
			refunded++
		}
	}
	return pct(float64(refunded), float64(len(ds.OrderItems)))
}

// AvgItemPrice is the mean price across all sold items.
func AvgItemPrice(ds *dataset.Dataset) float64 {
	var total float64
	for _, item := range ds.OrderItems {
		total += item.PriceUSD
	}
	return round2(ratio(total, float64(len(ds.OrderItems))))
}

// TopProductByRevenue returns the highest-revenue product and its revenue.
// Empty datasets yield an empty name and zero.
func TopProductByRevenue(ds *dataset.Dataset) (string, float64) {
	shares := RevenueShareByProduct(ds)
	if len(shares) == 0 {
		return "", 0
	}
	return shares[0].Label, round2(shares[0].Value)
}

// MonthlySalesByProduct returns one zero-filled monthly revenue series per
// product, ordered by total revenue descending.
func MonthlySalesByProduct(ds *dataset.Dataset) []ProductSeries {
	if len(ds.OrderItems) == 0 {
		return nil
	}

	names := ds.ProductNames()
	first, last := itemTimeBounds(ds)
	perProduct := make(map[string]map[string]float64)
	totals := make(map[string]float64)
	for _, item := range ds.OrderItems {
		name := names[item.ProductID]
		if perProduct[name] == nil {
			perProduct[name] = make(map[string]float64)
		}
		perProduct[name][timeframe.MonthKey(item.CreatedAt)] += item.PriceUSD
		totals[name] += item.PriceUSD
	}

	products := make([]string, 0, len(perProduct))
	for name := range perProduct {
		products = append(products, name)
	}
	sort.Slice(products, func(i, j int) bool {
		if totals[products[i]] != totals[products[j]] {
			return totals[products[i]] > totals[products[j]]
		}
		return products[i] < products[j]
	})

	series := make([]ProductSeries, 0, len(products))
	for _, name := range products {
		series = append(series, ProductSeries{
			Product: name,
			Series:  timeframe.MonthlySeries(perProduct[name], first, last),
		})
	}
	return series
}

// MonthlyRevenueShare returns each month's share of total revenue, the
// seasonality view.
func MonthlyRevenueShare(ds *dataset.Dataset) []timeframe.SeriesPoint {
	if len(ds.OrderItems) == 0 {
		return nil
	}

	first, last := itemTimeBounds(ds)
	byMonth := make(map[string]float64)
	var total float64
	for _, item := range ds.OrderItems {
		byMonth[timeframe.MonthKey(item.CreatedAt)] += item.PriceUSD
		total += item.PriceUSD
	}

	shares := make(map[string]float64, len(byMonth))
	for month, revenue := range byMonth {
		shares[month] = pct(revenue, total)
	}
	return timeframe.MonthlySeries(shares, first, last)
}

// UnitsByProductDevice breaks units sold down by product and the ordering
// session's device type. Items whose order lost its session are skipped.
func UnitsByProductDevice(ds *dataset.Dataset) []ProductDeviceUnits {
	names := ds.ProductNames()
	sessions := sessionsByID(ds)
	orderSession := make(map[int64]int64, len(ds.Orders))
	for _, o := range ds.Orders {
		orderSession[o.OrderID] = o.SessionID
	}

	type key struct{ product, device string }
	units := make(map[key]int64)
	for _, item := range ds.OrderItems {
		s, ok := sessions[orderSession[item.OrderID]]
		if !ok {
			continue
		}
		units[key{names[item.ProductID], s.DeviceType}]++
	}

	rows := make([]ProductDeviceUnits, 0, len(units))
	for k, n := range units {
		rows = append(rows, ProductDeviceUnits{Product: k.product, Device: k.device, Units: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Product != rows[j].Product {
			return rows[i].Product < rows[j].Product
		}
		return rows[i].Device < rows[j].Device
	})
	return rows
}

func itemTimeBounds(ds *dataset.Dataset) (first, last time.Time) {
	for _, item := range ds.OrderItems {
		if item.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || item.CreatedAt.Before(first) {
			first = item.CreatedAt
		}
		if last.IsZero() || item.CreatedAt.After(last) {
			last = item.CreatedAt
		}
	}
	return first, last
}
