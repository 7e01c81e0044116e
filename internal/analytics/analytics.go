// Package analytics computes KPIs and grouped distributions from a filtered
// dataset. Modules:
//
//   - totals.go: headline revenue, margin, session and user counts
//   - conversions.go: session-to-order conversion rates by dimension
//   - marketing.go: channel and campaign performance, repeat behavior
//   - revenue.go: product revenue, units, refunds, seasonality
//   - behavior.go: bounces, page depth, landing, top and exit pages
//   - funnel.go: ordered purchase funnel stage mapping
//   - crosssell.go: product pair mining across orders
//
// Every function is pure and stateless: it reads the dataset, writes
// nothing, and guards every ratio against a zero denominator. Percentages
// are rounded to two decimals.
package analytics

import (
	"math"
	"sort"

	"shoplens/internal/dataset"
)

// Share is one labeled slice of a distribution: an absolute value and its
// percentage of the distribution total.
type Share struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Pct   float64 `json:"pct"`
}

// Rate is one labeled ratio with its numerator and denominator kept for
// display alongside the percentage.
type Rate struct {
	Label       string  `json:"label"`
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
	Pct         float64 `json:"pct"`
}

// LabeledValue is one labeled scalar, for averages that are not ratios of
// counts.
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pct returns n/d as a percentage rounded to two decimals, 0 when d is 0.
func pct(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return round2(n / d * 100)
}

// ratio returns n/d, 0 when d is 0.
func ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// sortShares orders a distribution by value descending, ties broken by
// label, so output is deterministic.
func sortShares(shares []Share) {
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Label < shares[j].Label
	})
}

// sortByNumerator orders rate tables where volume, not the ratio base, is
// the interesting magnitude.
func sortByNumerator(rates []Rate) {
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Numerator != rates[j].Numerator {
			return rates[i].Numerator > rates[j].Numerator
		}
		return rates[i].Label < rates[j].Label
	})
}

func sortRates(rates []Rate) {
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Denominator != rates[j].Denominator {
			return rates[i].Denominator > rates[j].Denominator
		}
		return rates[i].Label < rates[j].Label
	})
}

// sharesOf converts a label → value map into a sorted Share table where
// each Pct is the value's percentage of the map total.
func sharesOf(values map[string]float64) []Share {
	var total float64
	for _, v := range values {
		total += v
	}

	shares := make([]Share, 0, len(values))
	for label, v := range values {
		shares = append(shares, Share{Label: label, Value: v, Pct: pct(v, total)})
	}
	sortShares(shares)
	return shares
}

// orderingSessionIDs returns the set of session ids with at least one order.
func orderingSessionIDs(ds *dataset.Dataset) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(ds.Orders))
	for _, o := range ds.Orders {
		ids[o.SessionID] = struct{}{}
	}
	return ids
}

// sessionPageviewCounts returns pageviews per session. Sessions with no
// pageviews are absent from the map.
func sessionPageviewCounts(ds *dataset.Dataset) map[int64]int64 {
	counts := make(map[int64]int64)
	for _, pv := range ds.Pageviews {
		counts[pv.SessionID]++
	}
	return counts
}

// sessionBoundaryURLs returns the first (landing) and last (exit) pageview
// URL per session, ordered by timestamp with pageview id as tiebreaker.
// Sessions with no pageviews are absent from both maps.
func sessionBoundaryURLs(ds *dataset.Dataset) (landing, exit map[int64]string) {
	type boundary struct {
		first, last dataset.Pageview
		seen        bool
	}
	bounds := make(map[int64]*boundary)
	for _, pv := range ds.Pageviews {
		b, ok := bounds[pv.SessionID]
		if !ok {
			b = &boundary{}
			bounds[pv.SessionID] = b
		}
		if !b.seen || earlier(pv, b.first) {
			b.first = pv
		}
		if !b.seen || earlier(b.last, pv) {
			b.last = pv
		}
		b.seen = true
	}

	landing = make(map[int64]string, len(bounds))
	exit = make(map[int64]string, len(bounds))
	for id, b := range bounds {
		landing[id] = b.first.URL
		exit[id] = b.last.URL
	}
	return landing, exit
}

func earlier(a, b dataset.Pageview) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.PageviewID < b.PageviewID
}

// sessionsByID indexes sessions for joins against orders and pageviews.
func sessionsByID(ds *dataset.Dataset) map[int64]dataset.Session {
	byID := make(map[int64]dataset.Session, len(ds.Sessions))
	for _, s := range ds.Sessions {
		byID[s.SessionID] = s
	}
	return byID
}
