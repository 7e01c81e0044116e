package analytics

import (
	"sort"
	"strconv"

	"shoplens/internal/dataset"
)

// ProductPair is one unordered product combination bought together, labeled
// "A+B" with the names in lexical order.
type ProductPair struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Pct   float64 `json:"pct"`
}

// ItemsPerOrder returns the distribution of item counts across orders as a
// share of orders.
func ItemsPerOrder(ds *dataset.Dataset) []Share {
	histogram := make(map[string]float64)
	for _, o := range ds.Orders {
		histogram[strconv.FormatInt(o.ItemCount, 10)]++
	}

	shares := sharesOf(histogram)
	sort.Slice(shares, func(i, j int) bool {
		a, _ := strconv.Atoi(shares[i].Label)
		b, _ := strconv.Atoi(shares[j].Label)
		return a < b
	})
	return shares
}

// CrossSellPairs mines every order's distinct product names for unordered
// pairs and ranks them by frequency. Single-product orders contribute no
// pairs. Pct is the pair's share of all pairs mined.
func CrossSellPairs(ds *dataset.Dataset) []ProductPair {
	names := ds.ProductNames()
	perOrder := make(map[int64]map[string]struct{})
	for _, item := range ds.OrderItems {
		if perOrder[item.OrderID] == nil {
			perOrder[item.OrderID] = make(map[string]struct{})
		}
		perOrder[item.OrderID][names[item.ProductID]] = struct{}{}
	}

	counts := make(map[string]int64)
	var total int64
	for _, products := range perOrder {
		if len(products) < 2 {
			continue
		}
		distinct := make([]string, 0, len(products))
		for name := range products {
			distinct = append(distinct, name)
		}
		sort.Strings(distinct)
		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				counts[distinct[i]+"+"+distinct[j]]++
				total++
			}
		}
	}

	pairs := make([]ProductPair, 0, len(counts))
	for label, count := range counts {
		pairs = append(pairs, ProductPair{
			Label: label,
			Count: count,
			Pct:   pct(float64(count), float64(total)),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Label < pairs[j].Label
	})
	return pairs
}
