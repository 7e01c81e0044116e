// Package filters narrows a dataset to a date range, a set of UTM sources
// and a set of products while keeping the surviving tables referentially
// consistent with each other.
package filters

import (
	"fmt"
	"sort"
	"strings"

	"shoplens/internal/dataset"
	"shoplens/internal/timeframe"
)

// Spec describes one filter selection. A nil slice leaves that dimension
// unconstrained; an empty non-nil slice is an explicit empty selection and
// yields zero surviving rows for the affected tables.
type Spec struct {
	Range      timeframe.DateRange
	UTMSources []string
	ProductIDs []int64
}

// Key returns a canonical string identifying the selection, stable across
// slice ordering. Used as a cache key component.
func (s Spec) Key() string {
	sources := "*"
	if s.UTMSources != nil {
		sorted := append([]string(nil), s.UTMSources...)
		sort.Strings(sorted)
		sources = strings.Join(sorted, ",")
	}

	products := "*"
	if s.ProductIDs != nil {
		sorted := append([]int64(nil), s.ProductIDs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		parts := make([]string, len(sorted))
		for i, id := range sorted {
			parts[i] = fmt.Sprintf("%d", id)
		}
		products = strings.Join(parts, ",")
	}

	return fmt.Sprintf("range=%s|sources=%s|products=%s", s.Range, sources, products)
}

// Apply returns a fresh dataset containing only the rows surviving the
// selection. The cascade runs sessions first, then orders, order items and
// pageviews, so every surviving child row still references a surviving
// parent. The products catalog passes through untouched. The input dataset
// is never mutated.
func Apply(ds *dataset.Dataset, spec Spec) *dataset.Dataset {
	out := &dataset.Dataset{
		Products: ds.Products,
		Version:  ds.Version,
	}

	sourceSet := stringSet(spec.UTMSources)
	sessionIDs := make(map[int64]struct{})
	for _, s := range ds.Sessions {
		if !spec.Range.Contains(s.CreatedAt) {
			continue
		}
		if sourceSet != nil {
			if _, ok := sourceSet[s.UTMSource]; !ok {
				continue
			}
		}
		out.Sessions = append(out.Sessions, s)
		sessionIDs[s.SessionID] = struct{}{}
	}

	orderIDs := make(map[int64]struct{})
	for _, o := range ds.Orders {
		if !spec.Range.Contains(o.CreatedAt) {
			continue
		}
		if _, ok := sessionIDs[o.SessionID]; !ok {
			continue
		}
		out.Orders = append(out.Orders, o)
		orderIDs[o.OrderID] = struct{}{}
	}

	productSet := int64Set(spec.ProductIDs)
	for _, item := range ds.OrderItems {
		if !spec.Range.Contains(item.CreatedAt) {
			continue
		}
		if _, ok := orderIDs[item.OrderID]; !ok {
			continue
		}
		if productSet != nil {
			if _, ok := productSet[item.ProductID]; !ok {
				continue
			}
		}
		out.OrderItems = append(out.OrderItems, item)
	}

	for _, pv := range ds.Pageviews {
		if _, ok := sessionIDs[pv.SessionID]; !ok {
			continue
		}
		out.Pageviews = append(out.Pageviews, pv)
	}

	return out
}

// stringSet distinguishes nil (unconstrained) from empty (match nothing).
func stringSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func int64Set(values []int64) map[int64]struct{} {
	if values == nil {
		return nil
	}
	set := make(map[int64]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
