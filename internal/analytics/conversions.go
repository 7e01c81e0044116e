package analytics

import "shoplens/internal/dataset"

// OverallConversionRate is the percentage of sessions that placed at least
// one order.
func OverallConversionRate(ds *dataset.Dataset) float64 {
	ordering := orderingSessionIDs(ds)
	return pct(float64(len(ordering)), float64(len(ds.Sessions)))
}

// ConversionBySource breaks the conversion rate down by UTM source.
func ConversionBySource(ds *dataset.Dataset) []Rate {
	return conversionBy(ds, func(s dataset.Session) string { return s.UTMSource })
}

// ConversionByDevice breaks the conversion rate down by device type.
func ConversionByDevice(ds *dataset.Dataset) []Rate {
	return conversionBy(ds, func(s dataset.Session) string { return s.DeviceType })
}

func conversionBy(ds *dataset.Dataset, key func(dataset.Session) string) []Rate {
	ordering := orderingSessionIDs(ds)

	sessions := make(map[string]int64)
	converted := make(map[string]int64)
	for _, s := range ds.Sessions {
		k := key(s)
		sessions[k]++
		if _, ok := ordering[s.SessionID]; ok {
			converted[k]++
		}
	}

	rates := make([]Rate, 0, len(sessions))
	for k, total := range sessions {
		rates = append(rates, Rate{
			Label:       k,
			Numerator:   converted[k],
			Denominator: total,
			Pct:         pct(float64(converted[k]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// ConversionByLandingPage computes the conversion rate of sessions grouped
// by the first page they saw. Sessions without pageviews are excluded.
func ConversionByLandingPage(ds *dataset.Dataset) []Rate {
	ordering := orderingSessionIDs(ds)
	landing, _ := sessionBoundaryURLs(ds)

	sessions := make(map[string]int64)
	converted := make(map[string]int64)
	for id, url := range landing {
		sessions[url]++
		if _, ok := ordering[id]; ok {
			converted[url]++
		}
	}

	rates := make([]Rate, 0, len(sessions))
	for url, total := range sessions {
		rates = append(rates, Rate{
			Label:       url,
			Numerator:   converted[url],
			Denominator: total,
			Pct:         pct(float64(converted[url]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// ConversionByPage computes, for each given URL, the conversion rate of
// sessions that viewed that page at any point. Used for product-detail and
// billing page comparisons.
func ConversionByPage(ds *dataset.Dataset, urls []string) []Rate {
	ordering := orderingSessionIDs(ds)

	viewed := make(map[string]map[int64]struct{}, len(urls))
	wanted := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		wanted[url] = struct{}{}
		viewed[url] = make(map[int64]struct{})
	}
	for _, pv := range ds.Pageviews {
		if _, ok := wanted[pv.URL]; ok {
			viewed[pv.URL][pv.SessionID] = struct{}{}
		}
	}

	rates := make([]Rate, 0, len(urls))
	for _, url := range urls {
		var converted int64
		for id := range viewed[url] {
			if _, ok := ordering[id]; ok {
				converted++
			}
		}
		total := int64(len(viewed[url]))
		rates = append(rates, Rate{
			Label:       url,
			Numerator:   converted,
			Denominator: total,
			Pct:         pct(float64(converted), float64(total)),
		})
	}
	return rates
}

// ConversionByProductPage compares the four product-detail pages.
func ConversionByProductPage(ds *dataset.Dataset) []Rate {
	return ConversionByPage(ds, productPageURLs)
}

// ConversionByBillingPage compares the two billing page variants.
func ConversionByBillingPage(ds *dataset.Dataset) []Rate {
	return ConversionByPage(ds, []string{"/billing", "/billing-2"})
}
