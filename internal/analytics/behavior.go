package analytics

import (
	"shoplens/internal/dataset"
	"shoplens/internal/timeframe"
)

// BounceRate is the percentage of sessions with exactly one pageview.
// Sessions with no pageviews at all are not bounces and stay in the
// denominator.
func BounceRate(ds *dataset.Dataset) float64 {
	counts := sessionPageviewCounts(ds)
	var bounced int64
	for _, n := range counts {
		if n == 1 {
			bounced++
		}
	}
	return pct(float64(bounced), float64(len(ds.Sessions)))
}

// BounceRateByLandingPage groups bounces by the session's first page.
func BounceRateByLandingPage(ds *dataset.Dataset) []Rate {
	counts := sessionPageviewCounts(ds)
	landing, _ := sessionBoundaryURLs(ds)

	sessions := make(map[string]int64)
	bounced := make(map[string]int64)
	for id, url := range landing {
		sessions[url]++
		if counts[id] == 1 {
			bounced[url]++
		}
	}

	rates := make([]Rate, 0, len(sessions))
	for url, total := range sessions {
		rates = append(rates, Rate{
			Label:       url,
			Numerator:   bounced[url],
			Denominator: total,
			Pct:         pct(float64(bounced[url]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// MonthlyBounceTrend returns the bounce rate per calendar month of session
// start.
func MonthlyBounceTrend(ds *dataset.Dataset) []timeframe.SeriesPoint {
	if len(ds.Sessions) == 0 {
		return nil
	}

	counts := sessionPageviewCounts(ds)
	first, last := sessionTimeBounds(ds)
	sessions := make(map[string]float64)
	bounced := make(map[string]float64)
	for _, s := range ds.Sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		month := timeframe.MonthKey(s.CreatedAt)
		sessions[month]++
		if counts[s.SessionID] == 1 {
			bounced[month]++
		}
	}

	rates := make(map[string]float64, len(sessions))
	for month, total := range sessions {
		rates[month] = pct(bounced[month], total)
	}
	return timeframe.MonthlySeries(rates, first, last)
}

// AvgPageDepth is the mean pageviews per session, over sessions that have
// at least one pageview.
func AvgPageDepth(ds *dataset.Dataset) float64 {
	counts := sessionPageviewCounts(ds)
	var total int64
	for _, n := range counts {
		total += n
	}
	return round2(ratio(float64(total), float64(len(counts))))
}

// TopPages returns, per URL, the percentage of sessions that viewed it at
// least once.
func TopPages(ds *dataset.Dataset) []Rate {
	viewed := make(map[string]map[int64]struct{})
	for _, pv := range ds.Pageviews {
		if viewed[pv.URL] == nil {
			viewed[pv.URL] = make(map[int64]struct{})
		}
		viewed[pv.URL][pv.SessionID] = struct{}{}
	}

	total := int64(len(ds.Sessions))
	rates := make([]Rate, 0, len(viewed))
	for url, sessions := range viewed {
		n := int64(len(sessions))
		rates = append(rates, Rate{
			Label:       url,
			Numerator:   n,
			Denominator: total,
			Pct:         pct(float64(n), float64(total)),
		})
	}
	sortByNumerator(rates)
	return rates
}

// LandingPages returns each URL's share of session entries. Sessions with
// no pageviews have no landing page and are excluded.
func LandingPages(ds *dataset.Dataset) []Share {
	landing, _ := sessionBoundaryURLs(ds)
	counts := make(map[string]float64, len(landing))
	for _, url := range landing {
		counts[url]++
	}
	return sharesOf(counts)
}

// ExitPages returns each URL's share of session exits.
func ExitPages(ds *dataset.Dataset) []Share {
	_, exit := sessionBoundaryURLs(ds)
	counts := make(map[string]float64, len(exit))
	for _, url := range exit {
		counts[url]++
	}
	return sharesOf(counts)
}

// ExitRateByPage returns, per URL, sessions that ended on it over sessions
// that viewed it.
func ExitRateByPage(ds *dataset.Dataset) []Rate {
	_, exit := sessionBoundaryURLs(ds)
	viewed := make(map[string]map[int64]struct{})
	for _, pv := range ds.Pageviews {
		if viewed[pv.URL] == nil {
			viewed[pv.URL] = make(map[int64]struct{})
		}
		viewed[pv.URL][pv.SessionID] = struct{}{}
	}

	exits := make(map[string]int64)
	for _, url := range exit {
		exits[url]++
	}

	rates := make([]Rate, 0, len(viewed))
	for url, sessions := range viewed {
		total := int64(len(sessions))
		rates = append(rates, Rate{
			Label:       url,
			Numerator:   exits[url],
			Denominator: total,
			Pct:         pct(float64(exits[url]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}
