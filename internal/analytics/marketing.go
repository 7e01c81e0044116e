package analytics

import (
	"sort"
	"strconv"
	"time"

	"shoplens/internal/dataset"
	"shoplens/internal/timeframe"
)

// CampaignPerformance is one source+campaign cell of the marketing grid.
type CampaignPerformance struct {
	Source     string  `json:"source"`
	Campaign   string  `json:"campaign"`
	Sessions   int64   `json:"sessions"`
	Orders     int64   `json:"orders"`
	Revenue    float64 `json:"revenue"`
	Units      int64   `json:"units"`
	RevenuePct float64 `json:"revenue_pct"`
	UnitsPct   float64 `json:"units_pct"`
}

// SourceSeries is one source's monthly session series.
type SourceSeries struct {
	Source string                  `json:"source"`
	Series []timeframe.SeriesPoint `json:"series"`
}

// SessionShareBySource returns each UTM source's share of sessions.
func SessionShareBySource(ds *dataset.Dataset) []Share {
	counts := make(map[string]float64)
	for _, s := range ds.Sessions {
		counts[s.UTMSource]++
	}
	return sharesOf(counts)
}

// SessionShareByCampaign returns each campaign's share of sessions.
func SessionShareByCampaign(ds *dataset.Dataset) []Share {
	counts := make(map[string]float64)
	for _, s := range ds.Sessions {
		counts[s.UTMCampaign]++
	}
	return sharesOf(counts)
}

// CampaignGrid attributes sessions, orders, revenue and units to each
// source+campaign pair via the session that placed the order, with revenue
// and unit shares of the filtered total.
func CampaignGrid(ds *dataset.Dataset) []CampaignPerformance {
	sessions := sessionsByID(ds)

	type key struct{ source, campaign string }
	cells := make(map[key]*CampaignPerformance)
	cell := func(source, campaign string) *CampaignPerformance {
		k := key{source, campaign}
		if cells[k] == nil {
			cells[k] = &CampaignPerformance{Source: source, Campaign: campaign}
		}
		return cells[k]
	}

	for _, s := range ds.Sessions {
		cell(s.UTMSource, s.UTMCampaign).Sessions++
	}

	var totalRevenue float64
	var totalUnits int64
	for _, o := range ds.Orders {
		s, ok := sessions[o.SessionID]
		if !ok {
			continue
		}
		c := cell(s.UTMSource, s.UTMCampaign)
		c.Orders++
		c.Revenue += o.Revenue
		c.Units += o.ItemCount
		totalRevenue += o.Revenue
		totalUnits += o.ItemCount
	}

	grid := make([]CampaignPerformance, 0, len(cells))
	for _, c := range cells {
		c.RevenuePct = pct(c.Revenue, totalRevenue)
		c.UnitsPct = pct(float64(c.Units), float64(totalUnits))
		grid = append(grid, *c)
	}
	sort.Slice(grid, func(i, j int) bool {
		if grid[i].Revenue != grid[j].Revenue {
			return grid[i].Revenue > grid[j].Revenue
		}
		if grid[i].Source != grid[j].Source {
			return grid[i].Source < grid[j].Source
		}
		return grid[i].Campaign < grid[j].Campaign
	})
	return grid
}

// CampaignRate is one source+campaign ratio.
type CampaignRate struct {
	Source      string  `json:"source"`
	Campaign    string  `json:"campaign"`
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
	Pct         float64 `json:"pct"`
}

// RepeatSessionRateBySourceCampaign returns, per source+campaign pair, the
// percentage of sessions flagged as repeat visits.
func RepeatSessionRateBySourceCampaign(ds *dataset.Dataset) []CampaignRate {
	type key struct{ source, campaign string }
	sessions := make(map[key]int64)
	repeats := make(map[key]int64)
	for _, s := range ds.Sessions {
		k := key{s.UTMSource, s.UTMCampaign}
		sessions[k]++
		if s.IsRepeat {
			repeats[k]++
		}
	}

	rates := make([]CampaignRate, 0, len(sessions))
	for k, total := range sessions {
		rates = append(rates, CampaignRate{
			Source:      k.source,
			Campaign:    k.campaign,
			Numerator:   repeats[k],
			Denominator: total,
			Pct:         pct(float64(repeats[k]), float64(total)),
		})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Denominator != rates[j].Denominator {
			return rates[i].Denominator > rates[j].Denominator
		}
		if rates[i].Source != rates[j].Source {
			return rates[i].Source < rates[j].Source
		}
		return rates[i].Campaign < rates[j].Campaign
	})
	return rates
}

// RepeatUserShareBySource returns, per source, the percentage of that
// source's distinct users who came back at least once.
func RepeatUserShareBySource(ds *dataset.Dataset) []Rate {
	users := make(map[string]map[int64]struct{})
	repeatUsers := make(map[string]map[int64]struct{})
	for _, s := range ds.Sessions {
		if users[s.UTMSource] == nil {
			users[s.UTMSource] = make(map[int64]struct{})
			repeatUsers[s.UTMSource] = make(map[int64]struct{})
		}
		users[s.UTMSource][s.UserID] = struct{}{}
		if s.IsRepeat {
			repeatUsers[s.UTMSource][s.UserID] = struct{}{}
		}
	}

	rates := make([]Rate, 0, len(users))
	for source, seen := range users {
		total := int64(len(seen))
		repeated := int64(len(repeatUsers[source]))
		rates = append(rates, Rate{
			Label:       source,
			Numerator:   repeated,
			Denominator: total,
			Pct:         pct(float64(repeated), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// RepeatSessionRateBySource returns, per source, the percentage of sessions
// flagged as repeat visits.
func RepeatSessionRateBySource(ds *dataset.Dataset) []Rate {
	sessions := make(map[string]int64)
	repeats := make(map[string]int64)
	for _, s := range ds.Sessions {
		sessions[s.UTMSource]++
		if s.IsRepeat {
			repeats[s.UTMSource]++
		}
	}

	rates := make([]Rate, 0, len(sessions))
	for source, total := range sessions {
		rates = append(rates, Rate{
			Label:       source,
			Numerator:   repeats[source],
			Denominator: total,
			Pct:         pct(float64(repeats[source]), float64(total)),
		})
	}
	sortRates(rates)
	return rates
}

// OverallRepeatSessionRate is the percentage of all sessions flagged as
// repeat visits.
func OverallRepeatSessionRate(ds *dataset.Dataset) float64 {
	var repeats int64
	for _, s := range ds.Sessions {
		if s.IsRepeat {
			repeats++
		}
	}
	return pct(float64(repeats), float64(len(ds.Sessions)))
}

// SessionFrequency returns the sessions-per-user histogram as a share of
// users, labeled by session count.
func SessionFrequency(ds *dataset.Dataset) []Share {
	perUser := make(map[int64]int64)
	for _, s := range ds.Sessions {
		perUser[s.UserID]++
	}

	histogram := make(map[string]float64)
	for _, n := range perUser {
		histogram[strconv.FormatInt(n, 10)]++
	}

	shares := sharesOf(histogram)
	// Frequency buckets read better in numeric order than by share size.
	sort.Slice(shares, func(i, j int) bool {
		a, _ := strconv.Atoi(shares[i].Label)
		b, _ := strconv.Atoi(shares[j].Label)
		return a < b
	})
	return shares
}

// MonthlySessionsBySource returns one zero-filled monthly session series per
// source, sources ordered by total volume descending.
func MonthlySessionsBySource(ds *dataset.Dataset) []SourceSeries {
	if len(ds.Sessions) == 0 {
		return nil
	}

	first, last := sessionTimeBounds(ds)
	perSource := make(map[string]map[string]float64)
	totals := make(map[string]float64)
	for _, s := range ds.Sessions {
		if perSource[s.UTMSource] == nil {
			perSource[s.UTMSource] = make(map[string]float64)
		}
		perSource[s.UTMSource][timeframe.MonthKey(s.CreatedAt)]++
		totals[s.UTMSource]++
	}

	sources := make([]string, 0, len(perSource))
	for source := range perSource {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		if totals[sources[i]] != totals[sources[j]] {
			return totals[sources[i]] > totals[sources[j]]
		}
		return sources[i] < sources[j]
	})

	series := make([]SourceSeries, 0, len(sources))
	for _, source := range sources {
		series = append(series, SourceSeries{
			Source: source,
			Series: timeframe.MonthlySeries(perSource[source], first, last),
		})
	}
	return series
}

// AvgPageDepthBySource returns the average pageviews per session for each
// source. Sessions with no pageviews do not contribute.
func AvgPageDepthBySource(ds *dataset.Dataset) []LabeledValue {
	counts := sessionPageviewCounts(ds)

	pageviews := make(map[string]float64)
	sessions := make(map[string]float64)
	for _, s := range ds.Sessions {
		n, ok := counts[s.SessionID]
		if !ok {
			continue
		}
		pageviews[s.UTMSource] += float64(n)
		sessions[s.UTMSource]++
	}

	depths := make([]LabeledValue, 0, len(pageviews))
	for source, total := range pageviews {
		depths = append(depths, LabeledValue{
			Label: source,
			Value: round2(ratio(total, sessions[source])),
		})
	}
	sort.Slice(depths, func(i, j int) bool {
		if depths[i].Value != depths[j].Value {
			return depths[i].Value > depths[j].Value
		}
		return depths[i].Label < depths[j].Label
	})
	return depths
}

// sessionTimeBounds returns the earliest and latest session timestamps,
// skipping zero times from unparsable inputs.
func sessionTimeBounds(ds *dataset.Dataset) (first, last time.Time) {
	for _, s := range ds.Sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || s.CreatedAt.Before(first) {
			first = s.CreatedAt
		}
		if last.IsZero() || s.CreatedAt.After(last) {
			last = s.CreatedAt
		}
	}
	return first, last
}
