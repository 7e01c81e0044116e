package timeframe

import "time"

// SeriesPoint is one bucket in a monthly time series.
type SeriesPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// MonthlySeries turns a sparse month → value map into a dense,
// chronologically ordered series covering [first, last], filling absent
// months with zero.
func MonthlySeries(values map[string]float64, first, last time.Time) []SeriesPoint {
	months := MonthsBetween(first, last)
	if len(months) == 0 {
		return nil
	}

	series := make([]SeriesPoint, 0, len(months))
	for _, month := range months {
		series = append(series, SeriesPoint{Month: month, Value: values[month]})
	}
	return series
}
