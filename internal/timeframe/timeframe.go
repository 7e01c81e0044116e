// Package timeframe provides day-granularity date ranges and calendar-month
// bucketing for time-series aggregation.
package timeframe

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days in query params and config.
const DateLayout = "2006-01-02"

// MonthLayout is the bucket key format for monthly series.
const MonthLayout = "2006-01"

// DateRange is an inclusive range of calendar days. The zero value is
// unbounded on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds a range from two timestamps, truncated to day
// granularity in UTC.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: truncateDay(from), To: truncateDay(to)}
}

// ParseDateRange parses "2006-01-02" formatted bounds. Empty strings leave
// the corresponding bound open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error

	if from != "" {
		r.From, err = time.Parse(DateLayout, from)
		if err != nil {
			return DateRange{}, fmt.Errorf("parsing from date %q: %w", from, err)
		}
	}
	if to != "" {
		r.To, err = time.Parse(DateLayout, to)
		if err != nil {
			return DateRange{}, fmt.Errorf("parsing to date %q: %w", to, err)
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("to date %s precedes from date %s", to, from)
	}
	return r, nil
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range. The upper bound is
// inclusive of the whole To day, so the effective window is
// [From 00:00, To+1day 00:00).
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && !t.Before(truncateDay(r.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// String renders the range for logging and cache keys.
func (r DateRange) String() string {
	from, to := "*", "*"
	if !r.From.IsZero() {
		from = r.From.Format(DateLayout)
	}
	if !r.To.IsZero() {
		to = r.To.Format(DateLayout)
	}
	return from + ".." + to
}

// MonthKey returns the calendar-month bucket key for a timestamp.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthsBetween lists every month key from the first to the last month,
// inclusive, in chronological order. Returns nil when either bound is the
// zero time.
func MonthsBetween(first, last time.Time) []string {
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return nil
	}

	var months []string
	cursor := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		months = append(months, cursor.Format(MonthLayout))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
