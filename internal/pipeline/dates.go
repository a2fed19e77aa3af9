package pipeline

import (
	"strings"
	"time"
)

const (
	// sourceDateLayout accepts DD/MM/YYYY with optional leading zeros
	sourceDateLayout = "2/1/2006"
	// OutputDateLayout is how parsed dates are written back to the table
	OutputDateLayout = "2006-01-02"
)

// ParseDate parses a day/month/year date. The second return is false for
// empty or unparsable values.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(sourceDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SubtractMonths moves t back by months calendar months, clamping the day to
// the last day of the target month (31 Aug minus 6 months is 28 or 29 Feb).
func SubtractMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
