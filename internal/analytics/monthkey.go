package analytics

import (
	"strings"
	"time"
)

const UnknownMonth = "unknown"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// MonthKey derives the "YYYY-MM" bucket of an ISO-8601 date or date-time string.
// Strings that do not parse fall back to their first seven characters, or UnknownMonth
// when shorter than that.
func MonthKey(date string) string {
	if t, ok := parseDate(date); ok {
		return t.Format("2006-01")
	}
	if len(date) >= 7 {
		return date[:7]
	}
	return UnknownMonth
}

// parseDate keeps the wall clock as written; zone offsets never move a date across months.
func parseDate(date string) (time.Time, bool) {
	if strings.Contains(date, "T") {
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, date); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ReadableMonth turns "2025-03" into "March 2025". Keys that are not a valid month are
// returned unchanged.
func ReadableMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// Year returns the first four characters of a month key.
func Year(month string) string {
	if len(month) < 4 {
		return month
	}
	return month[:4]
}
