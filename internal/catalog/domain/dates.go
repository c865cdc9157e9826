package domain

import (
	"strings"
	"time"
)

const (
	// DateLayout is the display and input form of a release date.
	DateLayout = "2006-01-02"

	// RecordDateLayout is how release dates are written to a slot. It matches
	// the ISO form produced by JavaScript's Date.prototype.toJSON.
	RecordDateLayout = "2006-01-02T15:04:05.000Z"
)

// MinReleaseDate is the date of the first public film screening.
var MinReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{DateLayout, RecordDateLayout, time.RFC3339Nano, time.RFC3339}

// ParseDate parses a release date in any accepted layout and truncates it to
// midnight UTC, since a release date carries no time of day.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// FormatRecordDate renders t in RecordDateLayout.
func FormatRecordDate(t time.Time) string {
	return t.UTC().Format(RecordDateLayout)
}

// CompareDates compares two optional dates.
//
//	-2  a is unset, b is set
//	-1  a < b
//	 0  both unset, or equal
//	 1  a > b
//	 2  a is set, b is unset
func CompareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -2
	case b == nil:
		return 2
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}
