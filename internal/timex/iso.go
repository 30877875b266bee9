package timex

import (
	"errors"
	"strings"
	"time"
)

// ISOLayout renders instants the way JavaScript's Date.toISOString does.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatISO formats t in UTC with millisecond precision, e.g.
// 2025-01-10T00:00:00.000Z.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseDate accepts the date shapes clients send for events: full RFC 3339
// instants, local date-times without offset (read as UTC) and bare dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
