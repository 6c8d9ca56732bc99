package dates

import (
	"strings"
	"time"
)

// ISOFormat is the layout used on the wire. Values are always written in UTC.
const ISOFormat = "2006-01-02T15:04:05.000Z07:00"

// Layouts accepted by Parse, most specific first.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15Z07:00",
	"2006-01-02Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04Z0700",
}

// Zone-less layouts are read as UTC so parsing never depends on the host locale.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads an ISO-8601 date-time. Malformed, empty or unsupported input
// returns nil.
func Parse(v any) *time.Time {
	switch typed := v.(type) {
	case nil:
		return nil
	case time.Time:
		if typed.IsZero() {
			return nil
		}
		t := typed
		return &t
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return nil
		}
		t := *typed
		return &t
	case string:
		return parseString(typed)
	default:
		return nil
	}
}

func parseString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// Format writes t as an ISO-8601 UTC string. A nil time gives "".
func Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(ISOFormat)
}

// Clone returns a copy of t so callers never share a pointer.
func Clone(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// IsSame reports whether a and b denote the same instant.
// Two nil values are the same, a nil and a non-nil value are not.
func IsSame(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// IsSameOrBefore reports whether a <= b. It is false when either is nil.
func IsSameOrBefore(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return !a.After(*b)
}

// IsAfter reports whether a > b. It is false when either is nil.
func IsAfter(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.After(*b)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextDay returns midnight of the day following t, in t's location.
func NextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
