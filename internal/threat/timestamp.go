package threat

import (
	"strings"
	"time"
)

// ISOLayout is the layout used for generated timestamps.
const ISOLayout = "2006-01-02T15:04:05Z"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var nowFunc = func() time.Time { return time.Now().UTC() }

// NowISO returns the current UTC time formatted with a trailing Z.
func NowISO() string {
	return nowFunc().Format(ISOLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
