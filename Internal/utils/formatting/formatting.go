package formatting

import (
	"strconv"
	"strings"
	"time"
)

// Separator returns a line separator of given width
func Separator(width int) string {
	return strings.Repeat("=", width)
}

// ParseTimestamp parses a provider timestamp in any of the formats the
// upstream feeds produce: RFC3339, plain dates, or unix seconds.
// Returns the zero time when nothing matches.
func ParseTimestamp(raw string) time.Time {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02/01/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}

	// Unix seconds or milliseconds as a bare integer.
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	}

	return time.Time{}
}
