package timeparser

import (
	"fmt"
	"time"
)

// ParseReferenceTime parses a report reference instant from configuration.
// Naive timestamps (no offset) are assumed to be UTC; aware timestamps are
// converted to UTC.
func ParseReferenceTime(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339,          // 2006-01-02T15:04:05Z07:00
		"2006-01-02T15:04:05", // ISO-8601 without offset
		"2006-01-02 15:04:05", // space-separated variant
	}

	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse reference time '%s': %w", value, lastErr)
}
