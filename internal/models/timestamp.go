package models

import "time"

// Timestamps travel as ISO-8601 strings on disk and over the wire. Parsing
// is lenient: a value that cannot be parsed is treated as absent so a single
// bad field never bricks a stored blob.

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimestampPtr(value *string) *time.Time {
	if value == nil {
		return nil
	}
	t := parseTimestamp(*value)
	if t.IsZero() {
		return nil
	}
	return &t
}
