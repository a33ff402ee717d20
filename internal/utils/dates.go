package utils

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used across the API and storage layer.
const DateLayout = "2006-01-02"

// DateToUnix converts a YYYY-MM-DD date string to a Unix timestamp
// at midnight UTC. Storage uses Unix timestamps so range queries stay
// plain integer comparisons.
func DateToUnix(date string) (int64, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Unix(), nil
}

// UnixToDate converts a Unix timestamp back to a YYYY-MM-DD string in UTC.
func UnixToDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}
