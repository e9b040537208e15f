package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatRate formats an error rate both as a fraction and as "1 in N".
// Examples: 0.0001 -> "0.000100 (1 in 10000)", 0 -> "0.000000"
func FormatRate(rate float64) string {
	if rate <= 0 {
		return fmt.Sprintf("%.6f", rate)
	}
	return fmt.Sprintf("%.6f (1 in %.0f)", rate, 1/rate)
}

// FormatDuration rounds d to a readable precision.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

// FormatDateTime formats t in local time as 2006-01-02 15:04.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// ParseTimeSQLite parses a SQLite datetime or RFC3339 string to time.Time.
// Handles "YYYY-MM-DD HH:MM:SS" (SQLite) and RFC3339 formats.
// Returns zero time if parsing fails.
func ParseTimeSQLite(s string) time.Time {
	// Try SQLite datetime format first (most common from DB)
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	// Fall back to RFC3339
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
