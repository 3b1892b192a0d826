package printer

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// HumanDuration returns an approximate human readable duration.
// Examples: "less than a second", "45 seconds", "1 minute", "3 hours".
func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return "less than a second"
	}

	var t0 time.Time
	return strings.TrimSpace(humanize.RelTime(t0, t0.Add(d), "", ""))
}

// FormatElapsed returns a compact elapsed duration for tables.
// Examples: "350ms", "12.4s", "3m5s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
