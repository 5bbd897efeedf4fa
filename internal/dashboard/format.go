package dashboard

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}

// FormatShare formats a percentage with one decimal, e.g. "42.5%".
func FormatShare(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatConfidence formats a 0-100 confidence as a whole percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.0f%%", c)
}

// FormatAge renders how long ago t was, e.g. "3 hours ago". A zero time is
// rendered as "unknown".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
