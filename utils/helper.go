package utils

import (
	"fmt"
	"time"
)

// FormatTimeLeft renders the remaining visibility window for display:
// "{d}d {h}h left" above 24h, "{h}h left" below, "expired" at or past zero.
func FormatTimeLeft(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "expired"
	}
	hours := int(remaining.Hours())
	days := hours / 24
	if days >= 1 {
		return fmt.Sprintf("%dd %dh left", days, hours%24)
	}
	return fmt.Sprintf("%dh left", hours)
}
