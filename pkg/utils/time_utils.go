package utils

import (
	"time"
)

// DaysUntil returns the number of whole days from now until t.
// Negative when t is in the past.
func DaysUntil(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
