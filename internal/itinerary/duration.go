package itinerary

import (
	"fmt"
	"time"
)

// ComputeDuration returns the whole minutes between departure and arrival,
// rounded half up. Arrival before departure yields 0.
func ComputeDuration(departure, arrival time.Time) int {
	d := arrival.Sub(departure)
	if d <= 0 {
		return 0
	}
	return int((d + 30*time.Second) / time.Minute)
}

// FormatDuration renders minutes as "3h 30m", "3h" or "45m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
