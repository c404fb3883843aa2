package model

import (
	"fmt"
	"time"
)

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// FormatTimestamp renders t the way the dashboard and exports show it,
// e.g. "17 Okt 2026 07.31". A zero time renders as "-".
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	t = t.In(loc)
	return fmt.Sprintf("%d %s %d %02d.%02d", t.Day(), shortMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// TimeOfDay is the clock part of FormatTimestamp.
func TimeOfDay(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("15.04")
}

// DateString is the YYYY-MM-DD key stored alongside every record.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
