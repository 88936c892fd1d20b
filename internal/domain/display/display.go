// Package display holds the presentation helpers shared by every dashboard.
package display

import (
	"fmt"
	"strings"
	"time"
)

const defaultColor = "#6b7280"

var statusColors = map[string]string{
	// reports
	"SUBMITTED":                "#3b82f6",
	"APPROVED_BY_HOD":          "#8b5cf6",
	"REJECTED_BY_HOD":          "#ef4444",
	"APPROVED_BY_COMMISSIONER": "#10b981",
	"REJECTED_BY_COMMISSIONER": "#dc2626",
	// resolutions and meetings
	"ASSIGNED":    "#3b82f6",
	"IN_PROGRESS": "#f59e0b",
	"COMPLETED":   "#10b981",
	"CANCELLED":   "#ef4444",
	"SCHEDULED":   "#0ea5e9",
	// deadline urgencies
	"overdue": "#dc2626",
	"urgent":  "#f97316",
	"warning": "#f59e0b",
	"normal":  "#10b981",
}

// StatusColor maps any report, resolution, meeting or urgency status to its badge color.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return defaultColor
}

// StatusLabel turns "APPROVED_BY_HOD" into "Approved By HOD".
func StatusLabel(status string) string {
	words := strings.Split(status, "_")
	for i, w := range words {
		switch {
		case w == "HOD":
		case len(w) > 0:
			words[i] = w[:1] + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006 15:04")
}

// FormatRelative renders t relative to now for notification timestamps.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return FormatDate(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// PerformanceLabel grades a performance percentage.
func PerformanceLabel(pct int) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 80:
		return "Very Good"
	case pct >= 70:
		return "Good"
	case pct >= 60:
		return "Satisfactory"
	default:
		return "Poor"
	}
}

func PerformanceColor(pct int) string {
	switch {
	case pct >= 80:
		return "#10b981"
	case pct >= 60:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
