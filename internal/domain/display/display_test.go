package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#3b82f6", StatusColor("ASSIGNED"))
	assert.Equal(t, "#f59e0b", StatusColor("IN_PROGRESS"))
	assert.Equal(t, "#10b981", StatusColor("COMPLETED"))
	assert.Equal(t, "#ef4444", StatusColor("CANCELLED"))
	assert.Equal(t, "#6b7280", StatusColor("UNKNOWN"))
	assert.Equal(t, "#6b7280", StatusColor(""))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Approved By HOD", StatusLabel("APPROVED_BY_HOD"))
	assert.Equal(t, "In Progress", StatusLabel("IN_PROGRESS"))
}

func TestFormatting(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	assert.Equal(t, "Mar 5, 2024", FormatDate(at))
	assert.Equal(t, "Mar 5, 2024 14:07", FormatDateTime(at))
	assert.Equal(t, "N/A", FormatDate(time.Time{}))

	assert.Equal(t, "just now", FormatRelative(at, at.Add(10*time.Second)))
	assert.Equal(t, "1 minute ago", FormatRelative(at, at.Add(time.Minute)))
	assert.Equal(t, "5 hours ago", FormatRelative(at, at.Add(5*time.Hour)))
	assert.Equal(t, "2 days ago", FormatRelative(at, at.Add(50*time.Hour)))
	assert.Equal(t, "Mar 5, 2024", FormatRelative(at, at.Add(10*24*time.Hour)))
}

func TestPerformanceLabel(t *testing.T) {
	cases := map[int]string{100: "Excellent", 90: "Excellent", 89: "Very Good", 80: "Very Good", 70: "Good", 60: "Satisfactory", 59: "Poor", 0: "Poor"}
	for pct, want := range cases {
		assert.Equal(t, want, PerformanceLabel(pct), pct)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Harmo…", Truncate("Harmonise tariffs", 5))
}
