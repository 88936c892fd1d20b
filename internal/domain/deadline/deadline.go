package deadline

import (
	"fmt"
	"math"
	"time"
)

// Urgency is the badge a deadline is rendered with.
type Urgency string

const (
	Overdue Urgency = "overdue"
	Urgent  Urgency = "urgent"
	Warning Urgency = "warning"
	Normal  Urgency = "normal"
)

const (
	urgentWithinDays  = 3
	warningWithinDays = 7
)

// DaysUntil counts whole days to deadline, rounding partial days up.
func DaysUntil(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// Classify maps a deadline to an urgency relative to now.
func Classify(deadline, now time.Time) Urgency {
	days := DaysUntil(deadline, now)
	switch {
	case days < 0:
		return Overdue
	case days <= urgentWithinDays:
		return Urgent
	case days <= warningWithinDays:
		return Warning
	default:
		return Normal
	}
}

func Label(deadline, now time.Time) string {
	days := DaysUntil(deadline, now)
	switch {
	case days < -1:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == -1:
		return "Overdue by 1 day"
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}
