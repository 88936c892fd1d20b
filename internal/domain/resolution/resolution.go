package resolution

import (
	"fmt"

	"eara_connect_portal/internal/domain/datetime"
)

type Status string

const (
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var AllStatuses = []Status{StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled}

var ErrNotAssignable = fmt.Errorf("resolution is not open for assignment")
var ErrUnknownStatus = fmt.Errorf("unknown resolution status")

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Assignable reports whether subcommittee shares may still be (re)allocated.
func Assignable(s Status) bool {
	return s == StatusAssigned || s == StatusInProgress
}

type MeetingRef struct {
	ID    int64  `json:"id" validate:"required"`
	Title string `json:"title"`
}

type SubcommitteeRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

type Assignment struct {
	ID                     int64            `json:"id,omitempty"`
	Subcommittee           *SubcommitteeRef `json:"subcommittee,omitempty" validate:"omitempty"`
	ContributionPercentage int              `json:"contributionPercentage" validate:"min=0,max=100"`
}

// Resolution is a decision item taken at a meeting and shared across subcommittees.
type Resolution struct {
	ID          int64          `json:"id" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description,omitempty"`
	Status      Status         `json:"status"`
	Meeting     *MeetingRef    `json:"meeting,omitempty" validate:"omitempty"`
	Deadline    *datetime.Time `json:"deadline,omitempty"`
	CreatedAt   *datetime.Time `json:"createdAt,omitempty"`
	Assignments []Assignment   `json:"assignments,omitempty" validate:"dive"`
}

// AssignedTo returns the share held by subcommitteeID, or 0 when it has none.
func (r Resolution) AssignedTo(subcommitteeID int64) int {
	for _, a := range r.Assignments {
		if a.Subcommittee != nil && a.Subcommittee.ID == subcommitteeID {
			return a.ContributionPercentage
		}
	}
	return 0
}

// Rows converts the stored assignments into editable form rows.
func (r Resolution) Rows() []Row {
	rows := make([]Row, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		row := Row{ContributionPercentage: a.ContributionPercentage}
		if a.Subcommittee != nil {
			row.SubcommitteeID = a.Subcommittee.ID
		}
		rows = append(rows, row)
	}
	return rows
}
