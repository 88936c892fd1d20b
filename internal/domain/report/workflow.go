// internal/domain/report/workflow.go
package report

import (
	"fmt"
	"strings"
	"time"

	"eara_connect_portal/internal/domain/datetime"
)

const MinProgressDetailsLength = 10

var ErrInvalidTransition = fmt.Errorf("report cannot be reviewed at this stage")
var ErrNotResubmittable = fmt.Errorf("only rejected reports can be resubmitted")
var ErrUnknownDecision = fmt.Errorf("choose approve or reject")

// Stage is a review tier.
type Stage string

const (
	StageHOD          Stage = "HOD"
	StageCommissioner Stage = "COMMISSIONER"
)

// Review is a reviewer's decision.
type Review struct {
	Approved bool
	Comments string
}

func (r Review) Validate() []string {
	if !r.Approved && strings.TrimSpace(r.Comments) == "" {
		return []string{"Comments are required when rejecting a report"}
	}
	return nil
}

// ParseDecision reads the decision field of a review form.
func ParseDecision(v string) (approved bool, err error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "approve":
		return true, nil
	case "reject":
		return false, nil
	default:
		return false, ErrUnknownDecision
	}
}

// NextStatus returns the status a report moves to when stage decides on it.
func NextStatus(current Status, stage Stage, approved bool) (Status, error) {
	switch stage {
	case StageHOD:
		if current != StatusSubmitted {
			return current, fmt.Errorf("%w: HOD review requires %s, report is %s", ErrInvalidTransition, StatusSubmitted, current)
		}
		if approved {
			return StatusApprovedByHOD, nil
		}
		return StatusRejectedByHOD, nil
	case StageCommissioner:
		if current != StatusApprovedByHOD {
			return current, fmt.Errorf("%w: commissioner review requires %s, report is %s", ErrInvalidTransition, StatusApprovedByHOD, current)
		}
		if approved {
			return StatusApprovedByCommissioner, nil
		}
		return StatusRejectedByCommissioner, nil
	default:
		return current, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, stage)
	}
}

// Draft is the chair-editable content of a report.
type Draft struct {
	ResolutionID          int64
	SubcommitteeID        int64
	ProgressDetails       string
	Hindrances            string
	PerformancePercentage int
}

func (d *Draft) Validate() []string {
	var errs []string
	d.ProgressDetails = strings.TrimSpace(d.ProgressDetails)
	d.Hindrances = strings.TrimSpace(d.Hindrances)
	if d.ProgressDetails == "" {
		errs = append(errs, "Progress details are required")
	} else if len([]rune(d.ProgressDetails)) < MinProgressDetailsLength {
		errs = append(errs, fmt.Sprintf("Progress details must be at least %d characters long", MinProgressDetailsLength))
	}
	if d.PerformancePercentage < 0 || d.PerformancePercentage > 100 {
		errs = append(errs, "Performance percentage must be between 0 and 100")
	}
	return errs
}

// ValidateNew also requires the resolution and subcommittee a new report is filed against.
func (d *Draft) ValidateNew() []string {
	var errs []string
	if d.ResolutionID == 0 {
		errs = append(errs, "Resolution is required")
	}
	if d.SubcommitteeID == 0 {
		errs = append(errs, "Subcommittee is required")
	}
	return append(errs, d.Validate()...)
}

func CanResubmit(s Status) bool {
	return s.Rejected()
}

// Resubmit applies draft to a rejected report. The returned report is reset to SUBMITTED
// and the returned entries carry the review comments it is about to lose.
func Resubmit(prev Report, draft Draft, now time.Time) (Report, []HistoryEntry, error) {
	if !CanResubmit(prev.Status) {
		return prev, nil, fmt.Errorf("%w: report %d is %s", ErrNotResubmittable, prev.ID, prev.Status)
	}
	if errs := draft.Validate(); len(errs) > 0 {
		return prev, nil, fmt.Errorf("invalid draft: %s", strings.Join(errs, "; "))
	}

	history := ReviewHistory(prev)

	next := prev
	next.ProgressDetails = draft.ProgressDetails
	next.Hindrances = draft.Hindrances
	next.PerformancePercentage = draft.PerformancePercentage
	next.Status = StatusSubmitted
	next.SubmittedAt = datetime.New(now)
	next.HODComments = ""
	next.CommissionerComments = ""
	next.HODReviewedAt = nil
	next.CommissionerReviewedAt = nil
	return next, history, nil
}

// ReviewHistory extracts the review outcomes recorded on r.
func ReviewHistory(r Report) []HistoryEntry {
	var entries []HistoryEntry
	if r.HODReviewedAt != nil || r.HODComments != "" {
		entries = append(entries, HistoryEntry{
			ReportID:   r.ID,
			Stage:      StageHOD,
			Status:     hodOutcome(r.Status),
			Comments:   r.HODComments,
			ReviewedAt: reviewedAt(r.HODReviewedAt, r.SubmittedAt),
		})
	}
	if r.CommissionerReviewedAt != nil || r.CommissionerComments != "" {
		entries = append(entries, HistoryEntry{
			ReportID:   r.ID,
			Stage:      StageCommissioner,
			Status:     r.Status,
			Comments:   r.CommissionerComments,
			ReviewedAt: reviewedAt(r.CommissionerReviewedAt, r.SubmittedAt),
		})
	}
	return entries
}

// hodOutcome recovers the HOD decision from a status that may have moved past it.
func hodOutcome(s Status) Status {
	if s == StatusRejectedByHOD {
		return StatusRejectedByHOD
	}
	return StatusApprovedByHOD
}

func reviewedAt(at *datetime.Time, fallback datetime.Time) time.Time {
	if at != nil && !at.IsZero() {
		return at.Time
	}
	return fallback.Time
}
