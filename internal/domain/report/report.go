// internal/domain/report/report.go
package report

import (
	"eara_connect_portal/internal/domain/datetime"
)

// Status is the review state of a chair report.
type Status string

const (
	StatusSubmitted              Status = "SUBMITTED"
	StatusApprovedByHOD          Status = "APPROVED_BY_HOD"
	StatusRejectedByHOD          Status = "REJECTED_BY_HOD"
	StatusApprovedByCommissioner Status = "APPROVED_BY_COMMISSIONER"
	StatusRejectedByCommissioner Status = "REJECTED_BY_COMMISSIONER"
)

var AllStatuses = []Status{
	StatusSubmitted,
	StatusApprovedByHOD,
	StatusRejectedByHOD,
	StatusApprovedByCommissioner,
	StatusRejectedByCommissioner,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Rejected() bool {
	return s == StatusRejectedByHOD || s == StatusRejectedByCommissioner
}

type ResolutionRef struct {
	ID    int64  `json:"id" validate:"required"`
	Title string `json:"title"`
}

type SubcommitteeRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

type UserRef struct {
	ID    int64  `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Report is a chair's progress report on a resolution, as returned by the backend.
type Report struct {
	ID                     int64            `json:"id" validate:"required"`
	Resolution             *ResolutionRef   `json:"resolution,omitempty" validate:"omitempty"`
	Subcommittee           *SubcommitteeRef `json:"subcommittee,omitempty" validate:"omitempty"`
	SubmittedBy            *UserRef         `json:"submittedBy,omitempty" validate:"omitempty"`
	ProgressDetails        string           `json:"progressDetails"`
	Hindrances             string           `json:"hindrances,omitempty"`
	PerformancePercentage  int              `json:"performancePercentage" validate:"min=0,max=100"`
	Status                 Status           `json:"status" validate:"required"`
	HODComments            string           `json:"hodComments,omitempty"`
	CommissionerComments   string           `json:"commissionerComments,omitempty"`
	SubmittedAt            datetime.Time    `json:"submittedAt"`
	HODReviewedAt          *datetime.Time   `json:"hodReviewedAt,omitempty"`
	CommissionerReviewedAt *datetime.Time   `json:"commissionerReviewedAt,omitempty"`
}

func (r Report) ResolutionID() int64 {
	if r.Resolution == nil {
		return 0
	}
	return r.Resolution.ID
}

func (r Report) ResolutionTitle() string {
	if r.Resolution == nil {
		return ""
	}
	return r.Resolution.Title
}

func (r Report) SubcommitteeID() int64 {
	if r.Subcommittee == nil {
		return 0
	}
	return r.Subcommittee.ID
}

func (r Report) SubcommitteeName() string {
	if r.Subcommittee == nil {
		return ""
	}
	return r.Subcommittee.Name
}

func (r Report) SubmitterName() string {
	if r.SubmittedBy == nil {
		return ""
	}
	if r.SubmittedBy.Name != "" {
		return r.SubmittedBy.Name
	}
	return r.SubmittedBy.Email
}
