package report

import (
	"github.com/shopspring/decimal"
)

// Summary aggregates a report list for dashboard cards.
type Summary struct {
	Total              int             `json:"total"`
	ByStatus           map[Status]int  `json:"byStatus"`
	Pending            int             `json:"pending"`
	Approved           int             `json:"approved"`
	Rejected           int             `json:"rejected"`
	AveragePerformance decimal.Decimal `json:"averagePerformance"`
	ApprovalRate       decimal.Decimal `json:"approvalRate"`
}

// Summarize counts reports per status. Averages are rounded to two places.
func Summarize(reports []Report) Summary {
	s := Summary{
		Total:              len(reports),
		ByStatus:           make(map[Status]int, len(AllStatuses)),
		AveragePerformance: decimal.Zero,
		ApprovalRate:       decimal.Zero,
	}
	if len(reports) == 0 {
		return s
	}

	sum := decimal.Zero
	for _, r := range reports {
		s.ByStatus[r.Status]++
		sum = sum.Add(decimal.NewFromInt(int64(r.PerformancePercentage)))
		switch r.Status {
		case StatusSubmitted, StatusApprovedByHOD:
			s.Pending++
		case StatusApprovedByCommissioner:
			s.Approved++
		case StatusRejectedByHOD, StatusRejectedByCommissioner:
			s.Rejected++
		}
	}

	total := decimal.NewFromInt(int64(len(reports)))
	s.AveragePerformance = sum.Div(total).Round(2)

	if decided := s.Approved + s.Rejected; decided > 0 {
		s.ApprovalRate = decimal.NewFromInt(int64(s.Approved)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(decided))).
			Round(2)
	}
	return s
}
