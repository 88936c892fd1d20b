package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
)

type reportRequest struct {
	Resolution            *idPayload `json:"resolution"`
	Subcommittee          *idPayload `json:"subcommittee,omitempty"`
	ProgressDetails       string     `json:"progressDetails"`
	Hindrances            string     `json:"hindrances,omitempty"`
	PerformancePercentage int        `json:"performancePercentage"`
}

func newReportRequest(d report.Draft) reportRequest {
	return reportRequest{
		Resolution:            ref(d.ResolutionID),
		Subcommittee:          ref(d.SubcommitteeID),
		ProgressDetails:       d.ProgressDetails,
		Hindrances:            d.Hindrances,
		PerformancePercentage: d.PerformancePercentage,
	}
}

// Submission is the backend acknowledgement of a new report.
type Submission struct {
	ID             int64         `json:"id" validate:"required"`
	Status         report.Status `json:"status"`
	SuccessMessage string        `json:"successMessage,omitempty"`
}

func chairQuery(chairID int64) url.Values {
	return url.Values{"chairId": {strconv.FormatInt(chairID, 10)}}
}

func (c *Client) ChairReports(ctx context.Context, chairID int64) ([]report.Report, error) {
	var out []report.Report
	if err := c.do(ctx, http.MethodGet, idPath("/chair/reports/%d", chairID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ChairResolutions(ctx context.Context, chairID int64) ([]resolution.Resolution, error) {
	var out []resolution.Resolution
	if err := c.do(ctx, http.MethodGet, idPath("/chair/resolutions/%d", chairID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitReport(ctx context.Context, chairID int64, d report.Draft) (*Submission, error) {
	var out Submission
	if err := c.do(ctx, http.MethodPost, "/chair/reports", chairQuery(chairID), newReportRequest(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResubmitReport sends the revised content of a rejected report; the backend keeps the id.
func (c *Client) ResubmitReport(ctx context.Context, chairID, reportID int64, d report.Draft) (*report.Report, error) {
	var out report.Report
	if err := c.do(ctx, http.MethodPut, idPath("/chair/reports/%d", reportID), chairQuery(chairID), newReportRequest(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reports(ctx context.Context) ([]report.Report, error) {
	var out []report.Report
	if err := c.do(ctx, http.MethodGet, "/reports", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReportsByStatus(ctx context.Context, status report.Status) ([]report.Report, error) {
	var out []report.Report
	if err := c.do(ctx, http.MethodGet, "/reports/status/"+url.PathEscape(string(status)), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Report(ctx context.Context, id int64) (*report.Report, error) {
	var out report.Report
	if err := c.do(ctx, http.MethodGet, idPath("/reports/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type hodReviewRequest struct {
	HODID    int64  `json:"hodId"`
	Approved bool   `json:"approved"`
	Comments string `json:"comments"`
}

type commissionerReviewRequest struct {
	CommissionerID int64  `json:"commissionerId"`
	Approved       bool   `json:"approved"`
	Comments       string `json:"comments"`
}

func (c *Client) HODReview(ctx context.Context, reportID, hodID int64, r report.Review) (*report.Report, error) {
	var out report.Report
	body := hodReviewRequest{HODID: hodID, Approved: r.Approved, Comments: r.Comments}
	if err := c.do(ctx, http.MethodPost, idPath("/reports/%d/hod-review", reportID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CommissionerReview(ctx context.Context, reportID, commissionerID int64, r report.Review) (*report.Report, error) {
	var out report.Report
	body := commissionerReviewRequest{CommissionerID: commissionerID, Approved: r.Approved, Comments: r.Comments}
	if err := c.do(ctx, http.MethodPost, idPath("/reports/%d/commissioner-review", reportID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
