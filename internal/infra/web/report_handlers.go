package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/display"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/export"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type reportListView struct {
	Reports  []report.Report
	Query    app.ListQuery
	Statuses []report.Status
	Summary  report.Summary
	Encoded  string
}

type reportFormView struct {
	ReportID    int64
	Draft       report.Draft
	Resolutions []resolution.Resolution
	Previous    *report.Report
}

type reportDetailView struct {
	*app.ReportDetail
	ReviewStage report.Stage
}

// listQuery reads the report filter from the query string. It is shared with the JSON API.
func listQuery(c *gin.Context) app.ListQuery {
	field, dir := report.ParseSort(c.Query("sort"), c.Query("dir"))
	return app.ListQuery{
		Filter: report.Filter{
			Status:         report.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
			SubcommitteeID: queryInt64(c, "subcommitteeId"),
			ResolutionID:   queryInt64(c, "resolutionId"),
			SearchTerm:     strings.TrimSpace(c.Query("q")),
		},
		Sort: field,
		Dir:  dir,
	}
}

func (s *Server) handleReports(c *gin.Context) {
	q := listQuery(c)
	reports, err := s.svc.Reports.List(c.Request.Context(), *currentUser(c), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "reports", "Reports", reportListView{
		Reports:  reports,
		Query:    q,
		Statuses: report.AllStatuses,
		Summary:  report.Summarize(reports),
		Encoded:  c.Request.URL.RawQuery,
	})
}

// handleReportExport renders the workbook fully before writing so a failure can still produce an error page.
func (s *Server) handleReportExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.svc.Reports.Export(c.Request.Context(), *currentUser(c), listQuery(c), &buf); err != nil {
		s.fail(c, err)
		return
	}
	name := fmt.Sprintf("eara-reports-%s.xlsx", s.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *Server) handleReportDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Report")
		return
	}
	u := currentUser(c)
	detail, err := s.svc.Reports.Get(c.Request.Context(), *u, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	view := reportDetailView{ReportDetail: detail}
	switch {
	case user.DashboardFor(*u) == user.DashboardHOD && detail.Report.Status == report.StatusSubmitted:
		view.ReviewStage = report.StageHOD
	case u.Role == user.RoleCommissionerGeneral && detail.Report.Status == report.StatusApprovedByHOD:
		view.ReviewStage = report.StageCommissioner
	}
	s.render(c, "report_detail", fmt.Sprintf("Report #%d", id), view)
}

func draftFromForm(c *gin.Context) report.Draft {
	return report.Draft{
		ResolutionID:          formInt64(c, "resolutionId"),
		SubcommitteeID:        formInt64(c, "subcommitteeId"),
		ProgressDetails:       c.PostForm("progressDetails"),
		Hindrances:            c.PostForm("hindrances"),
		PerformancePercentage: formInt(c, "performancePercentage"),
	}
}

func (s *Server) handleReportForm(c *gin.Context) {
	u := currentUser(c)
	assigned, err := s.svc.Reports.ChairResolutions(c.Request.Context(), *u)
	if err != nil {
		s.fail(c, err)
		return
	}
	draft := report.Draft{ResolutionID: queryInt64(c, "resolutionId"), SubcommitteeID: u.SubcommitteeID}
	s.render(c, "report_form", "Submit report", reportFormView{Draft: draft, Resolutions: assigned})
}

func (s *Server) handleReportSubmit(c *gin.Context) {
	u := currentUser(c)
	draft := draftFromForm(c)
	sub, err := s.svc.Reports.Submit(c.Request.Context(), *u, draft)
	if err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil || isConflict(err) {
			if msgs == nil {
				msgs = []string{errorMessage(err)}
			}
			assigned, _ := s.svc.Reports.ChairResolutions(c.Request.Context(), *u)
			s.renderStatus(c, errorStatus(err), "report_form", "Submit report",
				reportFormView{Draft: draft, Resolutions: assigned}, msgs)
			return
		}
		s.failBack(c, err, "/reports/new")
		return
	}
	msg := sub.SuccessMessage
	if msg == "" {
		msg = "Report submitted for review."
	}
	s.flash(c, session.FlashSuccess, msg)
	s.redirect(c, "/dashboard/chair")
}

func (s *Server) handleResubmitForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Report")
		return
	}
	detail, err := s.svc.Reports.Get(c.Request.Context(), *currentUser(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	r := detail.Report
	if !report.CanResubmit(r.Status) {
		s.flash(c, session.FlashError, report.ErrNotResubmittable.Error())
		s.redirect(c, fmt.Sprintf("/reports/%d", id))
		return
	}
	draft := report.Draft{
		ResolutionID:          r.ResolutionID(),
		SubcommitteeID:        r.SubcommitteeID(),
		ProgressDetails:       r.ProgressDetails,
		Hindrances:            r.Hindrances,
		PerformancePercentage: r.PerformancePercentage,
	}
	s.render(c, "report_form", "Resubmit report", reportFormView{ReportID: id, Draft: draft, Previous: &r})
}

func (s *Server) handleResubmit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Report")
		return
	}
	u := currentUser(c)
	draft := draftFromForm(c)
	if _, err := s.svc.Reports.Resubmit(c.Request.Context(), *u, id, draft); err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			view := reportFormView{ReportID: id, Draft: draft}
			// keep the reviewer feedback on screen while the chair corrects the form
			if detail, err := s.svc.Reports.Get(c.Request.Context(), *u, id); err == nil {
				view.Previous = &detail.Report
			}
			s.renderStatus(c, http.StatusUnprocessableEntity, "report_form", "Resubmit report", view, msgs)
			return
		}
		s.failBack(c, err, fmt.Sprintf("/reports/%d/edit", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Report resubmitted for review.")
	s.redirect(c, fmt.Sprintf("/reports/%d", id))
}

func (s *Server) handleReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Report")
		return
	}
	u := currentUser(c)
	stage := report.StageHOD
	if user.DashboardFor(*u) == user.DashboardCommissioner {
		stage = report.StageCommissioner
	}
	back := fmt.Sprintf("/reports/%d", id)
	approved, err := report.ParseDecision(c.PostForm("decision"))
	if err != nil {
		s.flash(c, session.FlashError, "Please choose to approve or reject the report.")
		s.redirect(c, back)
		return
	}
	rv := report.Review{Approved: approved, Comments: c.PostForm("comments")}
	updated, err := s.svc.Reports.Review(c.Request.Context(), *u, id, stage, rv)
	if err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, fmt.Sprintf("Report #%d: %s.", id, display.StatusLabel(string(updated.Status))))
	s.redirect(c, back)
}
