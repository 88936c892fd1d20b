package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/datetime"
	"eara_connect_portal/internal/domain/deadline"
	"eara_connect_portal/internal/domain/display"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// asTime unwraps the timestamp types the domain uses; anything else is the zero time.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case datetime.Time:
		return t.Time
	case *datetime.Time:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

func funcMap(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"statusColor": func(v any) string { return display.StatusColor(fmt.Sprint(v)) },
		"statusLabel": func(v any) string { return display.StatusLabel(fmt.Sprint(v)) },
		"formatDate":  func(v any) string { return display.FormatDate(asTime(v)) },
		"formatDateTime": func(v any) string {
			return display.FormatDateTime(asTime(v))
		},
		"relative":         func(v any) string { return display.FormatRelative(asTime(v), now()) },
		"performanceLabel": display.PerformanceLabel,
		"performanceColor": display.PerformanceColor,
		"truncate":         func(n int, s string) string { return display.Truncate(s, n) },
		"deadlineLabel": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return "No deadline"
			}
			return deadline.Label(t, now())
		},
		"urgency": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return string(deadline.Normal)
			}
			return string(deadline.Classify(t, now()))
		},
		"percent": func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" },
		"intAt": func(xs []int, i int) int {
			if i < 0 || i >= len(xs) {
				return 0
			}
			return xs[i]
		},
		"canResubmit": func(s report.Status) bool {
			return report.CanResubmit(s)
		},
		"assignable": func(s resolution.Status) bool {
			return resolution.Assignable(s)
		},
		"sortHref": sortHref,
	}
}

// sortHref links a report column header, flipping the direction when the column is already sorted.
func sortHref(q app.ListQuery, field string) string {
	v := url.Values{}
	if q.Filter.Status != "" {
		v.Set("status", string(q.Filter.Status))
	}
	if q.Filter.SubcommitteeID != 0 {
		v.Set("subcommitteeId", strconv.FormatInt(q.Filter.SubcommitteeID, 10))
	}
	if q.Filter.ResolutionID != 0 {
		v.Set("resolutionId", strconv.FormatInt(q.Filter.ResolutionID, 10))
	}
	if q.Filter.SearchTerm != "" {
		v.Set("q", q.Filter.SearchTerm)
	}
	dir := report.Desc
	if string(q.Sort) == field && q.Dir == report.Desc {
		dir = report.Asc
	}
	v.Set("sort", field)
	v.Set("dir", string(dir))
	return "/reports?" + v.Encode()
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap(time.Now)).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// page is what every full-page template receives.
type page struct {
	Title     string
	User      *user.SessionUser
	Dashboard user.Dashboard
	Flashes   map[string][]string
	Errors    []string
	Data      any
}

func (p page) CanManage() bool {
	return p.User != nil && user.CanManageDirectory(*p.User)
}

func newPage(u *user.SessionUser, title string, data any) page {
	p := page{Title: title, User: u, Data: data}
	if u != nil {
		p.Dashboard = user.DashboardFor(*u)
	}
	return p
}

type errorView struct {
	Status  int
	Message string
}

func errorPage(u *user.SessionUser, status int, message string) page {
	return newPage(u, http.StatusText(status), errorView{Status: status, Message: message})
}

func (s *Server) render(c *gin.Context, name, title string, data any) {
	s.renderStatus(c, http.StatusOK, name, title, data, nil)
}

// renderStatus draws a page with the pending flash banners and any form errors.
func (s *Server) renderStatus(c *gin.Context, status int, name, title string, data any, formErrors []string) {
	p := newPage(currentUser(c), title, data)
	p.Flashes = s.sessions.Flashes(c.Writer, c.Request)
	p.Errors = formErrors
	c.HTML(status, name, p)
}

func (s *Server) flash(c *gin.Context, kind, message string) {
	if err := s.sessions.AddFlash(c.Writer, c.Request, kind, message); err != nil {
		s.log.WithError(err).Warn("Could not store flash message")
	}
}

func (s *Server) redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

// errorMessage is the text shown to the user for err.
func errorMessage(err error) string {
	if msgs := app.ValidationMessages(err); len(msgs) > 0 {
		return strings.Join(msgs, " ")
	}
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, backend.ErrUnavailable):
		return "The EARA service is unreachable. Please try again shortly."
	case errors.Is(err, app.ErrForbidden):
		return "You do not have access to this action."
	case errors.Is(err, backend.ErrInvalidPayload):
		return "The EARA service returned data the portal could not read."
	default:
		return err.Error()
	}
}

// conflicts are refusals of an action the current state does not allow.
var conflicts = []error{
	app.ErrNotAssigned,
	report.ErrInvalidTransition,
	report.ErrNotResubmittable,
	resolution.ErrNotAssignable,
	meeting.ErrInvalidTransition,
	meeting.ErrClosedForInvitations,
}

func isConflict(err error) bool {
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorStatus(err error) int {
	var apiErr *backend.APIError
	switch {
	case app.ValidationMessages(err) != nil:
		return http.StatusUnprocessableEntity
	case isConflict(err):
		return http.StatusConflict
	case errors.Is(err, app.ErrRelayDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err as an error page. A backend that no longer accepts the session logs the user out.
func (s *Server) fail(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		_ = s.sessions.Logout(c.Writer, c.Request)
		s.redirect(c, "/login")
		return
	}
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).WithError(err).Error("Request failed")
	}
	c.HTML(status, "error", errorPage(currentUser(c), status, errorMessage(err)))
}

func (s *Server) notFound(c *gin.Context, what string) {
	c.HTML(http.StatusNotFound, "error", errorPage(currentUser(c), http.StatusNotFound, what+" not found."))
}

// failBack flashes err and returns to the page the form was posted from.
func (s *Server) failBack(c *gin.Context, err error, to string) {
	if errorStatus(err) == http.StatusInternalServerError {
		s.fail(c, err)
		return
	}
	s.flash(c, session.FlashError, errorMessage(err))
	s.redirect(c, to)
}

func (s *Server) apiError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithField("path", c.Request.URL.Path).WithError(err).Error("API request failed")
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func formInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(c.PostForm(name)), 10, 64)
	return v
}

func formInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(c.PostForm(name)))
	return v
}

func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(c.Query(name)), 10, 64)
	return v
}
