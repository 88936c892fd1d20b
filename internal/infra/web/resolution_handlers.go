package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type resolutionListView struct {
	Resolutions []resolution.Resolution
	Status      resolution.Status
	Statuses    []resolution.Status
}

type resolutionDetailView struct {
	Resolution *resolution.Resolution
	Statuses   []resolution.Status
}

type resolutionFormView struct {
	ResolutionID int64
	Draft        resolution.Draft
	Statuses     []resolution.Status
}

type assignView struct {
	Resolution    *resolution.Resolution
	Rows          []resolution.Row
	Subcommittees []resolution.SubcommitteeRef
	Total         int
	Remaining     int
}

func (s *Server) handleResolutions(c *gin.Context) {
	list, err := s.svc.Resolutions.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	status := resolution.Status(strings.ToUpper(c.Query("status")))
	if status.Valid() {
		filtered := make([]resolution.Resolution, 0, len(list))
		for _, r := range list {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		list = filtered
	}
	s.render(c, "resolutions", "Resolutions", resolutionListView{
		Resolutions: list,
		Status:      status,
		Statuses:    resolution.AllStatuses,
	})
}

func (s *Server) handleResolutionDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	r, err := s.svc.Resolutions.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "resolution_detail", r.Title, resolutionDetailView{Resolution: r, Statuses: resolution.AllStatuses})
}

func (s *Server) handleResolutionStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	back := fmt.Sprintf("/resolutions/%d", id)
	status := resolution.Status(c.PostForm("status"))
	if _, err := s.svc.Resolutions.UpdateStatus(c.Request.Context(), *currentUser(c), id, status); err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, "Resolution status updated.")
	s.redirect(c, back)
}

func resolutionDraftFromForm(c *gin.Context) resolution.Draft {
	return resolution.Draft{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Status:      resolution.Status(c.PostForm("status")),
	}
}

// handleResolutionCreate records a resolution from the form on the meeting page.
func (s *Server) handleResolutionCreate(c *gin.Context) {
	meetingID, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	back := fmt.Sprintf("/meetings/%d", meetingID)
	if err := s.svc.Resolutions.Create(c.Request.Context(), *currentUser(c), meetingID, resolutionDraftFromForm(c)); err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, "Resolution recorded.")
	s.redirect(c, back)
}

func (s *Server) handleResolutionEditForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	r, err := s.svc.Resolutions.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "resolution_form", "Edit resolution", resolutionFormView{
		ResolutionID: id,
		Draft:        resolution.DraftFrom(*r),
		Statuses:     resolution.AllStatuses,
	})
}

func (s *Server) handleResolutionUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	d := resolutionDraftFromForm(c)
	if _, err := s.svc.Resolutions.Update(c.Request.Context(), *currentUser(c), id, d); err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			s.renderStatus(c, http.StatusUnprocessableEntity, "resolution_form", "Edit resolution",
				resolutionFormView{ResolutionID: id, Draft: d, Statuses: resolution.AllStatuses}, msgs)
			return
		}
		s.failBack(c, err, fmt.Sprintf("/resolutions/%d/edit", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Resolution updated.")
	s.redirect(c, fmt.Sprintf("/resolutions/%d", id))
}

func (s *Server) handleResolutionDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	if err := s.svc.Resolutions.Delete(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, fmt.Sprintf("/resolutions/%d", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Resolution deleted.")
	s.redirect(c, "/resolutions")
}

func (s *Server) handleAssignForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	r, err := s.svc.Resolutions.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows := r.Rows()
	if len(rows) == 0 {
		rows = resolution.AddRow(nil)
	}
	s.renderAssign(c, http.StatusOK, r, rows, nil)
}

// rowsFromForm reads the parallel subcommitteeId/percentage inputs of the assignment form.
func rowsFromForm(c *gin.Context) []resolution.Row {
	ids := c.PostFormArray("subcommitteeId")
	pcts := c.PostFormArray("percentage")
	rows := make([]resolution.Row, len(ids))
	for i := range ids {
		rows[i].SubcommitteeID, _ = strconv.ParseInt(strings.TrimSpace(ids[i]), 10, 64)
		if i < len(pcts) {
			rows[i].ContributionPercentage, _ = strconv.Atoi(strings.TrimSpace(pcts[i]))
		}
	}
	return rows
}

// handleAssign serves every button of the assignment form. Only "submit" reaches the backend;
// the other actions edit the rows and redraw the form.
func (s *Server) handleAssign(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Resolution")
		return
	}
	ctx := c.Request.Context()
	rows := rowsFromForm(c)
	action := c.PostForm("action")

	var formErrors []string
	switch {
	case action == "add":
		rows = resolution.AddRow(rows)
	case action == "auto":
		rows = resolution.AutoDistribute(rows)
	case strings.HasPrefix(action, "remove:"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "remove:")); err == nil {
			rows = resolution.RemoveRow(rows, i)
		}
	default:
		err := s.svc.Resolutions.Assign(ctx, *currentUser(c), id, rows)
		if err == nil {
			s.flash(c, session.FlashSuccess, "Resolution assigned to subcommittees.")
			s.redirect(c, fmt.Sprintf("/resolutions/%d", id))
			return
		}
		if msgs := app.ValidationMessages(err); msgs != nil {
			formErrors = msgs
		} else if isConflict(err) {
			formErrors = []string{errorMessage(err)}
		} else {
			s.fail(c, err)
			return
		}
	}

	r, err := s.svc.Resolutions.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if formErrors != nil {
		status = http.StatusUnprocessableEntity
	}
	s.renderAssign(c, status, r, rows, formErrors)
}

func (s *Server) renderAssign(c *gin.Context, status int, r *resolution.Resolution, rows []resolution.Row, formErrors []string) {
	subs, err := s.svc.Resolutions.Subcommittees(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderStatus(c, status, "resolution_assign", "Assign "+r.Title, assignView{
		Resolution:    r,
		Rows:          rows,
		Subcommittees: subs,
		Total:         resolution.Total(rows),
		Remaining:     resolution.Remaining(rows),
	}, formErrors)
}
