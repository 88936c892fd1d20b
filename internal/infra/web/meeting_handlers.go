package web

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/country"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/domain/resolution"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type meetingListView struct {
	Upcoming []meeting.Meeting
	Past     []meeting.Meeting
}

type meetingArchiveView struct {
	Meetings []meeting.Meeting
	Filter   meeting.ArchiveFilter
	Years    []int
	Total    int
}

type meetingDetailView struct {
	Meeting     *meeting.Meeting
	Resolutions []resolution.Resolution
	Next        []meeting.Status
	Invitations []meeting.Invitation
	Invitees    []meeting.Invitee
	Inviting    bool
}

type meetingFormView struct {
	MeetingID int64
	Draft     meeting.Draft
	Types     []meeting.Type
	Countries []country.Country
}

func (s *Server) handleMeetings(c *gin.Context) {
	list, err := s.svc.Meetings.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	now := s.now()
	view := meetingListView{}
	for _, m := range list {
		if m.MeetingDate.After(now) {
			view.Upcoming = append(view.Upcoming, m)
		} else {
			view.Past = append(view.Past, m)
		}
	}
	slices.SortFunc(view.Upcoming, func(a, b meeting.Meeting) int { return a.MeetingDate.Compare(b.MeetingDate.Time) })
	slices.SortFunc(view.Past, func(a, b meeting.Meeting) int { return b.MeetingDate.Compare(a.MeetingDate.Time) })
	s.render(c, "meetings", "Meetings", view)
}

func (s *Server) handleMeetingDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	ctx := c.Request.Context()
	m, err := s.svc.Meetings.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	resolutions, err := s.svc.Resolutions.ForMeeting(ctx, id)
	if err != nil {
		s.log.WithField("meeting_id", id).WithError(err).Warn("Could not load meeting resolutions")
	}
	view := meetingDetailView{
		Meeting:     m,
		Resolutions: resolutions,
		Next:        meeting.NextStatuses(m.Status),
		Inviting:    meeting.OpenForInvitations(m.Status),
	}
	if u := currentUser(c); user.CanManageDirectory(*u) {
		if view.Invitations, err = s.svc.Invitations.ForMeeting(ctx, *u, id); err != nil {
			s.log.WithField("meeting_id", id).WithError(err).Warn("Could not load meeting invitations")
		}
		if view.Inviting {
			if view.Invitees, err = s.svc.Invitations.Invitees(ctx, *u, id); err != nil {
				s.log.WithField("meeting_id", id).WithError(err).Warn("Could not load potential invitees")
			}
		}
	}
	s.render(c, "meeting_detail", m.Title, view)
}

// handleMeetingArchive lists completed meetings, filtered by year and a search term.
func (s *Server) handleMeetingArchive(c *gin.Context) {
	list, err := s.svc.Meetings.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))
	filter := meeting.ArchiveFilter{Year: year, SearchTerm: strings.TrimSpace(c.Query("q"))}
	s.render(c, "meeting_archive", "Meeting archive", meetingArchiveView{
		Meetings: meeting.Archive(list, filter),
		Filter:   filter,
		Years:    meeting.ArchiveYears(list),
		Total:    len(meeting.Archive(list, meeting.ArchiveFilter{})),
	})
}

func meetingDraftFromForm(c *gin.Context) meeting.Draft {
	return meeting.Draft{
		Title:            c.PostForm("title"),
		Description:      c.PostForm("description"),
		Agenda:           c.PostForm("agenda"),
		Date:             c.PostForm("date"),
		Time:             c.PostForm("time"),
		Location:         c.PostForm("location"),
		MeetingLink:      c.PostForm("meetingLink"),
		MeetingType:      meeting.Type(c.PostForm("meetingType")),
		HostingCountryID: formInt64(c, "hostingCountryId"),
		Status:           meeting.Status(c.PostForm("status")),
	}
}

func (s *Server) renderMeetingForm(c *gin.Context, status int, id int64, d meeting.Draft, formErrors []string) {
	countries, err := s.svc.Countries.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	title := "New meeting"
	if id != 0 {
		title = "Edit meeting"
	}
	s.renderStatus(c, status, "meeting_form", title, meetingFormView{
		MeetingID: id,
		Draft:     d,
		Types:     meeting.AllTypes,
		Countries: countries,
	}, formErrors)
}

func (s *Server) handleMeetingForm(c *gin.Context) {
	s.renderMeetingForm(c, http.StatusOK, 0, meeting.Draft{MeetingType: meeting.TypeTechnical}, nil)
}

func (s *Server) handleMeetingCreate(c *gin.Context) {
	d := meetingDraftFromForm(c)
	m, err := s.svc.Meetings.Create(c.Request.Context(), *currentUser(c), d)
	if err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			s.renderMeetingForm(c, http.StatusUnprocessableEntity, 0, d, msgs)
			return
		}
		s.failBack(c, err, "/meetings/new")
		return
	}
	s.flash(c, session.FlashSuccess, "Meeting scheduled.")
	s.redirect(c, fmt.Sprintf("/meetings/%d", m.ID))
}

func (s *Server) handleMeetingEditForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	m, err := s.svc.Meetings.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderMeetingForm(c, http.StatusOK, id, meeting.DraftFrom(*m), nil)
}

func (s *Server) handleMeetingUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	d := meetingDraftFromForm(c)
	if _, err := s.svc.Meetings.Update(c.Request.Context(), *currentUser(c), id, d); err != nil {
		if msgs := app.ValidationMessages(err); msgs != nil {
			s.renderMeetingForm(c, http.StatusUnprocessableEntity, id, d, msgs)
			return
		}
		s.failBack(c, err, fmt.Sprintf("/meetings/%d/edit", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Meeting updated.")
	s.redirect(c, fmt.Sprintf("/meetings/%d", id))
}

func (s *Server) handleMeetingStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	back := fmt.Sprintf("/meetings/%d", id)
	if _, err := s.svc.Meetings.UpdateStatus(c.Request.Context(), *currentUser(c), id, meeting.Status(c.PostForm("status"))); err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, "Meeting status updated.")
	s.redirect(c, back)
}

func (s *Server) handleMeetingDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	if err := s.svc.Meetings.Delete(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, fmt.Sprintf("/meetings/%d", id))
		return
	}
	s.flash(c, session.FlashSuccess, "Meeting deleted.")
	s.redirect(c, "/meetings")
}
