package web

import (
	"fmt"
	"strconv"

	"eara_connect_portal/internal/domain/display"
	"eara_connect_portal/internal/domain/meeting"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type invitationListView struct {
	Invitations []meeting.Invitation
	Responses   []meeting.InvitationStatus
}

func (s *Server) handleInvitations(c *gin.Context) {
	list, err := s.svc.Invitations.Mine(c.Request.Context(), *currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, "invitations", "Meeting invitations", invitationListView{Invitations: list, Responses: meeting.Responses})
}

func (s *Server) handleInvitationRespond(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Invitation")
		return
	}
	r := meeting.Response{
		Status:  meeting.InvitationStatus(c.PostForm("status")),
		Comment: c.PostForm("comment"),
	}
	updated, err := s.svc.Invitations.Respond(c.Request.Context(), *currentUser(c), id, r)
	if err != nil {
		s.failBack(c, err, "/invitations")
		return
	}
	s.flash(c, session.FlashSuccess, fmt.Sprintf("Your answer (%s) was sent.", display.StatusLabel(string(updated.Status))))
	s.redirect(c, "/invitations")
}

func (s *Server) handleInvite(c *gin.Context) {
	meetingID, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Meeting")
		return
	}
	var userIDs []int64
	for _, v := range c.PostFormArray("userId") {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			userIDs = append(userIDs, id)
		}
	}
	back := fmt.Sprintf("/meetings/%d", meetingID)
	sent, err := s.svc.Invitations.Invite(c.Request.Context(), *currentUser(c), meetingID, userIDs)
	if sent > 0 {
		s.flash(c, session.FlashSuccess, fmt.Sprintf("%d invitation(s) sent.", sent))
	}
	if err != nil {
		s.failBack(c, err, back)
		return
	}
	if sent == 0 {
		s.flash(c, session.FlashSuccess, "Everyone selected was already invited.")
	}
	s.redirect(c, back)
}

func (s *Server) handleInvitationRevoke(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Invitation")
		return
	}
	back := "/meetings"
	if meetingID := formInt64(c, "meetingId"); meetingID > 0 {
		back = fmt.Sprintf("/meetings/%d", meetingID)
	}
	if err := s.svc.Invitations.Revoke(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, back)
		return
	}
	s.flash(c, session.FlashSuccess, "Invitation withdrawn.")
	s.redirect(c, back)
}
