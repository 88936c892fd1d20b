package web

import (
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type inboxView struct {
	Notifications []notification.Notification
	Unread        int
	OnlyUnread    bool
}

func (s *Server) handleNotifications(c *gin.Context) {
	list, err := s.svc.Notifications.Inbox(c.Request.Context(), *currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	view := inboxView{Notifications: list, Unread: len(notification.Unread(list))}
	if c.Query("filter") == "unread" {
		view.OnlyUnread = true
		view.Notifications = notification.Unread(list)
	}
	s.render(c, "notifications", "Notifications", view)
}

func (s *Server) handleNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Notification")
		return
	}
	if err := s.svc.Notifications.MarkRead(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, "/notifications")
		return
	}
	s.redirect(c, "/notifications")
}

func (s *Server) handleNotificationsReadAll(c *gin.Context) {
	if err := s.svc.Notifications.MarkAllRead(c.Request.Context(), *currentUser(c)); err != nil {
		s.failBack(c, err, "/notifications")
		return
	}
	s.flash(c, session.FlashSuccess, "All notifications marked as read.")
	s.redirect(c, "/notifications")
}

func (s *Server) handleNotificationDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		s.notFound(c, "Notification")
		return
	}
	if err := s.svc.Notifications.Delete(c.Request.Context(), *currentUser(c), id); err != nil {
		s.failBack(c, err, "/notifications")
		return
	}
	s.flash(c, session.FlashSuccess, "Notification deleted.")
	s.redirect(c, "/notifications")
}
