package web

import (
	"net/http"
	"time"

	"eara_connect_portal/internal/domain/notification"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// notificationsLimit caps the polled list; the inbox page shows everything.
const notificationsLimit = 20

type tokenRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (s *Server) apiRoutes(corsCfg cors.Config) {
	api := s.engine.Group("/api/v1", cors.New(corsCfg))
	// Preflight requests match no other route; the CORS middleware answers them.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.POST("/token", s.handleToken)

	authed := api.Group("", s.loadSession(), s.bearerAuth(), s.requireAuth())
	authed.GET("/notifications/unread-count", s.handleUnreadCount)
	authed.GET("/notifications", s.handleNotificationFeed)
	authed.GET("/reports", s.handleReportFeed)
	authed.GET("/dashboard/stats", s.handleStats)
}

// handleToken exchanges credentials for a bearer token carrying the same session record the cookie holds.
func (s *Server) handleToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	u, backendCookie, err := s.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.apiError(c, err)
		return
	}
	token, exp, err := s.tokens.Issue(*u, backendCookie)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
		"user":      u,
	})
}

func (s *Server) handleUnreadCount(c *gin.Context) {
	n, err := s.svc.Notifications.UnreadCount(c.Request.Context(), *currentUser(c))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleNotificationFeed(c *gin.Context) {
	u := *currentUser(c)
	list, err := s.svc.Notifications.Inbox(c.Request.Context(), u)
	if err != nil {
		s.apiError(c, err)
		return
	}
	unread := len(notification.Unread(list))
	if c.Query("unread") == "true" {
		list = notification.Unread(list)
	}
	if len(list) > notificationsLimit {
		list = list[:notificationsLimit]
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (s *Server) handleReportFeed(c *gin.Context) {
	q := listQuery(c)
	reports, err := s.svc.Reports.List(c.Request.Context(), *currentUser(c), q)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "total": len(reports)})
}

func (s *Server) handleStats(c *gin.Context) {
	snap, err := s.svc.Dashboards.Stats(c.Request.Context(), *currentUser(c))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
