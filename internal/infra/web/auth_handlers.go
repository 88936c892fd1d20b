package web

import (
	"net/http"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
)

type loginView struct {
	Email string
}

func (s *Server) handleRoot(c *gin.Context) {
	if currentUser(c) != nil {
		s.redirect(c, "/dashboard")
		return
	}
	s.redirect(c, "/login")
}

func (s *Server) handleLoginForm(c *gin.Context) {
	if currentUser(c) != nil {
		s.redirect(c, "/dashboard")
		return
	}
	s.render(c, "login", "Sign in", loginView{})
}

func (s *Server) handleLogin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	u, backendCookie, err := s.svc.Auth.Login(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		var messages []string
		switch {
		case app.ValidationMessages(err) != nil:
			messages = app.ValidationMessages(err)
		case backend.IsUnauthorized(err):
			messages = []string{"Invalid email or password"}
		default:
			messages = []string{errorMessage(err)}
		}
		s.renderStatus(c, errorStatus(err), "login", "Sign in", loginView{Email: email}, messages)
		return
	}

	if err := s.sessions.Login(c.Writer, c.Request, *u, backendCookie); err != nil {
		s.fail(c, err)
		return
	}
	s.flash(c, session.FlashSuccess, "Welcome back, "+u.DisplayName())
	s.redirect(c, dashboardPath(*u))
}

func (s *Server) handleLogout(c *gin.Context) {
	u := currentUser(c)
	if u != nil {
		s.svc.Auth.Logout(c.Request.Context(), u)
	}
	if err := s.sessions.Logout(c.Writer, c.Request); err != nil {
		s.log.WithError(err).Warn("Could not clear session")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func dashboardPath(u user.SessionUser) string {
	return "/dashboard/" + string(user.DashboardFor(u))
}
