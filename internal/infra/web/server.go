package web

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services are the app-layer entry points the handlers call.
type Services struct {
	Auth          *app.AuthService
	Reports       *app.ReportService
	Resolutions   *app.ResolutionService
	Meetings      *app.MeetingService
	Invitations   *app.InvitationService
	Countries     *app.CountryService
	Notifications *app.NotificationService
	Profile       *app.ProfileService
	Dashboards    *app.DashboardService
	Subscriptions *app.SubscriptionService
}

type Options struct {
	Sessions       *session.Manager
	Tokens         *session.TokenIssuer
	AllowedOrigins []string
	Production     bool
	Logger         *logrus.Entry
}

type Server struct {
	engine   *gin.Engine
	svc      Services
	sessions *session.Manager
	tokens   *session.TokenIssuer
	log      *logrus.Entry
	now      func() time.Time
}

func NewServer(svc Services, opts Options) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	s := &Server{
		engine:   gin.New(),
		svc:      svc,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		log:      opts.Logger,
		now:      time.Now,
	}
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(requestID(), traceContext(), accessLog(s.log), gin.CustomRecovery(s.recovered))
	s.engine.StaticFS("/static", http.FS(static))
	s.engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	s.routes()
	s.apiRoutes(corsConfig(opts.AllowedOrigins, opts.Production))
	return s, nil
}

// Handler exposes the router to an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine.Group("/", s.loadSession())

	r.GET("/", s.handleRoot)
	r.GET("/login", s.handleLoginForm)
	r.POST("/login", s.handleLogin)
	r.POST("/logout", s.handleLogout)

	authed := r.Group("/", s.requireAuth())
	authed.GET("/dashboard", s.handleDashboard)
	authed.GET("/dashboard/chair", requireDashboard(user.DashboardChair), s.handleChairDashboard)
	authed.GET("/dashboard/hod", requireDashboard(user.DashboardHOD), s.handleHODDashboard)
	authed.GET("/dashboard/commissioner", requireDashboard(user.DashboardCommissioner), s.handleCommissionerDashboard)
	authed.GET("/dashboard/member", requireDashboard(user.DashboardMember), s.handleMemberDashboard)
	authed.GET("/dashboard/secretary", requireDashboard(user.DashboardSecretary), s.handleSecretaryDashboard)

	chair := requireDashboard(user.DashboardChair)
	reviewers := requireDashboard(user.DashboardHOD, user.DashboardCommissioner)
	authed.GET("/reports", s.handleReports)
	authed.GET("/reports/export", s.handleReportExport)
	authed.GET("/reports/new", chair, s.handleReportForm)
	authed.POST("/reports", chair, s.handleReportSubmit)
	authed.GET("/reports/:id", s.handleReportDetail)
	authed.GET("/reports/:id/edit", chair, s.handleResubmitForm)
	authed.POST("/reports/:id/resubmit", chair, s.handleResubmit)
	authed.POST("/reports/:id/review", reviewers, s.handleReview)

	secretary := requireDashboard(user.DashboardSecretary)
	authed.GET("/resolutions", s.handleResolutions)
	authed.GET("/resolutions/:id", s.handleResolutionDetail)
	authed.GET("/resolutions/:id/edit", secretary, s.handleResolutionEditForm)
	authed.POST("/resolutions/:id", secretary, s.handleResolutionUpdate)
	authed.POST("/resolutions/:id/delete", secretary, s.handleResolutionDelete)
	authed.POST("/resolutions/:id/status", secretary, s.handleResolutionStatus)
	authed.GET("/resolutions/:id/assign", secretary, s.handleAssignForm)
	authed.POST("/resolutions/:id/assign", secretary, s.handleAssign)

	authed.GET("/meetings", s.handleMeetings)
	authed.GET("/meetings/archive", s.handleMeetingArchive)
	authed.GET("/meetings/new", secretary, s.handleMeetingForm)
	authed.POST("/meetings", secretary, s.handleMeetingCreate)
	authed.GET("/meetings/:id", s.handleMeetingDetail)
	authed.GET("/meetings/:id/edit", secretary, s.handleMeetingEditForm)
	authed.POST("/meetings/:id", secretary, s.handleMeetingUpdate)
	authed.POST("/meetings/:id/status", secretary, s.handleMeetingStatus)
	authed.POST("/meetings/:id/delete", secretary, s.handleMeetingDelete)
	authed.POST("/meetings/:id/resolutions", secretary, s.handleResolutionCreate)
	authed.POST("/meetings/:id/invitations", secretary, s.handleInvite)

	authed.GET("/invitations", s.handleInvitations)
	authed.POST("/invitations/:id/respond", s.handleInvitationRespond)
	authed.POST("/invitations/:id/delete", secretary, s.handleInvitationRevoke)

	authed.GET("/countries", s.handleCountries)
	authed.GET("/countries/new", secretary, s.handleCountryForm)
	authed.POST("/countries", secretary, s.handleCountryCreate)
	authed.GET("/countries/:id", s.handleCountryDetail)
	authed.GET("/countries/:id/edit", secretary, s.handleCountryEditForm)
	authed.POST("/countries/:id", secretary, s.handleCountryUpdate)
	authed.POST("/countries/:id/delete", secretary, s.handleCountryDelete)
	authed.POST("/countries/:id/authorities", secretary, s.handleAuthorityCreate)
	authed.POST("/authorities/:id", secretary, s.handleAuthorityUpdate)
	authed.POST("/authorities/:id/delete", secretary, s.handleAuthorityDelete)

	authed.GET("/notifications", s.handleNotifications)
	authed.POST("/notifications/read-all", s.handleNotificationsReadAll)
	authed.POST("/notifications/:id/read", s.handleNotificationRead)
	authed.POST("/notifications/:id/delete", s.handleNotificationDelete)

	authed.GET("/profile", s.handleProfile)
	authed.POST("/profile", s.handleProfileUpdate)
	authed.POST("/profile/password", s.handlePasswordChange)
	authed.POST("/profile/picture", s.handlePictureUpload)
	authed.POST("/profile/picture/delete", s.handlePictureDelete)
	authed.POST("/profile/telegram", s.handleTelegramLinkCode)
}

func (s *Server) recovered(c *gin.Context, err any) {
	s.log.WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(requestIDKey),
	}).Errorf("panic while serving request: %v", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
