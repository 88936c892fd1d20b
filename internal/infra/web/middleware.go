package web

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"eara_connect_portal/internal/domain/user"
	"eara_connect_portal/internal/infra/backend"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "session_user"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// traceContext continues the caller's trace, so backend calls carry its traceparent.
func traceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func accessLog(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(requestIDKey),
		}
		if u := currentUser(c); u != nil {
			fields["user_id"] = u.ID
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Warn("request")
		case c.Request.URL.Path == "/healthz":
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}

// corsConfig allows every origin outside production. In production only the configured
// origins may call the polling API, and none when nothing is configured.
func corsConfig(origins []string, production bool) cors.Config {
	cfg := cors.DefaultConfig()
	if production {
		cfg.AllowOrigins = origins
		if len(origins) == 0 {
			cfg.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AddAllowMethods("GET", "POST", "OPTIONS")
	cfg.AddAllowHeaders("Authorization", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader)
	cfg.AllowCredentials = !cfg.AllowAllOrigins
	return cfg
}

// loadSession resolves the logged-in user from the cookie and carries the backend session on
// the request context.
func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := s.sessions.CurrentUser(c.Request); ok {
			c.Set(userKey, u)
			ctx := backend.WithSession(c.Request.Context(), s.sessions.BackendSession(c.Request))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// bearerAuth accepts a token from POST /api/v1/token in place of the cookie.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			c.Next()
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		u := claims.SessionUser()
		c.Set(userKey, &u)
		c.Request = c.Request.WithContext(backend.WithSession(c.Request.Context(), claims.Backend))
		c.Next()
	}
}

func currentUser(c *gin.Context) *user.SessionUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.SessionUser)
	return u
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Next()
			return
		}
		if isAPI(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// requireDashboard admits users routed to one of the given dashboards.
func requireDashboard(allowed ...user.Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u != nil && slices.Contains(allowed, user.DashboardFor(*u)) {
			c.Next()
			return
		}
		if isAPI(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.HTML(http.StatusForbidden, "error", errorPage(u, http.StatusForbidden, "You do not have access to this page."))
		c.Abort()
	}
}
