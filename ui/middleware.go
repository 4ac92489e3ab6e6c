package ui

import (
	"net/http"
	"time"

	"exampulse/domain/core"
	"exampulse/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "exampulse_session"
	sessionKey    = "session"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/healthz"}}))
	s.router.Use(s.metricsMiddleware())
}

// metricsMiddleware records request counts and latency by route template
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// sessionMiddleware resolves the caller's session from the X-Session-ID
// header or cookie, creating a new one when absent or expired.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := s.dashboards.Sessions()

		raw := c.GetHeader(sessionHeader)
		if raw == "" {
			raw, _ = c.Cookie(sessionCookie)
		}

		var sess *session.Session
		if raw != "" {
			if id, err := core.ParseSessionID(raw); err == nil {
				sess, _ = sessions.Get(id)
			}
		}
		if sess == nil {
			sess = sessions.Create()
			s.logger.Debug("created session %s", sess.ID)
		}

		c.Header(sessionHeader, sess.ID.String())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID.String(), int(session.DefaultTTL.Seconds()), "/", "", false, true)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
