package ui

import (
	"net/http"
	"time"

	"exampulse/app"
	"exampulse/internal"
	"exampulse/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Server is the JSON API over the dashboard service
type Server struct {
	router     *gin.Engine
	dashboards *app.DashboardService
	metrics    *metrics.Metrics
	logger     *internal.Logger
	precision  int
}

// Deps are the collaborators a Server needs
type Deps struct {
	Dashboards *app.DashboardService
	Metrics    *metrics.Metrics
	Logger     *internal.Logger
	Precision  int
}

// NewServer creates the API server and registers its routes
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:     gin.New(),
		dashboards: deps.Dashboards,
		metrics:    deps.Metrics,
		logger:     logger.With("API"),
		precision:  deps.Precision,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/report", s.handleReport)

	api := s.router.Group("/api")
	api.Use(s.sessionMiddleware())
	{
		api.GET("/students", s.handleStudents)
		api.GET("/dashboard", s.handleDashboard)
		api.GET("/summaries", s.handleSummaries)
		api.GET("/correlations", s.handleCorrelations)
		api.GET("/kpis", s.handleKPIs)
		api.GET("/gender", s.handleGender)
		api.GET("/demographics", s.handleDemographics)
		api.GET("/session", s.handleSession)
		api.POST("/reload", s.handleReload)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in an http.Server bound to addr
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Start runs the server until it fails
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.HTTPServer(addr).ListenAndServe()
}
