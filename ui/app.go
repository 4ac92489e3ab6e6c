package ui

import (
	"net/http"
	"time"

	"exampulse/internal/metrics"
	"exampulse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// OpsConfig holds the ops router settings
type OpsConfig struct {
	Port    string
	Metrics *metrics.Metrics
	Store   *store.Store
}

// NewOpsRouter serves pprof under /debug, Prometheus metrics under /metrics
// and a readiness probe, on a port separate from the API.
func NewOpsRouter(cfg OpsConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/debug", middleware.Profiler())
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Store == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		switch cfg.Store.Status().State {
		case store.StateReady:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(string(cfg.Store.Status().State) + "\n"))
		}
	})
	return r
}

// OpsServer wraps the ops router in an http.Server
func OpsServer(cfg OpsConfig) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewOpsRouter(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
