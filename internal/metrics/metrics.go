package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on the ops router. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loadDuration   *prometheus.HistogramVec
	loadFailures   *prometheus.CounterVec
	recordsLoaded  prometheus.Gauge
	computations   *prometheus.CounterVec
	memo           *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exampulse_load_duration_seconds",
			Help:    "Duration of record loads by source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exampulse_load_failures_total",
			Help: "Total failed record loads by source",
		}, []string{"source"}),
		recordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exampulse_records_loaded",
			Help: "Number of records in the current snapshot",
		}),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exampulse_computations_total",
			Help: "Total engine computations by kind",
		}, []string{"kind"}),
		memo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exampulse_memo_lookups_total",
			Help: "Session memo lookups by result",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exampulse_http_requests_total",
			Help: "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exampulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loadDuration,
		m.loadFailures,
		m.recordsLoaded,
		m.computations,
		m.memo,
		m.requests,
		m.requestLatency,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad records one fetch from a record source
func (m *Metrics) ObserveLoad(source string, d time.Duration, records int, err error) {
	if m == nil {
		return
	}
	m.loadDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.loadFailures.WithLabelValues(source).Inc()
		return
	}
	m.recordsLoaded.Set(float64(records))
}

// Computed counts one engine computation (summaries, correlations, kpis, ...)
func (m *Metrics) Computed(kind string) {
	if m == nil {
		return
	}
	m.computations.WithLabelValues(kind).Inc()
}

// MemoLookup counts a session memo hit or miss
func (m *Metrics) MemoLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.memo.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
