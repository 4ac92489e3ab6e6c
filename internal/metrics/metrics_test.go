package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad("fixture", 10*time.Millisecond, 24, nil)
	m.ObserveLoad("fixture", time.Millisecond, 0, errors.New("down"))

	assert.Equal(t, 24.0, testutil.ToFloat64(m.recordsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadFailures.WithLabelValues("fixture")))
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Computed("correlations")
	m.Computed("correlations")
	m.MemoLookup(true)
	m.MemoLookup(false)
	m.MemoLookup(false)
	m.ObserveRequest(http.MethodGet, "/api/kpis", http.StatusOK, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("correlations")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.memo.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.memo.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/kpis", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad("fixture", time.Second, 1, nil)
		m.Computed("kpis")
		m.MemoLookup(true)
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Computed("summaries")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `exampulse_computations_total{kind="summaries"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
