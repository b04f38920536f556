package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReview("cloze", 3, 5*time.Millisecond)
	m.ObserveReview("cloze", 3, 5*time.Millisecond)
	m.ObserveReview("mcq", 0, time.Millisecond)
	m.ObserveSelection("new", false)
	m.ObserveNoCandidates()
	m.ObserveRecomputeFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reviews.WithLabelValues("cloze", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("mcq", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selections.WithLabelValues("new", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.noCandidates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputeFailures))
}

func TestHandlerServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveHTTP(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scry_http_request_duration_seconds")
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
