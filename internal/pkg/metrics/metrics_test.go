package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAnalysis("default", OutcomeSuccess, time.Second)
		m.AddRows(10, 5, 1)
		m.ArchiveFailed()
		m.ArchivePurged(3)
	})

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveAnalysis("default", OutcomeSuccess, 10*time.Millisecond)
	m.ObserveAnalysis("default", OutcomeSuccess, 10*time.Millisecond)
	m.ObserveAnalysis("branch", OutcomeIngestionError, time.Millisecond)
	m.AddRows(12, 7, 2)
	m.ArchiveFailed()
	m.ArchivePurged(4)
	m.ArchivePurged(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("default", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("branch", OutcomeIngestionError)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues("read")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues("entry")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues("invalid_timestamp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.archiveFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.archivePurged))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics("test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/reports/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `test_http_requests_total{route="/reports/{id}",status="404"} 3`))
}
