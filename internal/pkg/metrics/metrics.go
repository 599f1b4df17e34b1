package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for analysis runs.
const (
	OutcomeSuccess        = "success"
	OutcomeIngestionError = "ingestion_error"
	OutcomeInvalid        = "invalid"
	OutcomeError          = "error"
)

// Metrics owns its registry so several instances can coexist in tests.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	analysesTotal     *prometheus.CounterVec
	analysisDuration  *prometheus.HistogramVec
	rowsProcessed     *prometheus.CounterVec
	archiveFailures   prometheus.Counter
	archivePurged     prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total attendance analyses by site profile and outcome.",
		}, []string{"profile", "outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Histogram of attendance pipeline durations by site profile.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"profile"}),
		rowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Access log rows processed, by kind (read, entry, invalid_timestamp).",
		}, []string{"kind"}),
		archiveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Total report summaries that could not be archived.",
		}),
		archivePurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_purged_total",
			Help:      "Total archived report runs removed by the retention job.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.analysesTotal,
		m.analysisDuration,
		m.rowsProcessed,
		m.archiveFailures,
		m.archivePurged,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and durations labelled by the matched
// chi route pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAnalysis(profile, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(profile, outcome).Inc()
	m.analysisDuration.WithLabelValues(profile).Observe(duration.Seconds())
}

func (m *Metrics) AddRows(read, entries, invalidTimestamps int) {
	if m == nil {
		return
	}
	m.rowsProcessed.WithLabelValues("read").Add(float64(read))
	m.rowsProcessed.WithLabelValues("entry").Add(float64(entries))
	m.rowsProcessed.WithLabelValues("invalid_timestamp").Add(float64(invalidTimestamps))
}

func (m *Metrics) ArchiveFailed() {
	if m == nil {
		return
	}
	m.archiveFailures.Inc()
}

func (m *Metrics) ArchivePurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.archivePurged.Add(float64(n))
}
