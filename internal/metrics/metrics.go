// Package metrics exposes Prometheus metrics for interview practice.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/mockinterview/internal/model"
)

const namespace = "mockinterview"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	evaluations     *prometheus.CounterVec
	similarity      prometheus.Histogram
	sessionsStarted *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	reports         prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers all collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		evaluations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Answers evaluated, by label.",
		}, []string{"label"}),
		similarity: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "similarity_score",
			Help:      "Similarity of evaluated answers to their reference answers.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.65, 0.8, 0.9, 1},
		}),
		sessionsStarted: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions started, by role.",
		}, []string{"role"}),
		sessionsActive: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Interview sessions currently held in memory.",
		}),
		reports: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Performance reports generated.",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveEvaluation records one graded answer.
func (m *Metrics) ObserveEvaluation(label model.Label, score float64) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(string(label)).Inc()
	m.similarity.Observe(score)
}

// SessionStarted records a new session for role.
func (m *Metrics) SessionStarted(role string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(role).Inc()
	m.sessionsActive.Inc()
}

// SessionEnded records a session dropped from memory.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// ReportGenerated records one generated report.
func (m *Metrics) ReportGenerated() {
	if m == nil {
		return
	}
	m.reports.Inc()
}

// Middleware records request count and latency, labelled with the matched
// chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
