package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuhub/docuhub-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the approval workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	submissions     prometheus.Counter
	reviews         *prometheus.CounterVec
	versions        prometheus.Counter
	reviewConflicts prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submissions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workflow_submissions_total",
		Help: "Total number of project submissions",
	})

	reviews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_reviews_total",
		Help: "Total number of review decisions by action",
	}, []string{"action"})

	versions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workflow_versions_total",
		Help: "Total number of new project versions",
	})

	reviewConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workflow_review_conflicts_total",
		Help: "Reviews that lost the pending-status compare-and-set",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submissions, reviews, versions, reviewConflicts, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		submissions:     submissions,
		reviews:         reviews,
		versions:        versions,
		reviewConflicts: reviewConflicts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveEvent counts workflow transitions as they are emitted.
func (m *MetricsService) ObserveEvent(event models.ProjectEvent) {
	if m == nil {
		return
	}
	switch event.Type {
	case models.EventProjectSubmitted:
		m.submissions.Inc()
	case models.EventProjectReviewed:
		m.reviews.WithLabelValues(string(event.ReviewAction)).Inc()
	case models.EventProjectVersioned:
		m.versions.Inc()
	}
}

// ObserveReviewConflict counts a lost review race.
func (m *MetricsService) ObserveReviewConflict() {
	if m == nil {
		return
	}
	m.reviewConflicts.Inc()
}
