package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the document store, and the two outbound collaborators.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec
	emailTotal      *prometheus.CounterVec
	recsTotal       *prometheus.CounterVec
}

// NewMetricsService registers the core collectors.
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

	storeOpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_op_duration_seconds",
		Help:    "Duration of document store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})

	emailTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_emails_total",
		Help: "Outbound email attempts by outcome",
	}, []string{"outcome"})

	recsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_fetches_total",
		Help: "Recommendation service fetches by outcome",
	}, []string{"outcome"})

	registry.MustRegister(requestDuration, requestTotal, storeOpDuration, emailTotal, recsTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeOpDuration: storeOpDuration,
		emailTotal:      emailTotal,
		recsTotal:       recsTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// ObserveStoreOp records a document store operation duration.
func (m *MetricsService) ObserveStoreOp(collection, op string, duration time.Duration) {
	m.storeOpDuration.WithLabelValues(collection, op).Observe(duration.Seconds())
}

// ObserveEmail records the outcome of an outbound email attempt.
func (m *MetricsService) ObserveEmail(ok bool) {
	m.emailTotal.WithLabelValues(outcomeLabel(ok)).Inc()
}

// ObserveRecommendationFetch records the outcome of a recommendation lookup.
func (m *MetricsService) ObserveRecommendationFetch(ok bool) {
	m.recsTotal.WithLabelValues(outcomeLabel(ok)).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
