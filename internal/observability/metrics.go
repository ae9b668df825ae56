package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/spec-kit/demand-service/internal/domain"
)

const namespace = "demands"

// Metrics holds the service's prometheus collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
	requestsCreated prometheus.Counter
	statusChanges   *prometheus.CounterVec
	granteeAssigned prometheus.Counter
	authFailures    *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP error responses, by route, method and error code.",
		}, []string{"route", "method", "code"}),
		requestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Demand requests created.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_status_changes_total",
			Help:      "Demand request status changes, by target status.",
		}, []string{"status"}),
		granteeAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_assignments_total",
			Help:      "Grantee assignments performed.",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected authentication attempts, by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.requestsCreated,
		m.statusChanges,
		m.granteeAssigned,
		m.authFailures,
	)
	return m
}

// Registry exposes the gatherer for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RequestCreated counts a new demand request.
func (m *Metrics) RequestCreated() {
	if m == nil {
		return
	}
	m.requestsCreated.Inc()
}

// StatusChanged counts a status transition.
func (m *Metrics) StatusChanged(status domain.RequestStatus) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(string(status)).Inc()
}

// GranteeAssigned counts a grantee assignment.
func (m *Metrics) GranteeAssigned() {
	if m == nil {
		return
	}
	m.granteeAssigned.Inc()
}

// AuthFailed counts a rejected authentication attempt.
func (m *Metrics) AuthFailed(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}
