package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courier"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	packagesCreated *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	reschedules     prometheus.Counter
	codeCollisions  prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Errors rendered to clients by error code.",
		}, []string{"route", "method", "code"}),
		packagesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packages_created_total",
			Help:      "Packages registered by shipment type.",
		}, []string{"shipment_type"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "package_status_changes_total",
			Help:      "Status history entries appended by status.",
		}, []string{"status"}),
		reschedules: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "package_reschedules_total",
			Help:      "Delivery windows recorded.",
		}),
		codeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_code_collisions_total",
			Help:      "Candidate tracking codes rejected as duplicates.",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordPackageCreated counts a registered package.
func (m *Metrics) RecordPackageCreated(shipmentType string) {
	if m == nil {
		return
	}
	m.packagesCreated.WithLabelValues(shipmentType).Inc()
}

// RecordStatusChange counts an appended history entry.
func (m *Metrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordReschedule counts a recorded delivery window.
func (m *Metrics) RecordReschedule() {
	if m == nil {
		return
	}
	m.reschedules.Inc()
}

// RecordCodeCollision counts a rejected tracking-code candidate.
func (m *Metrics) RecordCodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}
