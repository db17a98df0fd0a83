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

const namespace = "supportbox"

// Metrics owns the Prometheus registry and the service's collectors.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	errors         *prometheus.CounterVec

	gatewayCalls   *prometheus.CounterVec
	gatewayLatency prometheus.Histogram
	verdicts       *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	ticketsCreated *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewMetrics initializes a dedicated registry with process and Go collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses by domain error code.",
		}, []string{"path", "method", "code"}),
		gatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Completion gateway calls by outcome (success or failure reason).",
		}, []string{"outcome"}),
		gatewayLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Completion gateway call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_verdicts_total",
			Help:      "Escalation classifier verdicts.",
		}, []string{"verdict"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_resolutions_total",
			Help:      "Triage sessions reaching the resolved step, by resolution.",
		}, []string{"resolution"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Tickets registered through formal intake, by category.",
		}, []string{"category"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "triage_active_sessions",
			Help:      "Triage sessions currently held in memory.",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordGatewayCall tracks one completion call.
func (m *Metrics) RecordGatewayCall(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(outcome).Inc()
	m.gatewayLatency.Observe(duration.Seconds())
}

// RecordVerdict tracks a classifier verdict.
func (m *Metrics) RecordVerdict(verdict string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(verdict).Inc()
}

// RecordResolution tracks a session reaching the resolved step.
func (m *Metrics) RecordResolution(resolution string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(resolution).Inc()
}

// RecordTicketCreated tracks a registered ticket.
func (m *Metrics) RecordTicketCreated(category string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(category).Inc()
}

// SetActiveSessions publishes the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
