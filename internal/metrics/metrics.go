package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes recorded by RecordAttempt.
const (
	OutcomeStarted     = "started"
	OutcomeUnavailable = "unavailable"
	OutcomeStartFailed = "start_failed"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Backend selection
	BackendAttempts  *prometheus.CounterVec
	BackendFallbacks prometheus.Counter
	BackendActive    *prometheus.GaugeVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    prometheus.Counter

	// Miner probe
	ProbeFailures prometheus.Counter
	MinerCPU      prometheus.Gauge
	MinerRSS      prometheus.Gauge
}

// New creates collectors on a private registry, so several instances can live
// in one process (tests do this).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BackendAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minerui_backend_attempts_total",
				Help: "UI backend start attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		BackendFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minerui_backend_fallbacks_total",
				Help: "Times the preferred UI backend failed and the desktop console was used instead",
			},
		),
		BackendActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "minerui_backend_active",
				Help: "1 for the UI backend that is currently running",
			},
			[]string{"kind"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minerui_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minerui_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "minerui_ws_connections",
				Help: "Open console websocket connections",
			},
		),
		WSMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minerui_ws_messages_total",
				Help: "Messages pushed to console websocket clients",
			},
		),

		ProbeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minerui_probe_failures_total",
				Help: "Failed miner process samples",
			},
		),
		MinerCPU: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "minerui_miner_cpu_percent",
				Help: "CPU percent of the monitored miner process",
			},
		),
		MinerRSS: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "minerui_miner_memory_rss_bytes",
				Help: "Resident memory of the monitored miner process",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordAttempt records one backend start attempt.
func (m *Metrics) RecordAttempt(kind, outcome string) {
	if m == nil {
		return
	}
	m.BackendAttempts.WithLabelValues(kind, outcome).Inc()
}

// RecordFallback records a switch to the desktop console.
func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.BackendFallbacks.Inc()
}

// SetActive marks kind as the running backend. An empty kind clears it.
func (m *Metrics) SetActive(kind string) {
	if m == nil {
		return
	}
	m.BackendActive.Reset()
	if kind != "" {
		m.BackendActive.WithLabelValues(kind).Set(1)
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncWSConnections increments WebSocket connections.
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections.
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// IncWSMessages counts one pushed websocket message.
func (m *Metrics) IncWSMessages() {
	if m == nil {
		return
	}
	m.WSMessages.Inc()
}

// RecordProbe records a miner sample. err != nil counts a failure and leaves
// the gauges at their last value.
func (m *Metrics) RecordProbe(cpuPercent float64, rss uint64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ProbeFailures.Inc()
		return
	}
	m.MinerCPU.Set(cpuPercent)
	m.MinerRSS.Set(float64(rss))
}
