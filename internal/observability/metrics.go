// Package observability exposes Prometheus metrics for the settings service.
//
// Every method is safe on a nil *Metrics so callers can treat metrics as
// optional.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assistloop"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	// SettingsReads counts record loads. Labels: path (form|render)
	SettingsReads *prometheus.CounterVec

	// SettingsSaves counts save attempts. Labels: status (ok|error|rejected)
	SettingsSaves *prometheus.CounterVec

	// StoreErrors counts failed parameter store calls. Labels: op (read|write)
	StoreErrors *prometheus.CounterVec

	// HTTPRequests counts gateway HTTP requests. Labels: method, route, status_code
	HTTPRequests *prometheus.CounterVec

	// HTTPRequestDuration measures gateway HTTP latency. Labels: method, route
	HTTPRequestDuration *prometheus.HistogramVec

	// AdminClients is the number of connected admin websocket clients.
	AdminClients prometheus.Gauge
}

// NewMetrics builds and registers every collector, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		SettingsReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_reads_total",
			Help:      "Widget settings loads by read path.",
		}, []string{"path"}),
		SettingsSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_saves_total",
			Help:      "Widget settings saves by outcome.",
		}, []string{"status"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Configuration parameter store failures by operation.",
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Gateway HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Gateway HTTP request latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),
		AdminClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admin_clients",
			Help:      "Connected admin websocket clients.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SettingsReads,
		m.SettingsSaves,
		m.StoreErrors,
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.AdminClients,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SettingsRead counts one bridge read; path is "form" or "render".
func (m *Metrics) SettingsRead(path string) {
	if m == nil {
		return
	}
	m.SettingsReads.WithLabelValues(path).Inc()
}

// SettingsSaved counts one save attempt by outcome status.
func (m *Metrics) SettingsSaved(status string) {
	if m == nil {
		return
	}
	m.SettingsSaves.WithLabelValues(status).Inc()
}

// StoreError counts a failed parameter store operation op.
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(op).Inc()
}

// HTTPRequest records one finished request. route should be the mux
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SetAdminClients sets the connected admin socket gauge.
func (m *Metrics) SetAdminClients(n int) {
	if m == nil {
		return
	}
	m.AdminClients.Set(float64(n))
}
