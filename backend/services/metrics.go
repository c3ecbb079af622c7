package services

import (
	"net/http"
	"strconv"
	"time"

	"factbook-dashboard/backend/analysis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process registry exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	anomalies   *prometheus.GaugeVec
	cacheEvents *prometheus.CounterVec
	monitorRuns *prometheus.CounterVec
}

// NewMetrics registers the dashboard collectors plus the Go runtime ones.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factbook_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factbook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		anomalies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "factbook_anomalies",
			Help: "Anomalies found by the latest monitor run, by severity.",
		}, []string{"severity"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factbook_dataset_cache_events_total",
			Help: "Dataset cache lookups and invalidations, by result.",
		}, []string{"result"}),
		monitorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factbook_monitor_runs_total",
			Help: "Alert monitor runs, by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.anomalies,
		m.cacheEvents,
		m.monitorRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetAnomalies publishes the per-severity counts of the latest detection.
func (m *Metrics) SetAnomalies(stats analysis.AnomalyStats) {
	if m == nil {
		return
	}
	for _, sev := range analysis.Severities {
		m.anomalies.WithLabelValues(string(sev)).Set(float64(stats.BySeverity[sev]))
	}
}

func (m *Metrics) CacheEvent(result string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) MonitorRun(trigger string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.monitorRuns.WithLabelValues(trigger, outcome).Inc()
}
