// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devis_gateway"

// Metrics holds the collectors registered on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	proxyRequests   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	gateDecisions   *prometheus.CounterVec
	upstreamUp      prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		proxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Proxied requests by route and relayed status code.",
		}, []string{"route", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound calls to the backend API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Session gate outcomes on page requests.",
		}, []string{"outcome"}),
		upstreamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_up",
			Help:      "1 when the last backend probe succeeded, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.proxyRequests,
		m.upstreamLatency,
		m.gateDecisions,
		m.upstreamUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveProxy records one request that went to the backend
func (m *Metrics) ObserveProxy(route string, status int, elapsed time.Duration) {
	m.CountProxy(route, status)
	m.upstreamLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// CountProxy records a request answered locally, without an upstream call
func (m *Metrics) CountProxy(route string, status int) {
	m.proxyRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveGate records one gate decision
func (m *Metrics) ObserveGate(outcome string) {
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

// SetUpstreamUp records the latest probe result
func (m *Metrics) SetUpstreamUp(up bool) {
	if up {
		m.upstreamUp.Set(1)
		return
	}
	m.upstreamUp.Set(0)
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
