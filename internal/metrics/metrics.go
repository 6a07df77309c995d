// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the server updates.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	BillsCreated     prometheus.Counter
	ReceiptsRejected *prometheus.CounterVec
	RPCErrors        *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billed",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		BillsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "bills_created_total",
			Help:      "Bills persisted through the API.",
		}),
		ReceiptsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "receipts_rejected_total",
			Help:      "Receipt uploads refused during validation.",
		}, []string{"reason"}),
		RPCErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billed",
			Name:      "rpc_errors_total",
			Help:      "RPC calls that returned an error, by procedure and code.",
		}, []string{"procedure", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.BillsCreated,
		m.ReceiptsRejected,
		m.RPCErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument wraps next with request counting and latency observation.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.HTTPDuration,
		promhttp.InstrumentHandlerCounter(m.HTTPRequests, next),
	)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
