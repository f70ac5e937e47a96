// Package metrics provides Prometheus metrics for the chat relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's collectors and the registry they live in.
// Each relay owns its registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ChatRequestsTotal    *prometheus.CounterVec
	ChatRequestsInFlight prometheus.Gauge
	UpstreamDuration     *prometheus.HistogramVec
	HistoryTruncated     prometheus.Counter
}

// NewMetrics creates and registers all relay metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatrelay_chat_requests_total",
				Help: "Total number of chat requests by outcome",
			},
			[]string{"outcome"},
		),

		ChatRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatrelay_chat_requests_in_flight",
				Help: "Number of chat requests currently being processed",
			},
		),

		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatrelay_upstream_request_duration_seconds",
				Help:    "Duration of upstream generation calls in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),

		HistoryTruncated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatrelay_history_truncated_total",
				Help: "Number of chat requests whose history was truncated",
			},
		),
	}
}

// RecordChat records the final outcome of a chat request.
func (m *Metrics) RecordChat(outcome string) {
	m.ChatRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstream records one upstream generation call.
func (m *Metrics) RecordUpstream(outcome string, duration time.Duration) {
	m.UpstreamDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
