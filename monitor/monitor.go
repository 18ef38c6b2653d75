// Package monitor exposes the server's Prometheus counters and
// histograms, grounded on the teacher's monitor/prometheus packages
// but narrowed to the handful of series this server actually needs.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor wraps the counters and histograms a running server updates.
// Unlike the teacher's monitor package (which polls health checks on a
// timer), this one is purely a passive metrics sink the connection
// state machine pushes observations into as it works.
type Monitor struct {
	connectionsAccepted prometheus.Counter
	connectionsActive   prometheus.Gauge
	requestsTotal       *prometheus.CounterVec
	responseStatusTotal *prometheus.CounterVec
	backendLatency      *prometheus.HistogramVec
}

// New registers the server's metrics against reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global
// default registry.
func New(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherserver",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherserver",
			Name:      "connections_active",
			Help:      "Connections currently in the scheduler.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherserver",
			Name:      "requests_total",
			Help:      "Requests processed, by route.",
		}, []string{"route"}),
		responseStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherserver",
			Name:      "response_status_total",
			Help:      "Responses sent, by HTTP status code.",
		}, []string{"status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherserver",
			Name:      "backend_ticks",
			Help:      "Number of scheduler ticks a backend call spent in BackendWorking.",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.connectionsAccepted,
		m.connectionsActive,
		m.requestsTotal,
		m.responseStatusTotal,
		m.backendLatency,
	)
	return m
}

func (m *Monitor) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsAccepted.Inc()
	m.connectionsActive.Inc()
}

func (m *Monitor) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

func (m *Monitor) RequestServed(route string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route).Inc()
	m.responseStatusTotal.WithLabelValues(statusLabel(status)).Inc()
}

func (m *Monitor) BackendTicks(route string, ticks int) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(route).Observe(float64(ticks))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
