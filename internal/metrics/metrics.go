// Package metrics exposes prometheus collectors for the client core.
//
// Every method is safe on a nil *Metrics, so components can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	unauthorized    prometheus.Counter
	idleTransitions *prometheus.CounterVec
	idleExtensions  prometheus.Counter
}

// New registers the client collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recharge_api_requests_total",
				Help: "Remote API calls by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_unauthorized_total",
			Help: "401 responses that cleared the stored credential.",
		}),
		idleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recharge_idle_transitions_total",
				Help: "Inactivity monitor state transitions by target state.",
			},
			[]string{"to"},
		),
		idleExtensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recharge_idle_extensions_total",
			Help: "Sessions explicitly extended from the warning state.",
		}),
	}

	m.registry.MustRegister(m.apiRequests, m.unauthorized, m.idleTransitions, m.idleExtensions)
	return m
}

func (m *Metrics) APIRequest(op, outcome string) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Unauthorized() {
	if m == nil {
		return
	}
	m.unauthorized.Inc()
}

func (m *Metrics) IdleTransition(to string) {
	if m == nil {
		return
	}
	m.idleTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IdleExtension() {
	if m == nil {
		return
	}
	m.idleExtensions.Inc()
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
