package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the workflow engine.
type Metrics struct {
	TransitionsTotal *prometheus.CounterVec
	RejectionsTotal  *prometheus.CounterVec
	CallAttempts     *prometheus.CounterVec
}

// New registers the workflow collectors on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Committed order status transitions by from/to status.",
		}, []string{"from", "to"}),
		RejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Subsystem: "workflow",
			Name:      "rejections_total",
			Help:      "Rejected transition requests by error code.",
		}, []string{"code"}),
		CallAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Subsystem: "workflow",
			Name:      "call_attempts_total",
			Help:      "Logged customer call attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Default builds metrics on the global registry.
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
