package gov

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "levrgov"

	resultExecuted = "executed"
	resultDefeated = "defeated"
)

// Metrics holds the governance collectors. The keeper writes them
// unconditionally; whether they are exported depends on whether the
// caller registered them.
type Metrics struct {
	ProposalsSubmitted *prometheus.CounterVec
	ProposalsResolved  *prometheus.CounterVec
	VotesCast          prometheus.Counter
	ExecutionFailures  prometheus.Counter
	CurrentCycle       prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		ProposalsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gov",
			Name:      "proposals_submitted_total",
			Help:      "Proposals accepted into a cycle, by type.",
		}, []string{"type"}),
		ProposalsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gov",
			Name:      "proposals_resolved_total",
			Help:      "Proposals reaching a terminal state, by result.",
		}, []string{"result"}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gov",
			Name:      "votes_cast_total",
			Help:      "Vote receipts written.",
		}),
		ExecutionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gov",
			Name:      "execution_failures_total",
			Help:      "Executions rejected by a treasury shortfall.",
		}),
		CurrentCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "gov",
			Name:      "current_cycle",
			Help:      "Id of the cycle in progress.",
		}),
	}
}

// NopMetrics returns collectors that are never registered, for tests
// and library use.
func NopMetrics() *Metrics {
	return NewMetrics()
}

// Register adds every collector to the registry.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.ProposalsSubmitted, m.ProposalsResolved, m.VotesCast, m.ExecutionFailures, m.CurrentCycle,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
