package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the election counters.
type Metrics struct {
	VotersRegistered  prometheus.Counter
	BallotsIssued     prometheus.Counter
	BallotOutcomes    *prometheus.CounterVec
	BallotInvalidated prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New registers the election metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		VotersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "election_voters_registered_total",
			Help: "Total number of voters registered",
		}),
		BallotsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "election_ballots_issued_total",
			Help: "Total number of ballots issued",
		}),
		BallotOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "election_ballot_outcomes_total",
			Help: "Counting attempts by outcome",
		}, []string{"status"}),
		BallotInvalidated: factory.NewCounter(prometheus.CounterOpts{
			Name: "election_ballots_invalidated_total",
			Help: "Total number of ballots invalidated before being cast",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "election_operation_duration_seconds",
			Help:    "Latency of election service operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncVotersRegistered() {
	m.VotersRegistered.Inc()
}

func (m *Metrics) IncBallotsIssued() {
	m.BallotsIssued.Inc()
}

// IncBallotOutcome counts one counting attempt under its status label.
func (m *Metrics) IncBallotOutcome(status string) {
	m.BallotOutcomes.WithLabelValues(status).Inc()
}

func (m *Metrics) IncBallotInvalidated() {
	m.BallotInvalidated.Inc()
}

func (m *Metrics) ObserveOperation(operation string, seconds float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}
