package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncVotersRegistered()
	m.IncBallotsIssued()
	m.IncBallotsIssued()
	m.IncBallotOutcome("ballot_counted")
	m.IncBallotOutcome("fraud_committed")
	m.IncBallotOutcome("fraud_committed")
	m.IncBallotInvalidated()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VotersRegistered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BallotsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BallotOutcomes.WithLabelValues("ballot_counted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BallotOutcomes.WithLabelValues("fraud_committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BallotInvalidated))
}

func TestOperationDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("count_ballot", 0.002)
	m.ObserveOperation("issue_ballot", 0.02)

	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration, "election_operation_duration_seconds"))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
