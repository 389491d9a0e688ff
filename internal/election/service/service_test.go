package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"election/internal/election/models"
	"election/internal/election/store"
	"election/internal/election/store/memory"
	"election/internal/election/store/storetest"
	"election/internal/pii"
	"election/internal/platform/metrics"
	audit "election/pkg/platform/audit"
	auditmemory "election/pkg/platform/audit/store/memory"
	"election/pkg/platform/audit/publisher"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	protector *pii.Protector
	audit     *auditmemory.InMemoryStore
	metrics   *metrics.Metrics
	spans     *tracetest.SpanRecorder
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.protector = storetest.NewProtector(s.T())
	st, err := memory.New(s.protector)
	s.Require().NoError(err)

	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.spans = tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))

	s.service = New(st,
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
		WithTracer(tp.Tracer("test")),
		WithVoterRefs(s.protector),
	)
}

var (
	alice = models.Voter{FirstName: "Sara", LastName: "Jenkins", NationalID: "123-45-6789"}
	bob   = models.Voter{FirstName: "Tom", LastName: "Reyes", NationalID: "987-65-4321"}
)

func ballot(number, candidate string, comment *string) models.Ballot {
	return models.Ballot{BallotNumber: number, ChosenCandidateID: &candidate, VoterComments: comment}
}

func (s *ServiceSuite) register(v models.Voter) {
	added, err := s.service.RegisterVoter(s.ctx, v)
	s.Require().NoError(err)
	s.Require().True(added)
}

func (s *ServiceSuite) issue(v models.Voter) string {
	number, ok, err := s.service.IssueBallot(s.ctx, v.NationalID)
	s.Require().NoError(err)
	s.Require().True(ok)
	return number
}

func (s *ServiceSuite) count(v models.Voter, b models.Ballot) models.BallotStatus {
	status, err := s.service.CountBallot(s.ctx, b, v.NationalID)
	s.Require().NoError(err)
	return status
}

func (s *ServiceSuite) TestRegisterVoter() {
	s.register(alice)

	s.Run("duplicate registration is refused", func() {
		added, err := s.service.RegisterVoter(s.ctx, alice)
		s.Require().NoError(err)
		s.False(added)
	})

	s.Run("missing fields are invalid input", func() {
		_, err := s.service.RegisterVoter(s.ctx, models.Voter{FirstName: "A", LastName: "B", NationalID: " - "})
		s.Require().Error(err)
		_, err = s.service.RegisterVoter(s.ctx, models.Voter{FirstName: " ", LastName: "B", NationalID: "1"})
		s.Require().Error(err)
	})

	status, err := s.service.VoterStatus(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterRegisteredNotVoted, status)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.VotersRegistered))
}

func (s *ServiceSuite) TestIssueBallot() {
	s.Run("unregistered voter gets nothing", func() {
		number, ok, err := s.service.IssueBallot(s.ctx, alice.NationalID)
		s.Require().NoError(err)
		s.False(ok)
		s.Empty(number)
	})

	s.register(alice)
	seen := map[string]bool{}
	for range 5 {
		number := s.issue(alice)
		s.False(seen[number], "ballot number reused")
		seen[number] = true

		ok, err := s.service.VerifyBallot(s.ctx, alice.NationalID, number)
		s.Require().NoError(err)
		s.True(ok)
	}
	s.Equal(5.0, testutil.ToFloat64(s.metrics.BallotsIssued))
}

func (s *ServiceSuite) TestCountingInvalidatesOtherBallots() {
	s.register(alice)
	b1 := s.issue(alice)
	b2 := s.issue(alice)

	s.Equal(models.BallotCounted, s.count(alice, ballot(b1, "1", nil)))

	ok, err := s.service.VerifyBallot(s.ctx, alice.NationalID, b2)
	s.Require().NoError(err)
	s.False(ok)

	s.Equal(models.BallotFraudCommitted, s.count(alice, ballot(b2, "1", nil)))
}

func (s *ServiceSuite) TestFraudIsSticky() {
	s.register(alice)
	b1 := s.issue(alice)
	s.Equal(models.BallotCounted, s.count(alice, ballot(b1, "1", nil)))

	s.Equal(models.BallotFraudCommitted, s.count(alice, ballot(b1, "2", nil)))
	s.Equal(models.BallotFraudCommitted, s.count(alice, ballot(b1, "2", nil)))

	status, err := s.service.VoterStatus(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterFraudCommitted, status)

	names, err := s.service.GetAllFraudulentVoters(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Sara Jenkins"}, names)

	s.Equal(2.0, testutil.ToFloat64(s.metrics.BallotOutcomes.WithLabelValues("fraud_committed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BallotOutcomes.WithLabelValues("ballot_counted")))
}

func (s *ServiceSuite) TestRejections() {
	s.register(alice)
	s.register(bob)
	bobBallot := s.issue(bob)

	s.Equal(models.BallotVoterNotRegistered,
		s.count(models.Voter{NationalID: "000-00-0000"}, ballot(bobBallot, "1", nil)))
	s.Equal(models.BallotInvalid, s.count(alice, ballot("no-such-ballot", "1", nil)))
	s.Equal(models.BallotVoterMismatch, s.count(alice, ballot(bobBallot, "1", nil)))

	status, err := s.service.VoterStatus(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterRegisteredNotVoted, status, "rejections leave the voter untouched")
}

func (s *ServiceSuite) TestInvalidateBallot() {
	s.register(alice)
	b1 := s.issue(alice)
	b2 := s.issue(alice)

	ok, err := s.service.InvalidateBallot(s.ctx, b1)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(models.BallotInvalid, s.count(alice, ballot(b1, "1", nil)))

	s.Equal(models.BallotCounted, s.count(alice, ballot(b2, "1", nil)))
	ok, err = s.service.InvalidateBallot(s.ctx, b2)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.service.VerifyBallot(s.ctx, alice.NationalID, b2)
	s.Require().NoError(err)
	s.True(ok, "a cast ballot stays valid")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BallotInvalidated))
}

func (s *ServiceSuite) TestReissueAfterVotingIsRejectedAtCount() {
	s.register(alice)
	s.Equal(models.BallotCounted, s.count(alice, ballot(s.issue(alice), "1", nil)))

	late := s.issue(alice)
	s.Equal(models.BallotFraudCommitted, s.count(alice, ballot(late, "1", nil)))
}

func (s *ServiceSuite) TestComputeElectionWinner() {
	winner, err := s.service.ComputeElectionWinner(s.ctx)
	s.Require().NoError(err)
	s.Nil(winner)

	a, err := s.service.AddCandidate(s.ctx, "Ada")
	s.Require().NoError(err)
	g, err := s.service.AddCandidate(s.ctx, "Grace")
	s.Require().NoError(err)
	_, err = s.service.AddCandidate(s.ctx, "  ")
	s.Require().Error(err)

	// 3 votes each.
	for i := range 6 {
		v := models.Voter{FirstName: "V", LastName: fmt.Sprint(i), NationalID: fmt.Sprintf("444-00-%04d", i)}
		s.register(v)
		choice := a.ID
		if i%2 == 0 {
			choice = g.ID
		}
		s.Equal(models.BallotCounted, s.count(v, ballot(s.issue(v), choice, nil)))
	}

	for range 3 {
		winner, err = s.service.ComputeElectionWinner(s.ctx)
		s.Require().NoError(err)
		s.Require().NotNil(winner)
		s.Equal("Ada", winner.Name)
	}

	all, err := s.service.Candidates(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	got, err := s.service.Candidate(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(&g, got)
}

func (s *ServiceSuite) TestCommentsAreRedacted() {
	s.register(alice)
	comment := "Sara Jenkins, jsmith@example.com, (555) 123-4567, 123-45-6789, thanks"
	s.Equal(models.BallotCounted, s.count(alice, ballot(s.issue(alice), "1", &comment)))

	comments, err := s.service.GetAllBallotComments(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{
		"[REDACTED NAME] [REDACTED NAME], [REDACTED EMAIL], [REDACTED PHONE NUMBER], [REDACTED NATIONAL ID], thanks",
	}, comments)
}

func (s *ServiceSuite) TestAuditEventsCarryNoPII() {
	s.register(alice)
	b := s.issue(alice)
	s.count(alice, ballot(b, "1", nil))
	s.count(alice, ballot(b, "1", nil))
	s.Require().NoError(s.service.DeleteVoter(s.ctx, alice.NationalID))

	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)

	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
		s.Equal(s.protector.ObfuscateNationalID(alice.NationalID), e.VoterRef)
		s.NotEmpty(e.TraceID)
		encoded := fmt.Sprintf("%+v", e)
		for _, secret := range []string{alice.NationalID, "123456789", alice.FirstName, alice.LastName} {
			s.False(strings.Contains(encoded, secret), "audit event leaks %q", secret)
		}
	}
	s.Equal([]string{
		string(audit.EventVoterRegistered),
		string(audit.EventBallotIssued),
		string(audit.EventBallotCounted),
		string(audit.EventFraudDetected),
		string(audit.EventVoterDeleted),
	}, actions)
}

func (s *ServiceSuite) TestSpansPerOperation() {
	s.register(alice)
	_, _, err := s.service.IssueBallot(s.ctx, alice.NationalID)
	s.Require().NoError(err)

	var names []string
	for _, span := range s.spans.Ended() {
		names = append(names, span.Name())
	}
	s.Equal([]string{"election.register_voter", "election.issue_ballot"}, names)
}

// TestConcurrentCountingForOneVoter fires one counting attempt per ballot at
// the same time; exactly one may be counted.
func (s *ServiceSuite) TestConcurrentCountingForOneVoter() {
	s.register(alice)
	const attempts = 10
	numbers := make([]string, attempts)
	for i := range numbers {
		numbers[i] = s.issue(alice)
	}

	var counted atomic.Int32
	var g errgroup.Group
	for _, number := range numbers {
		g.Go(func() error {
			status, err := s.service.CountBallot(s.ctx, ballot(number, "1", nil), alice.NationalID)
			if status == models.BallotCounted {
				counted.Add(1)
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), counted.Load())

	status, err := s.service.VoterStatus(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.NotEqual(models.VoterRegisteredNotVoted, status)
}

// invalidatingStore invalidates the looked-up ballot from another goroutine
// right after the first ownership check, the window between rule 5 and the
// vote being written.
type invalidatingStore struct {
	store.Store
	once sync.Once
}

func (st *invalidatingStore) GetBallotForVoter(ctx context.Context, number, nationalID string) (*models.Ballot, error) {
	b, err := st.Store.GetBallotForVoter(ctx, number, nationalID)
	st.once.Do(func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = st.Store.InvalidateBallot(context.Background(), number)
		}()
		<-done
	})
	return b, err
}

func (s *ServiceSuite) TestInvalidationDuringCountingWins() {
	st, err := memory.New(s.protector)
	s.Require().NoError(err)
	svc := New(&invalidatingStore{Store: st})

	added, err := svc.RegisterVoter(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().True(added)
	first, ok, err := svc.IssueBallot(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.Require().True(ok)

	result, err := svc.CountBallot(s.ctx, ballot(first, "1", nil), alice.NationalID)
	s.Require().NoError(err)
	s.Equal(models.BallotInvalid, result)

	status, err := svc.VoterStatus(s.ctx, alice.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterRegisteredNotVoted, status)
	winner, err := svc.ComputeElectionWinner(s.ctx)
	s.Require().NoError(err)
	s.Nil(winner)

	s.Run("the voter can still vote with a fresh ballot", func() {
		second, ok, err := svc.IssueBallot(s.ctx, alice.NationalID)
		s.Require().NoError(err)
		s.Require().True(ok)
		result, err := svc.CountBallot(s.ctx, ballot(second, "1", nil), alice.NationalID)
		s.Require().NoError(err)
		s.Equal(models.BallotCounted, result)
	})
}
