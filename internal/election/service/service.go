// Package service applies the election rules on top of a store.Store.
//
// Every status-changing operation runs inside Store.RunInVoterTx so that two
// callers acting on the same voter never interleave. Business-rule outcomes
// come back as values (models.BallotStatus, bool, nil); only infrastructure
// and integrity failures are returned as errors, coded with dErrors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"election/internal/election/models"
	"election/internal/election/store"
	"election/internal/pii"
	"election/internal/platform/metrics"
	dErrors "election/pkg/domain-errors"
	audit "election/pkg/platform/audit"
	platformstrings "election/pkg/platform/strings"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// VoterRefs maps a raw national ID to the pseudonymous reference used in
// audit events.
type VoterRefs interface {
	ObfuscateNationalID(raw string) string
}

// Service orchestrates registration, ballot issuance and counting.
type Service struct {
	store          store.Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	voterRefs      VoterRefs
	newBallot      func() string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithVoterRefs enables voter references on audit events. refs must agree
// with the store's protector: inside a voter transaction the key the store
// already derived is used instead of hashing again.
func WithVoterRefs(refs VoterRefs) Option {
	return func(s *Service) {
		s.voterRefs = refs
	}
}

// WithBallotNumbers replaces the ballot number generator.
func WithBallotNumbers(next func() string) Option {
	return func(s *Service) {
		s.newBallot = next
	}
}

// New constructs a Service.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, newBallot: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("election/service")
	}
	return s
}

// RegisterVoter registers voter. It returns false when the identity is
// already registered, has voted or has been flagged for fraud.
func (s *Service) RegisterVoter(ctx context.Context, voter models.Voter) (added bool, err error) {
	ctx, done := s.start(ctx, "register_voter")
	defer func() { done(err) }()

	voter = voter.Normalize()
	if pii.NormalizeNationalID(voter.NationalID) == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "national id is required")
	}
	if voter.FirstName == "" || voter.LastName == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "first and last name are required")
	}

	var ref string
	err = s.store.RunInVoterTx(ctx, voter.NationalID, func(ctx context.Context) error {
		var err error
		added, err = s.store.AddVoter(ctx, voter)
		ref = s.voterRef(ctx, voter.NationalID)
		return err
	})
	if err != nil {
		return false, translate(err, "failed to register voter")
	}
	if added {
		s.logAudit(ctx, audit.EventVoterRegistered, audit.Event{VoterRef: ref})
		if s.metrics != nil {
			s.metrics.IncVotersRegistered()
		}
	}
	return added, nil
}

// VoterStatus reports where the voter is in the balloting state machine.
func (s *Service) VoterStatus(ctx context.Context, nationalID string) (status models.VoterStatus, err error) {
	ctx, done := s.start(ctx, "voter_status")
	defer func() { done(err) }()

	status, err = s.store.GetVoterStatus(ctx, nationalID)
	if err != nil {
		return models.VoterNotRegistered, translate(err, "failed to load voter status")
	}
	return status, nil
}

// DeleteVoter removes the voter and their status. Ballots stay as cast.
func (s *Service) DeleteVoter(ctx context.Context, nationalID string) (err error) {
	ctx, done := s.start(ctx, "delete_voter")
	defer func() { done(err) }()

	var ref string
	err = s.store.RunInVoterTx(ctx, nationalID, func(ctx context.Context) error {
		ref = s.voterRef(ctx, nationalID)
		return s.store.DeleteVoter(ctx, nationalID)
	})
	if err != nil {
		return translate(err, "failed to delete voter")
	}
	s.logAudit(ctx, audit.EventVoterDeleted, audit.Event{VoterRef: ref})
	return nil
}

func (s *Service) AddCandidate(ctx context.Context, name string) (c models.Candidate, err error) {
	ctx, done := s.start(ctx, "add_candidate")
	defer func() { done(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Candidate{}, dErrors.New(dErrors.CodeInvalidInput, "candidate name is required")
	}
	c, err = s.store.AddCandidate(ctx, name)
	if err != nil {
		return models.Candidate{}, translate(err, "failed to add candidate")
	}
	return c, nil
}

func (s *Service) Candidates(ctx context.Context) ([]models.Candidate, error) {
	all, err := s.store.GetAllCandidates(ctx)
	if err != nil {
		return nil, translate(err, "failed to list candidates")
	}
	return all, nil
}

// Candidate returns nil for an unknown id.
func (s *Service) Candidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load candidate")
	}
	return c, nil
}

// IssueBallot attaches a fresh ballot number to a registered voter. ok is
// false for voters who are not registered. Earlier ballots stay valid.
//
// Voters who already voted or were flagged for fraud still receive a number;
// any ballot they cast is rejected at counting time.
func (s *Service) IssueBallot(ctx context.Context, nationalID string) (ballotNumber string, ok bool, err error) {
	ctx, done := s.start(ctx, "issue_ballot")
	defer func() { done(err) }()

	var (
		status models.VoterStatus
		ref    string
	)
	err = s.store.RunInVoterTx(ctx, nationalID, func(ctx context.Context) error {
		ref = s.voterRef(ctx, nationalID)
		var err error
		status, err = s.store.GetVoterStatus(ctx, nationalID)
		if err != nil {
			return err
		}
		if status == models.VoterNotRegistered {
			return nil
		}
		ballotNumber = s.newBallot()
		ok = true
		return s.store.AddBallotToVoter(ctx, nationalID, ballotNumber)
	})
	if err != nil {
		return "", false, translate(err, "failed to issue ballot")
	}
	if !ok {
		return "", false, nil
	}

	if status == models.VoterBallotCounted || status == models.VoterFraudCommitted {
		s.logger.InfoContext(ctx, "ballot issued to voter who already voted",
			"ballot_number", ballotNumber, "voter_status", status.String())
	}
	s.logAudit(ctx, audit.EventBallotIssued, audit.Event{
		VoterRef:     ref,
		BallotNumber: ballotNumber,
	})
	if s.metrics != nil {
		s.metrics.IncBallotsIssued()
	}
	return ballotNumber, true, nil
}

// CountBallot applies the counting rules in order; the first that matches
// decides the outcome:
//
//  1. voter already flagged for fraud: FraudCommitted, nothing changes
//  2. voter not registered: VoterNotRegistered
//  3. voter already counted: flag the voter for fraud, FraudCommitted
//  4. no valid ballot with that number: Invalid
//  5. the ballot belongs to someone else: VoterMismatch
//  6. otherwise record the vote and invalidate the voter's other ballots
func (s *Service) CountBallot(ctx context.Context, ballot models.Ballot, nationalID string) (result models.BallotStatus, err error) {
	ctx, done := s.start(ctx, "count_ballot")
	defer func() { done(err) }()

	var ref string
	err = s.store.RunInVoterTx(ctx, nationalID, func(ctx context.Context) error {
		ref = s.voterRef(ctx, nationalID)
		var err error
		result, err = s.countLocked(ctx, ballot, nationalID)
		return err
	})
	if err != nil {
		return 0, translate(err, "failed to count ballot")
	}

	event := audit.Event{
		VoterRef:     ref,
		BallotNumber: ballot.BallotNumber,
		Outcome:      result.Label(),
	}
	switch result {
	case models.BallotCounted:
		s.logAudit(ctx, audit.EventBallotCounted, event)
	case models.BallotFraudCommitted:
		s.logger.WarnContext(ctx, "fraud detected", "ballot_number", ballot.BallotNumber)
		s.logAudit(ctx, audit.EventFraudDetected, event)
	default:
		event.Reason = result.String()
		s.logAudit(ctx, audit.EventBallotRejected, event)
	}
	if s.metrics != nil {
		s.metrics.IncBallotOutcome(result.Label())
	}
	return result, nil
}

func (s *Service) countLocked(ctx context.Context, ballot models.Ballot, nationalID string) (models.BallotStatus, error) {
	status, err := s.store.GetVoterStatus(ctx, nationalID)
	if err != nil {
		return 0, err
	}
	switch status {
	case models.VoterFraudCommitted:
		return models.BallotFraudCommitted, nil
	case models.VoterNotRegistered:
		return models.BallotVoterNotRegistered, nil
	case models.VoterBallotCounted:
		if err := s.store.SetVoterStatus(ctx, nationalID, models.VoterFraudCommitted); err != nil {
			return 0, err
		}
		return models.BallotFraudCommitted, nil
	}

	valid, err := s.store.GetBallot(ctx, ballot.BallotNumber)
	if err != nil {
		return 0, err
	}
	if valid == nil {
		return models.BallotInvalid, nil
	}
	owned, err := s.store.GetBallotForVoter(ctx, ballot.BallotNumber, nationalID)
	if err != nil {
		return 0, err
	}
	if owned == nil {
		return models.BallotVoterMismatch, nil
	}
	// InvalidateBallot takes no voter lock; the store re-checks the row.
	err = s.store.CountBallotForVoter(ctx, ballot, nationalID)
	if errors.Is(err, store.ErrBallotNotCastable) {
		return models.BallotInvalid, nil
	}
	if err != nil {
		return 0, err
	}
	return models.BallotCounted, nil
}

// InvalidateBallot withdraws a valid ballot that has not been cast.
func (s *Service) InvalidateBallot(ctx context.Context, ballotNumber string) (ok bool, err error) {
	ctx, done := s.start(ctx, "invalidate_ballot")
	defer func() { done(err) }()

	ok, err = s.store.InvalidateBallot(ctx, ballotNumber)
	if err != nil {
		return false, translate(err, "failed to invalidate ballot")
	}
	if ok {
		s.logAudit(ctx, audit.EventBallotInvalidated, audit.Event{BallotNumber: ballotNumber})
		if s.metrics != nil {
			s.metrics.IncBallotInvalidated()
		}
	}
	return ok, nil
}

// VerifyBallot reports whether ballotNumber is valid and belongs to the voter.
func (s *Service) VerifyBallot(ctx context.Context, nationalID, ballotNumber string) (ok bool, err error) {
	ctx, done := s.start(ctx, "verify_ballot")
	defer func() { done(err) }()

	b, err := s.store.GetBallotForVoter(ctx, ballotNumber, nationalID)
	if err != nil {
		return false, translate(err, "failed to verify ballot")
	}
	return b != nil, nil
}

// GetAllBallotComments returns the distinct redacted comments, sorted.
func (s *Service) GetAllBallotComments(ctx context.Context) (comments []string, err error) {
	ctx, done := s.start(ctx, "ballot_comments")
	defer func() { done(err) }()

	comments, err = s.store.GetAllBallotComments(ctx)
	if err != nil {
		return nil, translate(err, "failed to load ballot comments")
	}
	return comments, nil
}

// ComputeElectionWinner returns nil while no vote has been counted.
func (s *Service) ComputeElectionWinner(ctx context.Context) (winner *models.Candidate, err error) {
	ctx, done := s.start(ctx, "compute_winner")
	defer func() { done(err) }()

	winner, err = s.store.GetWinner(ctx)
	if err != nil {
		return nil, translate(err, "failed to compute winner")
	}
	return winner, nil
}

// GetAllFraudulentVoters returns "First Last" for each flagged voter,
// deduplicated and sorted.
func (s *Service) GetAllFraudulentVoters(ctx context.Context) (names []string, err error) {
	ctx, done := s.start(ctx, "fraudulent_voters")
	defer func() { done(err) }()

	voters, err := s.store.GetAllFraudulentVoters(ctx)
	if err != nil {
		return nil, translate(err, "failed to load fraudulent voters")
	}
	names = make([]string, 0, len(voters))
	for _, v := range voters {
		names = append(names, v.FullName())
	}
	return platformstrings.SortedUnique(names), nil
}

// start opens a span and returns a finisher that records the outcome and
// latency.
func (s *Service) start(ctx context.Context, operation string) (context.Context, func(error)) {
	begin := time.Now()
	ctx, span := s.tracer.Start(ctx, "election."+operation,
		trace.WithAttributes(attribute.String("election.operation", operation)))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			if dErrors.HasCode(err, dErrors.CodeIntegrity) {
				s.logger.ErrorContext(ctx, "integrity failure", "operation", operation, "error", err)
			}
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, time.Since(begin).Seconds())
		}
	}
}

func (s *Service) voterRef(ctx context.Context, nationalID string) string {
	if s.voterRefs == nil {
		return ""
	}
	if key, ok := store.CachedVoterKey(ctx, nationalID); ok {
		return key
	}
	return s.voterRefs.ObfuscateNationalID(nationalID)
}

func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	event.Action = string(action)
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		event.TraceID = sc.TraceID().String()
	}
	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"ballot_number", event.BallotNumber,
		"outcome", event.Outcome,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "event", event.Action, "error", err)
	}
}
