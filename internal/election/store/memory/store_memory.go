package memory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"election/internal/election/models"
	"election/internal/election/store"
)

type ballotKey struct {
	voter  string
	number string
}

type ballotRow struct {
	chosenCandidateID *string
	comment           *string
	valid             bool
	seq               int
}

// InMemoryStore keeps election state in maps guarded by one RWMutex; each
// public method holds it for its whole body, so multi-row mutations are never
// observed half-done. RunInVoterTx adds per-voter serialization on top. It is
// a lock, not a transaction: writes made by fn before it fails are kept.
type InMemoryStore struct {
	protector store.Protector
	locks     voterLocks

	mu              sync.RWMutex
	candidates      []models.Candidate
	nextCandidateID int
	voters          map[string]models.MinimalVoter
	status          map[string]models.VoterStatus
	ballots         map[ballotKey]*ballotRow
	ballotsByNumber map[string][]string
	ballotsByVoter  map[string][]string
	ballotSeq       int
}

type Option func(*InMemoryStore)

// WithTxTimeout bounds RunInVoterTx when the caller's ctx has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *InMemoryStore) {
		s.locks.timeout = d
	}
}

// New constructs an empty store that protects PII with p.
func New(p store.Protector, opts ...Option) (*InMemoryStore, error) {
	if p == nil {
		return nil, errors.New("pii protector is required")
	}
	s := &InMemoryStore{
		protector:       p,
		nextCandidateID: 1,
		voters:          make(map[string]models.MinimalVoter),
		status:          make(map[string]models.VoterStatus),
		ballots:         make(map[ballotKey]*ballotRow),
		ballotsByNumber: make(map[string][]string),
		ballotsByVoter:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *InMemoryStore) AddCandidate(_ context.Context, name string) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Candidate{ID: strconv.Itoa(s.nextCandidateID), Name: name}
	s.nextCandidateID++
	s.candidates = append(s.candidates, c)
	return c, nil
}

func (s *InMemoryStore) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidateLocked(id), nil
}

func (s *InMemoryStore) candidateLocked(id string) *models.Candidate {
	for _, c := range s.candidates {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}

func (s *InMemoryStore) GetAllCandidates(_ context.Context) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Candidate{}, s.candidates...), nil
}

func (s *InMemoryStore) AddVoter(ctx context.Context, voter models.Voter) (bool, error) {
	mv, err := store.Project(ctx, s.protector, voter)
	if err != nil {
		return false, err
	}
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.status[mv.ObfuscatedNationalID]; ok && status != models.VoterNotRegistered {
		return false, nil
	}
	s.voters[mv.ObfuscatedNationalID] = mv
	s.status[mv.ObfuscatedNationalID] = models.VoterRegisteredNotVoted
	return true, nil
}

func (s *InMemoryStore) GetVoterStatus(ctx context.Context, nationalID string) (models.VoterStatus, error) {
	key := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.status[key]
	if !ok {
		return models.VoterNotRegistered, nil
	}
	return status, nil
}

// SetVoterStatus overwrites an existing status row; like an UPDATE it is a
// no-op for voters that were never registered.
func (s *InMemoryStore) SetVoterStatus(ctx context.Context, nationalID string, status models.VoterStatus) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	key := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.status[key]; ok {
		s.status[key] = status
	}
	return nil
}

func (s *InMemoryStore) GetVoterNames(ctx context.Context, nationalID string) (string, string, bool, error) {
	key := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.RLock()
	mv, ok := s.voters[key]
	s.mu.RUnlock()
	if !ok {
		return "", "", false, nil
	}
	voter, err := store.Reveal(s.protector, mv)
	if err != nil {
		return "", "", false, err
	}
	return voter.FirstName, voter.LastName, true, nil
}

func (s *InMemoryStore) DeleteVoter(ctx context.Context, nationalID string) error {
	key := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voters, key)
	delete(s.status, key)
	return nil
}

func (s *InMemoryStore) AddBallotToVoter(ctx context.Context, nationalID, ballotNumber string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	voter := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := ballotKey{voter: voter, number: ballotNumber}
	if _, exists := s.ballots[k]; exists {
		return nil
	}
	s.ballotSeq++
	s.ballots[k] = &ballotRow{valid: true, seq: s.ballotSeq}
	s.ballotsByNumber[ballotNumber] = append(s.ballotsByNumber[ballotNumber], voter)
	s.ballotsByVoter[voter] = append(s.ballotsByVoter[voter], ballotNumber)
	return nil
}

func (s *InMemoryStore) GetBallot(_ context.Context, ballotNumber string) (*models.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, voter := range s.ballotsByNumber[ballotNumber] {
		if row := s.ballots[ballotKey{voter: voter, number: ballotNumber}]; row.valid {
			return toBallot(ballotNumber, row), nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) GetBallotForVoter(ctx context.Context, ballotNumber, nationalID string) (*models.Ballot, error) {
	voter := store.VoterKey(ctx, s.protector, nationalID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.ballots[ballotKey{voter: voter, number: ballotNumber}]
	if !ok || !row.valid {
		return nil, nil
	}
	return toBallot(ballotNumber, row), nil
}

// CountBallotForVoter re-checks the ballot under the write lock, so an
// invalidation that lands after the caller's lookup makes it fail with
// store.ErrBallotNotCastable instead of recording a vote nobody will tally.
func (s *InMemoryStore) CountBallotForVoter(ctx context.Context, ballot models.Ballot, nationalID string) error {
	first, last, _, err := s.GetVoterNames(ctx, nationalID)
	if err != nil {
		return err
	}
	comment := store.RedactComment(ballot.VoterComments, first, last)
	voter := store.VoterKey(ctx, s.protector, nationalID)
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.ballots[ballotKey{voter: voter, number: ballot.BallotNumber}]
	if !ok || !target.valid || target.chosenCandidateID != nil {
		return store.ErrBallotNotCastable
	}
	target.chosenCandidateID = cloneString(ballot.ChosenCandidateID)
	target.comment = comment
	for _, number := range s.ballotsByVoter[voter] {
		if number != ballot.BallotNumber {
			s.ballots[ballotKey{voter: voter, number: number}].valid = false
		}
	}
	if _, ok := s.status[voter]; ok {
		s.status[voter] = models.VoterBallotCounted
	}
	return nil
}

func (s *InMemoryStore) InvalidateBallot(_ context.Context, ballotNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invalidated := false
	for _, voter := range s.ballotsByNumber[ballotNumber] {
		row := s.ballots[ballotKey{voter: voter, number: ballotNumber}]
		if row.valid && row.chosenCandidateID == nil {
			row.valid = false
			invalidated = true
		}
	}
	return invalidated, nil
}

func (s *InMemoryStore) GetWinner(_ context.Context) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := make(map[string]int)
	for _, row := range s.ballots {
		if row.valid && row.chosenCandidateID != nil {
			votes[*row.chosenCandidateID]++
		}
	}
	tallies := make([]store.Tally, 0, len(votes))
	for id, n := range votes {
		tallies = append(tallies, store.Tally{CandidateID: id, Votes: n})
	}
	winner, ok := store.PickWinner(tallies)
	if !ok {
		return nil, nil
	}
	return s.candidateLocked(winner), nil
}

func (s *InMemoryStore) GetAllBallotComments(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var comments []string
	for _, row := range s.ballots {
		if row.comment != nil {
			comments = append(comments, *row.comment)
		}
	}
	return store.SortedComments(comments), nil
}

func (s *InMemoryStore) GetAllFraudulentVoters(_ context.Context) ([]models.Voter, error) {
	s.mu.RLock()
	var fraudulent []models.MinimalVoter
	for key, status := range s.status {
		if status != models.VoterFraudCommitted {
			continue
		}
		if mv, ok := s.voters[key]; ok {
			fraudulent = append(fraudulent, mv)
		}
	}
	s.mu.RUnlock()

	sort.Slice(fraudulent, func(i, j int) bool {
		return fraudulent[i].ObfuscatedNationalID < fraudulent[j].ObfuscatedNationalID
	})
	voters := make([]models.Voter, 0, len(fraudulent))
	for _, mv := range fraudulent {
		v, err := store.Reveal(s.protector, mv)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	return voters, nil
}

func (s *InMemoryStore) RunInVoterTx(ctx context.Context, nationalID string, fn func(ctx context.Context) error) error {
	key := store.VoterKey(ctx, s.protector, nationalID)
	return s.locks.run(store.WithVoterKey(ctx, nationalID, key), key, fn)
}

func (s *InMemoryStore) Close() error {
	return nil
}

func toBallot(number string, row *ballotRow) *models.Ballot {
	return &models.Ballot{
		BallotNumber:      number,
		ChosenCandidateID: cloneString(row.chosenCandidateID),
		VoterComments:     cloneString(row.comment),
		Valid:             row.valid,
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ store.Store = (*InMemoryStore)(nil)
