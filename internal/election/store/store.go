// Package store defines the election persistence contract shared by the
// in-memory and SQL backends.
//
// Every method that takes a raw national ID obfuscates it before it touches
// storage; names are encrypted on the way in and decrypted only by
// GetVoterNames and GetAllFraudulentVoters. Absence is reported as a nil
// result, never as an error.
package store

import (
	"context"

	"election/internal/election/models"
)

// Protector is the PII layer a store applies before persisting anything.
type Protector interface {
	ObfuscateNationalID(raw string) string
	EncryptName(name string) (string, error)
	DecryptName(token string) (string, error)
}

// Store owns candidates, voters, voter status and ballots.
type Store interface {
	AddCandidate(ctx context.Context, name string) (models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetAllCandidates(ctx context.Context) ([]models.Candidate, error)

	// AddVoter registers voter unless their identity already has a status
	// other than NotRegistered. Check and insert are atomic.
	AddVoter(ctx context.Context, voter models.Voter) (bool, error)
	GetVoterStatus(ctx context.Context, nationalID string) (models.VoterStatus, error)
	SetVoterStatus(ctx context.Context, nationalID string, status models.VoterStatus) error
	// GetVoterNames returns the decrypted names; ok is false for unknown voters.
	GetVoterNames(ctx context.Context, nationalID string) (first, last string, ok bool, err error)
	DeleteVoter(ctx context.Context, nationalID string) error

	AddBallotToVoter(ctx context.Context, nationalID, ballotNumber string) error
	// GetBallot returns the ballot only while it is valid.
	GetBallot(ctx context.Context, ballotNumber string) (*models.Ballot, error)
	GetBallotForVoter(ctx context.Context, ballotNumber, nationalID string) (*models.Ballot, error)
	// CountBallotForVoter marks the voter BallotCounted, records the choice
	// and redacted comment on the ballot and invalidates the voter's other
	// ballots, all or nothing.
	CountBallotForVoter(ctx context.Context, ballot models.Ballot, nationalID string) error
	// InvalidateBallot succeeds only for a valid ballot with no candidate.
	InvalidateBallot(ctx context.Context, ballotNumber string) (bool, error)

	// GetWinner returns nil when no valid ballot carries a candidate.
	GetWinner(ctx context.Context) (*models.Candidate, error)
	// GetAllBallotComments returns distinct non-empty comments, sorted.
	GetAllBallotComments(ctx context.Context) ([]string, error)
	GetAllFraudulentVoters(ctx context.Context) ([]models.Voter, error)

	// RunInVoterTx runs fn with every status-changing operation for the
	// voter serialized against concurrent callers. Store calls made with the
	// ctx passed to fn join the same unit of work.
	RunInVoterTx(ctx context.Context, nationalID string, fn func(ctx context.Context) error) error

	Close() error
}
