package models

import (
	"fmt"

	"election/pkg/platform/sentinel"
)

// VoterStatus is the per-voter position in the balloting state machine.
//
//	NotRegistered -> RegisteredNotVoted -> BallotCounted -> FraudCommitted
//
// FraudCommitted is sticky. BallotCounted only moves forward, to
// FraudCommitted, on a repeat counting attempt.
type VoterStatus int

const (
	VoterNotRegistered VoterStatus = iota
	VoterRegisteredNotVoted
	VoterBallotCounted
	VoterFraudCommitted
)

// Persisted vocabulary. These strings are part of the storage layout and must
// not change.
const (
	voterNotRegisteredText      = "not registered"
	voterRegisteredNotVotedText = "registered, but no ballot received"
	voterBallotCountedText      = "ballot counted"
	voterFraudCommittedText     = "fraud committed"
)

// String returns the persisted representation.
func (s VoterStatus) String() string {
	switch s {
	case VoterNotRegistered:
		return voterNotRegisteredText
	case VoterRegisteredNotVoted:
		return voterRegisteredNotVotedText
	case VoterBallotCounted:
		return voterBallotCountedText
	case VoterFraudCommitted:
		return voterFraudCommittedText
	}
	return fmt.Sprintf("VoterStatus(%d)", int(s))
}

// IsValid checks the status is one of the closed set.
func (s VoterStatus) IsValid() bool {
	switch s {
	case VoterNotRegistered, VoterRegisteredNotVoted, VoterBallotCounted, VoterFraudCommitted:
		return true
	}
	return false
}

// ParseVoterStatus maps a persisted string back to a VoterStatus. Unknown
// values indicate a corrupted row and wrap sentinel.ErrInvalidState.
func ParseVoterStatus(s string) (VoterStatus, error) {
	switch s {
	case voterNotRegisteredText:
		return VoterNotRegistered, nil
	case voterRegisteredNotVotedText:
		return VoterRegisteredNotVoted, nil
	case voterBallotCountedText:
		return VoterBallotCounted, nil
	case voterFraudCommittedText:
		return VoterFraudCommitted, nil
	}
	return VoterNotRegistered, fmt.Errorf("voter status %q: %w", s, sentinel.ErrInvalidState)
}

// BallotStatus is the outcome of a counting attempt. Every value except
// BallotCounted is a business-rule rejection, not an error.
type BallotStatus int

const (
	BallotCounted BallotStatus = iota
	BallotVoterMismatch
	BallotInvalid
	BallotFraudCommitted
	BallotVoterNotRegistered
)

func (s BallotStatus) String() string {
	switch s {
	case BallotCounted:
		return "ballot counted"
	case BallotVoterMismatch:
		return "the ballot doesn't belong to the voter specified"
	case BallotInvalid:
		return "the ballot given is invalid"
	case BallotFraudCommitted:
		return "fraud committed: the voter has already voted"
	case BallotVoterNotRegistered:
		return "voter not registered"
	}
	return fmt.Sprintf("BallotStatus(%d)", int(s))
}

// Label is a short stable identifier used for metric labels and audit events.
func (s BallotStatus) Label() string {
	switch s {
	case BallotCounted:
		return "ballot_counted"
	case BallotVoterMismatch:
		return "voter_ballot_mismatch"
	case BallotInvalid:
		return "invalid_ballot"
	case BallotFraudCommitted:
		return "fraud_committed"
	case BallotVoterNotRegistered:
		return "voter_not_registered"
	}
	return "unknown"
}
