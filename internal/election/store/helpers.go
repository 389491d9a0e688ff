package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"election/internal/election/models"
	"election/internal/pii"
)

// Project converts a boundary Voter into its persisted projection.
func Project(ctx context.Context, p Protector, voter models.Voter) (models.MinimalVoter, error) {
	voter = voter.Normalize()
	first, err := p.EncryptName(voter.FirstName)
	if err != nil {
		return models.MinimalVoter{}, fmt.Errorf("encrypt first name: %w", err)
	}
	last, err := p.EncryptName(voter.LastName)
	if err != nil {
		return models.MinimalVoter{}, fmt.Errorf("encrypt last name: %w", err)
	}
	return models.MinimalVoter{
		ObfuscatedNationalID: VoterKey(ctx, p, voter.NationalID),
		EncryptedFirstName:   first,
		EncryptedLastName:    last,
	}, nil
}

// Reveal decrypts a persisted projection. The national ID stays obfuscated.
func Reveal(p Protector, mv models.MinimalVoter) (models.Voter, error) {
	first, err := p.DecryptName(mv.EncryptedFirstName)
	if err != nil {
		return models.Voter{}, fmt.Errorf("decrypt first name: %w", err)
	}
	last, err := p.DecryptName(mv.EncryptedLastName)
	if err != nil {
		return models.Voter{}, fmt.Errorf("decrypt last name: %w", err)
	}
	return models.Voter{FirstName: first, LastName: last, NationalID: mv.ObfuscatedNationalID}, nil
}

// RedactComment redacts a ballot comment against the voter's names. A nil
// comment stays nil.
func RedactComment(comment *string, names ...string) *string {
	if comment == nil {
		return nil
	}
	redacted := pii.RedactFreeText(*comment, names)
	return &redacted
}

// Tally is the number of counted valid ballots for one candidate id.
type Tally struct {
	CandidateID string
	Votes       int
}

// PickWinner returns the candidate id with the most votes. Ties go to the
// smallest candidate id, compared numerically when both ids are integers.
func PickWinner(tallies []Tally) (string, bool) {
	if len(tallies) == 0 {
		return "", false
	}
	sorted := append([]Tally(nil), tallies...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Votes != sorted[j].Votes {
			return sorted[i].Votes > sorted[j].Votes
		}
		return lessCandidateID(sorted[i].CandidateID, sorted[j].CandidateID)
	})
	return sorted[0].CandidateID, true
}

func lessCandidateID(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

// SortedComments dedupes and sorts non-empty comments.
func SortedComments(comments []string) []string {
	seen := make(map[string]struct{}, len(comments))
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
