// Package storetest holds the behavioural contract every store.Store backend
// must satisfy. Backends run it from their own test packages.
package storetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"election/internal/election/models"
	"election/internal/election/store"
	"election/internal/pii"
	"election/internal/secrets"
)

// CheapArgon keeps obfuscation fast in tests.
var CheapArgon = pii.ArgonParams{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32}

// NewProtector returns a protector backed by a fresh in-memory registry.
func NewProtector(t *testing.T) *pii.Protector {
	t.Helper()
	prov, err := secrets.NewProvisioner(secrets.NewInMemoryRegistry())
	if err != nil {
		t.Fatalf("new provisioner: %v", err)
	}
	p, err := pii.NewProtector(context.Background(), prov, pii.WithArgonParams(CheapArgon))
	if err != nil {
		t.Fatalf("new protector: %v", err)
	}
	return p
}

// Factory builds an empty store for one test.
type Factory func(t *testing.T, p store.Protector) store.Store

// Suite is the shared contract. Set NewStore before running it.
type Suite struct {
	suite.Suite
	NewStore Factory

	ctx   context.Context
	store store.Store
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore(s.T(), NewProtector(s.T()))
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

var (
	sara = models.Voter{FirstName: "Sara", LastName: "Jenkins", NationalID: "123-45-6789"}
	tom  = models.Voter{FirstName: "Tom", LastName: "Reyes", NationalID: "987-65-4321"}
)

func strPtr(s string) *string { return &s }

func (s *Suite) register(v models.Voter) {
	added, err := s.store.AddVoter(s.ctx, v)
	s.Require().NoError(err)
	s.Require().True(added)
}

func (s *Suite) issue(v models.Voter, number string) {
	s.Require().NoError(s.store.AddBallotToVoter(s.ctx, v.NationalID, number))
}

func (s *Suite) count(v models.Voter, number, candidateID string, comment *string) {
	err := s.store.CountBallotForVoter(s.ctx, models.Ballot{
		BallotNumber:      number,
		ChosenCandidateID: strPtr(candidateID),
		VoterComments:     comment,
	}, v.NationalID)
	s.Require().NoError(err)
}

func (s *Suite) TestCandidates() {
	s.Run("ids are assigned in insertion order", func() {
		a, err := s.store.AddCandidate(s.ctx, "Ada")
		s.Require().NoError(err)
		b, err := s.store.AddCandidate(s.ctx, "Ada")
		s.Require().NoError(err)
		s.NotEqual(a.ID, b.ID)

		got, err := s.store.GetCandidate(s.ctx, b.ID)
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(b, *got)

		all, err := s.store.GetAllCandidates(s.ctx)
		s.Require().NoError(err)
		s.Equal([]models.Candidate{a, b}, all)
	})

	s.Run("unknown ids are absent", func() {
		for _, id := range []string{"999", "not-a-number", ""} {
			got, err := s.store.GetCandidate(s.ctx, id)
			s.Require().NoError(err)
			s.Nil(got, id)
		}
	})
}

func (s *Suite) TestAddVoter() {
	s.register(sara)

	status, err := s.store.GetVoterStatus(s.ctx, sara.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterRegisteredNotVoted, status)

	s.Run("same national id in another format is a duplicate", func() {
		dup := sara
		dup.NationalID = "123 45 6789"
		added, err := s.store.AddVoter(s.ctx, dup)
		s.Require().NoError(err)
		s.False(added)
	})

	s.Run("names decrypt for the voter", func() {
		first, last, ok, err := s.store.GetVoterNames(s.ctx, sara.NationalID)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("Sara", first)
		s.Equal("Jenkins", last)
	})

	s.Run("unknown voter", func() {
		status, err := s.store.GetVoterStatus(s.ctx, "000-00-0000")
		s.Require().NoError(err)
		s.Equal(models.VoterNotRegistered, status)

		_, _, ok, err := s.store.GetVoterNames(s.ctx, "000-00-0000")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("counted and fraudulent voters cannot re-register", func() {
		s.Require().NoError(s.store.SetVoterStatus(s.ctx, sara.NationalID, models.VoterFraudCommitted))
		added, err := s.store.AddVoter(s.ctx, sara)
		s.Require().NoError(err)
		s.False(added)
	})
}

func (s *Suite) TestDeleteVoter() {
	s.register(sara)
	s.Require().NoError(s.store.DeleteVoter(s.ctx, sara.NationalID))

	status, err := s.store.GetVoterStatus(s.ctx, sara.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterNotRegistered, status)
	_, _, ok, err := s.store.GetVoterNames(s.ctx, sara.NationalID)
	s.Require().NoError(err)
	s.False(ok)

	s.register(sara)
}

func (s *Suite) TestBallotLookup() {
	s.register(sara)
	s.register(tom)
	s.issue(sara, "b-1")

	b, err := s.store.GetBallot(s.ctx, "b-1")
	s.Require().NoError(err)
	s.Require().NotNil(b)
	s.Equal("b-1", b.BallotNumber)
	s.True(b.Valid)
	s.False(b.IsCast())

	b, err = s.store.GetBallotForVoter(s.ctx, "b-1", sara.NationalID)
	s.Require().NoError(err)
	s.NotNil(b)

	b, err = s.store.GetBallotForVoter(s.ctx, "b-1", tom.NationalID)
	s.Require().NoError(err)
	s.Nil(b)

	b, err = s.store.GetBallot(s.ctx, "missing")
	s.Require().NoError(err)
	s.Nil(b)
}

func (s *Suite) TestCountBallotForVoter() {
	s.register(sara)
	s.issue(sara, "b-1")
	s.issue(sara, "b-2")
	s.issue(sara, "b-3")

	s.count(sara, "b-2", "1", strPtr("Sara Jenkins here, mail jsmith@example.com"))

	status, err := s.store.GetVoterStatus(s.ctx, sara.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterBallotCounted, status)

	counted, err := s.store.GetBallot(s.ctx, "b-2")
	s.Require().NoError(err)
	s.Require().NotNil(counted)
	s.Equal("1", counted.CandidateID())
	s.Equal("[REDACTED NAME] [REDACTED NAME] here, mail [REDACTED EMAIL]", counted.Comment())

	for _, other := range []string{"b-1", "b-3"} {
		b, err := s.store.GetBallot(s.ctx, other)
		s.Require().NoError(err)
		s.Nil(b, other)
	}
}

func (s *Suite) TestCountBallotForVoterRequiresCastableBallot() {
	s.register(sara)
	s.register(tom)
	s.issue(sara, "b-1")
	s.issue(sara, "b-2")
	s.issue(tom, "t-1")

	attempt := func(v models.Voter, number string) error {
		return s.store.CountBallotForVoter(s.ctx, models.Ballot{
			BallotNumber:      number,
			ChosenCandidateID: strPtr("1"),
		}, v.NationalID)
	}
	assertUntouched := func() {
		status, err := s.store.GetVoterStatus(s.ctx, sara.NationalID)
		s.Require().NoError(err)
		s.Equal(models.VoterRegisteredNotVoted, status)
		b, err := s.store.GetBallot(s.ctx, "b-2")
		s.Require().NoError(err)
		s.NotNil(b, "other ballots stay valid")
		w, err := s.store.GetWinner(s.ctx)
		s.Require().NoError(err)
		s.Nil(w)
	}

	s.Run("invalidated ballot", func() {
		ok, err := s.store.InvalidateBallot(s.ctx, "b-1")
		s.Require().NoError(err)
		s.Require().True(ok)

		s.ErrorIs(attempt(sara, "b-1"), store.ErrBallotNotCastable)
		assertUntouched()
	})

	s.Run("ballot of another voter", func() {
		s.ErrorIs(attempt(sara, "t-1"), store.ErrBallotNotCastable)
		assertUntouched()
		b, err := s.store.GetBallotForVoter(s.ctx, "t-1", tom.NationalID)
		s.Require().NoError(err)
		s.Require().NotNil(b)
		s.False(b.IsCast())
	})

	s.Run("unknown ballot", func() {
		s.ErrorIs(attempt(sara, "missing"), store.ErrBallotNotCastable)
		assertUntouched()
	})

	s.Run("already cast ballot", func() {
		s.count(tom, "t-1", "2", nil)
		s.ErrorIs(attempt(tom, "t-1"), store.ErrBallotNotCastable)
		b, err := s.store.GetBallot(s.ctx, "t-1")
		s.Require().NoError(err)
		s.Require().NotNil(b)
		s.Equal("2", b.CandidateID())
	})
}

func (s *Suite) TestInvalidateBallot() {
	s.register(sara)
	s.issue(sara, "b-1")
	s.issue(sara, "b-2")

	s.Run("uncast ballot", func() {
		ok, err := s.store.InvalidateBallot(s.ctx, "b-1")
		s.Require().NoError(err)
		s.True(ok)

		ok, err = s.store.InvalidateBallot(s.ctx, "b-1")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("cast ballot keeps its validity", func() {
		s.count(sara, "b-2", "1", nil)
		ok, err := s.store.InvalidateBallot(s.ctx, "b-2")
		s.Require().NoError(err)
		s.False(ok)

		b, err := s.store.GetBallot(s.ctx, "b-2")
		s.Require().NoError(err)
		s.Require().NotNil(b)
		s.True(b.Valid)
	})

	s.Run("unknown ballot", func() {
		ok, err := s.store.InvalidateBallot(s.ctx, "nope")
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *Suite) TestGetWinner() {
	s.Run("no votes", func() {
		w, err := s.store.GetWinner(s.ctx)
		s.Require().NoError(err)
		s.Nil(w)
	})

	var ids []string
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		c, err := s.store.AddCandidate(s.ctx, name)
		s.Require().NoError(err)
		ids = append(ids, c.ID)
	}

	// Grace and Linus tie on two votes each; Ada has one.
	votes := []string{ids[2], ids[1], ids[2], ids[1], ids[0]}
	for i, candidate := range votes {
		v := models.Voter{FirstName: "V", LastName: fmt.Sprint(i), NationalID: fmt.Sprintf("555-00-%04d", i)}
		s.register(v)
		number := fmt.Sprintf("w-%d", i)
		s.issue(v, number)
		s.count(v, number, candidate, nil)
	}

	w, err := s.store.GetWinner(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(w)
	s.Equal("Grace", w.Name)
}

func (s *Suite) TestGetAllBallotComments() {
	s.register(sara)
	s.register(tom)
	s.issue(sara, "s-1")
	s.issue(tom, "t-1")
	s.count(sara, "s-1", "1", strPtr("great turnout"))
	s.count(tom, "t-1", "1", strPtr("great turnout"))

	v := models.Voter{FirstName: "Quiet", LastName: "Voter", NationalID: "111-11-1111"}
	s.register(v)
	s.issue(v, "q-1")
	s.count(v, "q-1", "1", strPtr(""))

	comments, err := s.store.GetAllBallotComments(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"great turnout"}, comments)
}

func (s *Suite) TestGetAllFraudulentVoters() {
	s.register(sara)
	s.register(tom)
	s.Require().NoError(s.store.SetVoterStatus(s.ctx, tom.NationalID, models.VoterFraudCommitted))

	voters, err := s.store.GetAllFraudulentVoters(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(voters, 1)
	s.Equal("Tom Reyes", voters[0].FullName())
	s.NotEqual(tom.NationalID, voters[0].NationalID)
}

// TestConcurrentCountingForOneVoter races counting attempts for the same voter;
// exactly one may succeed and the rest must observe it.
func (s *Suite) TestConcurrentCountingForOneVoter() {
	s.register(sara)
	const attempts = 8
	for i := range attempts {
		s.issue(sara, fmt.Sprintf("c-%d", i))
	}

	var counted, fraud atomic.Int32
	var g errgroup.Group
	for i := range attempts {
		g.Go(func() error {
			return s.store.RunInVoterTx(s.ctx, sara.NationalID, func(ctx context.Context) error {
				status, err := s.store.GetVoterStatus(ctx, sara.NationalID)
				if err != nil {
					return err
				}
				if status == models.VoterRegisteredNotVoted {
					counted.Add(1)
					return s.store.CountBallotForVoter(ctx, models.Ballot{
						BallotNumber:      fmt.Sprintf("c-%d", i),
						ChosenCandidateID: strPtr("1"),
					}, sara.NationalID)
				}
				fraud.Add(1)
				return s.store.SetVoterStatus(ctx, sara.NationalID, models.VoterFraudCommitted)
			})
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(1), counted.Load())
	s.Equal(int32(attempts-1), fraud.Load())
	status, err := s.store.GetVoterStatus(s.ctx, sara.NationalID)
	s.Require().NoError(err)
	s.Equal(models.VoterFraudCommitted, status)
}

func (s *Suite) TestConcurrentRegistration() {
	const attempts = 8
	var added atomic.Int32
	var g errgroup.Group
	for range attempts {
		g.Go(func() error {
			ok, err := s.store.AddVoter(s.ctx, sara)
			if ok {
				added.Add(1)
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), added.Load())
}
