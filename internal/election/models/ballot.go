package models

// Ballot is one issued ballot. ChosenCandidateID and VoterComments stay nil
// until the ballot is counted; comments are redacted before they are stored.
type Ballot struct {
	BallotNumber      string
	ChosenCandidateID *string
	VoterComments     *string
	Valid             bool
}

// IsCast reports whether a candidate has been recorded on the ballot.
func (b *Ballot) IsCast() bool {
	return b != nil && b.ChosenCandidateID != nil
}

// Comment returns the comment text, or "" when none was given.
func (b *Ballot) Comment() string {
	if b == nil || b.VoterComments == nil {
		return ""
	}
	return *b.VoterComments
}

// CandidateID returns the chosen candidate id, or "" when unset.
func (b *Ballot) CandidateID() string {
	if b == nil || b.ChosenCandidateID == nil {
		return ""
	}
	return *b.ChosenCandidateID
}

// Candidate is a registered candidate. IDs are decimal strings.
type Candidate struct {
	ID   string
	Name string
}
