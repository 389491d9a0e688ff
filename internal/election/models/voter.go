package models

import "strings"

// Voter carries plaintext PII. It exists only at the system boundary and is
// never persisted as-is.
type Voter struct {
	FirstName  string
	LastName   string
	NationalID string
}

// FullName renders "First Last".
func (v Voter) FullName() string {
	return v.FirstName + " " + v.LastName
}

// Normalize trims surrounding whitespace from the names.
func (v Voter) Normalize() Voter {
	v.FirstName = strings.TrimSpace(v.FirstName)
	v.LastName = strings.TrimSpace(v.LastName)
	return v
}

// MinimalVoter is the persisted projection of a Voter: a deterministic
// one-way national ID and independently encrypted names.
type MinimalVoter struct {
	ObfuscatedNationalID string
	EncryptedFirstName   string
	EncryptedLastName    string
}
