package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, registries and crypto
// helpers return these (optionally wrapped) so services can translate them
// into coded domain errors.
//
//   - ErrNotFound: record or secret does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: persisted value is outside the known vocabulary
//   - ErrUnavailable: backing service cannot be reached
//   - ErrTampered: authenticated decryption failed or a token is malformed
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrTampered     = errors.New("tampered")
)
