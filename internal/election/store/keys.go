package store

import (
	"context"
	"errors"
)

// ErrBallotNotCastable is returned by CountBallotForVoter when the ballot is
// not a valid, uncast ballot of that voter at write time. Nothing is written.
var ErrBallotNotCastable = errors.New("ballot is not a valid uncast ballot of the voter")

type voterKeyCtx struct{}

type voterKey struct {
	raw string
	key string
}

// WithVoterKey remembers the obfuscated key of raw for the rest of a unit of
// work. Obfuscation is a deliberately slow hash; RunInVoterTx computes it
// once and every store call inside the callback reuses it.
func WithVoterKey(ctx context.Context, raw, key string) context.Context {
	return context.WithValue(ctx, voterKeyCtx{}, voterKey{raw: raw, key: key})
}

// CachedVoterKey returns the key recorded for raw by WithVoterKey.
func CachedVoterKey(ctx context.Context, raw string) (string, bool) {
	v, ok := ctx.Value(voterKeyCtx{}).(voterKey)
	if !ok || v.raw != raw {
		return "", false
	}
	return v.key, true
}

// VoterKey returns the cached key for raw, or obfuscates it with p.
func VoterKey(ctx context.Context, p Protector, raw string) string {
	if key, ok := CachedVoterKey(ctx, raw); ok {
		return key
	}
	return p.ObfuscateNationalID(raw)
}
