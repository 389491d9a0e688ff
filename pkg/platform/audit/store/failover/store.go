// Package failover routes audit events to a fallback sink while the primary
// sink is failing.
package failover

import (
	"context"
	"log/slog"

	audit "election/pkg/platform/audit"
	"election/pkg/platform/circuit"
)

// Store writes to primary through a circuit breaker. Events rejected by the
// primary, or skipped while the breaker is open, go to fallback instead.
type Store struct {
	primary  audit.Store
	fallback audit.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

func New(primary, fallback audit.Store, opts ...Option) *Store {
	s := &Store{primary: primary, fallback: fallback}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = circuit.New("audit")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return s.fallback.Append(ctx, event)
	}
	if err := s.primary.Append(ctx, event); err != nil {
		if s.breaker.RecordFailure() {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "breaker", s.breaker.Name(), "error", err)
		}
		return s.fallback.Append(ctx, event)
	}
	if s.breaker.RecordSuccess() {
		s.logger.InfoContext(ctx, "audit sink circuit closed", "breaker", s.breaker.Name())
	}
	return nil
}
