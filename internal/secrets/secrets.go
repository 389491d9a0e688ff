// Package secrets provisions process-wide key material.
//
// A Registry durably stores raw secret bytes under fixed names. The
// Provisioner layers get-or-create semantics on top: a secret is generated at
// most once, written with put-if-absent so concurrent processes converge on a
// single value, then cached for the life of the process. Any failure to read
// the registry fails closed; a secret is only generated when the registry
// positively reports it absent.
package secrets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"election/pkg/platform/sentinel"
)

// Registry names for the election key material.
const (
	NationalIDPepper  = "National ID pepper"
	NameEncryptionKey = "Name encryption key"
)

// Registry stores raw secret bytes.
type Registry interface {
	// Get returns sentinel.ErrNotFound when name has never been stored.
	Get(ctx context.Context, name string) ([]byte, error)
	// PutIfAbsent stores value unless name already exists and returns the
	// value that is durably stored afterwards.
	PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error)
}

// Generate creates size cryptographically secure random bytes.
func Generate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("could not generate secret: %w", err)
	}
	return buf, nil
}

// Provisioner hands out secrets by name, creating them on first use.
type Provisioner struct {
	registry Registry
	logger   *slog.Logger
	group    singleflight.Group

	mu    sync.RWMutex
	cache map[string][]byte
}

type Option func(*Provisioner)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// NewProvisioner wraps registry.
func NewProvisioner(registry Registry, opts ...Option) (*Provisioner, error) {
	if registry == nil {
		return nil, errors.New("secret registry is required")
	}
	p := &Provisioner{registry: registry, cache: make(map[string][]byte)}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// GetOrCreate returns the secret stored under name, generating and storing a
// size-byte secret when none exists. A stored secret of a different size is
// an integrity failure and is never replaced.
func (p *Provisioner) GetOrCreate(ctx context.Context, name string, size int) ([]byte, error) {
	if secret, ok := p.cached(name); ok {
		return secret, nil
	}

	v, err, _ := p.group.Do(name, func() (any, error) {
		if secret, ok := p.cached(name); ok {
			return secret, nil
		}
		secret, err := p.load(ctx, name, size)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache[name] = secret
		p.mu.Unlock()
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]byte)), nil
}

func (p *Provisioner) load(ctx context.Context, name string, size int) ([]byte, error) {
	secret, err := p.registry.Get(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrNotFound):
		fresh, genErr := Generate(size)
		if genErr != nil {
			return nil, genErr
		}
		secret, err = p.registry.PutIfAbsent(ctx, name, fresh)
		if err != nil {
			return nil, fmt.Errorf("store secret %q: %w", name, err)
		}
		if p.logger != nil {
			p.logger.InfoContext(ctx, "secret provisioned", "name", name)
		}
	default:
		return nil, fmt.Errorf("read secret %q: %w", name, err)
	}

	if len(secret) != size {
		return nil, fmt.Errorf("secret %q has %d bytes, want %d: %w", name, len(secret), size, sentinel.ErrInvalidState)
	}
	return secret, nil
}

func (p *Provisioner) cached(name string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	secret, ok := p.cache[name]
	if !ok {
		return nil, false
	}
	return clone(secret), true
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
