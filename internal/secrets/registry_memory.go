package secrets

import (
	"context"
	"sync"

	"election/pkg/platform/sentinel"
)

// InMemoryRegistry keeps secrets for the life of the process. Useful for
// tests and throwaway elections only: restarting loses every key.
type InMemoryRegistry struct {
	mu      sync.Mutex
	secrets map[string][]byte
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{secrets: make(map[string][]byte)}
}

func (r *InMemoryRegistry) Get(_ context.Context, name string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	secret, ok := r.secrets[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(secret), nil
}

func (r *InMemoryRegistry) PutIfAbsent(_ context.Context, name string, value []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.secrets[name]; ok {
		return clone(existing), nil
	}
	r.secrets[name] = clone(value)
	return clone(value), nil
}
