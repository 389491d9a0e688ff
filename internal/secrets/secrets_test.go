package secrets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"election/internal/platform/storage"
	"election/pkg/platform/sentinel"
)

// countingRegistry records how often each operation is hit and can be told to
// fail reads.
type countingRegistry struct {
	*InMemoryRegistry
	gets    atomic.Int32
	puts    atomic.Int32
	readErr error
}

func (r *countingRegistry) Get(ctx context.Context, name string) ([]byte, error) {
	r.gets.Add(1)
	if r.readErr != nil {
		return nil, r.readErr
	}
	return r.InMemoryRegistry.Get(ctx, name)
}

func (r *countingRegistry) PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	r.puts.Add(1)
	return r.InMemoryRegistry.PutIfAbsent(ctx, name, value)
}

type ProvisionerSuite struct {
	suite.Suite
	ctx      context.Context
	registry *countingRegistry
	prov     *Provisioner
}

func TestProvisionerSuite(t *testing.T) {
	suite.Run(t, new(ProvisionerSuite))
}

func (s *ProvisionerSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = &countingRegistry{InMemoryRegistry: NewInMemoryRegistry()}
	prov, err := NewProvisioner(s.registry)
	s.Require().NoError(err)
	s.prov = prov
}

func (s *ProvisionerSuite) TestGetOrCreate() {
	s.Run("generates once and reuses", func() {
		first, err := s.prov.GetOrCreate(s.ctx, NameEncryptionKey, 32)
		s.Require().NoError(err)
		s.Len(first, 32)

		second, err := s.prov.GetOrCreate(s.ctx, NameEncryptionKey, 32)
		s.Require().NoError(err)
		s.Equal(first, second)
		s.Equal(int32(1), s.registry.puts.Load())
	})

	s.Run("returns copies callers cannot corrupt", func() {
		secret, err := s.prov.GetOrCreate(s.ctx, NationalIDPepper, 16)
		s.Require().NoError(err)
		secret[0] ^= 0xff

		again, err := s.prov.GetOrCreate(s.ctx, NationalIDPepper, 16)
		s.Require().NoError(err)
		s.NotEqual(secret[0], again[0])
	})

	s.Run("adopts a secret already in the registry", func() {
		stored := []byte("0123456789abcdef")
		_, err := s.registry.PutIfAbsent(s.ctx, "pre-provisioned", stored)
		s.Require().NoError(err)

		got, err := s.prov.GetOrCreate(s.ctx, "pre-provisioned", len(stored))
		s.Require().NoError(err)
		s.Equal(stored, got)
	})
}

func (s *ProvisionerSuite) TestFailsClosed() {
	s.Run("registry read failure never generates", func() {
		s.registry.readErr = errors.New("connection refused")
		defer func() { s.registry.readErr = nil }()

		_, err := s.prov.GetOrCreate(s.ctx, "unreachable", 32)
		s.Require().Error(err)
		s.Equal(int32(0), s.registry.puts.Load())
	})

	s.Run("wrong-sized secret is an invalid state", func() {
		_, err := s.registry.PutIfAbsent(s.ctx, "short", []byte("abc"))
		s.Require().NoError(err)

		_, err = s.prov.GetOrCreate(s.ctx, "short", 32)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *ProvisionerSuite) TestConcurrentFirstUse() {
	const goroutines = 32
	results := make([][]byte, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			secret, err := s.prov.GetOrCreate(s.ctx, "contended", 32)
			s.NoError(err)
			results[idx] = secret
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		s.Equal(results[0], r)
	}
	stored, err := s.registry.InMemoryRegistry.Get(s.ctx, "contended")
	s.Require().NoError(err)
	s.Equal(stored, results[0])
}

func (s *ProvisionerSuite) TestSQLRegistry() {
	db, dialect, err := storage.Open(s.ctx, "sqlite", ":memory:")
	s.Require().NoError(err)
	defer db.Close()

	registry, err := NewSQLRegistry(s.ctx, db, dialect)
	s.Require().NoError(err)

	_, err = registry.Get(s.ctx, NationalIDPepper)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	first, err := registry.PutIfAbsent(s.ctx, NationalIDPepper, []byte("first"))
	s.Require().NoError(err)
	s.Equal([]byte("first"), first)

	second, err := registry.PutIfAbsent(s.ctx, NationalIDPepper, []byte("second"))
	s.Require().NoError(err)
	s.Equal([]byte("first"), second, "existing secret must never be overwritten")
}

func (s *ProvisionerSuite) TestGenerateRejectsNonPositiveSize() {
	_, err := Generate(0)
	s.Error(err)
}
