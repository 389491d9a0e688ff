//go:build integration

package secrets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"election/internal/secrets"
	"election/pkg/platform/sentinel"
	"election/pkg/testutil/containers"
)

type RedisRegistrySuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	registry *secrets.RedisRegistry
}

func TestRedisRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRegistrySuite))
}

func (s *RedisRegistrySuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.registry = secrets.NewRedisRegistry(s.redis.Client.Client)
}

func (s *RedisRegistrySuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRegistrySuite) TestPutIfAbsentKeepsFirstValue() {
	ctx := context.Background()

	_, err := s.registry.Get(ctx, secrets.NameEncryptionKey)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	first, err := s.registry.PutIfAbsent(ctx, secrets.NameEncryptionKey, []byte("first"))
	s.Require().NoError(err)
	s.Equal([]byte("first"), first)

	second, err := s.registry.PutIfAbsent(ctx, secrets.NameEncryptionKey, []byte("second"))
	s.Require().NoError(err)
	s.Equal([]byte("first"), second)
}

func (s *RedisRegistrySuite) TestProvisionersInSeparateProcessesConverge() {
	ctx := context.Background()
	a, err := secrets.NewProvisioner(s.registry)
	s.Require().NoError(err)
	b, err := secrets.NewProvisioner(secrets.NewRedisRegistry(s.redis.Client.Client))
	s.Require().NoError(err)

	ka, err := a.GetOrCreate(ctx, secrets.NationalIDPepper, 16)
	s.Require().NoError(err)
	kb, err := b.GetOrCreate(ctx, secrets.NationalIDPepper, 16)
	s.Require().NoError(err)
	s.Equal(ka, kb)
}
