package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"election/pkg/platform/sentinel"
)

const secretKeyPrefix = "election:secret:"

// RedisRegistry stores secrets as plain Redis keys without expiry. SETNX makes
// put-if-absent atomic across processes sharing the instance.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) Get(ctx context.Context, name string) ([]byte, error) {
	secret, err := r.client.Get(ctx, secretKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get secret: %w", err)
	}
	return secret, nil
}

func (r *RedisRegistry) PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	key := secretKeyPrefix + name
	if err := r.client.SetNX(ctx, key, value, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis setnx secret: %w", err)
	}
	// Read back: another process may have won the race.
	secret, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis read back secret: %w", err)
	}
	return secret, nil
}
