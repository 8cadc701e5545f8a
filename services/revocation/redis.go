package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// RedisStore keeps the revocation list in Redis, relying on key TTLs for
// cleanup. The value is irrelevant; only key existence is checked.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+jti, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("failed to write revocation entry: %w", err)
	}
	return nil
}

func (r *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation entry: %w", err)
	}
	return n > 0, nil
}
