package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		store := NewMemoryStore()

		revoked, err := store.IsRevoked(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti stays revoked until expiry", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("entry disappears after ttl", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Revoke(ctx, "jti-2", 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		revoked, err := store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("revoke sets key with ttl", func(t *testing.T) {
		store, mr := newRedisTestStore(t)

		require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.InDelta(t, time.Hour.Seconds(), mr.TTL(keyPrefix+"jti-1").Seconds(), 1)
	})

	t.Run("entry expires naturally", func(t *testing.T) {
		store, mr := newRedisTestStore(t)

		require.NoError(t, store.Revoke(ctx, "jti-2", time.Minute))
		mr.FastForward(2 * time.Minute)

		revoked, err := store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		store, _ := newRedisTestStore(t)

		revoked, err := store.IsRevoked(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
