package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func idempotencyStores(t *testing.T) map[string]shared.IdempotencyStore {
	mem := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = mem.Close() })
	_, client := newMiniredis(t)
	return map[string]shared.IdempotencyStore{
		"memory": mem,
		"redis":  NewRedisIdempotencyStore(client, ""),
	}
}

func TestIdempotencyStores_ClaimLifecycle(t *testing.T) {
	for name, store := range idempotencyStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			isNew, err := store.Claim(ctx, "evt-1", time.Hour)
			require.NoError(t, err)
			assert.True(t, isNew)

			isNew, err = store.Claim(ctx, "evt-1", time.Hour)
			require.NoError(t, err)
			assert.False(t, isNew, "second claim must be refused")

			processed, err := store.Claimed(ctx, "evt-1")
			require.NoError(t, err)
			assert.True(t, processed)

			require.NoError(t, store.Release(ctx, "evt-1"))
			processed, err = store.Claimed(ctx, "evt-1")
			require.NoError(t, err)
			assert.False(t, processed)

			isNew, err = store.Claim(ctx, "evt-1", time.Hour)
			require.NoError(t, err)
			assert.True(t, isNew, "released claim can be taken again")

			assert.NoError(t, store.Release(ctx, "never-claimed"))
		})
	}
}

func TestIdempotencyStores_ConcurrentClaims(t *testing.T) {
	for name, store := range idempotencyStores(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 50
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := store.Claim(context.Background(), "evt-race", time.Hour)
					assert.NoError(t, err)
					if ok {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, fresh)
		})
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = store.Claim(ctx, "short", time.Minute)
	_, _ = store.Claim(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	now = now.Add(2 * time.Minute)

	processed, err := store.Claimed(ctx, "short")
	require.NoError(t, err)
	assert.False(t, processed)

	store.cleanup()
	assert.Equal(t, 1, store.Size())

	isNew, err := store.Claim(ctx, "short", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew, "expired claim can be taken again")

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore_TTLAndOutage(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewRedisIdempotencyStore(client, "test:")
	ctx := context.Background()

	_, err := store.Claim(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("test:evt-1"))

	mr.FastForward(2 * time.Minute)
	isNew, err := store.Claim(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	mr.Close()
	_, err = store.Claim(ctx, "evt-2", time.Minute)
	assert.Error(t, err)
	assert.NoError(t, store.Close(), "shared client is not closed by the store")
}

func TestOpenIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled redis falls back to memory", func(t *testing.T) {
		store, err := OpenIdempotencyStore(ctx, config.RedisConfig{Enabled: false}, zap.NewNop(), false)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("fallback can be refused", func(t *testing.T) {
		_, err := OpenIdempotencyStore(ctx, config.RedisConfig{Enabled: false}, zap.NewNop(), true)
		assert.ErrorIs(t, err, errRedisDisabled)
	})

	t.Run("reachable redis is preferred", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mustPort(t, mr)}
		store, err := OpenIdempotencyStore(ctx, cfg, zap.NewNop(), true)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})
}
