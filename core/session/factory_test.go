package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/resource"
	"github.com/bastionkit/bastion/core/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown driver error names the supported set", func(t *testing.T) {
		t.Parallel()

		_, err := session.New[testData](ctx, session.Config{Driver: "cassandra"})
		require.ErrorIs(t, err, session.ErrUnknownDriver)
		assert.Contains(t, err.Error(), "memory")
		assert.Contains(t, err.Error(), "redis")
		assert.Contains(t, err.Error(), "resource")
	})

	t.Run("memory driver", func(t *testing.T) {
		t.Parallel()

		store, err := session.New[testData](ctx, session.Config{Driver: session.DriverMemory, MaxEntries: 10})
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))
		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.NotNil(t, sess)
	})

	t.Run("redis driver requires client or URL", func(t *testing.T) {
		t.Parallel()

		_, err := session.New[testData](ctx, session.Config{Driver: session.DriverRedis})
		assert.ErrorIs(t, err, session.ErrMissingRedisSource)
	})

	t.Run("redis driver rejects malformed URL at factory time", func(t *testing.T) {
		t.Parallel()

		_, err := session.New[testData](ctx, session.Config{
			Driver:   session.DriverRedis,
			RedisURL: "http://not-redis",
		})
		assert.ErrorIs(t, err, session.ErrRedisConnect)
	})

	t.Run("redis driver rejects unreachable URL at factory time", func(t *testing.T) {
		t.Parallel()

		_, err := session.New[testData](ctx, session.Config{
			Driver:   session.DriverRedis,
			RedisURL: "redis://127.0.0.1:1/0",
		})
		assert.ErrorIs(t, err, session.ErrRedisConnect)
	})

	t.Run("redis driver constructs from URL", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)

		store, err := session.New[testData](ctx, session.Config{
			Driver:   session.DriverRedis,
			RedisURL: "redis://" + srv.Addr(),
		})
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))
	})

	t.Run("redis driver prefers supplied client", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		store, err := session.New[testData](ctx,
			session.Config{Driver: session.DriverRedis, KeyPrefix: "sess:"},
			session.WithRedisClient(client))
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))
	})

	t.Run("resource driver requires a handle", func(t *testing.T) {
		t.Parallel()

		_, err := session.New[testData](ctx, session.Config{
			Driver:       session.DriverResource,
			ResourceName: "oidc_sessions",
		})
		require.ErrorIs(t, err, session.ErrMissingResourceStore)
		assert.Contains(t, err.Error(), "oidc_sessions")
	})

	t.Run("resource driver constructs with a handle", func(t *testing.T) {
		t.Parallel()

		store, err := session.New[testData](ctx,
			session.Config{Driver: session.DriverResource, ResourceName: "oidc_sessions"},
			session.WithResourceStore(resource.NewMemoryStore()))
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))
	})
}
