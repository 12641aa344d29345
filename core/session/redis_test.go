package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/session"
)

func newRedisStore(t *testing.T) (*session.RedisStore[testData], *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore[testData](client, "session:", nil), srv
}

func TestRedisStore_SetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set then get round-trips data and expiry", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{Cart: []string{"a", "b"}}, time.Hour))

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "s1", sess.ID)
		assert.Equal(t, "user-1", sess.UserID)
		assert.Equal(t, []string{"a", "b"}, sess.Data.Cart)
		assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	})

	t.Run("get of unknown id is absent", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)

		sess, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("expired key is absent", func(t *testing.T) {
		t.Parallel()

		store, srv := newRedisStore(t)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Second))

		srv.FastForward(2 * time.Second)

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("transport failure on get degrades to absent", func(t *testing.T) {
		t.Parallel()

		store, srv := newRedisStore(t)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))

		srv.Close()

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("transport failure on set propagates", func(t *testing.T) {
		t.Parallel()

		store, srv := newRedisStore(t)
		srv.Close()

		assert.Error(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))
	})
}

func TestRedisStore_TouchDestroy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("touch extends expiry natively", func(t *testing.T) {
		t.Parallel()

		store, srv := newRedisStore(t)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{Cart: []string{"x"}}, time.Second))
		require.NoError(t, store.Touch(ctx, "s1", time.Hour))

		srv.FastForward(2 * time.Second)

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, []string{"x"}, sess.Data.Cart)
	})

	t.Run("touch on absent session is a no-op", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		require.NoError(t, store.Touch(ctx, "ghost", time.Hour))

		sess, err := store.Get(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("destroy is idempotent", func(t *testing.T) {
		t.Parallel()

		store, _ := newRedisStore(t)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))

		require.NoError(t, store.Destroy(ctx, "s1"))
		require.NoError(t, store.Destroy(ctx, "s1"))
	})
}

func TestRedisStore_StatsClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, _ := newRedisStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("s%d", i), "u", testData{}, time.Hour))
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.Entries)

	require.NoError(t, store.Clear(ctx))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Entries)
}
