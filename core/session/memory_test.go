package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/session"
)

type testData struct {
	Cart []string `json:"cart"`
}

func TestMemoryStore_SetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set then get returns the same data with correct expiry", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{Cart: []string{"a"}}, time.Hour))

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "user-1", sess.UserID)
		assert.Equal(t, []string{"a"}, sess.Data.Cart)
		assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	})

	t.Run("get of unknown id is absent, not an error", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)

		sess, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("set on existing id updates in place", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{}, time.Hour))
		require.NoError(t, store.Set(ctx, "s1", "user-2", testData{Cart: []string{"b"}}, time.Hour))

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "user-2", sess.UserID)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.Entries)
	})
}

func TestMemoryStore_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("expired session is absent", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{}, 30*time.Millisecond))

		assert.Eventually(t, func() bool {
			sess, err := store.Get(ctx, "s1")
			return err == nil && sess == nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("expiry timer reclaims the entry without a read", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{}, 20*time.Millisecond))

		assert.Eventually(t, func() bool {
			stats, err := store.Stats(ctx)
			return err == nil && stats.Entries == 0 && stats.Expirations == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("touch extends expiry without changing data", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "user-1", testData{Cart: []string{"x"}}, 50*time.Millisecond))
		require.NoError(t, store.Touch(ctx, "s1", time.Hour))

		time.Sleep(100 * time.Millisecond)

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, []string{"x"}, sess.Data.Cart)
	})

	t.Run("touch on absent session is a no-op", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Touch(ctx, "ghost", time.Hour))

		sess, err := store.Get(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})
}

func TestMemoryStore_Eviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("inserting past capacity evicts the oldest-inserted entry", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](3, nil)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Set(ctx, fmt.Sprintf("s%d", i), "u", testData{}, time.Hour))
		}

		// Access order must not matter: read s0 and it must still be evicted first.
		_, err := store.Get(ctx, "s0")
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "s3", "u", testData{}, time.Hour))

		sess, err := store.Get(ctx, "s0")
		require.NoError(t, err)
		assert.Nil(t, sess)

		sess, err = store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.NotNil(t, sess)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, stats.Entries)
		assert.EqualValues(t, 1, stats.Evictions)
	})
}

func TestMemoryStore_DestroyClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("destroy is idempotent", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		require.NoError(t, store.Set(ctx, "s1", "u", testData{}, time.Hour))

		require.NoError(t, store.Destroy(ctx, "s1"))
		require.NoError(t, store.Destroy(ctx, "s1"))

		sess, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("clear drops all sessions", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData](10, nil)
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Set(ctx, fmt.Sprintf("s%d", i), "u", testData{}, time.Hour))
		}

		require.NoError(t, store.Clear(ctx))

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, stats.Entries)
	})
}
