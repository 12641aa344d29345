package fsm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/fsm"
	"github.com/bastionkit/bastion/core/resource"
)

func jobMachine(t *testing.T, mode fsm.Mode) *fsm.Machine {
	t.Helper()
	m, err := fsm.New(fsm.Definition{
		States: []string{"queued", "running", "success", "failure"},
		Transitions: map[string]fsm.Transition{
			"START":   {From: []string{"queued"}, To: "running"},
			"SUCCEED": {From: []string{"running"}, To: "success"},
			"FAIL":    {From: []string{"running"}, To: "failure"},
			"RETRY":   {From: []string{"failure"}, To: "queued"},
		},
		Mode: mode,
	})
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty definitions", func(t *testing.T) {
		t.Parallel()

		_, err := fsm.New(fsm.Definition{})
		assert.ErrorIs(t, err, fsm.ErrInvalidDefinition)

		_, err = fsm.New(fsm.Definition{States: []string{"a"}})
		assert.ErrorIs(t, err, fsm.ErrInvalidDefinition)
	})

	t.Run("rejects transitions referencing undeclared states", func(t *testing.T) {
		t.Parallel()

		_, err := fsm.New(fsm.Definition{
			States: []string{"a"},
			Transitions: map[string]fsm.Transition{
				"GO": {From: []string{"a"}, To: "b"},
			},
		})
		assert.ErrorIs(t, err, fsm.ErrInvalidDefinition)

		_, err = fsm.New(fsm.Definition{
			States: []string{"a", "b"},
			Transitions: map[string]fsm.Transition{
				"GO": {From: []string{"missing"}, To: "b"},
			},
		})
		assert.ErrorIs(t, err, fsm.ErrInvalidDefinition)

		_, err = fsm.New(fsm.Definition{
			States: []string{"a", "b"},
			Transitions: map[string]fsm.Transition{
				"GO": {From: nil, To: "b"},
			},
		})
		assert.ErrorIs(t, err, fsm.ErrInvalidDefinition)
	})

	t.Run("prebuilt lifecycles are valid", func(t *testing.T) {
		t.Parallel()

		assert.NotPanics(t, func() { fsm.MustNew(fsm.LoginAttempts()) })
		assert.NotPanics(t, func() { fsm.MustNew(fsm.Notifications()) })
	})
}

func TestMachine_CanTransition(t *testing.T) {
	t.Parallel()

	m := jobMachine(t, fsm.ModeUpdate)

	t.Run("legal transition returns the target state", func(t *testing.T) {
		t.Parallel()

		next, err := m.CanTransition("queued", "START")
		require.NoError(t, err)
		assert.Equal(t, "running", next)
	})

	t.Run("unknown transition lists the valid ones", func(t *testing.T) {
		t.Parallel()

		_, err := m.CanTransition("queued", "LAUNCH")
		require.ErrorIs(t, err, fsm.ErrUnknownTransition)
		assert.Contains(t, err.Error(), "LAUNCH")
		assert.Contains(t, err.Error(), "START")
		assert.Contains(t, err.Error(), "SUCCEED")
	})

	t.Run("disallowed source names attempted and allowed states", func(t *testing.T) {
		t.Parallel()

		_, err := m.CanTransition("queued", "SUCCEED")
		require.ErrorIs(t, err, fsm.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "queued")
		assert.Contains(t, err.Error(), "running")
	})
}

func TestMachine_Apply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("update mode patches the record in place", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeUpdate)
		store := resource.NewMemoryStore()

		rec, err := store.Insert(ctx, resource.Record{"status": "queued", "job": "sync"})
		require.NoError(t, err)
		id := rec["id"].(string)

		updated, err := m.Apply(ctx, store, rec, "START", map[string]any{"worker": "w-1"})
		require.NoError(t, err)
		assert.Equal(t, id, updated["id"])
		assert.Equal(t, "running", updated["status"])
		assert.Equal(t, "START", updated["lastTransition"])
		assert.NotNil(t, updated["lastTransitionAt"])
		assert.Equal(t, "w-1", updated["worker"])
		assert.Equal(t, "sync", updated["job"])

		stored, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "running", stored["status"])
	})

	t.Run("append mode inserts a new record with a back-reference", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeAppend)
		store := resource.NewMemoryStore()

		rec, err := store.Insert(ctx, resource.Record{"status": "queued", "job": "sync"})
		require.NoError(t, err)
		prevID := rec["id"].(string)

		next, err := m.Apply(ctx, store, rec, "START", nil)
		require.NoError(t, err)
		assert.NotEqual(t, prevID, next["id"])
		assert.Equal(t, prevID, next["previousId"])
		assert.Equal(t, "running", next["status"])
		assert.Equal(t, "sync", next["job"])

		// The prior record is preserved untouched.
		prev, err := store.Get(ctx, prevID)
		require.NoError(t, err)
		assert.Equal(t, "queued", prev["status"])

		all, err := store.List(ctx, resource.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("invalid transition leaves the record unchanged", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeUpdate)
		store := resource.NewMemoryStore()

		rec, err := store.Insert(ctx, resource.Record{"status": "queued"})
		require.NoError(t, err)

		_, err = m.Apply(ctx, store, rec, "SUCCEED", nil)
		require.ErrorIs(t, err, fsm.ErrInvalidTransition)

		stored, err := store.Get(ctx, rec["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, "queued", stored["status"])
		assert.NotContains(t, stored, "lastTransition")
	})

	t.Run("nil store applies the transition in memory only", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeUpdate)
		rec := resource.Record{"status": "queued"}

		updated, err := m.Apply(ctx, nil, rec, "START", nil)
		require.NoError(t, err)
		assert.Equal(t, "running", updated["status"])
		assert.Equal(t, "queued", rec["status"], "input record is not mutated")
	})

	t.Run("record without status is rejected", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeUpdate)
		_, err := m.Apply(ctx, nil, resource.Record{"id": "x"}, "START", nil)
		assert.ErrorIs(t, err, fsm.ErrMissingStatus)
	})

	t.Run("update mode requires an id for persistence", func(t *testing.T) {
		t.Parallel()

		m := jobMachine(t, fsm.ModeUpdate)
		store := resource.NewMemoryStore()
		_, err := m.Apply(ctx, store, resource.Record{"status": "queued"}, "START", nil)
		assert.ErrorIs(t, err, fsm.ErrMissingRecordID)
	})
}

func TestMachine_Queries(t *testing.T) {
	t.Parallel()

	m := jobMachine(t, fsm.ModeUpdate)

	t.Run("valid transitions per state", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"START"}, m.ValidTransitions("queued"))
		assert.Equal(t, []string{"FAIL", "SUCCEED"}, m.ValidTransitions("running"))
		assert.Empty(t, m.ValidTransitions("success"))
	})

	t.Run("terminal states have no outgoing transitions", func(t *testing.T) {
		t.Parallel()

		assert.True(t, m.IsTerminal("success"))
		assert.False(t, m.IsTerminal("failure"), "failure can be retried")
		assert.False(t, m.IsTerminal("queued"))
	})

	t.Run("notification lifecycle has a single terminal state", func(t *testing.T) {
		t.Parallel()

		n := fsm.MustNew(fsm.Notifications())
		assert.True(t, n.IsTerminal(fsm.NotificationDelivered))
		assert.False(t, n.IsTerminal(fsm.NotificationFailed))
	})
}
