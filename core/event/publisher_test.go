package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionkit/bastion/core/event"
)

type plainPayload struct {
	Value string
}

type namedPayload struct {
	Value string
}

func (namedPayload) EventName() string { return "security.test" }

func TestPublisher_SyncTransport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("derives name from payload type", func(t *testing.T) {
		t.Parallel()

		transport := event.NewSyncTransport()
		var gotName string
		transport.Register(func(ctx context.Context, name string, payload any) error {
			gotName = name
			return nil
		})

		pub := event.NewPublisher(transport)
		require.NoError(t, pub.Publish(ctx, plainPayload{Value: "x"}))
		assert.Equal(t, "plainPayload", gotName)
	})

	t.Run("Named override wins over type name", func(t *testing.T) {
		t.Parallel()

		transport := event.NewSyncTransport()
		var gotName string
		transport.Register(func(ctx context.Context, name string, payload any) error {
			gotName = name
			return nil
		})

		pub := event.NewPublisher(transport)
		require.NoError(t, pub.Publish(ctx, namedPayload{Value: "x"}))
		assert.Equal(t, "security.test", gotName)
	})

	t.Run("aggregates handler errors", func(t *testing.T) {
		t.Parallel()

		transport := event.NewSyncTransport()
		failure := errors.New("observer down")
		transport.Register(func(ctx context.Context, name string, payload any) error {
			return failure
		})
		transport.Register(func(ctx context.Context, name string, payload any) error {
			return nil
		})

		pub := event.NewPublisher(transport)
		err := pub.Publish(ctx, plainPayload{})
		assert.ErrorIs(t, err, failure)
	})

	t.Run("recovers handler panic", func(t *testing.T) {
		t.Parallel()

		transport := event.NewSyncTransport()
		transport.Register(func(ctx context.Context, name string, payload any) error {
			panic("boom")
		})

		pub := event.NewPublisher(transport)
		err := pub.Publish(ctx, plainPayload{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestPublisher_ChannelTransport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("delivers envelopes to subscriber", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(4)
		pub := event.NewPublisher(transport)

		require.NoError(t, pub.Publish(ctx, namedPayload{Value: "hello"}))

		env := <-transport.Subscribe()
		assert.Equal(t, "security.test", env.Name)
		assert.Equal(t, namedPayload{Value: "hello"}, env.Payload)
		assert.False(t, env.OccurredAt.IsZero())
	})

	t.Run("returns ErrBufferFull instead of blocking", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(1)
		pub := event.NewPublisher(transport)

		require.NoError(t, pub.Publish(ctx, plainPayload{}))
		assert.ErrorIs(t, pub.Publish(ctx, plainPayload{}), event.ErrBufferFull)
	})

	t.Run("dispatch after close fails", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(1)
		require.NoError(t, transport.Close())
		require.NoError(t, transport.Close()) // idempotent

		pub := event.NewPublisher(transport)
		assert.ErrorIs(t, pub.Publish(ctx, plainPayload{}), event.ErrTransportClosed)
	})
}
