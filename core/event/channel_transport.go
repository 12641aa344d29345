package event

import (
	"context"
	"sync/atomic"
	"time"
)

// ChannelTransport delivers events through a buffered channel. Dispatch never
// blocks: when the buffer is full the event is dropped and ErrBufferFull is
// returned so the caller can log the loss.
type ChannelTransport struct {
	ch     chan Envelope
	closed atomic.Bool
}

// NewChannelTransport creates a channel-based transport with the given buffer size.
func NewChannelTransport(bufferSize int) *ChannelTransport {
	if bufferSize < 1 {
		panic("event: bufferSize must be at least 1")
	}

	return &ChannelTransport{
		ch: make(chan Envelope, bufferSize),
	}
}

// Dispatch enqueues an envelope for async consumption.
// Returns ErrBufferFull immediately if the buffer is full.
func (t *ChannelTransport) Dispatch(ctx context.Context, eventName string, payload any) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	env := Envelope{
		Name:       eventName,
		Payload:    payload,
		OccurredAt: time.Now(),
		Ctx:        ctx,
	}

	select {
	case t.ch <- env:
		return nil
	default:
		return ErrBufferFull
	}
}

// Subscribe returns the envelope stream for observers to consume.
func (t *ChannelTransport) Subscribe() <-chan Envelope {
	return t.ch
}

// Close closes the envelope channel. Consumers drain what remains and exit.
// Idempotent.
func (t *ChannelTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		close(t.ch)
	}
	return nil
}
