package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler processes a dispatched event inline.
type Handler func(ctx context.Context, name string, payload any) error

// SyncTransport executes registered handlers synchronously in the caller's
// goroutine. Deterministic and allocation-free, which makes it the transport
// of choice for tests.
type SyncTransport struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewSyncTransport creates a synchronous transport with no handlers.
func NewSyncTransport() *SyncTransport {
	return &SyncTransport{}
}

// Register adds a handler invoked for every dispatched event.
func (t *SyncTransport) Register(h Handler) {
	if h == nil {
		return
	}

	t.mu.Lock()
	t.handlers = append(t.handlers, h)
	t.mu.Unlock()
}

// Dispatch runs all handlers immediately and returns their errors joined.
// Handler panics are recovered and converted to errors so a misbehaving
// observer cannot take down the publisher.
func (t *SyncTransport) Dispatch(ctx context.Context, eventName string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.RLock()
	handlers := make([]Handler, len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := safeHandle(h, ctx, eventName, payload); err != nil {
			errs = append(errs, fmt.Errorf("handler for %s failed: %w", eventName, err))
		}
	}

	return errors.Join(errs...)
}

func safeHandle(h Handler, ctx context.Context, name string, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, name, payload)
}
