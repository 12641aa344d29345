package event

import (
	"context"
	"log/slog"
)

// PublisherTransport defines how events are dispatched to observers.
type PublisherTransport interface {
	// Dispatch sends a named payload for delivery.
	// Returns an error if dispatch fails (e.g., buffer full).
	Dispatch(ctx context.Context, eventName string, payload any) error
}

// Publisher publishes events to observers via a transport.
// It is a stateless client with no lifecycle of its own; the transport owns
// buffering and delivery.
type Publisher struct {
	transport PublisherTransport
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the publisher.
// If not set, slog.Default() is used.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates an event publisher with the given transport.
func NewPublisher(transport PublisherTransport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: transport,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish dispatches a payload via the configured transport under its resolved
// event name. For the channel transport this returns immediately; for the sync
// transport it blocks until all handlers complete.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	return p.transport.Dispatch(ctx, eventName(payload), payload)
}
