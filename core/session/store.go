package session

import (
	"context"
	"time"
)

// Store defines the uniform session persistence contract shared by all drivers.
// Implementations must be safe for concurrent use.
type Store[Data any] interface {
	// Get returns the session with the given id, or (nil, nil) if it does not
	// exist or has expired. Not-found is never an error.
	Get(ctx context.Context, id string) (*Session[Data], error)

	// Set upserts a session with the given payload and TTL. If the backend
	// reports no existing record, the driver falls back to insert semantics
	// transparently.
	Set(ctx context.Context, id, userID string, data Data, ttl time.Duration) error

	// Destroy deletes a session. Deleting an absent session is not an error.
	Destroy(ctx context.Context, id string) error

	// Touch extends the session expiry without rewriting its data. If the
	// session is absent, Touch is a no-op rather than an error.
	Touch(ctx context.Context, id string, ttl time.Duration) error

	// Stats reports live-entry counts for observability.
	Stats(ctx context.Context) (Stats, error)

	// Clear deletes all sessions. For controlled and testing contexts only;
	// never call it on a production request path.
	Clear(ctx context.Context) error
}

// Stats reports session store observability counters.
type Stats struct {
	Driver string `json:"driver"`
	// Entries is the number of live (unexpired) sessions.
	Entries int64 `json:"entries"`
	// Evictions counts capacity-driven removals (memory driver only).
	Evictions int64 `json:"evictions,omitempty"`
	// Expirations counts TTL-driven removals observed by the driver.
	Expirations int64 `json:"expirations,omitempty"`
}
