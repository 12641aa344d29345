package session

import "time"

// Session represents a stored user session. The Data type parameter allows
// application-specific session payloads; use map[string]any for schemaless data.
type Session[Data any] struct {
	// ID is the opaque session identifier chosen by the caller.
	ID string

	// UserID identifies the authenticated user (empty for anonymous sessions).
	UserID string

	// Data holds custom application-specific session information.
	Data Data

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session has passed its expiry time.
func (s Session[Data]) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime of the session, or zero if expired.
func (s Session[Data]) TTL() time.Duration {
	remaining := time.Until(s.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
