package resource

import "errors"

var (
	// ErrNotFound is returned when a record does not exist. Implementations
	// must keep it distinguishable from transport and server failures.
	ErrNotFound = errors.New("record not found")

	// ErrMissingID is returned when an operation requires a record id and
	// none was provided.
	ErrMissingID = errors.New("record id is required")
)
