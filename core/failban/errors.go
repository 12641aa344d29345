package failban

import "errors"

var (
	// ErrWhitelisted is never returned by Ban (a whitelisted ban request is a
	// logged no-op) but is available for callers that need to pre-check.
	ErrWhitelisted = errors.New("ip is whitelisted")

	// ErrMissingIP is returned when an operation is called with an empty IP.
	ErrMissingIP = errors.New("ip address is required")

	// ErrDisabled is returned by administrative operations when the manager
	// is disabled by configuration.
	ErrDisabled = errors.New("failban is disabled")
)
