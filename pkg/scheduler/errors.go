package scheduler

import "errors"

var (
	// ErrJobAlreadyRegistered is returned when adding a job under a name that is taken.
	ErrJobAlreadyRegistered = errors.New("job already registered")

	// ErrJobNotFound is returned when stopping a job that is not registered.
	ErrJobNotFound = errors.New("job not found")

	// ErrAlreadyStarted is returned when starting a scheduler that is already running.
	ErrAlreadyStarted = errors.New("scheduler already started")

	// ErrNotStarted is returned when stopping a scheduler that is not running.
	ErrNotStarted = errors.New("scheduler not started")

	// ErrInvalidInterval is returned when a job interval is not positive.
	ErrInvalidInterval = errors.New("job interval must be positive")

	// ErrNilJob is returned when a job function is nil.
	ErrNilJob = errors.New("job function must not be nil")
)
