package fsm

import "errors"

var (
	// ErrUnknownTransition is returned when a transition name is not declared
	// in the machine definition.
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrInvalidTransition is returned when the record's current state is not
	// an allowed source for the requested transition.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidDefinition is returned by New for inconsistent definitions.
	ErrInvalidDefinition = errors.New("invalid machine definition")
	// ErrMissingStatus is returned when the record carries no status field.
	ErrMissingStatus = errors.New("record has no status field")
	// ErrMissingRecordID is returned when a persisted transition is requested
	// for a record without an id.
	ErrMissingRecordID = errors.New("record has no id field")
)
