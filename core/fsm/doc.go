// Package fsm provides a small transition-validation engine for driving
// record lifecycles with auditable history.
//
// A Machine is built from a static Definition of states and named transitions
// and is immutable afterwards. It holds no record instances: callers pass the
// current record into Apply, which validates the transition and persists the
// outcome through a resource.Store.
//
// Two persistence shapes are supported. In update mode the record is patched
// in place with the new status and transition audit fields. In append mode a
// new record is inserted carrying the prior fields, the new status, and a
// back-reference to the prior record, preserving the full transition history.
//
// Invalid transitions return a descriptive error. Callers must treat it as a
// programming or data-integrity fault, not a transient condition.
//
// Usage:
//
//	machine, err := fsm.New(fsm.Notifications())
//	if err != nil {
//		return err
//	}
//
//	rec, err = machine.Apply(ctx, store, rec, "send", nil)
package fsm
