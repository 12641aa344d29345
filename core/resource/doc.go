// Package resource defines the document-resource persistence contract shared by
// the security components: a small CRUD surface over a single named resource
// (collection) of schemaless records.
//
// The interface is deliberately narrow (insert, update, patch, get, delete,
// query, list) so that any document store can back it. The package ships an
// in-memory implementation for tests and transient deployments; a MongoDB-backed
// implementation lives in integration/database/mongo.
//
// # Not-Found Semantics
//
// Implementations must return ErrNotFound (possibly wrapped) when a record does
// not exist, and must never conflate it with transport or server failures.
// Callers normalize ErrNotFound into absence values at their own boundaries:
//
//	rec, err := store.Get(ctx, id)
//	if errors.Is(err, resource.ErrNotFound) {
//	    return nil, nil // absent, not an error
//	}
//
// # Query Filters
//
// Query accepts a flat filter map. A plain value means equality; a nested map
// keyed by an operator expresses a range condition:
//
//	store.Query(ctx, resource.Filter{
//	    "ip":        "10.0.0.5",
//	    "timestamp": resource.Filter{resource.OpGTE: cutoff},
//	})
//
// Only the operators named by the Op* constants are supported. This mirrors the
// MongoDB filter shape so the Mongo adapter can pass filters through unchanged.
package resource
