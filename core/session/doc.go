// Package session provides a storage-agnostic session store with TTL semantics
// and three interchangeable drivers: an in-process memory store, a Redis-backed
// store, and a durable document-resource store.
//
// All drivers implement the same Store contract:
//
//   - Get returns (nil, nil) for absent sessions; not-found is never an error.
//   - Set is a single logical upsert; drivers fall back to insert transparently
//     when the backend reports a missing record.
//   - Destroy is idempotent.
//   - Touch extends expiry without rewriting data and is a no-op on absent
//     sessions.
//   - A session past its ExpiresAt is treated as absent by every driver,
//     whether reclaimed eagerly (memory timers, Redis native TTL) or lazily
//     (resource store with delegated purge).
//
// Drivers are constructed through the New factory:
//
//	store, err := session.New[map[string]any](ctx, session.Config{
//	    Driver: session.DriverRedis,
//	    RedisURL: "redis://localhost:6379/0",
//	})
//
// The memory driver is bounded: inserting past MaxEntries evicts the
// oldest-inserted session (insertion order, not access order). It is intended
// for development and single-instance deployments; data is lost on restart by
// design. The Redis driver delegates memory pressure to Redis itself. The
// resource driver keeps expiry as a timestamp field and delegates reclamation
// to the backing store's own purge mechanism (e.g. a Mongo TTL index).
package session
