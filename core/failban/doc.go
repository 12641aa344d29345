// Package failban detects and punishes abusive clients: it counts violations
// per IP over a sliding time window, bans IPs that cross the threshold, and
// enforces bans from an in-memory cache so the hot request path never touches
// storage.
//
// # Enforcement Model
//
// IsBanned is the hot-path check: whitelist wins over everything, blacklisted
// IPs are always banned, and everything else is answered from the in-memory
// ban cache without any I/O. The durable ban record (persisted through a
// document-resource collaborator) is authoritative across restarts (Hydrate
// reloads unexpired records into the cache on startup), but during normal
// operation the cache is trusted for enforcement. Writes go to both
// (write-through); a durable write failure is logged and does not undo the
// cache entry, so enforcement proceeds even when persistence is degraded.
//
// A periodic eviction job, registered on an injected scheduler, sweeps expired
// cache entries (default once per minute) and emits an "expired" unban event
// for each. The sweep never touches the durable store; durable TTL reclamation
// is delegated to the backing store's own purge mechanism.
//
// # Country Gate
//
// The optional GeoIP gate resolves an IP to a country through an injected
// Resolver and applies, in order: whitelist (never blocked), blocked-country
// list, allowed-country list, and the BlockUnknown policy for unresolvable
// IPs. Lookups are cached in a bounded insertion-order cache.
//
// # Failure Policy
//
// Enforcement checks never return errors; they produce a decision and default
// to "not blocked" when an internal collaborator fails (fail-open), logging
// loudly. Set FailOpen to false to fail closed instead. Administrative
// operations (Ban, Unban, GetBan) surface errors to the caller.
package failban
