// Package event provides a minimal fire-and-forget event bus used to notify
// external observers about security decisions (bans, unbans, violations,
// country blocks).
//
// A Publisher dispatches typed payloads through a PublisherTransport. Two
// transports ship with the package:
//
//   - ChannelTransport: non-blocking buffered channel; observers consume the
//     envelope stream from Subscribe. Dispatch returns ErrBufferFull instead
//     of blocking when consumers fall behind.
//   - SyncTransport: executes registered handlers inline in the caller's
//     goroutine. Deterministic, intended for tests and simple wiring.
//
// Event names are derived from the payload type name unless the payload
// implements Named, in which case EventName() wins. Security events use Named
// to keep stable wire names like "security.banned" independent of Go type
// renames.
//
// Publishing is best-effort by design: emitting an event must never fail a
// security decision, so callers log dispatch errors and move on.
package event
