package event

import (
	"context"
	"reflect"
	"time"
)

// Named lets a payload declare a stable event name independent of its Go type
// name. Payloads without Named are published under their bare type name.
type Named interface {
	EventName() string
}

// Envelope wraps a dispatched payload with its name and dispatch time.
// Observers consuming a ChannelTransport receive envelopes, not raw payloads.
type Envelope struct {
	Name       string
	Payload    any
	OccurredAt time.Time

	// Ctx is the dispatch context, preserved so observers can honor
	// caller-scoped values and deadlines.
	Ctx context.Context
}

// eventName resolves the published name of a payload: the Named override if
// present, otherwise the bare type name with pointers unwrapped.
func eventName(v any) string {
	if n, ok := v.(Named); ok {
		return n.EventName()
	}

	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
