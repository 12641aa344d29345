package failban

import (
	"time"

	"github.com/bastionkit/bastion/core/resource"
)

// Reason codes visible to callers and emitted in events. Enforcement never
// exposes internal error detail, only these codes.
const (
	ReasonRateLimit         = "rate_limit"
	ReasonBlacklisted       = "blacklisted"
	ReasonCountryRestricted = "country_restricted"
	ReasonManual            = "manual"
	ReasonExpired           = "expired"
)

// Ban is a durable ban record, keyed by IP.
type Ban struct {
	IP             string
	Reason         string
	ViolationCount int
	BannedAt       time.Time
	ExpiresAt      time.Time
	Metadata       map[string]any
}

// IsExpired returns true if the ban has lapsed.
func (b Ban) IsExpired() bool {
	return time.Now().After(b.ExpiresAt)
}

func (b Ban) toRecord() resource.Record {
	return resource.Record{
		"id":             b.IP,
		"ip":             b.IP,
		"reason":         b.Reason,
		"violationCount": b.ViolationCount,
		"bannedAt":       b.BannedAt,
		"expiresAt":      b.ExpiresAt,
		"metadata":       b.Metadata,
	}
}

func banFromRecord(rec resource.Record) Ban {
	b := Ban{}
	b.IP, _ = rec["ip"].(string)
	b.Reason, _ = rec["reason"].(string)
	b.ViolationCount = asInt(rec["violationCount"])
	if t, ok := rec["bannedAt"].(time.Time); ok {
		b.BannedAt = t
	}
	if t, ok := rec["expiresAt"].(time.Time); ok {
		b.ExpiresAt = t
	}
	if m, ok := rec["metadata"].(map[string]any); ok {
		b.Metadata = m
	}
	return b
}

// Violation is a single recorded abuse event. Append-only; never mutated.
type Violation struct {
	IP        string
	Timestamp time.Time
	Type      string
	Path      string
	UserAgent string
}

func (v Violation) toRecord() resource.Record {
	return resource.Record{
		"ip":        v.IP,
		"timestamp": v.Timestamp,
		"type":      v.Type,
		"path":      v.Path,
		"userAgent": v.UserAgent,
	}
}

// asInt tolerates the numeric types document stores hand back.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
