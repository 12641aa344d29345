package failban

import "time"

// BannedEvent is emitted when an IP is banned.
type BannedEvent struct {
	IP         string        `json:"ip"`
	Reason     string        `json:"reason"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Duration   time.Duration `json:"duration"`
	Violations int           `json:"violations"`
}

func (BannedEvent) EventName() string { return "security:banned" }

// UnbannedEvent is emitted when a ban is lifted, either manually or by expiry.
type UnbannedEvent struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"` // ReasonManual or ReasonExpired
}

func (UnbannedEvent) EventName() string { return "security:unbanned" }

// ViolationEvent is emitted for every recorded violation.
type ViolationEvent struct {
	IP        string    `json:"ip"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

func (ViolationEvent) EventName() string { return "security:violation" }

// CountryBlockedEvent is emitted when the country gate blocks an IP.
type CountryBlockedEvent struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
}

func (CountryBlockedEvent) EventName() string { return "security:country_blocked" }
