package fsm

// Login attempt states. The lifecycle is append-only so every attempt outcome
// stays queryable for abuse analysis.
const (
	LoginPending   = "pending"
	LoginSucceeded = "succeeded"
	LoginFailed    = "failed"
	LoginAbandoned = "abandoned"
)

// LoginAttempts returns the login-attempt lifecycle definition.
func LoginAttempts() Definition {
	return Definition{
		States: []string{LoginPending, LoginSucceeded, LoginFailed, LoginAbandoned},
		Transitions: map[string]Transition{
			"succeed": {From: []string{LoginPending}, To: LoginSucceeded},
			"fail":    {From: []string{LoginPending}, To: LoginFailed},
			"abandon": {From: []string{LoginPending}, To: LoginAbandoned},
		},
		Mode: ModeAppend,
	}
}

// Notification delivery states. Updated in place; a failed delivery can be
// requeued for retry.
const (
	NotificationQueued    = "queued"
	NotificationSending   = "sending"
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
)

// Notifications returns the notification-delivery lifecycle definition.
func Notifications() Definition {
	return Definition{
		States: []string{NotificationQueued, NotificationSending, NotificationDelivered, NotificationFailed},
		Transitions: map[string]Transition{
			"send":    {From: []string{NotificationQueued}, To: NotificationSending},
			"deliver": {From: []string{NotificationSending}, To: NotificationDelivered},
			"fail":    {From: []string{NotificationSending}, To: NotificationFailed},
			"retry":   {From: []string{NotificationFailed}, To: NotificationQueued},
		},
		Mode: ModeUpdate,
	}
}
