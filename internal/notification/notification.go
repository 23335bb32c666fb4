// Package notification delivers transactional email and SMS.
//
// Delivery is best-effort, at-most-once, and fully decoupled from the
// workflow write that triggered it: Enqueue never blocks and never fails the
// caller. Messages are handed to a background worker; provider failures are
// logged and counted, nothing more.
package notification

// Email is a transactional email message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// SMS is a transactional text message.
type SMS struct {
	To   string
	Body string
}

// Notifier is the port services use to fire notifications.
type Notifier interface {
	EnqueueEmail(email Email)
	EnqueueSMS(sms SMS)
}

// Noop discards all notifications. Used by tests and by wiring paths where a
// provider is deliberately absent.
type Noop struct{}

func (Noop) EnqueueEmail(Email) {}
func (Noop) EnqueueSMS(SMS)     {}
