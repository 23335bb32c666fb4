// Package events publishes workflow transition events to the message broker.
//
// Consumers downstream (analytics, audit) read these; the platform itself
// never does. Publishing is best-effort: a broker outage is logged and
// counted but never fails the workflow write that produced the event.
package events

import (
	"context"
	"time"
)

// Event types emitted by the workflows.
const (
	TypeAccountRegistered  = "account.registered"
	TypeAccountVerified    = "account.verified"
	TypeAccountRejected    = "account.rejected"
	TypeAccountAppealed    = "account.appealed"
	TypeAccountDeleted     = "account.deleted"
	TypeApplicationApplied = "application.applied"
	TypeApplicationStatus  = "application.status_changed"
	TypeInterviewScheduled = "interview.scheduled"
)

// Event is one workflow transition.
type Event struct {
	Type       string            `json:"type"`
	Subject    string            `json:"subject"`
	OccurredAt time.Time         `json:"occurred_at"`
	ClientIP   string            `json:"client_ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Publisher emits events. Implementations must not block the caller beyond a
// local enqueue and must never return delivery errors to workflows.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop drops all events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
