package notification

import (
	"context"
	"log/slog"

	"stafflink/internal/platform/metrics"
)

// Mailer sends one email synchronously.
type Mailer interface {
	SendEmail(email Email) error
}

// SMSSender sends one text message synchronously.
type SMSSender interface {
	SendSMS(ctx context.Context, sms SMS) error
}

type message struct {
	email *Email
	sms   *SMS
}

// Dispatcher queues notifications on a buffered channel and delivers them
// from a single background worker. A full buffer drops the message rather
// than stalling the request that produced it.
type Dispatcher struct {
	logger  *slog.Logger
	mailer  Mailer
	sms     SMSSender
	metrics *metrics.Metrics
	inbox   chan message
}

func NewDispatcher(logger *slog.Logger, mailer Mailer, sms SMSSender, m *metrics.Metrics, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		logger:  logger,
		mailer:  mailer,
		sms:     sms,
		metrics: m,
		inbox:   make(chan message, buffer),
	}
}

func (d *Dispatcher) EnqueueEmail(email Email) {
	d.enqueue(message{email: &email})
}

func (d *Dispatcher) EnqueueSMS(sms SMS) {
	d.enqueue(message{sms: &sms})
}

func (d *Dispatcher) enqueue(m message) {
	select {
	case d.inbox <- m:
	default:
		d.logger.Warn("notification dropped, dispatch buffer full")
		if d.metrics != nil {
			d.metrics.NotificationsDropped.Inc()
		}
	}
}

// Run consumes the inbox until ctx is cancelled. Call it from an errgroup in
// main.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-d.inbox:
			d.deliver(ctx, m)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, m message) {
	switch {
	case m.email != nil:
		err := d.mailer.SendEmail(*m.email)
		d.record(ctx, "email", m.email.To, err)
	case m.sms != nil:
		err := d.sms.SendSMS(ctx, *m.sms)
		d.record(ctx, "sms", m.sms.To, err)
	}
}

func (d *Dispatcher) record(ctx context.Context, channel, to string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		d.logger.ErrorContext(ctx, "notification delivery failed",
			"channel", channel,
			"to", to,
			"error", err,
		)
	}
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues(channel, result).Inc()
	}
}
