package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AccountsRegistered    *prometheus.CounterVec
	Logins                prometheus.Counter
	VerificationDecisions *prometheus.CounterVec
	ApplicationsSubmitted prometheus.Counter
	StatusTransitions     *prometheus.CounterVec
	InterviewsScheduled   prometheus.Counter
	ExportsGenerated      *prometheus.CounterVec
	NotificationsSent     *prometheus.CounterVec
	NotificationsDropped  prometheus.Counter
	EventsPublished       *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AccountsRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_accounts_registered_total",
			Help: "Accounts registered, by account type.",
		}, []string{"user_type"}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stafflink_logins_total",
			Help: "Successful logins.",
		}),
		VerificationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_verification_decisions_total",
			Help: "Employer KYC decisions, by outcome.",
		}, []string{"outcome"}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stafflink_applications_submitted_total",
			Help: "Job applications submitted.",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_application_status_transitions_total",
			Help: "Application status transitions, by target status.",
		}, []string{"status"}),
		InterviewsScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stafflink_interviews_scheduled_total",
			Help: "Interviews scheduled.",
		}),
		ExportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_exports_generated_total",
			Help: "Spreadsheet exports generated, by kind.",
		}, []string{"kind"}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_notifications_sent_total",
			Help: "Notifications handed to a provider, by channel and result.",
		}, []string{"channel", "result"}),
		NotificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stafflink_notifications_dropped_total",
			Help: "Notifications dropped because the dispatch buffer was full.",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stafflink_workflow_events_published_total",
			Help: "Workflow events published to the broker, by result.",
		}, []string{"result"}),
	}
}
