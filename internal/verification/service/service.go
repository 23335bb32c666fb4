// Package service implements the employer KYC review workflow.
//
// Lifecycle: pending → verified | rejected; a rejected account may appeal
// with a fresh document and return to pending for re-review. Every decision
// notifies the account by email, best-effort.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"stafflink/internal/events"
	"stafflink/internal/identity/models"
	"stafflink/internal/identity/store"
	"stafflink/internal/notification"
	"stafflink/internal/platform/metrics"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/requestcontext"
)

// Service orchestrates KYC review decisions.
type Service struct {
	accounts store.AccountStore
	notifier notification.Notifier
	events   events.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(accounts store.AccountStore, notifier notification.Notifier, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		notifier: notifier,
		events:   publisher,
		metrics:  m,
		logger:   logger,
	}
}

// ReviewQueue lists employer accounts awaiting a decision, oldest first.
func (s *Service) ReviewQueue(ctx context.Context) ([]*models.Account, error) {
	queue, err := s.accounts.ListReviewQueue(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list review queue")
	}
	return queue, nil
}

// Approve transitions a pending account to verified. Approving an
// already-verified account is an explicit conflict, not a silent no-op.
func (s *Service) Approve(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, accountID,
		func(a *models.Account) error {
			if err := a.CanApprove(); err != nil {
				return asConflict(err)
			}
			return nil
		},
		func(a *models.Account) {
			a.ApplyApprove(now)
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.decide(ctx, "approved", account, events.TypeAccountVerified,
		"Your account has been verified",
		"Your employer account is verified. You can now post jobs and review applications.")
	return account, nil
}

// Reject transitions a pending account to rejected. The reason is mandatory;
// comments are optional reviewer context.
func (s *Service) Reject(ctx context.Context, accountID uuid.UUID, reason, comments string) (*models.Account, error) {
	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, accountID,
		func(a *models.Account) error {
			if err := a.CanReject(reason); err != nil {
				return asConflict(err)
			}
			return nil
		},
		func(a *models.Account) {
			a.ApplyReject(reason, comments, now)
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.decide(ctx, "rejected", account, events.TypeAccountRejected,
		"Your account verification was rejected",
		"Your employer verification was rejected: "+reason+". You can appeal with an updated document.")
	return account, nil
}

// AppealInput carries an account's appeal against a rejection.
type AppealInput struct {
	Reason      string
	NewDocument *models.KYCDocument
}

// Appeal is only legal while the account is rejected; it stores the appeal
// and routes the account back into the review queue.
func (s *Service) Appeal(ctx context.Context, accountID uuid.UUID, in AppealInput) (*models.Account, error) {
	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, accountID,
		func(a *models.Account) error {
			if err := a.CanAppeal(in.Reason); err != nil {
				return asConflict(err)
			}
			return nil
		},
		func(a *models.Account) {
			a.ApplyAppeal(in.Reason, in.NewDocument, now)
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.decide(ctx, "appealed", account, events.TypeAccountAppealed,
		"Your appeal has been received",
		"Your appeal is in the review queue. We will notify you once it has been re-reviewed.")
	return account, nil
}

// Delete removes the account permanently. There is no undo.
func (s *Service) Delete(ctx context.Context, accountID uuid.UUID) error {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return wrapAccountErr(err)
	}
	s.events.Publish(ctx, events.Event{
		Type:       events.TypeAccountDeleted,
		Subject:    accountID.String(),
		OccurredAt: requestcontext.Now(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	return nil
}

// decide records the outcome and fires the notification and event for one
// review decision.
func (s *Service) decide(ctx context.Context, outcome string, account *models.Account, eventType, subject, body string) {
	if s.metrics != nil {
		s.metrics.VerificationDecisions.WithLabelValues(outcome).Inc()
	}
	s.notifier.EnqueueEmail(notification.Email{To: account.Email, Subject: subject, Body: body})
	s.events.Publish(ctx, events.Event{
		Type:       eventType,
		Subject:    account.ID.String(),
		OccurredAt: requestcontext.Now(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
}

// asConflict maps invariant violations from the aggregate onto conflicts for
// the API; validation errors pass through unchanged.
func asConflict(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeConflict, dErrors.MessageOf(err))
	}
	return err
}

func wrapAccountErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "account not found")
	case dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeBadRequest):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification operation failed")
	}
}
