package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	"stafflink/internal/interviews/models"
	"stafflink/internal/interviews/store"
	"stafflink/internal/notification"
	"stafflink/internal/platform/metrics"
	dErrors "stafflink/pkg/domain-errors"
	emailutil "stafflink/pkg/email"
	"stafflink/pkg/platform/sentinel"
	pkgstrings "stafflink/pkg/platform/strings"
	"stafflink/pkg/requestcontext"
)

// Service orchestrates interview scheduling. The candidate is told about new
// and moved slots over email and SMS; delivery is best-effort.
type Service struct {
	interviews store.InterviewStore
	candidates candstore.CandidateStore
	notifier   notification.Notifier
	events     events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(interviews store.InterviewStore, candidates candstore.CandidateStore, notifier notification.Notifier, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		interviews: interviews,
		candidates: candidates,
		notifier:   notifier,
		events:     publisher,
		metrics:    m,
		logger:     logger,
	}
}

// ScheduleInput carries a new interview request.
type ScheduleInput struct {
	EmployerID   uuid.UUID
	CandidateID  uuid.UUID
	JobID        *uuid.UUID
	ScheduledAt  time.Time
	Duration     time.Duration
	Interviewers []string
	MeetingLink  string
	Notes        string
}

// Schedule books an interview slot and notifies the candidate.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*models.Interview, error) {
	now := requestcontext.Now(ctx)
	if in.ScheduledAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "a date and time is required")
	}
	if in.ScheduledAt.Before(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "interview cannot be scheduled in the past")
	}
	if in.Duration <= 0 {
		in.Duration = 30 * time.Minute
	}

	candidate, err := s.candidates.FindByID(ctx, in.CandidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	interview := models.NewInterview(uuid.New(), in.EmployerID, in.CandidateID, in.ScheduledAt, in.Duration, now)
	interview.JobID = in.JobID
	interview.Interviewers = pkgstrings.DedupeAndTrim(in.Interviewers)
	interview.MeetingLink = in.MeetingLink
	interview.Notes = in.Notes

	if err := s.interviews.Create(ctx, interview); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create interview")
	}

	s.notifySlot(candidate.Email, candidate.Phone, candidate.FullName,
		"Interview scheduled", interview)
	s.events.Publish(ctx, events.Event{
		Type:       events.TypeInterviewScheduled,
		Subject:    interview.ID.String(),
		OccurredAt: now,
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		Fields:     map[string]string{"candidate_id": in.CandidateID.String()},
	})
	if s.metrics != nil {
		s.metrics.InterviewsScheduled.Inc()
	}
	return interview, nil
}

// Confirm marks a scheduled or rescheduled interview as confirmed.
func (s *Service) Confirm(ctx context.Context, employerID, id uuid.UUID) (*models.Interview, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, employerID, id,
		func(i *models.Interview) error { return i.CanConfirm() },
		func(i *models.Interview) { i.ApplyConfirm(now) },
	)
}

// Reschedule moves the interview to a new slot and notifies the candidate.
func (s *Service) Reschedule(ctx context.Context, employerID, id uuid.UUID, scheduledAt time.Time, duration time.Duration) (*models.Interview, error) {
	now := requestcontext.Now(ctx)
	if scheduledAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "a date and time is required")
	}
	if scheduledAt.Before(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "interview cannot be scheduled in the past")
	}

	interview, err := s.transition(ctx, employerID, id,
		func(i *models.Interview) error { return i.CanReschedule() },
		func(i *models.Interview) { i.ApplyReschedule(scheduledAt, duration, now) },
	)
	if err != nil {
		return nil, err
	}

	if candidate, err := s.candidates.FindByID(ctx, interview.CandidateID); err == nil {
		s.notifySlot(candidate.Email, candidate.Phone, candidate.FullName,
			"Interview rescheduled", interview)
	} else {
		s.logger.WarnContext(ctx, "reschedule notification skipped",
			"candidate_id", interview.CandidateID, "error", err)
	}
	return interview, nil
}

// Complete records the interview as done, with optional closing notes.
func (s *Service) Complete(ctx context.Context, employerID, id uuid.UUID, notes string) (*models.Interview, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, employerID, id,
		func(i *models.Interview) error { return i.CanComplete() },
		func(i *models.Interview) { i.ApplyComplete(notes, now) },
	)
}

// Cancel calls the interview off.
func (s *Service) Cancel(ctx context.Context, employerID, id uuid.UUID) (*models.Interview, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, employerID, id,
		func(i *models.Interview) error { return i.CanCancel() },
		func(i *models.Interview) { i.ApplyCancel(now) },
	)
}

// Delete removes the interview entirely. There is no soft delete; cancelled
// records that should stay visible use Cancel instead.
func (s *Service) Delete(ctx context.Context, employerID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, employerID, id); err != nil {
		return err
	}
	if err := s.interviews.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "interview not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete interview")
	}
	return nil
}

// Get returns one of the employer's interviews.
func (s *Service) Get(ctx context.Context, employerID, id uuid.UUID) (*models.Interview, error) {
	return s.getOwned(ctx, employerID, id)
}

// ListByEmployer returns the employer's interviews, expiring stale ones on
// the way out.
func (s *Service) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Interview, error) {
	interviews, err := s.interviews.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list interviews")
	}
	return s.expireStale(ctx, interviews), nil
}

// ListByCandidate returns the candidate's interviews for the account that
// owns the candidate record, expiring stale ones on the way out.
func (s *Service) ListByCandidate(ctx context.Context, accountID, candidateID uuid.UUID) ([]*models.Interview, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	if candidate.AccountID == nil || *candidate.AccountID != accountID {
		return nil, dErrors.New(dErrors.CodeForbidden, "candidate belongs to another account")
	}

	interviews, err := s.interviews.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list interviews")
	}
	return s.expireStale(ctx, interviews), nil
}

// expireStale flips past-dated live interviews to expired. The write-back is
// best-effort; the returned slice always reflects the expired status.
func (s *Service) expireStale(ctx context.Context, interviews []*models.Interview) []*models.Interview {
	now := requestcontext.Now(ctx)
	for _, interview := range interviews {
		if !interview.MarkExpiredIfPast(now) {
			continue
		}
		if err := s.interviews.Update(ctx, interview); err != nil {
			s.logger.WarnContext(ctx, "expiry write-back failed",
				"interview_id", interview.ID, "error", err)
		}
	}
	return interviews
}

func (s *Service) getOwned(ctx context.Context, employerID, id uuid.UUID) (*models.Interview, error) {
	interview, err := s.interviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "interview not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load interview")
	}
	if interview.EmployerID != employerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "interview belongs to another employer")
	}
	return interview, nil
}

func (s *Service) transition(ctx context.Context, employerID, id uuid.UUID, validate func(*models.Interview) error, mutate func(*models.Interview)) (*models.Interview, error) {
	interview, err := s.interviews.Execute(ctx, id,
		func(i *models.Interview) error {
			if i.EmployerID != employerID {
				return dErrors.New(dErrors.CodeForbidden, "interview belongs to another employer")
			}
			return validate(i)
		}, mutate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "interview not found")
		}
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, dErrors.MessageOf(err))
		}
		if c := dErrors.CodeOf(err); c != "" {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update interview")
	}
	return interview, nil
}

func (s *Service) notifySlot(email, phone, fullName, subject string, interview *models.Interview) {
	name := fullName
	if name == "" {
		name, _ = emailutil.DeriveNameFromEmail(email)
	}
	when := interview.ScheduledAt.Format("Mon, 2 Jan 2006 at 15:04 MST")
	body := fmt.Sprintf("Hi %s,\n\nYour interview is set for %s.", name, when)
	if interview.MeetingLink != "" {
		body += fmt.Sprintf("\nJoin: %s", interview.MeetingLink)
	}
	s.notifier.EnqueueEmail(notification.Email{To: email, Subject: subject, Body: body})
	if phone != "" {
		s.notifier.EnqueueSMS(notification.SMS{
			To:   phone,
			Body: fmt.Sprintf("%s: %s", subject, when),
		})
	}
}
