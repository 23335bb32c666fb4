package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	candmodels "stafflink/internal/candidates/models"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	"stafflink/internal/interviews/models"
	"stafflink/internal/interviews/store"
	"stafflink/internal/notification"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

type capturingNotifier struct {
	emails []notification.Email
	sms    []notification.SMS
}

func (c *capturingNotifier) EnqueueEmail(e notification.Email) { c.emails = append(c.emails, e) }
func (c *capturingNotifier) EnqueueSMS(m notification.SMS)     { c.sms = append(c.sms, m) }

type InterviewServiceSuite struct {
	suite.Suite
	ctx        context.Context
	interviews *store.InMemory
	candidates *candstore.InMemory
	notifier   *capturingNotifier
	service    *Service

	employerID uuid.UUID
	candidate  *candmodels.Candidate
}

func TestInterviewServiceSuite(t *testing.T) {
	suite.Run(t, new(InterviewServiceSuite))
}

func (s *InterviewServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.interviews = store.NewInMemory()
	s.candidates = candstore.NewInMemory()
	s.notifier = &capturingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.interviews, s.candidates, s.notifier, events.Noop{}, nil, logger)

	s.employerID = uuid.New()
	s.candidate = &candmodels.Candidate{
		ID:       uuid.New(),
		FullName: "Meera Shah",
		Email:    "meera@example.com",
		Phone:    "+91900000000",
		Status:   candmodels.StatusInterview,
	}
	s.Require().NoError(s.candidates.Create(s.ctx, s.candidate))
}

func (s *InterviewServiceSuite) schedule(at time.Time) *models.Interview {
	interview, err := s.service.Schedule(s.ctx, ScheduleInput{
		EmployerID:  s.employerID,
		CandidateID: s.candidate.ID,
		ScheduledAt: at,
		Duration:    45 * time.Minute,
		MeetingLink: "https://meet/abc",
	})
	s.Require().NoError(err)
	return interview
}

func (s *InterviewServiceSuite) TestSchedule() {
	s.Run("books a slot and notifies over email and sms", func() {
		interview := s.schedule(time.Now().Add(48 * time.Hour))
		s.Equal(models.StatusScheduled, interview.Status)
		s.Require().NotEmpty(s.notifier.emails)
		s.Contains(s.notifier.emails[0].Body, "https://meet/abc")
		s.Require().NotEmpty(s.notifier.sms)
	})

	s.Run("rejects a past slot", func() {
		_, err := s.service.Schedule(s.ctx, ScheduleInput{
			EmployerID:  s.employerID,
			CandidateID: s.candidate.ID,
			ScheduledAt: time.Now().Add(-time.Hour),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an unknown candidate", func() {
		_, err := s.service.Schedule(s.ctx, ScheduleInput{
			EmployerID:  s.employerID,
			CandidateID: uuid.New(),
			ScheduledAt: time.Now().Add(time.Hour),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *InterviewServiceSuite) TestTransitions() {
	s.Run("confirm then complete", func() {
		interview := s.schedule(time.Now().Add(24 * time.Hour))

		confirmed, err := s.service.Confirm(s.ctx, s.employerID, interview.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusConfirmed, confirmed.Status)

		done, err := s.service.Complete(s.ctx, s.employerID, interview.ID, "strong candidate")
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, done.Status)
		s.Equal("strong candidate", done.Notes)
	})

	s.Run("confirming twice is a conflict", func() {
		interview := s.schedule(time.Now().Add(24 * time.Hour))
		_, err := s.service.Confirm(s.ctx, s.employerID, interview.ID)
		s.Require().NoError(err)

		_, err = s.service.Confirm(s.ctx, s.employerID, interview.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("reschedule moves the slot and renotifies", func() {
		interview := s.schedule(time.Now().Add(24 * time.Hour))
		sent := len(s.notifier.emails)

		newSlot := time.Now().Add(72 * time.Hour)
		moved, err := s.service.Reschedule(s.ctx, s.employerID, interview.ID, newSlot, time.Hour)
		s.Require().NoError(err)
		s.Equal(models.StatusRescheduled, moved.Status)
		s.WithinDuration(newSlot, moved.ScheduledAt, time.Second)
		s.Greater(len(s.notifier.emails), sent)
	})

	s.Run("cancelled interviews cannot be completed", func() {
		interview := s.schedule(time.Now().Add(24 * time.Hour))
		_, err := s.service.Cancel(s.ctx, s.employerID, interview.ID)
		s.Require().NoError(err)

		_, err = s.service.Complete(s.ctx, s.employerID, interview.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *InterviewServiceSuite) TestOwnership() {
	interview := s.schedule(time.Now().Add(24 * time.Hour))
	otherEmployer := uuid.New()

	s.Run("another employer cannot read or mutate the interview", func() {
		_, err := s.service.Get(s.ctx, otherEmployer, interview.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.Confirm(s.ctx, otherEmployer, interview.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.Reschedule(s.ctx, otherEmployer, interview.ID, time.Now().Add(48*time.Hour), time.Hour)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.Cancel(s.ctx, otherEmployer, interview.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		err = s.service.Delete(s.ctx, otherEmployer, interview.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		// The interview is untouched.
		got, err := s.service.Get(s.ctx, s.employerID, interview.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusScheduled, got.Status)
	})

	s.Run("a student only lists their own candidate's interviews", func() {
		accountID := uuid.New()
		s.candidate.AccountID = &accountID
		s.Require().NoError(s.candidates.Update(s.ctx, s.candidate))

		listed, err := s.service.ListByCandidate(s.ctx, accountID, s.candidate.ID)
		s.Require().NoError(err)
		s.Len(listed, 1)

		_, err = s.service.ListByCandidate(s.ctx, uuid.New(), s.candidate.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("an unclaimed candidate record is off limits", func() {
		unclaimed := &candmodels.Candidate{ID: uuid.New(), Email: "walkin@example.com"}
		s.Require().NoError(s.candidates.Create(s.ctx, unclaimed))

		_, err := s.service.ListByCandidate(s.ctx, uuid.New(), unclaimed.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *InterviewServiceSuite) TestLazyExpiry() {
	interview := s.schedule(time.Now().Add(time.Hour))

	// A listing observed hours later finds the slot passed.
	later := requestcontext.WithTime(s.ctx, time.Now().Add(3*time.Hour))
	listed, err := s.service.ListByEmployer(later, s.employerID)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(models.StatusExpired, listed[0].Status)

	// The expiry was written back.
	got, err := s.service.Get(s.ctx, s.employerID, interview.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusExpired, got.Status)

	// Expired interviews no longer transition.
	_, err = s.service.Confirm(s.ctx, s.employerID, interview.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *InterviewServiceSuite) TestDelete() {
	interview := s.schedule(time.Now().Add(24 * time.Hour))
	s.Require().NoError(s.service.Delete(s.ctx, s.employerID, interview.ID))

	_, err := s.service.Get(s.ctx, s.employerID, interview.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.ctx, s.employerID, interview.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
