package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	appmodels "stafflink/internal/applications/models"
	"stafflink/internal/applications/store"
	candmodels "stafflink/internal/candidates/models"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	identitymodels "stafflink/internal/identity/models"
	identitystore "stafflink/internal/identity/store"
	jobmodels "stafflink/internal/jobs/models"
	jobstore "stafflink/internal/jobs/store"
	"stafflink/internal/notification"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

type capturingNotifier struct {
	emails []notification.Email
}

func (c *capturingNotifier) EnqueueEmail(e notification.Email) { c.emails = append(c.emails, e) }
func (c *capturingNotifier) EnqueueSMS(notification.SMS)       {}

type ApplicationServiceSuite struct {
	suite.Suite
	ctx        context.Context
	apps       *store.InMemory
	pending    *store.InMemoryPendingLinks
	candidates *candstore.InMemory
	jobs       *jobstore.InMemory
	notifier   *capturingNotifier
	service    *Service

	employerID uuid.UUID
	openJob    *jobmodels.Job
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.apps = store.NewInMemory()
	s.pending = store.NewInMemoryPendingLinks()
	s.candidates = candstore.NewInMemory()
	s.jobs = jobstore.NewInMemory()
	s.notifier = &capturingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.apps, s.pending, s.candidates, s.jobs, s.notifier, events.Noop{}, nil, logger)

	s.employerID = uuid.New()
	job, err := jobmodels.NewJob(uuid.New(), s.employerID, "Backend Engineer", "Pune", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.jobs.Create(s.ctx, job))
	s.openJob = job
}

func (s *ApplicationServiceSuite) validInput() ApplyInput {
	return ApplyInput{
		JobID:     s.openJob.ID,
		FullName:  "Meera Shah",
		Email:     "meera@example.com",
		ResumeURL: "https://files/resume.pdf",
	}
}

func (s *ApplicationServiceSuite) TestApply() {
	s.Run("names every missing field", func() {
		_, err := s.service.Apply(s.ctx, ApplyInput{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		for _, field := range []string{"job_id", "full_name", "email", "resume"} {
			s.Contains(err.Error(), field)
		}
	})

	s.Run("unknown job is not found", func() {
		in := s.validInput()
		in.JobID = uuid.New()
		_, err := s.service.Apply(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("closed job refuses applications", func() {
		s.openJob.Status = jobmodels.JobStatusClosed
		s.Require().NoError(s.jobs.Update(s.ctx, s.openJob))
		defer func() {
			s.openJob.Status = jobmodels.JobStatusOpen
			s.Require().NoError(s.jobs.Update(s.ctx, s.openJob))
		}()

		_, err := s.service.Apply(s.ctx, s.validInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("anonymous application creates candidate, history, and pending link", func() {
		app, err := s.service.Apply(s.ctx, s.validInput())
		s.Require().NoError(err)
		s.Equal(candmodels.StatusApplied, app.Status)
		s.Require().Len(app.History, 1)
		s.Equal(candmodels.StatusApplied, app.History[0].Status)

		candidate, err := s.candidates.FindByEmail(s.ctx, "meera@example.com")
		s.Require().NoError(err)
		s.Nil(candidate.AccountID)

		links, err := s.pending.TakeByEmail(s.ctx, "meera@example.com", time.Now())
		s.Require().NoError(err)
		s.Require().Len(links, 1)
		s.Equal(candidate.ID, links[0].CandidateID)

		s.Require().NotEmpty(s.notifier.emails)
		s.Contains(s.notifier.emails[len(s.notifier.emails)-1].Subject, "Backend Engineer")
	})

	s.Run("second application to the same job is a conflict", func() {
		in := s.validInput()
		in.Email = "repeat@example.com"
		_, err := s.service.Apply(s.ctx, in)
		s.Require().NoError(err)

		_, err = s.service.Apply(s.ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("repeat candidate keeps existing profile fields", func() {
		other, err := jobmodels.NewJob(uuid.New(), uuid.New(), "Data Engineer", "Remote", time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.jobs.Create(s.ctx, other))

		first := s.validInput()
		first.Email = "keep@example.com"
		first.CurrentCompany = "Original Corp"
		_, err = s.service.Apply(s.ctx, first)
		s.Require().NoError(err)

		second := s.validInput()
		second.JobID = other.ID
		second.Email = "keep@example.com"
		second.CurrentCompany = "Should Not Overwrite"
		_, err = s.service.Apply(s.ctx, second)
		s.Require().NoError(err)

		candidate, err := s.candidates.FindByEmail(s.ctx, "keep@example.com")
		s.Require().NoError(err)
		s.Equal("Original Corp", candidate.CurrentCompany)
	})
}

func (s *ApplicationServiceSuite) TestEmployerNotification() {
	accounts := identitystore.NewInMemory()
	employer := identitymodels.NewEmployee(uuid.New(), "hr@acme.example", "hash", "Asha", "Rao", "Acme Staffing",
		identitymodels.KYCDocument{DocumentType: "gst", Number: "27AAAAA0000A1Z5"}, time.Now())
	s.Require().NoError(accounts.Create(s.ctx, employer))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(s.apps, s.pending, s.candidates, s.jobs, s.notifier, events.Noop{}, nil, logger,
		WithEmployerDirectory(accounts))

	job, err := jobmodels.NewJob(uuid.New(), employer.ID, "QA Engineer", "Mumbai", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.jobs.Create(s.ctx, job))

	in := s.validInput()
	in.JobID = job.ID
	_, err = svc.Apply(s.ctx, in)
	s.Require().NoError(err)

	var employerEmails []notification.Email
	for _, e := range s.notifier.emails {
		if e.To == "hr@acme.example" {
			employerEmails = append(employerEmails, e)
		}
	}
	s.Require().Len(employerEmails, 1)
	s.Contains(employerEmails[0].Subject, "QA Engineer")
	s.Contains(employerEmails[0].Body, "Meera Shah")

	// An employer the directory cannot resolve is skipped quietly.
	orphan, err := jobmodels.NewJob(uuid.New(), uuid.New(), "Ops Engineer", "Delhi", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.jobs.Create(s.ctx, orphan))

	in = s.validInput()
	in.JobID = orphan.ID
	in.Email = "other@example.com"
	_, err = svc.Apply(s.ctx, in)
	s.Require().NoError(err)
	for _, e := range s.notifier.emails {
		if e.To != "other@example.com" {
			s.NotContains(e.Subject, "Ops Engineer")
		}
	}
}

func (s *ApplicationServiceSuite) TestSetStatus() {
	s.Run("appends history and keeps order", func() {
		app, err := s.service.Apply(s.ctx, s.validInput())
		s.Require().NoError(err)

		base := time.Now()
		for i, status := range []candmodels.CandidateStatus{
			candmodels.StatusShortlisted,
			candmodels.StatusInterview,
			candmodels.StatusHired,
		} {
			ctx := requestcontext.WithTime(s.ctx, base.Add(time.Duration(i+1)*time.Hour))
			app, err = s.service.SetStatus(ctx, s.employerID, app.ID, status, "stage moved")
			s.Require().NoError(err)
		}

		s.Equal(candmodels.StatusHired, app.Status)
		s.Require().Len(app.History, 4)
		s.Equal(candmodels.StatusApplied, app.History[0].Status)
		s.Equal(candmodels.StatusHired, app.History[3].Status)
		s.True(app.History[3].Date.After(app.History[1].Date))
	})

	s.Run("backward transitions are allowed", func() {
		in := s.validInput()
		in.Email = "backward@example.com"
		app, err := s.service.Apply(s.ctx, in)
		s.Require().NoError(err)

		app, err = s.service.SetStatus(s.ctx, s.employerID, app.ID, candmodels.StatusRejected, "")
		s.Require().NoError(err)
		app, err = s.service.SetStatus(s.ctx, s.employerID, app.ID, candmodels.StatusApplied, "reopened")
		s.Require().NoError(err)
		s.Equal(candmodels.StatusApplied, app.Status)
		s.Len(app.History, 3)
	})

	s.Run("unknown status is a validation error", func() {
		app, err := s.service.Apply(s.ctx, func() ApplyInput {
			in := s.validInput()
			in.Email = "badstatus@example.com"
			return in
		}())
		s.Require().NoError(err)

		_, err = s.service.SetStatus(s.ctx, s.employerID, app.ID, "Ghosted", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown application is not found", func() {
		_, err := s.service.SetStatus(s.ctx, s.employerID, uuid.New(), candmodels.StatusHired, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("another employer cannot move the application", func() {
		in := s.validInput()
		in.Email = "poached@example.com"
		app, err := s.service.Apply(s.ctx, in)
		s.Require().NoError(err)

		_, err = s.service.SetStatus(s.ctx, uuid.New(), app.ID, candmodels.StatusRejected, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		got, err := s.service.Get(s.ctx, s.employerID, app.ID)
		s.Require().NoError(err)
		s.Equal(candmodels.StatusApplied, got.Status)
	})
}

func (s *ApplicationServiceSuite) TestEmployerScoping() {
	app, err := s.service.Apply(s.ctx, s.validInput())
	s.Require().NoError(err)
	otherEmployer := uuid.New()

	s.Run("pipeline listing is scoped to the posting's owner", func() {
		apps, err := s.service.ListByJob(s.ctx, s.employerID, s.openJob.ID)
		s.Require().NoError(err)
		s.Len(apps, 1)

		_, err = s.service.ListByJob(s.ctx, otherEmployer, s.openJob.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("application detail is scoped to the posting's owner", func() {
		_, err := s.service.Get(s.ctx, s.employerID, app.ID)
		s.Require().NoError(err)

		_, err = s.service.Get(s.ctx, otherEmployer, app.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ApplicationServiceSuite) TestReconcilePending() {
	s.Run("attaches unclaimed candidates and consumes the link", func() {
		in := s.validInput()
		in.Email = "claim@example.com"
		_, err := s.service.Apply(s.ctx, in)
		s.Require().NoError(err)

		accountID := uuid.New()
		s.Require().NoError(s.service.ReconcilePending(s.ctx, "claim@example.com", accountID))

		candidate, err := s.candidates.FindByEmail(s.ctx, "claim@example.com")
		s.Require().NoError(err)
		s.Require().NotNil(candidate.AccountID)
		s.Equal(accountID, *candidate.AccountID)

		// The link is gone; a second reconcile is a no-op.
		s.Require().NoError(s.service.ReconcilePending(s.ctx, "claim@example.com", uuid.New()))
		refetched, err := s.candidates.FindByEmail(s.ctx, "claim@example.com")
		s.Require().NoError(err)
		s.Equal(accountID, *refetched.AccountID)
	})

	s.Run("expired links are dropped", func() {
		link := &appmodels.PendingLink{
			ID:          uuid.New(),
			Email:       "stale@example.com",
			CandidateID: uuid.New(),
			CreatedAt:   time.Now().Add(-8 * 24 * time.Hour),
			ExpiresAt:   time.Now().Add(-24 * time.Hour),
		}
		s.Require().NoError(s.pending.Create(s.ctx, link))
		s.Require().NoError(s.service.ReconcilePending(s.ctx, "stale@example.com", uuid.New()))
	})
}

func (s *ApplicationServiceSuite) TestListByAccount() {
	in := s.validInput()
	in.Email = "mine@example.com"
	accountID := uuid.New()
	in.AccountID = &accountID
	_, err := s.service.Apply(s.ctx, in)
	s.Require().NoError(err)

	apps, err := s.service.ListByAccount(s.ctx, accountID, "mine@example.com")
	s.Require().NoError(err)
	s.Len(apps, 1)

	// A different account asking for the same email sees nothing.
	apps, err = s.service.ListByAccount(s.ctx, uuid.New(), "mine@example.com")
	s.Require().NoError(err)
	s.Empty(apps)
}
