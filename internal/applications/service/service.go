package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	appmodels "stafflink/internal/applications/models"
	"stafflink/internal/applications/store"
	candmodels "stafflink/internal/candidates/models"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	identitymodels "stafflink/internal/identity/models"
	jobmodels "stafflink/internal/jobs/models"
	jobstore "stafflink/internal/jobs/store"
	"stafflink/internal/notification"
	"stafflink/internal/platform/metrics"
	dErrors "stafflink/pkg/domain-errors"
	emailutil "stafflink/pkg/email"
	"stafflink/pkg/platform/sentinel"
	pkgstrings "stafflink/pkg/platform/strings"
	"stafflink/pkg/requestcontext"
)

// EmployerDirectory resolves the employer account behind a job posting so a
// new application can be announced to its owner.
type EmployerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identitymodels.Account, error)
}

// Service orchestrates the job application workflow: intake, the candidate
// record behind it, status transitions, and the pending links that tie
// anonymous applications to accounts registered later.
type Service struct {
	apps       store.ApplicationStore
	pending    store.PendingLinkStore
	candidates candstore.CandidateStore
	jobs       jobstore.JobStore
	employers  EmployerDirectory
	notifier   notification.Notifier
	events     events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEmployerDirectory enables the new-application email to the posting's
// employer.
func WithEmployerDirectory(d EmployerDirectory) Option {
	return func(s *Service) { s.employers = d }
}

func New(apps store.ApplicationStore, pending store.PendingLinkStore, candidates candstore.CandidateStore, jobs jobstore.JobStore, notifier notification.Notifier, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		apps:       apps,
		pending:    pending,
		candidates: candidates,
		jobs:       jobs,
		notifier:   notifier,
		events:     publisher,
		metrics:    m,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyInput carries an application submission. AccountID is set when the
// applicant is logged in; anonymous submissions leave it nil and get a
// pending link instead.
type ApplyInput struct {
	JobID     uuid.UUID
	AccountID *uuid.UUID

	FullName string
	Email    string
	Phone    string

	Education      candmodels.FlexList
	Experience     candmodels.FlexList
	Certifications candmodels.FlexList
	Skills         []string

	CurrentLocation   string
	PreferredLocation string
	CurrentCompany    string
	CurrentRole       string
	ExpectedSalary    string
	NoticePeriod      string

	ResumeURL       string
	VideoResumeURL  string
	AudioBiodataURL string
	PhotographURL   string
}

// Apply submits an application to an open job. The candidate record is
// created on first contact and reused by email afterwards; the application
// starts in Applied with its first history entry.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*appmodels.Application, error) {
	if err := validateApply(in); err != nil {
		return nil, err
	}
	in.Skills = pkgstrings.DedupeAndTrim(in.Skills)

	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "job not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job")
	}
	if !job.IsOpen() {
		return nil, dErrors.New(dErrors.CodeConflict, "job is not accepting applications")
	}

	now := requestcontext.Now(ctx)
	candidate, err := s.upsertCandidate(ctx, in, now)
	if err != nil {
		return nil, err
	}

	for _, existing := range s.existingApplications(ctx, candidate.ID) {
		if existing.JobID == in.JobID {
			return nil, dErrors.New(dErrors.CodeConflict, "you have already applied to this job")
		}
	}

	app := appmodels.NewApplication(uuid.New(), in.JobID, candidate.ID, now)
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	if candidate.AccountID == nil {
		link := &appmodels.PendingLink{
			ID:          uuid.New(),
			Email:       strings.ToLower(candidate.Email),
			CandidateID: candidate.ID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(appmodels.PendingLinkTTL),
		}
		if err := s.pending.Create(ctx, link); err != nil {
			s.logger.WarnContext(ctx, "pending link creation failed",
				"candidate_id", candidate.ID, "error", err)
		}
	}

	first, _ := emailutil.DeriveNameFromEmail(candidate.Email)
	name := candidate.FullName
	if name == "" {
		name = first
	}
	s.notifier.EnqueueEmail(notification.Email{
		To:      candidate.Email,
		Subject: fmt.Sprintf("Application received: %s", job.Title),
		Body:    fmt.Sprintf("Hi %s,\n\nWe received your application for %s. The hiring team will review it and reach out with next steps.", name, job.Title),
	})
	s.notifyEmployer(ctx, job, candidate)

	s.events.Publish(ctx, events.Event{
		Type:       events.TypeApplicationApplied,
		Subject:    app.ID.String(),
		OccurredAt: now,
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		Fields: map[string]string{
			"job_id":       in.JobID.String(),
			"candidate_id": candidate.ID.String(),
		},
	})
	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
	}
	return app, nil
}

// SetStatus moves an application to the given stage and appends a history
// entry. Any known stage may follow any other. Only the employer who owns the
// posting may move its applications.
func (s *Service) SetStatus(ctx context.Context, employerID, id uuid.UUID, status candmodels.CandidateStatus, note string) (*appmodels.Application, error) {
	if !candmodels.ValidStatus(status) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", status)
	}
	if _, err := s.ownedApplication(ctx, employerID, id); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	app, err := s.apps.Execute(ctx, id,
		func(*appmodels.Application) error { return nil },
		func(a *appmodels.Application) { a.SetStatus(status, note, now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		if c := dErrors.CodeOf(err); c != "" {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}

	s.notifyStatus(ctx, app, status)
	s.events.Publish(ctx, events.Event{
		Type:       events.TypeApplicationStatus,
		Subject:    app.ID.String(),
		OccurredAt: now,
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		Fields:     map[string]string{"status": string(status)},
	})
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	}
	return app, nil
}

// Get returns one application for the employer who owns its posting.
func (s *Service) Get(ctx context.Context, employerID, id uuid.UUID) (*appmodels.Application, error) {
	return s.ownedApplication(ctx, employerID, id)
}

// ListByJob returns all applications for the employer's posting, newest
// first.
func (s *Service) ListByJob(ctx context.Context, employerID, jobID uuid.UUID) ([]*appmodels.Application, error) {
	if err := s.checkJobOwner(ctx, employerID, jobID); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ownedApplication loads an application and verifies its posting belongs to
// the employer.
func (s *Service) ownedApplication(ctx context.Context, employerID, id uuid.UUID) (*appmodels.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	if err := s.checkJobOwner(ctx, employerID, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Service) checkJobOwner(ctx context.Context, employerID, jobID uuid.UUID) error {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "job not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job")
	}
	if job.EmployerID != employerID {
		return dErrors.New(dErrors.CodeForbidden, "job belongs to another employer")
	}
	return nil
}

// ListByCandidate returns all applications by a candidate, newest first.
func (s *Service) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*appmodels.Application, error) {
	apps, err := s.apps.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListByAccount resolves the caller's candidate record and returns their
// applications. Accounts that never applied get an empty list.
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, email string) ([]*appmodels.Application, error) {
	candidate, err := s.candidates.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	if candidate.AccountID == nil || *candidate.AccountID != accountID {
		return nil, nil
	}
	return s.ListByCandidate(ctx, candidate.ID)
}

// ReconcilePending claims pending links for a freshly registered account and
// attaches the matching candidate records to it.
func (s *Service) ReconcilePending(ctx context.Context, email string, accountID uuid.UUID) error {
	links, err := s.pending.TakeByEmail(ctx, email, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("take pending links: %w", err)
	}
	for _, link := range links {
		candidate, err := s.candidates.FindByID(ctx, link.CandidateID)
		if err != nil {
			s.logger.WarnContext(ctx, "pending link points at missing candidate",
				"candidate_id", link.CandidateID, "error", err)
			continue
		}
		if candidate.AccountID != nil {
			continue
		}
		id := accountID
		candidate.AccountID = &id
		candidate.UpdatedAt = requestcontext.Now(ctx)
		if err := s.candidates.Update(ctx, candidate); err != nil {
			return fmt.Errorf("attach candidate %s: %w", candidate.ID, err)
		}
	}
	return nil
}

// upsertCandidate reuses the candidate record keyed by email or creates one.
// Fields from the new submission fill blanks on an existing record but never
// erase data already present.
func (s *Service) upsertCandidate(ctx context.Context, in ApplyInput, now time.Time) (*candmodels.Candidate, error) {
	email := strings.ToLower(in.Email)

	candidate, err := s.candidates.FindByEmail(ctx, email)
	switch {
	case err == nil:
		mergeProfile(candidate, in)
		if candidate.AccountID == nil && in.AccountID != nil {
			candidate.AccountID = in.AccountID
		}
		candidate.UpdatedAt = now
		if err := s.candidates.Update(ctx, candidate); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update candidate")
		}
		return candidate, nil
	case errors.Is(err, sentinel.ErrNotFound):
		candidate = &candmodels.Candidate{
			ID:                uuid.New(),
			AccountID:         in.AccountID,
			FullName:          in.FullName,
			Email:             email,
			Phone:             in.Phone,
			Education:         in.Education,
			Experience:        in.Experience,
			Certifications:    in.Certifications,
			Skills:            in.Skills,
			CurrentLocation:   in.CurrentLocation,
			PreferredLocation: in.PreferredLocation,
			CurrentCompany:    in.CurrentCompany,
			CurrentRole:       in.CurrentRole,
			ExpectedSalary:    in.ExpectedSalary,
			NoticePeriod:      in.NoticePeriod,
			ResumeURL:         in.ResumeURL,
			VideoResumeURL:    in.VideoResumeURL,
			AudioBiodataURL:   in.AudioBiodataURL,
			PhotographURL:     in.PhotographURL,
			Status:            candmodels.StatusApplied,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.candidates.Create(ctx, candidate); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
		}
		return candidate, nil
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
}

func mergeProfile(c *candmodels.Candidate, in ApplyInput) {
	setIfEmpty(&c.FullName, in.FullName)
	setIfEmpty(&c.Phone, in.Phone)
	setIfEmpty(&c.CurrentLocation, in.CurrentLocation)
	setIfEmpty(&c.PreferredLocation, in.PreferredLocation)
	setIfEmpty(&c.CurrentCompany, in.CurrentCompany)
	setIfEmpty(&c.CurrentRole, in.CurrentRole)
	setIfEmpty(&c.ExpectedSalary, in.ExpectedSalary)
	setIfEmpty(&c.NoticePeriod, in.NoticePeriod)
	setIfEmpty(&c.VideoResumeURL, in.VideoResumeURL)
	setIfEmpty(&c.AudioBiodataURL, in.AudioBiodataURL)
	setIfEmpty(&c.PhotographURL, in.PhotographURL)
	if len(c.Education) == 0 {
		c.Education = in.Education
	}
	if len(c.Experience) == 0 {
		c.Experience = in.Experience
	}
	if len(c.Certifications) == 0 {
		c.Certifications = in.Certifications
	}
	if len(c.Skills) == 0 {
		c.Skills = in.Skills
	}
	// A fresh resume always replaces the stored one.
	if in.ResumeURL != "" {
		c.ResumeURL = in.ResumeURL
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

// existingApplications is best-effort duplicate detection; a listing failure
// lets the application proceed rather than blocking intake.
func (s *Service) existingApplications(ctx context.Context, candidateID uuid.UUID) []*appmodels.Application {
	apps, err := s.apps.ListByCandidate(ctx, candidateID)
	if err != nil {
		s.logger.WarnContext(ctx, "duplicate check failed", "candidate_id", candidateID, "error", err)
		return nil
	}
	return apps
}

func (s *Service) notifyStatus(ctx context.Context, app *appmodels.Application, status candmodels.CandidateStatus) {
	candidate, err := s.candidates.FindByID(ctx, app.CandidateID)
	if err != nil {
		s.logger.WarnContext(ctx, "status notification skipped", "candidate_id", app.CandidateID, "error", err)
		return
	}
	name := candidate.FullName
	if name == "" {
		name, _ = emailutil.DeriveNameFromEmail(candidate.Email)
	}
	s.notifier.EnqueueEmail(notification.Email{
		To:      candidate.Email,
		Subject: fmt.Sprintf("Application update: %s", status),
		Body:    fmt.Sprintf("Hi %s,\n\nYour application status is now %s.", name, status),
	})
}

func (s *Service) notifyEmployer(ctx context.Context, job *jobmodels.Job, candidate *candmodels.Candidate) {
	if s.employers == nil {
		return
	}
	employer, err := s.employers.FindByID(ctx, job.EmployerID)
	if err != nil {
		s.logger.WarnContext(ctx, "employer notification skipped", "job_id", job.ID, "error", err)
		return
	}
	applicant := candidate.FullName
	if applicant == "" {
		applicant = candidate.Email
	}
	s.notifier.EnqueueEmail(notification.Email{
		To:      employer.Email,
		Subject: fmt.Sprintf("New application: %s", job.Title),
		Body:    fmt.Sprintf("%s has applied for %s. Review the application in your dashboard.", applicant, job.Title),
	})
}

func validateApply(in ApplyInput) error {
	var missing []string
	if in.JobID == uuid.Nil {
		missing = append(missing, "job_id")
	}
	if in.FullName == "" {
		missing = append(missing, "full_name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.ResumeURL == "" {
		missing = append(missing, "resume")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return dErrors.Newf(dErrors.CodeValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	if !govalidator.IsEmail(in.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	return nil
}
