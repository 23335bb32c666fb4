package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"stafflink/internal/jobs/models"
	"stafflink/internal/jobs/store"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/platform/sentinel"
	pkgstrings "stafflink/pkg/platform/strings"
	"stafflink/pkg/requestcontext"
)

// Service orchestrates job posting CRUD. Postings belong to the employer who
// created them; only the owner may mutate one.
type Service struct {
	jobs   store.JobStore
	logger *slog.Logger
}

func New(jobs store.JobStore, logger *slog.Logger) *Service {
	return &Service{jobs: jobs, logger: logger}
}

// CreateInput carries a new posting.
type CreateInput struct {
	Title         string
	Location      string
	ExperienceMin int
	ExperienceMax int
	SalaryMin     int
	SalaryMax     int
	Skills        []string
	Description   string
	Screening     []models.ScreeningQuestion
}

func (s *Service) Create(ctx context.Context, employerID uuid.UUID, in CreateInput) (*models.Job, error) {
	now := requestcontext.Now(ctx)
	job, err := models.NewJob(uuid.New(), employerID, in.Title, in.Location, now)
	if err != nil {
		return nil, err
	}
	job.ExperienceMin = in.ExperienceMin
	job.ExperienceMax = in.ExperienceMax
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Skills = pkgstrings.DedupeAndTrim(in.Skills)
	job.Description = in.Description
	job.Screening = in.Screening

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create job")
	}
	return job, nil
}

// UpdateInput carries edits to an existing posting. Nil fields are left
// unchanged.
type UpdateInput struct {
	Title         *string
	Location      *string
	ExperienceMin *int
	ExperienceMax *int
	SalaryMin     *int
	SalaryMax     *int
	Skills        []string
	Description   *string
	Screening     []models.ScreeningQuestion
	Status        *models.JobStatus
}

func (s *Service) Update(ctx context.Context, employerID, jobID uuid.UUID, in UpdateInput) (*models.Job, error) {
	job, err := s.getOwned(ctx, employerID, jobID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !models.ValidJobStatus(*in.Status) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown job status %q", *in.Status)
		}
		job.Status = *in.Status
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "job title cannot be empty")
		}
		job.Title = *in.Title
	}
	if in.Location != nil {
		job.Location = *in.Location
	}
	if in.ExperienceMin != nil {
		job.ExperienceMin = *in.ExperienceMin
	}
	if in.ExperienceMax != nil {
		job.ExperienceMax = *in.ExperienceMax
	}
	if in.SalaryMin != nil {
		job.SalaryMin = *in.SalaryMin
	}
	if in.SalaryMax != nil {
		job.SalaryMax = *in.SalaryMax
	}
	if in.Skills != nil {
		job.Skills = pkgstrings.DedupeAndTrim(in.Skills)
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Screening != nil {
		job.Screening = in.Screening
	}
	job.UpdatedAt = requestcontext.Now(ctx)

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, wrapJobErr(err)
	}
	return job, nil
}

func (s *Service) Delete(ctx context.Context, employerID, jobID uuid.UUID) error {
	if _, err := s.getOwned(ctx, employerID, jobID); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return wrapJobErr(err)
	}
	return nil
}

// Get returns one posting, visible to anyone.
func (s *Service) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, wrapJobErr(err)
	}
	return job, nil
}

// ListOpen returns the public job board.
func (s *Service) ListOpen(ctx context.Context) ([]*models.Job, error) {
	jobs, err := s.jobs.ListOpen(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return jobs, nil
}

// ListByEmployer returns the employer's own postings, any status.
func (s *Service) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error) {
	jobs, err := s.jobs.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return jobs, nil
}

func (s *Service) getOwned(ctx context.Context, employerID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, wrapJobErr(err)
	}
	if job.EmployerID != employerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "job belongs to another employer")
	}
	return job, nil
}

func wrapJobErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "job operation failed")
}
