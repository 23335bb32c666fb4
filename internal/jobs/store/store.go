package store

import (
	"context"

	"github.com/google/uuid"

	"stafflink/internal/jobs/models"
)

// JobStore persists job postings.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByEmployer returns all postings owned by the employer, newest first.
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error)
	// ListOpen returns open postings for the public board, newest first.
	ListOpen(ctx context.Context) ([]*models.Job, error)
}
