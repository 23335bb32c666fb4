package store

import (
	"context"

	"github.com/google/uuid"

	"stafflink/internal/candidates/models"
)

// CandidateStore persists candidate records.
type CandidateStore interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	// FindByIDs resolves a batch; unknown ids are silently absent from the
	// result, preserving input order for the ones found.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Candidate, error)
}
