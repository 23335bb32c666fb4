package store

import (
	"context"

	"github.com/google/uuid"

	"stafflink/internal/interviews/models"
)

// InterviewStore persists interviews.
type InterviewStore interface {
	Create(ctx context.Context, interview *models.Interview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	Update(ctx context.Context, interview *models.Interview) error
	// Delete removes the interview outright. sentinel.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByEmployer returns the employer's interviews, soonest slot first.
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Interview, error)
	// ListByCandidate returns the candidate's interviews, soonest slot first.
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Interview, error)
	// Execute loads the interview, runs validate then mutate on it, and
	// persists the result atomically with respect to concurrent Executes.
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Interview) error, mutate func(*models.Interview)) (*models.Interview, error)
}
