package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stafflink/internal/applications/models"
)

// ApplicationStore persists job applications.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	// ListByJob returns applications for a posting, newest first.
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error)
	// ListByCandidate returns a candidate's applications, newest first.
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Application, error)
	// Execute atomically validates and mutates one application under the
	// store's lock.
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}

// PendingLinkStore persists anonymous-application links.
type PendingLinkStore interface {
	Create(ctx context.Context, link *models.PendingLink) error
	// TakeByEmail returns and removes all live links for the email. Expired
	// links are dropped, not returned.
	TakeByEmail(ctx context.Context, email string, now time.Time) ([]*models.PendingLink, error)
}
