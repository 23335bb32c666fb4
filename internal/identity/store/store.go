package store

import (
	"context"

	"github.com/google/uuid"

	"stafflink/internal/identity/models"
)

// AccountStore persists accounts. Implementations return
// pkg/platform/sentinel errors for infrastructure facts (not found,
// duplicate email).
type AccountStore interface {
	// Create inserts a new account. Returns sentinel.ErrConflict when the
	// email is already registered.
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	// Delete removes the account permanently. Returns sentinel.ErrNotFound
	// when it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListReviewQueue returns employer accounts awaiting manual KYC review,
	// oldest first.
	ListReviewQueue(ctx context.Context) ([]*models.Account, error)
	// Execute atomically validates and mutates one account while holding the
	// store's lock (mutex or row lock), then persists the result.
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error)
}
