package store

import (
	"context"
	"time"

	"stafflink/internal/exam/models"
)

// ProgressStore persists exam pre-check progress keyed by invitation token.
// Entries expire with the invitation.
type ProgressStore interface {
	// Put stores the progress with the given time-to-live.
	Put(ctx context.Context, progress *models.Progress, ttl time.Duration) error
	// Get returns the progress for a token. sentinel.ErrNotFound when the
	// token is unknown or the invitation has expired.
	Get(ctx context.Context, token string) (*models.Progress, error)
	// Update rewrites an existing entry without touching its expiry.
	Update(ctx context.Context, progress *models.Progress) error
}
