// Package service exposes candidate profiles to recruiters outside the
// per-application workflow.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"stafflink/internal/candidates/models"
	"stafflink/internal/candidates/store"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/requestcontext"
)

// Service reads and annotates candidate records. The per-application status
// history stays on the application; the candidate-level status is the latest
// stage a recruiter pinned on the profile itself.
type Service struct {
	candidates store.CandidateStore
	logger     *slog.Logger
}

func New(candidates store.CandidateStore, logger *slog.Logger) *Service {
	return &Service{candidates: candidates, logger: logger}
}

// Get returns one candidate profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}

// UpdateStatus pins a recruitment stage on the candidate profile, optionally
// replacing the recruiter notes.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus, notes string) (*models.Candidate, error) {
	if !models.ValidStatus(status) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown status %q", status)
	}

	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.Status = status
	if notes != "" {
		candidate.Notes = notes
	}
	candidate.UpdatedAt = requestcontext.Now(ctx)

	if err := s.candidates.Update(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update candidate")
	}
	return candidate, nil
}
