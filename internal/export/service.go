package export

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/platform/metrics"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/platform/sentinel"
)

// Service resolves candidate records and renders them to spreadsheets.
type Service struct {
	candidates candstore.CandidateStore
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(candidates candstore.CandidateStore, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{candidates: candidates, metrics: m, logger: logger}
}

// Candidate exports a single candidate as a Field/Value sheet.
func (s *Service) Candidate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	data, err := RenderCandidate(candidate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render spreadsheet")
	}
	if s.metrics != nil {
		s.metrics.ExportsGenerated.WithLabelValues("single").Inc()
	}
	return data, nil
}

// Candidates exports the given candidates, one row each. Unknown ids are
// skipped; an empty resolved set is an error.
func (s *Service) Candidates(ctx context.Context, ids []uuid.UUID) ([]byte, error) {
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no candidates selected")
	}

	candidates, err := s.candidates.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}
	if len(candidates) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no valid candidates selected")
	}
	if skipped := len(ids) - len(candidates); skipped > 0 {
		s.logger.InfoContext(ctx, "export skipped unknown candidates", "skipped", skipped)
	}

	data, err := RenderCandidates(candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render spreadsheet")
	}
	if s.metrics != nil {
		s.metrics.ExportsGenerated.WithLabelValues("bulk").Inc()
	}
	return data, nil
}
