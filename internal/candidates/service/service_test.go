package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stafflink/internal/candidates/models"
	"stafflink/internal/candidates/store"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

type CandidateServiceSuite struct {
	suite.Suite
	ctx        context.Context
	candidates *store.InMemory
	service    *Service

	candidate *models.Candidate
}

func TestCandidateServiceSuite(t *testing.T) {
	suite.Run(t, new(CandidateServiceSuite))
}

func (s *CandidateServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.candidates = store.NewInMemory()
	s.service = New(s.candidates, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.candidate = &models.Candidate{
		ID:        uuid.New(),
		FullName:  "Ravi Kumar",
		Email:     "ravi@example.com",
		Status:    models.StatusApplied,
		Notes:     "referred by Priya",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.Require().NoError(s.candidates.Create(s.ctx, s.candidate))
}

func (s *CandidateServiceSuite) TestGet() {
	s.Run("returns the profile", func() {
		got, err := s.service.Get(s.ctx, s.candidate.ID)
		s.Require().NoError(err)
		s.Equal("ravi@example.com", got.Email)
	})

	s.Run("unknown candidate is not found", func() {
		_, err := s.service.Get(s.ctx, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CandidateServiceSuite) TestUpdateStatus() {
	s.Run("pins the stage and stamps the update time", func() {
		later := time.Now().Add(time.Hour)
		ctx := requestcontext.WithTime(s.ctx, later)

		got, err := s.service.UpdateStatus(ctx, s.candidate.ID, models.StatusShortlisted, "strong portfolio")
		s.Require().NoError(err)
		s.Equal(models.StatusShortlisted, got.Status)
		s.Equal("strong portfolio", got.Notes)
		s.WithinDuration(later, got.UpdatedAt, time.Second)
	})

	s.Run("empty notes keep the existing ones", func() {
		got, err := s.service.UpdateStatus(s.ctx, s.candidate.ID, models.StatusInterview, "")
		s.Require().NoError(err)
		s.Equal(models.StatusInterview, got.Status)
		s.NotEmpty(got.Notes)
	})

	s.Run("unknown status is a validation error", func() {
		_, err := s.service.UpdateStatus(s.ctx, s.candidate.ID, "Ghosted", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown candidate is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, uuid.New(), models.StatusHired, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
