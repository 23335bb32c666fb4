package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	candmodels "stafflink/internal/candidates/models"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/exam/models"
	"stafflink/internal/exam/store"
	"stafflink/internal/objectstore"
	dErrors "stafflink/pkg/domain-errors"
)

type ExamServiceSuite struct {
	suite.Suite
	ctx        context.Context
	progress   *store.InMemoryStore
	candidates *candstore.InMemory
	objects    *objectstore.InMemory
	service    *Service

	candidate *candmodels.Candidate
}

func TestExamServiceSuite(t *testing.T) {
	suite.Run(t, new(ExamServiceSuite))
}

func (s *ExamServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.progress = store.NewInMemoryStore()
	s.candidates = candstore.NewInMemory()
	s.objects = objectstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.progress, s.candidates, s.objects, logger)

	s.candidate = &candmodels.Candidate{
		ID:       uuid.New(),
		FullName: "Meera Shah",
		Email:    "meera@example.com",
		Status:   candmodels.StatusShortlisted,
	}
	s.Require().NoError(s.candidates.Create(s.ctx, s.candidate))
}

func (s *ExamServiceSuite) invite() string {
	progress, err := s.service.Invite(s.ctx, s.candidate.ID)
	s.Require().NoError(err)
	return progress.Token
}

func (s *ExamServiceSuite) passSystemCheck(token string) {
	_, err := s.service.SystemCheck(s.ctx, token, SystemCheckInput{Camera: true, Fullscreen: true, Features: true})
	s.Require().NoError(err)
}

func (s *ExamServiceSuite) captureAll(token string) {
	_, err := s.service.CaptureID(s.ctx, token, CaptureIDInput{
		StudentIDNumber: "STU-42",
		IDDocument:      upload("id-bytes"),
		FaceImage:       upload("face-bytes"),
	})
	s.Require().NoError(err)
}

func upload(content string) *ImageUpload {
	return &ImageUpload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "image/jpeg",
	}
}

func (s *ExamServiceSuite) TestInvite() {
	s.Run("issues a blank progress for a known candidate", func() {
		token := s.invite()
		progress, err := s.service.Progress(s.ctx, token)
		s.Require().NoError(err)
		s.False(progress.SystemCheckPassed)
		s.True(progress.TabFocused)
		s.False(progress.ReadyForExam())
	})

	s.Run("unknown candidate is not found", func() {
		_, err := s.service.Invite(s.ctx, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ExamServiceSuite) TestUnknownToken() {
	for _, err := range []error{
		func() error { _, e := s.service.Progress(s.ctx, "missing"); return e }(),
		func() error { _, e := s.service.SystemCheck(s.ctx, "missing", SystemCheckInput{}); return e }(),
		func() error { return s.service.RecordFocus(s.ctx, "missing", true) }(),
		func() error { _, e := s.service.AcknowledgeRules(s.ctx, "missing"); return e }(),
	} {
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	}
}

func (s *ExamServiceSuite) TestSystemCheck() {
	s.Run("all three probes must pass", func() {
		token := s.invite()
		_, err := s.service.SystemCheck(s.ctx, token, SystemCheckInput{Camera: true, Fullscreen: false, Features: true})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "fullscreen")

		progress, err := s.service.Progress(s.ctx, token)
		s.Require().NoError(err)
		s.False(progress.SystemCheckPassed)
	})

	s.Run("a passed check persists across reloads", func() {
		token := s.invite()
		s.passSystemCheck(token)

		progress, err := s.service.Progress(s.ctx, token)
		s.Require().NoError(err)
		s.True(progress.SystemCheckPassed)
	})
}

func (s *ExamServiceSuite) TestFocusFlag() {
	token := s.invite()
	s.Require().NoError(s.service.RecordFocus(s.ctx, token, false))

	progress, err := s.service.Progress(s.ctx, token)
	s.Require().NoError(err)
	s.False(progress.TabFocused)

	// Losing focus never blocks the flow.
	s.passSystemCheck(token)
}

func (s *ExamServiceSuite) TestCaptureID() {
	s.Run("requires the system check first", func() {
		token := s.invite()
		_, err := s.service.CaptureID(s.ctx, token, CaptureIDInput{StudentIDNumber: "STU-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("completes only with all three artifacts", func() {
		token := s.invite()
		s.passSystemCheck(token)

		progress, err := s.service.CaptureID(s.ctx, token, CaptureIDInput{
			StudentIDNumber: "STU-42",
			IDDocument:      upload("id-bytes"),
		})
		s.Require().NoError(err)
		s.False(progress.IDCaptureComplete())

		progress, err = s.service.CaptureID(s.ctx, token, CaptureIDInput{FaceImage: upload("face-bytes")})
		s.Require().NoError(err)
		s.True(progress.IDCaptureComplete())

		_, ok := s.objects.Object("exam/" + token + "/face")
		s.True(ok)
	})

	s.Run("a failed upload leaves that image absent", func() {
		token := s.invite()
		s.passSystemCheck(token)

		s.objects.FailNext = true
		progress, err := s.service.CaptureID(s.ctx, token, CaptureIDInput{
			StudentIDNumber: "STU-42",
			IDDocument:      upload("id-bytes"),
			FaceImage:       upload("face-bytes"),
		})
		s.Require().NoError(err)
		s.Empty(progress.IDDocumentURL)
		s.NotEmpty(progress.FaceImageURL)
		s.False(progress.IDCaptureComplete())

		// The recapture succeeds and completes the step.
		progress, err = s.service.CaptureID(s.ctx, token, CaptureIDInput{IDDocument: upload("id-retry")})
		s.Require().NoError(err)
		s.True(progress.IDCaptureComplete())
	})
}

func (s *ExamServiceSuite) TestAcknowledgeRules() {
	s.Run("gated on every earlier step", func() {
		token := s.invite()
		_, err := s.service.AcknowledgeRules(s.ctx, token)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		s.passSystemCheck(token)
		_, err = s.service.AcknowledgeRules(s.ctx, token)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		s.captureAll(token)
		progress, err := s.service.AcknowledgeRules(s.ctx, token)
		s.Require().NoError(err)
		s.True(progress.RulesAcknowledged)
		s.True(progress.ReadyForExam())
	})
}

func (s *ExamServiceSuite) TestExpiry() {
	token := s.invite()
	s.progress.SetClock(func() time.Time { return time.Now().Add(models.InvitationTTL + time.Hour) })

	_, err := s.service.Progress(s.ctx, token)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
