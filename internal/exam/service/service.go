package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/exam/models"
	"stafflink/internal/exam/store"
	"stafflink/internal/objectstore"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/requestcontext"
)

// Service runs the exam pre-check flow. All progress lives server-side keyed
// by invitation token, so a page reload resumes where the candidate left off.
type Service struct {
	progress   store.ProgressStore
	candidates candstore.CandidateStore
	objects    objectstore.Store
	logger     *slog.Logger
}

func New(progress store.ProgressStore, candidates candstore.CandidateStore, objects objectstore.Store, logger *slog.Logger) *Service {
	return &Service{
		progress:   progress,
		candidates: candidates,
		objects:    objects,
		logger:     logger,
	}
}

// Invite issues a fresh invitation token for a candidate.
func (s *Service) Invite(ctx context.Context, candidateID uuid.UUID) (*models.Progress, error) {
	if _, err := s.candidates.FindByID(ctx, candidateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	progress := models.NewProgress(uuid.NewString(), candidateID, requestcontext.Now(ctx))
	if err := s.progress.Put(ctx, progress, models.InvitationTTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invitation")
	}
	return progress, nil
}

// Progress returns the current pre-check state for a token.
func (s *Service) Progress(ctx context.Context, token string) (*models.Progress, error) {
	return s.load(ctx, token)
}

// SystemCheckInput reports the client's environment probe.
type SystemCheckInput struct {
	Camera     bool
	Fullscreen bool
	Features   bool
}

// SystemCheck records the environment probe. All three checks must hold for
// the step to pass; a failed probe reports which checks failed and the step
// stays incomplete so the candidate retries.
func (s *Service) SystemCheck(ctx context.Context, token string, in SystemCheckInput) (*models.Progress, error) {
	progress, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	var failed []string
	if !in.Camera {
		failed = append(failed, "camera access")
	}
	if !in.Fullscreen {
		failed = append(failed, "fullscreen mode")
	}
	if !in.Features {
		failed = append(failed, "browser features")
	}
	if len(failed) > 0 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "system check failed: %s", strings.Join(failed, ", "))
	}

	progress.SystemCheckPassed = true
	progress.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// RecordFocus stores the client's latest tab-focus report for the proctor.
func (s *Service) RecordFocus(ctx context.Context, token string, focused bool) error {
	progress, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	progress.TabFocused = focused
	progress.UpdatedAt = requestcontext.Now(ctx)
	return s.save(ctx, progress)
}

// ImageUpload is one identity image arriving over multipart.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// CaptureIDInput carries the identity step payload. Either image may be
// absent on a retry; only present images are uploaded.
type CaptureIDInput struct {
	StudentIDNumber string
	IDDocument      *ImageUpload
	FaceImage       *ImageUpload
}

// CaptureID stores the student id number and uploads the identity images. An
// upload failure leaves that image unset so the client recaptures it; the
// step completes only when all three artifacts are present.
func (s *Service) CaptureID(ctx context.Context, token string, in CaptureIDInput) (*models.Progress, error) {
	progress, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := progress.CanCaptureID(); err != nil {
		return nil, asConflict(err)
	}

	if in.StudentIDNumber != "" {
		progress.StudentIDNumber = in.StudentIDNumber
	}
	if in.IDDocument != nil {
		url, err := s.upload(ctx, token, "id-document", in.IDDocument)
		if err != nil {
			s.logger.ErrorContext(ctx, "id document upload failed", "error", err)
		} else {
			progress.IDDocumentURL = url
		}
	}
	if in.FaceImage != nil {
		url, err := s.upload(ctx, token, "face", in.FaceImage)
		if err != nil {
			s.logger.ErrorContext(ctx, "face image upload failed", "error", err)
		} else {
			progress.FaceImageURL = url
		}
	}

	progress.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// AcknowledgeRules records the final acceptance and opens the exam gate.
func (s *Service) AcknowledgeRules(ctx context.Context, token string) (*models.Progress, error) {
	progress, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := progress.CanAcknowledgeRules(); err != nil {
		return nil, asConflict(err)
	}

	progress.RulesAcknowledged = true
	progress.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *Service) load(ctx context.Context, token string) (*models.Progress, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "an invitation token is required")
	}
	progress, err := s.progress.Get(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invitation not found or expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load progress")
	}
	return progress, nil
}

func (s *Service) save(ctx context.Context, progress *models.Progress) error {
	if err := s.progress.Update(ctx, progress); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "invitation not found or expired")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save progress")
	}
	return nil
}

func (s *Service) upload(ctx context.Context, token, kind string, image *ImageUpload) (string, error) {
	key := fmt.Sprintf("exam/%s/%s", token, kind)
	return s.objects.Upload(ctx, key, image.Reader, image.Size, image.ContentType)
}

func asConflict(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.Wrap(err, dErrors.CodeConflict, dErrors.MessageOf(err))
	}
	return err
}
