package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stafflink/internal/events"
	"stafflink/internal/identity/models"
	"stafflink/internal/identity/store"
	"stafflink/internal/notification"
	dErrors "stafflink/pkg/domain-errors"
)

type VerificationServiceSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *store.InMemory
	service  *Service
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.accounts, notification.Noop{}, events.Noop{}, nil, logger)
}

func (s *VerificationServiceSuite) newPendingEmployer(email string) *models.Account {
	account := models.NewEmployee(uuid.New(), email, "hash", "Ravi", "Kumar", "Acme",
		models.KYCDocument{DocumentType: "gst", Number: "GST-1", DocumentURL: "https://files/d.pdf"},
		time.Now())
	s.Require().NoError(s.accounts.Create(s.ctx, account))
	return account
}

func (s *VerificationServiceSuite) TestApprove() {
	s.Run("pending becomes verified and rejection fields clear", func() {
		account := s.newPendingEmployer("a@acme.io")
		got, err := s.service.Approve(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(models.VerificationVerified, got.Verification.Status)
		s.Empty(got.Verification.RejectionReason)
	})

	s.Run("approving twice is a conflict", func() {
		account := s.newPendingEmployer("b@acme.io")
		_, err := s.service.Approve(s.ctx, account.ID)
		s.Require().NoError(err)

		_, err = s.service.Approve(s.ctx, account.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown account is not found", func() {
		_, err := s.service.Approve(s.ctx, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *VerificationServiceSuite) TestReject() {
	s.Run("requires a reason", func() {
		account := s.newPendingEmployer("c@acme.io")
		_, err := s.service.Reject(s.ctx, account.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("records the reason and comments", func() {
		account := s.newPendingEmployer("d@acme.io")
		got, err := s.service.Reject(s.ctx, account.ID, "document unreadable", "scan too dark")
		s.Require().NoError(err)
		s.Equal(models.VerificationRejected, got.Verification.Status)
		s.Equal("document unreadable", got.Verification.RejectionReason)
		s.NotNil(got.Verification.RejectedAt)
	})

	s.Run("cannot reject a verified account", func() {
		account := s.newPendingEmployer("e@acme.io")
		_, err := s.service.Approve(s.ctx, account.ID)
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx, account.ID, "late", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *VerificationServiceSuite) TestAppeal() {
	s.Run("only a rejected account may appeal", func() {
		account := s.newPendingEmployer("f@acme.io")
		_, err := s.service.Appeal(s.ctx, account.ID, AppealInput{Reason: "please look again"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("appeal returns the account to pending with the new document", func() {
		account := s.newPendingEmployer("g@acme.io")
		_, err := s.service.Reject(s.ctx, account.ID, "blurry", "")
		s.Require().NoError(err)

		newDoc := &models.KYCDocument{DocumentType: "gst", Number: "GST-2", DocumentURL: "https://files/new.pdf"}
		got, err := s.service.Appeal(s.ctx, account.ID, AppealInput{Reason: "rescanned", NewDocument: newDoc})
		s.Require().NoError(err)
		s.Equal(models.VerificationPending, got.Verification.Status)
		s.Equal("rescanned", got.Verification.AppealReason)
		s.Equal("GST-2", got.KYC.Number)
	})

	s.Run("appeal requires a reason", func() {
		account := s.newPendingEmployer("h@acme.io")
		_, err := s.service.Reject(s.ctx, account.ID, "blurry", "")
		s.Require().NoError(err)

		_, err = s.service.Appeal(s.ctx, account.ID, AppealInput{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *VerificationServiceSuite) TestDelete() {
	account := s.newPendingEmployer("i@acme.io")
	s.Require().NoError(s.service.Delete(s.ctx, account.ID))

	err := s.service.Delete(s.ctx, account.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *VerificationServiceSuite) TestReviewQueue() {
	s.newPendingEmployer("q1@acme.io")
	second := s.newPendingEmployer("q2@acme.io")
	_, err := s.service.Approve(s.ctx, second.ID)
	s.Require().NoError(err)

	queue, err := s.service.ReviewQueue(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal("q1@acme.io", queue[0].Email)
}
