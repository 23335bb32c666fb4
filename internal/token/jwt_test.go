package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "stafflink/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = NewService("test-signing-key", time.Hour)
}

func (s *JWTSuite) TestRoundTrip() {
	accountID := uuid.New()
	token, err := s.service.Issue(accountID, "employee")
	s.Require().NoError(err)

	claims, err := s.service.ValidateToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(accountID, claims.AccountID)
	s.Equal("employee", claims.UserType)
}

func (s *JWTSuite) TestExpired() {
	expired := NewService("test-signing-key", -time.Minute)
	token, err := expired.Issue(uuid.New(), "student")
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(s.ctx, token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Contains(err.Error(), "expired")
}

func (s *JWTSuite) TestWrongKey() {
	other := NewService("a-different-key", time.Hour)
	token, err := other.Issue(uuid.New(), "student")
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(s.ctx, token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.NotContains(err.Error(), "expired")
}

func (s *JWTSuite) TestGarbage() {
	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := s.service.ValidateToken(s.ctx, token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *JWTSuite) TestRevocation() {
	service := NewService("test-signing-key", time.Hour,
		WithRevocations(NewInMemoryRevocations()))

	first, err := service.Issue(uuid.New(), "employee")
	s.Require().NoError(err)
	second, err := service.Issue(uuid.New(), "employee")
	s.Require().NoError(err)

	_, err = service.ValidateToken(s.ctx, first)
	s.Require().NoError(err)

	s.Require().NoError(service.Revoke(s.ctx, first))

	_, err = service.ValidateToken(s.ctx, first)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Contains(err.Error(), "revoked")

	// Other sessions are untouched.
	_, err = service.ValidateToken(s.ctx, second)
	s.NoError(err)

	// Revoking garbage is a no-op so logout never fails.
	s.NoError(service.Revoke(s.ctx, "not-a-token"))
}

func (s *JWTSuite) TestTTL() {
	s.Equal(time.Hour, s.service.TTL())
}
