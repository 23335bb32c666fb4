package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stafflink/internal/platform/middleware"
	dErrors "stafflink/pkg/domain-errors"
)

// Claims are the session token claims.
type Claims struct {
	AccountID string `json:"account_id"`
	UserType  string `json:"user_type"`
	jwt.RegisteredClaims
}

// Service issues and validates session tokens. Tokens are valid for the
// configured TTL (one day in production wiring). An optional revocation list
// lets logout invalidate a token before it expires.
type Service struct {
	signingKey  []byte
	issuer      string
	ttl         time.Duration
	revocations RevocationList
}

// Option configures a Service.
type Option func(*Service)

// WithRevocations attaches a revocation list consulted on every validation.
func WithRevocations(list RevocationList) Option {
	return func(s *Service) { s.revocations = list }
}

func NewService(signingKey string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		issuer:     "stafflink",
		ttl:        ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL reports the validity window tokens are issued with. The login handler
// uses it for the cookie max-age.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue creates a signed session token for the account.
func (s *Service) Issue(accountID uuid.UUID, userType string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		UserType:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// ValidateToken implements middleware.TokenValidator. Expired tokens are
// reported distinctly from malformed ones; both are unauthorized, as are
// tokens revoked by logout.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check token revocation")
		}
		if revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		}
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.TokenClaims{AccountID: accountID, UserType: claims.UserType}, nil
}

// Revoke puts the token on the revocation list for the remainder of its
// validity. Invalid or already-expired tokens are ignored; a logout with a
// stale token still succeeds.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	if s.revocations == nil {
		return nil
	}
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	return s.revocations.Revoke(ctx, claims.ID, remaining)
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
