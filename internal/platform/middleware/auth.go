package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"stafflink/pkg/requestcontext"
)

// SessionCookieName is the cookie the login handler sets and RequireAuth reads.
const SessionCookieName = "auth_token"

// TokenValidator validates a session token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// TokenClaims is the subset of claims the middleware cares about.
type TokenClaims struct {
	AccountID uuid.UUID
	UserType  string
}

// RequireAuth authenticates the request from the auth_token cookie or a
// Bearer header and stores the caller's identity in the context. Missing or
// invalid credentials end the request with 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				unauthorized(w, "missing credentials")
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := requestcontext.WithAccountID(r.Context(), claims.AccountID)
			ctx = requestcontext.WithUserType(ctx, claims.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the caller's identity to the context when a valid
// token is present and lets the request through either way. Used on intake
// endpoints that serve both anonymous and logged-in applicants.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				if claims, err := validator.ValidateToken(r.Context(), token); err == nil {
					ctx := requestcontext.WithAccountID(r.Context(), claims.AccountID)
					ctx = requestcontext.WithUserType(ctx, claims.UserType)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUserType gates a route on the caller's account type. Must run after
// RequireAuth.
func RequireUserType(userType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.UserType(r.Context()) != userType {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"message":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminToken gates the admin namespace on a shared operator token.
func RequireAdminToken(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminToken == "" || r.Header.Get("X-Admin-Token") != adminToken {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"message":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + msg + `"}`))
}
