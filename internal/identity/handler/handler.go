// Package handler exposes registration, login, and account endpoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stafflink/internal/identity/models"
	"stafflink/internal/identity/service"
	"stafflink/internal/objectstore"
	"stafflink/internal/platform/middleware"
	"stafflink/internal/transport/http/shared"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

// TokenIssuer mints session tokens for authenticated accounts and retires
// them on logout.
type TokenIssuer interface {
	Issue(accountID uuid.UUID, userType string) (string, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// Handler wires the identity endpoints to the identity service.
type Handler struct {
	service    *service.Service
	tokens     TokenIssuer
	objects    objectstore.Store
	maxDocSize int64
	production bool
	logger     *slog.Logger
}

func New(service *service.Service, tokens TokenIssuer, objects objectstore.Store, maxDocSize int64, production bool, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		tokens:     tokens,
		objects:    objects,
		maxDocSize: maxDocSize,
		production: production,
		logger:     logger,
	}
}

// Register mounts the public auth endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register/student", h.HandleRegisterStudent)
	r.Post("/register/employee", h.HandleRegisterEmployee)
	r.Post("/verify-email", h.HandleVerifyEmail)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Post("/password-reset/request", h.HandleRequestPasswordReset)
	r.Post("/password-reset", h.HandleResetPassword)
}

// RegisterAuthenticated mounts the endpoints that need a session.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/me", h.HandleMe)
}

type registerStudentRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (h *Handler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := shared.Decode[registerStudentRequest](w, r)
	if !ok {
		return
	}

	account, err := h.service.RegisterStudent(ctx, service.RegisterStudentInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "student registration failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, accountView(account))
}

// HandleRegisterEmployee accepts multipart form data: the registration fields
// plus the KYC document file.
func (h *Handler) HandleRegisterEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(h.maxDocSize); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	documentURL, err := h.uploadFormFile(r, "document")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	account, err := h.service.RegisterEmployee(ctx, service.RegisterEmployeeInput{
		Email:        r.FormValue("email"),
		Password:     r.FormValue("password"),
		FirstName:    r.FormValue("first_name"),
		LastName:     r.FormValue("last_name"),
		CompanyName:  r.FormValue("company_name"),
		DocumentType: r.FormValue("document_type"),
		KYCNumber:    r.FormValue("kyc_number"),
		DocumentURL:  documentURL,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "employee registration failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, accountView(account))
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *Handler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Decode[verifyEmailRequest](w, r)
	if !ok {
		return
	}
	if err := h.service.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "email verified")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates and sets the session cookie. The token is also
// returned in the body for API clients.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := shared.Decode[loginRequest](w, r)
	if !ok {
		return
	}

	account, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	token, err := h.tokens.Issue(account.ID, string(account.UserType))
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"request_id", requestcontext.RequestID(ctx), "account_id", account.ID, "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": accountView(account),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.tokens.Revoke(r.Context(), c.Value); err != nil {
			h.logger.WarnContext(r.Context(), "token revocation failed",
				"request_id", requestcontext.RequestID(r.Context()), "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
	shared.WriteMessage(w, http.StatusOK, "logged out")
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *Handler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Decode[passwordResetRequest](w, r)
	if !ok {
		return
	}
	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "if the email exists, a reset code has been sent")
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Decode[resetPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "password updated")
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.service.Get(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, accountView(account))
}

// uploadFormFile stores one multipart file and returns its URL.
func (h *Handler) uploadFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", dErrors.Newf(dErrors.CodeBadRequest, "invalid %s file", field)
	}
	defer file.Close()

	if header.Size > h.maxDocSize {
		return "", dErrors.Newf(dErrors.CodeValidation, "%s exceeds the %dMB size limit", field, h.maxDocSize>>20)
	}

	key := fmt.Sprintf("kyc/%s/%s", uuid.NewString(), header.Filename)
	url, err := h.objects.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	return url, nil
}

// accountView strips credentials from the API representation.
func accountView(a *models.Account) map[string]any {
	view := map[string]any{
		"id":                a.ID,
		"email":             a.Email,
		"user_type":         a.UserType,
		"first_name":        a.FirstName,
		"last_name":         a.LastName,
		"email_verified":    a.EmailVerified,
		"profile_completed": a.ProfileCompleted,
		"created_at":        a.CreatedAt,
	}
	if a.UserType == models.UserTypeEmployee {
		view["company_name"] = a.CompanyName
		view["verification"] = a.Verification
	}
	return view
}
