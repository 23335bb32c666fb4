package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"stafflink/internal/events"
	"stafflink/internal/identity"
	"stafflink/internal/identity/models"
	"stafflink/internal/identity/otp"
	"stafflink/internal/identity/store"
	"stafflink/internal/notification"
	"stafflink/internal/platform/metrics"
	dErrors "stafflink/pkg/domain-errors"
	emailutil "stafflink/pkg/email"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/requestcontext"
)

// ApplicationLinker reconciles applications submitted before the applicant
// registered an account. Best-effort; registration succeeds regardless.
type ApplicationLinker interface {
	ReconcilePending(ctx context.Context, email string, accountID uuid.UUID) error
}

// Service orchestrates account registration, login, and OTP flows.
type Service struct {
	accounts store.AccountStore
	otps     otp.Store
	otpTTL   time.Duration
	notifier notification.Notifier
	events   events.Publisher
	linker   ApplicationLinker
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// corporateDomain, when non-empty, restricts employer registration.
	corporateDomain string
}

type Option func(*Service)

// WithCorporateDomain restricts employer registration emails to the given
// domain.
func WithCorporateDomain(domain string) Option {
	return func(s *Service) { s.corporateDomain = strings.ToLower(domain) }
}

// WithApplicationLinker enables pending-application reconciliation at student
// registration.
func WithApplicationLinker(l ApplicationLinker) Option {
	return func(s *Service) { s.linker = l }
}

func New(accounts store.AccountStore, otps otp.Store, otpTTL time.Duration, notifier notification.Notifier, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		otps:     otps,
		otpTTL:   otpTTL,
		notifier: notifier,
		events:   publisher,
		metrics:  m,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterStudentInput carries the student registration payload.
type RegisterStudentInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// RegisterStudent creates a student account in unverified state and emails a
// verification code.
func (s *Service) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*models.Account, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first name and last name are required")
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account := models.NewStudent(uuid.New(), strings.ToLower(in.Email), hash, in.FirstName, in.LastName, now)
	account.Phone = in.Phone

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if s.linker != nil {
		if err := s.linker.ReconcilePending(ctx, account.Email, account.ID); err != nil {
			s.logger.WarnContext(ctx, "pending application reconciliation failed",
				"account_id", account.ID, "error", err)
		}
	}

	s.issueOTP(ctx, otp.PurposeEmailVerify, account, "Verify your email",
		"Your StaffLink verification code is %s. It expires in %d minutes.")
	s.publish(ctx, events.TypeAccountRegistered, account.ID.String(), map[string]string{
		"user_type": string(account.UserType),
	})
	if s.metrics != nil {
		s.metrics.AccountsRegistered.WithLabelValues(string(account.UserType)).Inc()
	}
	return account, nil
}

// RegisterEmployeeInput carries the employer registration payload. The KYC
// document has already been uploaded; DocumentURL points at it.
type RegisterEmployeeInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	CompanyName  string
	DocumentType string
	KYCNumber    string
	DocumentURL  string
}

// RegisterEmployee creates an employer account in pending KYC state.
func (s *Service) RegisterEmployee(ctx context.Context, in RegisterEmployeeInput) (*models.Account, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}

	var missing []string
	for field, value := range map[string]string{
		"company_name":  in.CompanyName,
		"document_type": in.DocumentType,
		"kyc_number":    in.KYCNumber,
		"document":      in.DocumentURL,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, dErrors.Newf(dErrors.CodeValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}

	if s.corporateDomain != "" && emailutil.Domain(in.Email) != s.corporateDomain {
		return nil, dErrors.Newf(dErrors.CodeValidation, "registration requires a %s email address", s.corporateDomain)
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account := models.NewEmployee(uuid.New(), strings.ToLower(in.Email), hash,
		in.FirstName, in.LastName, in.CompanyName,
		models.KYCDocument{DocumentType: in.DocumentType, Number: in.KYCNumber, DocumentURL: in.DocumentURL},
		now,
	)

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.issueOTP(ctx, otp.PurposeEmailVerify, account, "Verify your email",
		"Your StaffLink verification code is %s. It expires in %d minutes.")
	s.publish(ctx, events.TypeAccountRegistered, account.ID.String(), map[string]string{
		"user_type": string(account.UserType),
	})
	if s.metrics != nil {
		s.metrics.AccountsRegistered.WithLabelValues(string(account.UserType)).Inc()
	}
	return account, nil
}

// VerifyEmail redeems the emailed code and marks the account verified.
// A consumed or expired code fails differently from a wrong one.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.otps.Consume(ctx, otp.PurposeEmailVerify, account.ID.String(), code); err != nil {
		return translateOTPErr(err)
	}

	account.EmailVerified = true
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := s.accounts.Update(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}
	return nil
}

// Login verifies credentials and returns the account for token issuance.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same message as a bad password; login must not leak which
			// emails exist.
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := identity.VerifyPassword(password, account.PasswordHash); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	return account, nil
}

// RequestPasswordReset emails a reset code. Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	s.issueOTP(ctx, otp.PurposePasswordReset, account, "Reset your password",
		"Your StaffLink password reset code is %s. It expires in %d minutes.")
	return nil
}

// ResetPassword redeems a reset code and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.otps.Consume(ctx, otp.PurposePasswordReset, account.ID.String(), code); err != nil {
		return translateOTPErr(err)
	}

	hash, err := identity.HashPassword(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := s.accounts.Update(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}
	return nil
}

// Get returns one account by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

// issueOTP generates, stores, and emails a one-time code. Failures are logged
// only; the enclosing operation has already committed.
func (s *Service) issueOTP(ctx context.Context, purpose otp.Purpose, account *models.Account, subject, bodyFormat string) {
	code, err := otp.Generate()
	if err != nil {
		s.logger.ErrorContext(ctx, "otp generation failed", "account_id", account.ID, "error", err)
		return
	}
	if err := s.otps.Put(ctx, purpose, account.ID.String(), code, s.otpTTL); err != nil {
		s.logger.ErrorContext(ctx, "otp storage failed", "account_id", account.ID, "error", err)
		return
	}
	s.notifier.EnqueueEmail(notification.Email{
		To:      account.Email,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, code, int(s.otpTTL.Minutes())),
	})
}

func (s *Service) publish(ctx context.Context, eventType, subject string, fields map[string]string) {
	s.events.Publish(ctx, events.Event{
		Type:       eventType,
		Subject:    subject,
		OccurredAt: requestcontext.Now(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		Fields:     fields,
	})
}

func validateCredentials(email, password string) error {
	if !govalidator.IsEmail(email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

func translateOTPErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeBadRequest, "code has expired or was already used")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeBadRequest, "incorrect code")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify code")
	}
}
