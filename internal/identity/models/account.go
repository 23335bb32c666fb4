package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "stafflink/pkg/domain-errors"
)

// UserType discriminates the two account populations.
type UserType string

const (
	UserTypeStudent  UserType = "student"
	UserTypeEmployee UserType = "employee"
)

// VerificationStatus is the employer KYC review state.
//
// Transitions: pending → verified | rejected; rejected → pending via appeal.
// verified is terminal. Appeal from any state other than rejected is illegal.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// KYCDocument is the identity document an employer submits at registration.
type KYCDocument struct {
	DocumentType string `json:"document_type"`
	Number       string `json:"kyc_number"`
	DocumentURL  string `json:"document_url"`
}

// VerificationState carries the review outcome for an employer account.
// Rejection fields are only meaningful while the account is not verified;
// approval clears them.
type VerificationState struct {
	Status            VerificationStatus `json:"status"`
	RejectionReason   string             `json:"rejection_reason,omitempty"`
	RejectionComments string             `json:"rejection_comments,omitempty"`
	RejectedAt        *time.Time         `json:"rejected_at,omitempty"`
	AppealReason      string             `json:"appeal_reason,omitempty"`
	AppealedAt        *time.Time         `json:"appealed_at,omitempty"`
}

// Account is the aggregate root for a registered user.
//
// Invariants:
//   - Email is unique across all accounts
//   - CreatedAt is immutable after construction; UpdatedAt refreshes on every mutation
//   - KYC and Verification are set iff UserType is employee
type Account struct {
	ID               uuid.UUID          `json:"id"`
	Email            string             `json:"email"`
	PasswordHash     string             `json:"-"`
	UserType         UserType           `json:"user_type"`
	FirstName        string             `json:"first_name"`
	LastName         string             `json:"last_name"`
	Phone            string             `json:"phone,omitempty"`
	CompanyName      string             `json:"company_name,omitempty"`
	EmailVerified    bool               `json:"email_verified"`
	ProfileCompleted bool               `json:"profile_completed"`
	KYC              *KYCDocument       `json:"kyc,omitempty"`
	Verification     *VerificationState `json:"verification,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewStudent creates a student account awaiting email verification.
func NewStudent(id uuid.UUID, email, passwordHash, firstName, lastName string, now time.Time) *Account {
	return &Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		UserType:     UserTypeStudent,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewEmployee creates an employer account entering the KYC review queue.
func NewEmployee(id uuid.UUID, email, passwordHash, firstName, lastName, companyName string, kyc KYCDocument, now time.Time) *Account {
	return &Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		UserType:     UserTypeEmployee,
		FirstName:    firstName,
		LastName:     lastName,
		CompanyName:  companyName,
		KYC:          &kyc,
		Verification: &VerificationState{Status: VerificationPending},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsVerifiedEmployer reports whether the account passed KYC review.
func (a *Account) IsVerifiedEmployer() bool {
	return a.UserType == UserTypeEmployee && a.Verification != nil &&
		a.Verification.Status == VerificationVerified
}

// CanApprove checks that the account is in a state an admin may approve.
func (a *Account) CanApprove() error {
	if a.Verification == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "account has no verification state")
	}
	switch a.Verification.Status {
	case VerificationPending:
		return nil
	case VerificationVerified:
		return dErrors.New(dErrors.CodeInvariantViolation, "account is already verified")
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "rejected account must appeal before re-review")
	}
}

// ApplyApprove transitions to verified and clears any earlier rejection so
// stale review fields never outlive a successful approval.
func (a *Account) ApplyApprove(now time.Time) {
	a.Verification.Status = VerificationVerified
	a.Verification.RejectionReason = ""
	a.Verification.RejectionComments = ""
	a.Verification.RejectedAt = nil
	a.UpdatedAt = now
}

// CanReject checks that the account may be rejected with the given reason.
func (a *Account) CanReject(reason string) error {
	if a.Verification == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "account has no verification state")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if a.Verification.Status != VerificationPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "only pending accounts can be rejected")
	}
	return nil
}

// ApplyReject transitions to rejected and stamps the review outcome.
func (a *Account) ApplyReject(reason, comments string, now time.Time) {
	a.Verification.Status = VerificationRejected
	a.Verification.RejectionReason = reason
	a.Verification.RejectionComments = comments
	rejectedAt := now
	a.Verification.RejectedAt = &rejectedAt
	a.UpdatedAt = now
}

// CanAppeal checks that an appeal is legal. Appeals are only accepted while
// the account is rejected.
func (a *Account) CanAppeal(appealReason string) error {
	if a.Verification == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "account has no verification state")
	}
	if appealReason == "" {
		return dErrors.New(dErrors.CodeValidation, "appeal reason is required")
	}
	if a.Verification.Status != VerificationRejected {
		return dErrors.New(dErrors.CodeInvariantViolation, "only rejected accounts can appeal")
	}
	return nil
}

// ApplyAppeal records the appeal and routes the account back into the manual
// review queue.
func (a *Account) ApplyAppeal(appealReason string, newDocument *KYCDocument, now time.Time) {
	a.Verification.Status = VerificationPending
	a.Verification.AppealReason = appealReason
	appealedAt := now
	a.Verification.AppealedAt = &appealedAt
	if newDocument != nil {
		a.KYC = newDocument
	}
	a.UpdatedAt = now
}
