package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "stafflink/pkg/domain-errors"
)

// InvitationTTL is how long an exam invitation stays redeemable.
const InvitationTTL = 14 * 24 * time.Hour

// Progress is the server-held state of one candidate's exam pre-check,
// keyed by invitation token. Steps are strictly ordered: system check,
// then identity capture, then rules acknowledgement.
type Progress struct {
	Token       string    `json:"token"`
	CandidateID uuid.UUID `json:"candidate_id"`

	SystemCheckPassed bool `json:"system_check_passed"`

	// TabFocused mirrors the client's latest focus report. Losing focus is
	// surfaced to the proctor, it never aborts the flow.
	TabFocused bool `json:"tab_focused"`

	StudentIDNumber string `json:"student_id_number,omitempty"`
	IDDocumentURL   string `json:"id_document_url,omitempty"`
	FaceImageURL    string `json:"face_image_url,omitempty"`

	RulesAcknowledged bool `json:"rules_acknowledged"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgress is the blank state handed out with a fresh invitation.
func NewProgress(token string, candidateID uuid.UUID, now time.Time) *Progress {
	return &Progress{
		Token:       token,
		CandidateID: candidateID,
		TabFocused:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IDCaptureComplete reports whether all three identity artifacts are present.
func (p *Progress) IDCaptureComplete() bool {
	return p.StudentIDNumber != "" && p.IDDocumentURL != "" && p.FaceImageURL != ""
}

// CanCaptureID gates the identity step on a passed system check.
func (p *Progress) CanCaptureID() error {
	if !p.SystemCheckPassed {
		return dErrors.New(dErrors.CodeInvariantViolation, "complete the system check first")
	}
	return nil
}

// CanAcknowledgeRules gates the final step on everything before it.
func (p *Progress) CanAcknowledgeRules() error {
	if !p.SystemCheckPassed {
		return dErrors.New(dErrors.CodeInvariantViolation, "complete the system check first")
	}
	if !p.IDCaptureComplete() {
		return dErrors.New(dErrors.CodeInvariantViolation, "complete identity capture first")
	}
	return nil
}

// ReadyForExam reports whether every pre-check step is done.
func (p *Progress) ReadyForExam() bool {
	return p.SystemCheckPassed && p.IDCaptureComplete() && p.RulesAcknowledged
}
