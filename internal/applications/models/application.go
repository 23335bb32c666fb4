package models

import (
	"time"

	"github.com/google/uuid"

	candidatemodels "stafflink/internal/candidates/models"
)

// HistoryEntry is one status transition on an application. History is
// append-only; entries are never rewritten.
type HistoryEntry struct {
	Status candidatemodels.CandidateStatus `json:"status"`
	Date   time.Time                       `json:"date"`
	Note   string                          `json:"note,omitempty"`
}

// Application links a candidate to a job posting and tracks the recruitment
// stage for that specific job, independently of the candidate's own status.
//
// Invariants:
//   - AppliedDate is immutable once set
//   - History grows by exactly one entry per status change, ordered by time
//   - Status always equals the last history entry's status
type Application struct {
	ID          uuid.UUID                       `json:"id"`
	JobID       uuid.UUID                       `json:"job_id"`
	CandidateID uuid.UUID                       `json:"candidate_id"`
	Status      candidatemodels.CandidateStatus `json:"status"`
	AppliedDate time.Time                       `json:"applied_date"`
	History     []HistoryEntry                  `json:"history"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// NewApplication creates an application in Applied state with its first
// history entry.
func NewApplication(id, jobID, candidateID uuid.UUID, now time.Time) *Application {
	return &Application{
		ID:          id,
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      candidatemodels.StatusApplied,
		AppliedDate: now,
		History: []HistoryEntry{
			{Status: candidatemodels.StatusApplied, Date: now},
		},
		UpdatedAt: now,
	}
}

// SetStatus overwrites the stage and appends the transition to history.
// Any known status may follow any other; the history log is the audit trail.
func (a *Application) SetStatus(status candidatemodels.CandidateStatus, note string, now time.Time) {
	a.Status = status
	a.History = append(a.History, HistoryEntry{Status: status, Date: now, Note: note})
	a.UpdatedAt = now
}

// PendingLink ties an anonymous application's email to its candidate record
// so a later account registration can claim it. Links expire after 7 days;
// expired links are skipped on read and cleanup is best-effort.
type PendingLink struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	CandidateID uuid.UUID `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PendingLinkTTL is how long an anonymous application waits to be claimed.
const PendingLinkTTL = 7 * 24 * time.Hour
