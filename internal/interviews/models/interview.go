package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "stafflink/pkg/domain-errors"
)

// InterviewStatus is the lifecycle state of a scheduled interview.
type InterviewStatus string

const (
	StatusScheduled   InterviewStatus = "scheduled"
	StatusConfirmed   InterviewStatus = "confirmed"
	StatusRescheduled InterviewStatus = "rescheduled"
	StatusCompleted   InterviewStatus = "completed"
	StatusCancelled   InterviewStatus = "cancelled"
	StatusExpired     InterviewStatus = "expired"
)

// live reports whether the interview is still waiting to happen. Only live
// interviews expire when their slot passes.
func (s InterviewStatus) live() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusRescheduled
}

// Interview is one scheduled meeting between an employer and a candidate.
type Interview struct {
	ID          uuid.UUID `json:"id"`
	EmployerID  uuid.UUID `json:"employer_id"`
	CandidateID uuid.UUID `json:"candidate_id"`

	// JobID is nil for general screening calls not tied to a posting.
	JobID *uuid.UUID `json:"job_id,omitempty"`

	ScheduledAt  time.Time     `json:"scheduled_at"`
	Duration     time.Duration `json:"duration"`
	Interviewers []string      `json:"interviewers,omitempty"`
	MeetingLink  string        `json:"meeting_link,omitempty"`
	Notes        string        `json:"notes,omitempty"`

	Status    InterviewStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewInterview creates an interview in scheduled state.
func NewInterview(id, employerID, candidateID uuid.UUID, scheduledAt time.Time, duration time.Duration, now time.Time) *Interview {
	return &Interview{
		ID:          id,
		EmployerID:  employerID,
		CandidateID: candidateID,
		ScheduledAt: scheduledAt,
		Duration:    duration,
		Status:      StatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanConfirm permits confirmation of a scheduled or rescheduled interview.
func (i *Interview) CanConfirm() error {
	switch i.Status {
	case StatusScheduled, StatusRescheduled:
		return nil
	case StatusConfirmed:
		return dErrors.New(dErrors.CodeInvariantViolation, "interview is already confirmed")
	default:
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot confirm a %s interview", i.Status)
	}
}

func (i *Interview) ApplyConfirm(now time.Time) {
	i.Status = StatusConfirmed
	i.UpdatedAt = now
}

// CanReschedule permits moving any interview that has not finished.
func (i *Interview) CanReschedule() error {
	if i.Status.live() {
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reschedule a %s interview", i.Status)
}

func (i *Interview) ApplyReschedule(scheduledAt time.Time, duration time.Duration, now time.Time) {
	i.ScheduledAt = scheduledAt
	if duration > 0 {
		i.Duration = duration
	}
	i.Status = StatusRescheduled
	i.UpdatedAt = now
}

// CanComplete permits completing any live interview.
func (i *Interview) CanComplete() error {
	if i.Status.live() {
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot complete a %s interview", i.Status)
}

func (i *Interview) ApplyComplete(notes string, now time.Time) {
	if notes != "" {
		i.Notes = notes
	}
	i.Status = StatusCompleted
	i.UpdatedAt = now
}

// CanCancel permits cancelling any live interview.
func (i *Interview) CanCancel() error {
	if i.Status.live() {
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot cancel a %s interview", i.Status)
}

func (i *Interview) ApplyCancel(now time.Time) {
	i.Status = StatusCancelled
	i.UpdatedAt = now
}

// MarkExpiredIfPast flips a live interview whose slot has passed to expired.
// Called lazily from listings; reports whether a change was made.
func (i *Interview) MarkExpiredIfPast(now time.Time) bool {
	if !i.Status.live() || now.Before(i.ScheduledAt.Add(i.Duration)) {
		return false
	}
	i.Status = StatusExpired
	i.UpdatedAt = now
	return true
}
