package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "stafflink/pkg/domain-errors"
)

// JobStatus is the posting lifecycle state.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusHold   JobStatus = "hold"
	JobStatusClosed JobStatus = "closed"
)

// ValidJobStatus reports whether s is a known posting status.
func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusOpen, JobStatusHold, JobStatusClosed:
		return true
	}
	return false
}

// ScreeningQuestion is an employer-defined question shown at apply time.
type ScreeningQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// Job is a posting owned by an employer account.
//
// Invariants:
//   - Title and Location are non-empty
//   - Status is one of open, hold, closed
//   - EmployerID is immutable after creation
//   - Only open jobs accept applications
type Job struct {
	ID            uuid.UUID           `json:"id"`
	EmployerID    uuid.UUID           `json:"employer_id"`
	Title         string              `json:"title"`
	Location      string              `json:"location"`
	ExperienceMin int                 `json:"experience_min"`
	ExperienceMax int                 `json:"experience_max"`
	SalaryMin     int                 `json:"salary_min"`
	SalaryMax     int                 `json:"salary_max"`
	Skills        []string            `json:"skills"`
	Description   string              `json:"description"`
	Screening     []ScreeningQuestion `json:"screening,omitempty"`
	Status        JobStatus           `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewJob creates an open posting after validating required fields.
func NewJob(id, employerID uuid.UUID, title, location string, now time.Time) (*Job, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "job title is required")
	}
	if location == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "job location is required")
	}
	return &Job{
		ID:         id,
		EmployerID: employerID,
		Title:      title,
		Location:   location,
		Status:     JobStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsOpen reports whether the posting accepts applications.
func (j *Job) IsOpen() bool { return j.Status == JobStatusOpen }
