package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus is the recruitment stage of a candidate.
//
// Any known status may follow any other: recruiters reassign stages freely,
// and the history log on each application is the audit trail.
type CandidateStatus string

const (
	StatusApplied     CandidateStatus = "Applied"
	StatusShortlisted CandidateStatus = "Shortlisted"
	StatusInterview   CandidateStatus = "Interview"
	StatusHired       CandidateStatus = "Hired"
	StatusRejected    CandidateStatus = "Rejected"
)

// ValidStatus reports whether s is a known recruitment stage.
func ValidStatus(s CandidateStatus) bool {
	switch s {
	case StatusApplied, StatusShortlisted, StatusInterview, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Candidate is a person in the pipeline. Created either from a registered
// student account or from an anonymous application; one candidate can hold
// many job applications.
//
// Education, experience and certifications keep the flexible shapes legacy
// records arrive in; see FlexList.
type Candidate struct {
	ID        uuid.UUID  `json:"id"`
	AccountID *uuid.UUID `json:"account_id,omitempty"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`

	Education      FlexList `json:"education,omitempty"`
	Experience     FlexList `json:"experience,omitempty"`
	Certifications FlexList `json:"certifications,omitempty"`
	Skills         []string `json:"skills,omitempty"`

	CurrentLocation   string `json:"current_location,omitempty"`
	PreferredLocation string `json:"preferred_location,omitempty"`
	CurrentCompany    string `json:"current_company,omitempty"`
	CurrentRole       string `json:"current_role,omitempty"`
	ExpectedSalary    string `json:"expected_salary,omitempty"`
	NoticePeriod      string `json:"notice_period,omitempty"`

	ResumeURL       string `json:"resume_url,omitempty"`
	VideoResumeURL  string `json:"video_resume_url,omitempty"`
	AudioBiodataURL string `json:"audio_biodata_url,omitempty"`
	PhotographURL   string `json:"photograph_url,omitempty"`

	Status CandidateStatus `json:"status"`
	Notes  string          `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
