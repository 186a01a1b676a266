package model

import "time"

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

// ApplicationStatuses lists statuses in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusPending, StatusReviewed, StatusShortlisted, StatusInterviewed, StatusAccepted, StatusRejected,
}

var nextStatuses = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusReviewed, StatusRejected},
	StatusReviewed:    {StatusShortlisted, StatusInterviewed, StatusRejected},
	StatusShortlisted: {StatusInterviewed, StatusAccepted, StatusRejected},
	StatusInterviewed: {StatusAccepted, StatusRejected},
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Label() string {
	return humanize(string(s))
}

// Terminal reports whether no further transition exists.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// NextStatuses returns the statuses an employer may move an application to.
// Views use it to offer choices; the server remains authoritative.
func (s ApplicationStatus) NextStatuses() []ApplicationStatus {
	return nextStatuses[s]
}

// CanTransition reports whether from -> to follows the review pipeline.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

type JobApplication struct {
	ID            string            `json:"id"`
	JobID         string            `json:"job_id"`
	JobTitle      string            `json:"job_title,omitempty"`
	CompanyName   string            `json:"company_name,omitempty"`
	ApplicantID   string            `json:"applicant_id"`
	ApplicantName string            `json:"applicant_name,omitempty"`
	ResumeID      string            `json:"resume_id,omitempty"`
	CoverLetter   string            `json:"cover_letter,omitempty"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"applied_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
