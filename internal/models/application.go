package models

import "time"

// ApplicationStatus is the hiring pipeline stage of an application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationInterview, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending, ApplicationReviewing, ApplicationInterview, ApplicationAccepted, ApplicationRejected,
}

// Application is a job seeker's candidacy for a job.
type Application struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	JobID        uint              `gorm:"uniqueIndex:idx_application_job_seeker;not null" json:"job_id"`
	Job          *Job              `gorm:"foreignKey:JobID" json:"job,omitempty"`
	JobSeekerID  uint              `gorm:"uniqueIndex:idx_application_job_seeker;index;not null" json:"job_seeker_id"`
	JobSeeker    *User             `gorm:"foreignKey:JobSeekerID" json:"job_seeker,omitempty"`
	Status       ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CoverLetter  string            `gorm:"type:text" json:"cover_letter,omitempty"`
	CompanyNotes string            `gorm:"type:text" json:"company_notes,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ApplicantFilter narrows a company's applicant listing.
type ApplicantFilter struct {
	CompanyID uint
	JobID     uint
	Status    ApplicationStatus
	Limit     int
	Offset    int
}
