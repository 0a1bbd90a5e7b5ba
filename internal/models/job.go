package models

import "time"

// JobType is the contract type of a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeTemporary:
		return true
	}
	return false
}

// WorkMode is where the job is performed.
type WorkMode string

const (
	WorkModeOnsite WorkMode = "onsite"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
)

// Valid reports whether m is a known work mode.
func (m WorkMode) Valid() bool {
	switch m {
	case WorkModeOnsite, WorkModeRemote, WorkModeHybrid:
		return true
	}
	return false
}

// Job is a posting owned by a company.
type Job struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	CompanyID    uint             `gorm:"index;not null" json:"company_id"`
	Company      *Company         `gorm:"foreignKey:CompanyID" json:"-"`
	Title        string           `gorm:"size:200;not null" json:"title"`
	Description  string           `gorm:"type:text;not null" json:"description"`
	Requirements string           `gorm:"type:text" json:"requirements,omitempty"`
	Benefits     string           `gorm:"type:text" json:"benefits,omitempty"`
	Location     string           `gorm:"size:200" json:"location,omitempty"`
	Region       string           `gorm:"size:100;index" json:"region,omitempty"`
	JobType      JobType          `gorm:"type:varchar(20);not null;default:'full_time'" json:"job_type"`
	WorkMode     WorkMode         `gorm:"type:varchar(20);not null;default:'onsite'" json:"work_mode"`
	SalaryMin    *int64           `json:"salary_min,omitempty"`
	SalaryMax    *int64           `json:"salary_max,omitempty"`
	Vacancies    int              `gorm:"not null;default:1" json:"vacancies"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Inclusive    string           `gorm:"type:text" json:"inclusive,omitempty"`
	Status       ModerationStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
	Review       `gorm:"embedded"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobView is a job with its public company summary attached.
type JobView struct {
	Job
	Company *CompanySummary `json:"company,omitempty"`
}

// View returns j with the company summary populated from the preloaded
// association, if any.
func (j Job) View() JobView {
	return JobView{Job: j, Company: j.Company.Summary()}
}

// JobFilter narrows job listings.
type JobFilter struct {
	Search    string
	Region    string
	JobType   JobType
	WorkMode  WorkMode
	CompanyID uint
	Status    ModerationStatus
	Limit     int
	Offset    int
}
