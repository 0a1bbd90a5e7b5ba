package models

import "time"

// SavedJob is a bookmark of a job by a job seeker. Unique per pair.
type SavedJob struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobSeekerID uint      `gorm:"uniqueIndex:idx_saved_job_pair;not null" json:"job_seeker_id"`
	JobID       uint      `gorm:"uniqueIndex:idx_saved_job_pair;index;not null" json:"job_id"`
	Job         *Job      `gorm:"foreignKey:JobID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedJobView is the list projection with job and company joined.
type SavedJobView struct {
	ID        uint      `json:"id"`
	JobID     uint      `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
	Job       *JobView  `json:"job"`
}
