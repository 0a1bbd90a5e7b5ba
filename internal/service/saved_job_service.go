package service

import (
	"context"

	"empleos/internal/models"
	"empleos/internal/repository"
)

// SavedJobService keeps each job seeker's set of bookmarked jobs.
type SavedJobService struct {
	saved repository.SavedJobRepository
	jobs  repository.JobRepository
}

// NewSavedJobService returns a SavedJobService.
func NewSavedJobService(saved repository.SavedJobRepository, jobs repository.JobRepository) *SavedJobService {
	return &SavedJobService{saved: saved, jobs: jobs}
}

// SaveResult is returned by Save.
type SaveResult struct {
	ID    uint `json:"id"`
	JobID uint `json:"job_id"`
}

// Save bookmarks jobID for seekerID. Only published jobs can be saved;
// drafts and jobs under review are not found. Saving twice is a conflict.
func (s *SavedJobService) Save(ctx context.Context, seekerID, jobID uint) (*SaveResult, error) {
	if _, err := s.jobs.GetActive(ctx, jobID); err != nil {
		return nil, err
	}
	saved := &models.SavedJob{JobSeekerID: seekerID, JobID: jobID}
	if err := s.saved.Create(ctx, saved); err != nil {
		return nil, err
	}
	return &SaveResult{ID: saved.ID, JobID: jobID}, nil
}

// Unsave removes the bookmark.
func (s *SavedJobService) Unsave(ctx context.Context, seekerID, jobID uint) error {
	return s.saved.Delete(ctx, seekerID, jobID)
}

// Check reports whether jobID is saved by seekerID.
func (s *SavedJobService) Check(ctx context.Context, seekerID, jobID uint) (bool, error) {
	return s.saved.Exists(ctx, seekerID, jobID)
}

// List returns the bookmarks of seekerID, newest first, with job and
// company joined.
func (s *SavedJobService) List(ctx context.Context, seekerID uint, limit, offset int) (models.Page[models.SavedJobView], error) {
	rows, total, err := s.saved.List(ctx, seekerID, limit, offset)
	if err != nil {
		return models.Page[models.SavedJobView]{}, err
	}
	views := make([]models.SavedJobView, len(rows))
	for i, row := range rows {
		views[i] = models.SavedJobView{ID: row.ID, JobID: row.JobID, CreatedAt: row.CreatedAt}
		if row.Job != nil {
			jv := row.Job.View()
			views[i].Job = &jv
		}
	}
	return models.NewPage(views, total), nil
}
