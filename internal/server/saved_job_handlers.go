package server

import (
	"github.com/gofiber/fiber/v2"
)

// SaveJob handles POST /api/me/saved-jobs/:id
// @Summary Save a job
// @Description Bookmarks an active job for the job seeker.
// @Tags saved-jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 201 {object} service.SaveResult
// @Failure 400 {object} models.ErrorResponse "Job already saved"
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/saved-jobs/{id} [post]
func (s *Server) SaveJob(c *fiber.Ctx) error {
	jobID, err := pathID(c)
	if err != nil {
		return nil
	}
	result, err := s.savedJobService.Save(c.UserContext(), actorID(c), jobID)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// UnsaveJob handles DELETE /api/me/saved-jobs/:id
func (s *Server) UnsaveJob(c *fiber.Ctx) error {
	jobID, err := pathID(c)
	if err != nil {
		return nil
	}
	if err := s.savedJobService.Unsave(c.UserContext(), actorID(c), jobID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Job removed from saved jobs"})
}

// CheckSavedJob handles GET /api/me/saved-jobs/:id/check
func (s *Server) CheckSavedJob(c *fiber.Ctx) error {
	jobID, err := pathID(c)
	if err != nil {
		return nil
	}
	saved, err := s.savedJobService.Check(c.UserContext(), actorID(c), jobID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"is_saved": saved})
}

// GetSavedJobs handles GET /api/me/saved-jobs
func (s *Server) GetSavedJobs(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	jobs, err := s.savedJobService.List(c.UserContext(), actorID(c), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(jobs)
}
