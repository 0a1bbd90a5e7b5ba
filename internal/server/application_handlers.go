package server

import (
	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyApplications handles GET /api/me/applications
func (s *Server) GetMyApplications(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	apps, err := s.applicationService.ListMine(c.UserContext(), actorID(c), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(apps)
}

// ListApplicants handles GET /api/me/company/applicants
// @Summary List applicants
// @Description Applications to the company's jobs, optionally filtered by job and status.
// @Tags company
// @Produce json
// @Param job_id query int false "Job"
// @Param status query string false "pending, reviewing, interview, accepted or rejected"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Application]
// @Security BearerAuth
// @Router /me/company/applicants [get]
func (s *Server) ListApplicants(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	filter := models.ApplicantFilter{
		JobID:  uint(max(c.QueryInt("job_id", 0), 0)),
		Status: models.ApplicationStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	apps, err := s.applicationService.ListApplicants(c.UserContext(), actorID(c), filter)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(apps)
}

// UpdateApplicantStatus handles PUT /api/me/company/applicants/:id/status
func (s *Server) UpdateApplicantStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	var req struct {
		Status models.ApplicationStatus `json:"status"`
		Notes  *string                  `json:"notes"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	app, err := s.applicationService.UpdateStatus(c.UserContext(), actorID(c), id, req.Status, req.Notes)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(app)
}
