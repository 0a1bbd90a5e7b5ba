package server

import (
	"strings"

	"empleos/internal/models"
	"empleos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPublicJobs handles GET /api/jobs
// @Summary Search active jobs
// @Description Lists active postings. When limit is omitted the jobs_per_page setting applies.
// @Tags jobs
// @Produce json
// @Param search query string false "Title or description search"
// @Param region query string false "Region"
// @Param job_type query string false "full_time, part_time, contract, internship or temporary"
// @Param work_mode query string false "onsite, remote or hybrid"
// @Param company_id query int false "Company"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.JobView]
// @Router /jobs [get]
func (s *Server) ListPublicJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	page := listParamsFrom(c, defaultPaginationLimit)
	filter := models.JobFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Region:    c.Query("region"),
		JobType:   models.JobType(c.Query("job_type")),
		WorkMode:  models.WorkMode(c.Query("work_mode")),
		CompanyID: uint(max(c.QueryInt("company_id", 0), 0)),
		Limit:     max(limit, 0),
		Offset:    page.Offset,
	}
	jobs, err := s.jobService.ListPublic(c.UserContext(), filter)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(jobs)
}

// GetPublicJob handles GET /api/jobs/:id
// @Summary Get an active job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} models.JobView
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
func (s *Server) GetPublicJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	job, err := s.jobService.GetPublic(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(job)
}

// ListCompanyJobs handles GET /api/me/company/jobs
func (s *Server) ListCompanyJobs(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	status := models.ModerationStatus(c.Query("status"))
	jobs, err := s.jobService.ListForCompany(c.UserContext(), actorID(c), status, page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(jobs)
}

// CreateJob handles POST /api/me/company/jobs
// @Summary Create a job draft
// @Description The company must be active. The job starts as draft.
// @Tags company
// @Accept json
// @Produce json
// @Param request body service.JobInput true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/company/jobs [post]
func (s *Server) CreateJob(c *fiber.Ctx) error {
	var req service.JobInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	job, err := s.jobService.Create(c.UserContext(), actorID(c), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// GetCompanyJob handles GET /api/me/company/jobs/:id
func (s *Server) GetCompanyJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	job, err := s.jobService.GetForCompany(c.UserContext(), actorID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(job)
}

// UpdateJob handles PUT /api/me/company/jobs/:id
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	var req service.JobInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	job, err := s.jobService.Update(c.UserContext(), actorID(c), id, req)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(job)
}

// DeleteJob handles DELETE /api/me/company/jobs/:id
func (s *Server) DeleteJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	if err := s.jobService.Delete(c.UserContext(), actorID(c), id); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Job deleted"})
}

// SubmitJob handles POST /api/me/company/jobs/:id/submit
// @Summary Submit a job for review
// @Description Moves a draft or rejected job to pending_approval.
// @Tags company
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/company/jobs/{id}/submit [post]
func (s *Server) SubmitJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	job, err := s.jobService.Submit(c.UserContext(), actorID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(job)
}

// CloseJob handles POST /api/me/company/jobs/:id/close
func (s *Server) CloseJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	job, err := s.jobService.Close(c.UserContext(), actorID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(job)
}

// ApplyToJob handles POST /api/jobs/:id/apply
func (s *Server) ApplyToJob(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	var req struct {
		CoverLetter string `json:"cover_letter"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	app, err := s.applicationService.Apply(c.UserContext(), actorID(c), id, req.CoverLetter)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}
