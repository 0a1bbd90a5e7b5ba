package server

import (
	"strings"

	"empleos/internal/moderation"

	"github.com/gofiber/fiber/v2"
)

// moderationEntities maps the admin route segment to the moderated kind.
var moderationEntities = map[string]moderation.Entity{
	"companies": moderation.Company,
	"jobs":      moderation.Job,
	"omils":     moderation.OMIL,
}

// Approve returns the handler for PATCH /api/admin/{kind}/:id/approve.
// @Summary Approve a pending entity
// @Description Moves a pending company, job or OMIL organization to active and writes an audit entry.
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param kind path string true "companies, jobs or omils"
// @Param id path int true "Entity ID"
// @Param request body object{notes=string} false "Approval notes"
// @Success 200 {object} object{message=string,data=object}
// @Failure 400 {object} models.ErrorResponse "Not pending approval"
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/{kind}/{id}/approve [patch]
func (s *Server) Approve(entity moderation.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return nil
		}
		var req struct {
			Notes string `json:"notes"`
		}
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return nil
			}
		}
		result, err := s.moderationService.Approve(c.UserContext(), actorID(c), entity, id,
			strings.TrimSpace(req.Notes), c.IP())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{
			"message": entity.Label() + " approved",
			"data":    result,
		})
	}
}

// Reject returns the handler for PATCH /api/admin/{kind}/:id/reject.
// @Summary Reject a pending entity
// @Description The reason must have at least 10 characters.
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param kind path string true "companies, jobs or omils"
// @Param id path int true "Entity ID"
// @Param request body object{reason=string} true "Rejection reason"
// @Success 200 {object} object{message=string,data=object}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/{kind}/{id}/reject [patch]
func (s *Server) Reject(entity moderation.Entity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return nil
		}
		var req struct {
			Reason string `json:"reason"`
		}
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		result, err := s.moderationService.Reject(c.UserContext(), actorID(c), entity, id, req.Reason, c.IP())
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{
			"message": entity.Label() + " rejected",
			"data":    result,
		})
	}
}

// ListCompanyQueue handles GET /api/admin/companies.
// status defaults to pending_approval; "all" lists every status.
// @Summary Company moderation queue
// @Tags moderation-admin
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} models.Page[models.Company]
// @Security BearerAuth
// @Router /admin/companies [get]
func (s *Server) ListCompanyQueue(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	rows, err := s.moderationService.ListCompanies(c.UserContext(),
		strings.TrimSpace(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(rows)
}

// ListJobQueue handles GET /api/admin/jobs
func (s *Server) ListJobQueue(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	rows, err := s.moderationService.ListJobs(c.UserContext(),
		strings.TrimSpace(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(rows)
}

// ListOMILQueue handles GET /api/admin/omils
func (s *Server) ListOMILQueue(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	rows, err := s.moderationService.ListOMILs(c.UserContext(),
		strings.TrimSpace(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(rows)
}
