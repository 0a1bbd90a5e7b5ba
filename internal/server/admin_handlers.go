package server

import (
	"encoding/json"
	"strings"

	"empleos/internal/models"
	"empleos/internal/repository"

	"github.com/gofiber/fiber/v2"
)

const maxAdminUserSearchLen = 64

// GetAdminStats handles GET /api/admin/dashboard/stats
// @Summary Back-office overview
// @Tags admin
// @Produce json
// @Success 200 {object} service.AdminStats
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/dashboard/stats [get]
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.dashboardService.AdminStats(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(stats)
}

// ListUsers handles GET /api/admin/users.
// @Summary List users for admin
// @Description List users with filters, search and pagination.
// @Tags admin
// @Produce json
// @Param user_type query string false "job_seeker, company, omil or admin"
// @Param account_status query string false "Account status"
// @Param search query string false "E-mail search"
// @Success 200 {object} models.Page[models.User]
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := listParamsFrom(c, defaultPaginationLimit)
	search := strings.TrimSpace(c.Query("search"))
	if len(search) > maxAdminUserSearchLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query too long (max 64 characters)"))
	}

	users, err := s.adminService.ListUsers(c.UserContext(), repository.UserFilter{
		UserType:      models.UserType(c.Query("user_type")),
		AccountStatus: models.AccountStatus(c.Query("account_status")),
		Search:        search,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/admin/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	detail, err := s.adminService.GetUser(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(detail)
}

// SetUserStatus handles PATCH /api/admin/users/:id/status.
// @Summary Suspend or reactivate a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{status=string,reason=string} true "New status"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/status [patch]
func (s *Server) SetUserStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	var req struct {
		Status models.AccountStatus `json:"status"`
		Reason string               `json:"reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.adminService.SetUserStatus(c.UserContext(), actorID(c), id, req.Status,
		strings.TrimSpace(req.Reason), c.IP())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// ImpersonateUser handles POST /api/admin/users/:id/impersonate
func (s *Server) ImpersonateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return nil
	}
	result, err := s.adminService.Impersonate(c.UserContext(), actorID(c), id, c.IP())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// ListAuditLogs handles GET /api/admin/audit-logs.
// @Summary List audit log entries
// @Description Newest first. Dates are YYYY-MM-DD; to_date is inclusive.
// @Tags admin
// @Produce json
// @Param action_type query string false "e.g. approve_company"
// @Param entity_type query string false "company, job, omil, user or setting"
// @Param entity_id query int false "Entity ID"
// @Param admin_id query int false "Acting admin"
// @Param from_date query string false "From date"
// @Param to_date query string false "To date"
// @Success 200 {object} models.Page[models.AuditLog]
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (s *Server) ListAuditLogs(c *fiber.Ctx) error {
	page := listParamsFrom(c, 50)
	from, err := parseDateQuery(c, "from_date", false)
	if err != nil {
		return nil
	}
	to, err := parseDateQuery(c, "to_date", true)
	if err != nil {
		return nil
	}
	logs, err := s.adminService.ListAuditLogs(c.UserContext(), models.AuditFilter{
		ActionType: strings.TrimSpace(c.Query("action_type")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		EntityID:   uint(max(c.QueryInt("entity_id", 0), 0)),
		AdminID:    uint(max(c.QueryInt("admin_id", 0), 0)),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(logs)
}

// GetSettings handles GET /api/admin/settings
func (s *Server) GetSettings(c *fiber.Ctx) error {
	settings, err := s.settingsService.List(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// UpdateSettings handles PUT /api/admin/settings.
// @Summary Update system settings
// @Description Unknown keys and values of the wrong JSON type are rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{settings=object} true "Key/value pairs"
// @Success 200 {object} object{settings=[]models.SystemSetting}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/settings [put]
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var req struct {
		Settings map[string]json.RawMessage `json:"settings"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if _, err := s.settingsService.Update(c.UserContext(), actorID(c), req.Settings, c.IP()); err != nil {
		return respond(c, err)
	}
	settings, err := s.settingsService.List(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}
