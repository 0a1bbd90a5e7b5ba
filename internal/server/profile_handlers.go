package server

import (
	"empleos/internal/repository"
	"empleos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/me/profile
// @Summary Get the job seeker profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.JobSeekerProfile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), actorID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/me/profile. Omitted fields keep their
// current value.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.profileService.UpdateProfile(c.UserContext(), actorID(c), req)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}

// registerItemRoutes mounts list, create, update and delete for one kind
// of CV entry on r.
func registerItemRoutes[E any, P repository.OwnedItem[E]](r fiber.Router, svc *service.ItemService[E, P]) {
	r.Get("/", func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), actorID(c))
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(items)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		item := P(new(E))
		if err := parseBody(c, item); err != nil {
			return nil
		}
		item.SetItemID(0)
		if err := svc.Create(c.UserContext(), actorID(c), item); err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return nil
		}
		item := P(new(E))
		if err := parseBody(c, item); err != nil {
			return nil
		}
		item.SetItemID(id)
		if err := svc.Update(c.UserContext(), actorID(c), item); err != nil {
			return respond(c, err)
		}
		return c.JSON(item)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return nil
		}
		if err := svc.Delete(c.UserContext(), actorID(c), id); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// GetCompanyProfile handles GET /api/me/company/profile
func (s *Server) GetCompanyProfile(c *fiber.Ctx) error {
	company, err := s.profileService.GetCompanyProfile(c.UserContext(), actorID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(company)
}

// UpdateCompanyProfile handles PUT /api/me/company/profile
// @Summary Update the company profile
// @Description RUT and moderation fields cannot be changed here.
// @Tags company
// @Accept json
// @Produce json
// @Param request body service.UpdateCompanyInput true "Company fields"
// @Success 200 {object} models.Company
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/company/profile [put]
func (s *Server) UpdateCompanyProfile(c *fiber.Ctx) error {
	var req service.UpdateCompanyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	company, err := s.profileService.UpdateCompanyProfile(c.UserContext(), actorID(c), req)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(company)
}

// GetCompanyDashboard handles GET /api/me/company/dashboard
func (s *Server) GetCompanyDashboard(c *fiber.Ctx) error {
	dashboard, err := s.dashboardService.CompanyDashboard(c.UserContext(), actorID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(dashboard)
}
