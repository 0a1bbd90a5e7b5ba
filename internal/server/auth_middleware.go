package server

import (
	"errors"
	"strings"

	"empleos/internal/auth"
	"empleos/internal/middleware"
	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
)

const claimsLocal = "claims"

// AuthRequired returns the authentication middleware. It accepts a bearer
// token, a ?token= query parameter outside /api/ws, or a single-use
// ?ticket= on /api/ws paths. The account is reloaded on every request so
// suspensions take effect immediately.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws/") && c.Path() != "/api/ws/ticket"

		if isWSPath {
			ticket := c.Query("ticket")
			if ticket == "" {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("WebSocket ticket required"))
			}
			actor, err := s.consumeWSTicket(ctx, ticket)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			return s.authenticate(c, actor, nil)
		}

		tokenString, ok := middleware.BearerToken(c)
		if !ok {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.tokens.Parse(ctx, tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrRevokedToken) {
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		userID, _ := claims.UserID()

		return s.authenticate(c, middleware.Actor{
			UserID:         userID,
			UserType:       claims.UserType,
			ImpersonatorID: claims.ImpersonatorID,
			TokenID:        claims.ID,
		}, claims)
	}
}

// authenticate checks the account behind actor and stores it on the request.
func (s *Server) authenticate(c *fiber.Ctx, actor middleware.Actor, claims *auth.Claims) error {
	user, err := s.userRepo.GetByID(c.UserContext(), actor.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		return models.RespondWithAppError(c, err)
	}
	switch user.AccountStatus {
	case models.AccountSuspended:
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError("Account suspended"))
	case models.AccountClosed:
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError("Account closed"))
	}

	// The stored role wins over the one signed into the token.
	actor.UserType = user.UserType
	middleware.SetActor(c, actor)
	if claims != nil {
		c.Locals(claimsLocal, claims)
	}
	return c.Next()
}

// RoleRequired rejects actors whose user type is not one of types with 403.
// Must be placed after AuthRequired.
func (s *Server) RoleRequired(types ...models.UserType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		for _, t := range types {
			if actor.UserType == t {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError(roleMessage(types)))
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return s.RoleRequired(models.UserTypeAdmin)
}

func roleMessage(types []models.UserType) string {
	if len(types) == 1 {
		switch types[0] {
		case models.UserTypeAdmin:
			return "Admin access required"
		case models.UserTypeJobSeeker:
			return "Only job seekers can perform this action"
		case models.UserTypeCompany:
			return "Only companies can perform this action"
		case models.UserTypeOMIL:
			return "Only OMIL users can perform this action"
		}
	}
	return "Insufficient permissions"
}

// MaintenanceGuard refuses writes from non-admins while the
// maintenance_mode setting is on. Reads always pass.
func (s *Server) MaintenanceGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if actor, ok := middleware.ActorFrom(c); ok && actor.IsAdmin() {
			return c.Next()
		}
		if !s.settingsService.Bool(c.UserContext(), models.SettingMaintenanceMode, false) {
			return c.Next()
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "The platform is under maintenance, please try again later",
			Code:  "MAINTENANCE",
		})
	}
}

// claimsFrom returns the verified token claims of the request, when the
// request was authenticated with a token rather than a ticket.
func claimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsLocal).(*auth.Claims)
	return claims
}
