// Package middleware provides request-scoped HTTP middleware: logging,
// tracing, metrics, rate limiting and the authenticated actor.
package middleware

import (
	"context"
	"strings"

	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Actor is the authenticated principal of one request. It replaces ambient
// session state: handlers and services receive it explicitly.
type Actor struct {
	UserID         uint
	UserType       models.UserType
	ImpersonatorID uint
	TokenID        string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.UserType == models.UserTypeAdmin
}

const actorLocal = "actor"

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// SetActor stores the actor in fiber locals and the user context.
func SetActor(c *fiber.Ctx, actor Actor) {
	c.Locals(actorLocal, actor)
	c.Locals("userID", actor.UserID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, actor.UserID)
	ctx = context.WithValue(ctx, ActorKey, actor)
	c.SetUserContext(ctx)
}

// ActorFrom returns the actor set by the auth middleware.
func ActorFrom(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals(actorLocal).(Actor)
	return actor, ok
}

// ActorFromContext returns the actor carried by ctx.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok
}
