package server

import (
	"errors"
	"strings"
	"time"

	"empleos/internal/middleware"
	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already sent a 400. The handler returns
// nil so the Fiber ErrorHandler leaves the response alone.
var errResponseWritten = errors.New("response already written")

const (
	defaultPaginationLimit = 20
	maxPaginationLimit     = 100
	dateLayout             = "2006-01-02"
)

// listParams is the limit/offset window of a list endpoint.
type listParams struct {
	Limit  int
	Offset int
}

// listParamsFrom reads ?limit= and ?offset=. Out-of-range values are
// clamped rather than rejected.
func listParamsFrom(c *fiber.Ctx, defaultLimit int) listParams {
	p := listParams{
		Limit:  c.QueryInt("limit", defaultLimit),
		Offset: c.QueryInt("offset", 0),
	}
	switch {
	case p.Limit <= 0:
		p.Limit = defaultLimit
	case p.Limit > maxPaginationLimit:
		p.Limit = maxPaginationLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// pathID returns the :id route parameter. Ids start at 1; anything else
// gets a 400 and errResponseWritten.
func pathID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, badRequest(c, "Invalid ID")
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return nil
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. With
// endOfDay the result is the last instant of that day.
func parseDateQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, badRequest(c, "Invalid "+key+", expected YYYY-MM-DD")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(msg))
	return errResponseWritten
}

// actorID is only valid behind AuthRequired.
func actorID(c *fiber.Ctx) uint {
	actor, _ := middleware.ActorFrom(c)
	return actor.UserID
}

func respond(c *fiber.Ctx, err error) error {
	return models.RespondWithAppError(c, err)
}
