package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns the configured flag names and their evaluated
// state for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"flags":     []string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Names(),
		"evaluated": s.featureFlags.Snapshot(actorID(c)),
	})
}
