package server

import (
	"strings"

	"rumorplaza/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxListLimit = 100

// parseLimit reads ?limit=, clamped to maxListLimit. Zero means "use the default".
func parseLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return 0
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// postID returns the :id route parameter, or writes a 400 when it is blank.
func postID(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid post ID"))
		return "", false
	}
	return id, true
}

// respondServiceError writes err with the status its AppError code implies.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func badRequestBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
}
