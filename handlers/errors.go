// handlers/errors.go
package handlers

import (
	"errors"

	"github.com/johnlemossilva-pixel/mini-royale-backend/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error kind to its fixed HTTP status. notFound lets
// a route decide what an unknown reference means for it.
func statusFor(kind services.Kind, notFound int) int {
	switch kind {
	case services.KindInvalidRequest:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return notFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error, notFound int) error {
	kind := services.KindOf(err)
	body := fiber.Map{
		"error": err.Error(),
		"kind":  kind,
	}
	var se *services.Error
	if errors.As(err, &se) {
		if len(se.Missing) > 0 && kind == services.KindNotFound {
			body["missing"] = se.Missing
		}
		if se.Timeout {
			body["timeout"] = true
		}
	}
	return c.Status(statusFor(kind, notFound)).JSON(body)
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid JSON",
		"kind":  services.KindInvalidRequest,
		"cause": err.Error(),
	})
}
