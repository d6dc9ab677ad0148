package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything /healthz should check: the database, the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

func SetupHealthRoutes(app fiber.Router, checks map[string]Pinger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		report := fiber.Map{}
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		return c.Status(status).JSON(report)
	})
}
