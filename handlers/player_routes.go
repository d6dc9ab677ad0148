// handlers/player_routes.go
package handlers

import (
	"github.com/johnlemossilva-pixel/mini-royale-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app fiber.Router, playerService *services.PlayerService, matchService *services.MatchService) {
	api := app.Group("/api/v1")

	api.Get("/perfil/:id", func(c *fiber.Ctx) error {
		p, err := playerService.GetProfile(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.JSON(p)
	})

	api.Post("/perfil", func(c *fiber.Ctx) error {
		var in services.PlayerInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		p, err := playerService.CreatePlayer(c.UserContext(), in)
		if err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	api.Put("/perfil/:id", func(c *fiber.Ctx) error {
		var in services.PlayerInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
		p, err := playerService.UpsertPlayer(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.JSON(p)
	})

	api.Patch("/perfil/:id", func(c *fiber.Ctx) error {
		var req struct {
			Vida *int `json:"vida"`
			Gems *int `json:"gems"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		id := c.Params("id")
		if err := playerService.AdjustPlayer(c.UserContext(), id, req.Vida, req.Gems); err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.JSON(fiber.Map{
			"message": "player updated",
			"_id":     id,
		})
	})

	api.Get("/perfil/:id/matches", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", services.DefaultHistoryLimit)
		recs, err := matchService.PlayerHistory(c.UserContext(), c.Params("id"), limit)
		if err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.JSON(recs)
	})
}
