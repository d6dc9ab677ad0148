// handlers/match_routes.go
package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/johnlemossilva-pixel/mini-royale-backend/services"

	"github.com/gofiber/fiber/v2"
)

// participantRef accepts either a bare id or a player object carrying
// "_id" (or "id"), the shape older clients post.
type participantRef string

func (p *participantRef) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*p = participantRef(id)
		return nil
	}
	var obj struct {
		UnderscoreID string `json:"_id"`
		ID           string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("participant must be an id or an object with _id")
	}
	if obj.UnderscoreID != "" {
		*p = participantRef(obj.UnderscoreID)
	} else {
		*p = participantRef(obj.ID)
	}
	return nil
}

type startMatchRequest struct {
	Players  []participantRef `json:"players"`
	PlayerID string           `json:"player_id"`
}

func SetupMatchRoutes(app fiber.Router, matchService *services.MatchService) {
	api := app.Group("/api/v1")

	api.Post("/match/start", func(c *fiber.Ctx) error {
		var req startMatchRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		ids := make([]string, len(req.Players))
		for i, p := range req.Players {
			ids[i] = string(p)
		}

		result, matchID, err := matchService.ApplyMatch(c.UserContext(), services.MatchRequest{
			Participants: ids,
			RequestedBy:  strings.TrimSpace(req.PlayerID),
		})
		if err != nil {
			// an unknown participant is a defect of this request body
			return respondError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{
			"status":   "match_ended",
			"match_id": matchID,
			"results":  result,
		})
	})

	api.Get("/match/:id", func(c *fiber.Ctx) error {
		rec, err := matchService.GetMatch(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err, fiber.StatusNotFound)
		}
		return c.JSON(rec)
	})
}
