package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CastVote handles POST /api/posts/:id/vote
func (s *Server) CastVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Direction models.VoteDirection `json:"direction"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tally, err := s.voteService.CastVote(c.Context(), postID, requireUserID(c), req.Direction)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tally)
}

// GetMyVote handles GET /api/posts/:id/vote
func (s *Server) GetMyVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	vote, err := s.voteService.GetVote(c.Context(), postID, requireUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if vote == nil {
		return c.JSON(fiber.Map{"direction": nil})
	}
	return c.JSON(fiber.Map{"direction": vote.Direction})
}
