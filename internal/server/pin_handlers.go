package server

import (
	"github.com/gofiber/fiber/v2"
)

// TogglePin handles POST /api/posts/:id/pin
func (s *Server) TogglePin(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	pinned, err := s.pinService.TogglePin(c.Context(), postID, requireUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"pinned": pinned})
}

// GetMyPins handles GET /api/pins
func (s *Server) GetMyPins(c *fiber.Ctx) error {
	ids, err := s.pinService.ListPins(c.Context(), requireUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return c.JSON(fiber.Map{"post_ids": ids})
}
