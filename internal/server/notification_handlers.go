package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 0 {
		limit = 0
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	feed, err := s.notificationService.List(c.Context(), requireUserID(c), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// ResetNotifications handles POST /api/notifications/reset
func (s *Server) ResetNotifications(c *fiber.Ctx) error {
	if err := s.notificationService.Reset(c.Context(), requireUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications reset"})
}
