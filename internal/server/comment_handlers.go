package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		MediaURL string `json:"media_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.threadService.AddComment(c.Context(), service.AddCommentInput{
		PostID:   postID,
		UserID:   requireUserID(c),
		Content:  req.Content,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CreateReply handles POST /api/comments/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		PostID   uint   `json:"post_id"`
		Content  string `json:"content"`
		MediaURL string `json:"media_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	reply, err := s.threadService.AddReply(c.Context(), service.AddReplyInput{
		PostID:   req.PostID,
		ParentID: parentID,
		UserID:   requireUserID(c),
		Content:  req.Content,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// GetThread handles GET /api/posts/:id/comments
func (s *Server) GetThread(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, s.config.CommentPageSize)
	thread, err := s.threadService.GetThread(c.Context(), postID, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// GetReplies handles GET /api/comments/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	replies, err := s.threadService.ListReplies(c.Context(), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"replies": replies})
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.threadService.DeleteComment(c.Context(), commentID, requireUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// MarkReplyRead handles POST /api/comments/:id/read
func (s *Server) MarkReplyRead(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.threadService.MarkReplyRead(c.Context(), replyID, requireUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply marked as read"})
}

// GetReplyReaders handles GET /api/comments/:id/read
func (s *Server) GetReplyReaders(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	readers, err := s.threadService.ReplyReaders(c.Context(), replyID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if readers == nil {
		readers = []uint{}
	}
	return c.JSON(fiber.Map{"user_ids": readers})
}
