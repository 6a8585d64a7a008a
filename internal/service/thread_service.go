// Package service implements the forum's core business operations on top of
// the repository layer. Multi-entity mutations run in a single transaction;
// derived state (activity counters, notifications) is maintained by event
// handlers invoked inside that transaction.
package service

import (
	"context"
	"math"

	"agora/internal/cache"
	"agora/internal/events"
	"agora/internal/models"
	"agora/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 10000

// ThreadService owns the two-level comment/reply tree of a post.
type ThreadService struct {
	db  *gorm.DB
	bus *events.Bus
}

// AddCommentInput is the payload for creating a top-level comment.
type AddCommentInput struct {
	PostID   uint
	UserID   uint
	Content  string
	MediaURL string
}

// AddReplyInput is the payload for replying to a top-level comment.
type AddReplyInput struct {
	PostID   uint
	ParentID uint
	UserID   uint
	Content  string
	MediaURL string
}

// ThreadPage is one page of a post's comment thread. TotalComments counts
// every comment on the post including replies; TotalPages paginates
// top-level comments only.
type ThreadPage struct {
	Comments      []*models.Comment `json:"comments"`
	TotalComments int               `json:"total_comments"`
	TotalPages    int               `json:"total_pages"`
	CurrentPage   int               `json:"current_page"`
}

// NewThreadService creates a ThreadService publishing mutations on bus.
func NewThreadService(db *gorm.DB, bus *events.Bus) *ThreadService {
	return &ThreadService{db: db, bus: bus}
}

func validateCommentContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

// AddComment creates a top-level comment on a post.
func (s *ThreadService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, in.PostID)
		if err != nil {
			return err
		}

		comment := &models.Comment{
			Content:  in.Content,
			MediaURL: in.MediaURL,
			UserID:   in.UserID,
			PostID:   in.PostID,
		}
		if err := repository.NewCommentRepository(tx).Create(ctx, comment); err != nil {
			return err
		}
		created = comment

		return s.bus.PublishCommentAdded(ctx, tx, events.CommentAdded{
			PostID:       post.ID,
			CommentID:    comment.ID,
			AuthorID:     in.UserID,
			PostAuthorID: post.UserID,
			Text:         in.Content,
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, in.PostID)
	return repository.NewCommentRepository(s.db).GetByID(ctx, created.ID)
}

// AddReply creates a reply under a top-level comment on the same post.
func (s *ThreadService) AddReply(ctx context.Context, in AddReplyInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	var created *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, in.PostID)
		if err != nil {
			return err
		}

		commentRepo := repository.NewCommentRepository(tx)
		parent, err := commentRepo.GetByID(ctx, in.ParentID)
		if err != nil {
			return err
		}
		if parent.PostID != in.PostID {
			return models.NewInvalidStateError("Parent comment belongs to a different post")
		}
		if parent.IsReply() {
			return models.NewInvalidStateError("Cannot reply to a reply")
		}

		parentID := parent.ID
		reply := &models.Comment{
			Content:  in.Content,
			MediaURL: in.MediaURL,
			UserID:   in.UserID,
			PostID:   in.PostID,
			ParentID: &parentID,
		}
		if err := commentRepo.Create(ctx, reply); err != nil {
			return err
		}
		created = reply

		return s.bus.PublishReplyAdded(ctx, tx, events.ReplyAdded{
			PostID:         post.ID,
			ParentID:       parent.ID,
			ParentAuthorID: parent.UserID,
			ReplyID:        reply.ID,
			AuthorID:       in.UserID,
			PostAuthorID:   post.UserID,
			Text:           in.Content,
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, in.PostID)
	return repository.NewCommentRepository(s.db).GetByID(ctx, created.ID)
}

// DeleteComment removes a comment. Deleting a top-level comment cascades to
// its replies inside the same transaction; deleting a reply removes only the
// reply itself. Only the comment's author may delete it.
func (s *ThreadService) DeleteComment(ctx context.Context, commentID, requesterID uint) error {
	var postID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentRepo := repository.NewCommentRepository(tx)
		comment, err := commentRepo.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.UserID != requesterID {
			return models.NewForbiddenError("You can only delete your own comments")
		}

		// Lock the post so counter adjustments serialize with other writers.
		if _, err := repository.NewPostRepository(tx).GetForUpdate(ctx, comment.PostID); err != nil {
			return err
		}
		postID = comment.PostID

		var replyIDs []uint
		if !comment.IsReply() {
			replyIDs, err = commentRepo.ReplyIDs(ctx, comment.ID)
			if err != nil {
				return err
			}
		}
		if err := commentRepo.DeleteByIDs(ctx, append(replyIDs, comment.ID)); err != nil {
			return err
		}

		return s.bus.PublishCommentRemoved(ctx, tx, events.CommentRemoved{
			PostID:     comment.PostID,
			CommentID:  comment.ID,
			ReplyCount: len(replyIDs),
		})
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	return nil
}

// GetThread returns one page of a post's top-level comments, newest first,
// each carrying its full reply list.
func (s *ThreadService) GetThread(ctx context.Context, postID uint, page, limit int) (*ThreadPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return nil, models.NewValidationError("Invalid limit value. Must be a positive number.")
	}

	if _, err := repository.NewPostRepository(s.db).GetByID(ctx, postID); err != nil {
		return nil, err
	}

	commentRepo := repository.NewCommentRepository(s.db)
	comments, err := commentRepo.ListTopLevel(ctx, postID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	topLevel, err := commentRepo.CountTopLevel(ctx, postID)
	if err != nil {
		return nil, err
	}
	total, err := commentRepo.CountAll(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &ThreadPage{
		Comments:      comments,
		TotalComments: int(total),
		TotalPages:    int(math.Ceil(float64(topLevel) / float64(limit))),
		CurrentPage:   page,
	}, nil
}

// ListReplies returns all replies of a top-level comment, oldest first.
func (s *ThreadService) ListReplies(ctx context.Context, commentID uint) ([]*models.Comment, error) {
	commentRepo := repository.NewCommentRepository(s.db)
	if _, err := commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return commentRepo.ListReplies(ctx, commentID)
}

// MarkReplyRead records that userID has seen the reply. Repeated calls are
// no-ops, not errors.
func (s *ThreadService) MarkReplyRead(ctx context.Context, replyID, userID uint) error {
	commentRepo := repository.NewCommentRepository(s.db)
	reply, err := commentRepo.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if !reply.IsReply() {
		return models.NewInvalidStateError("Only replies carry read state")
	}
	return commentRepo.MarkRead(ctx, replyID, userID)
}

// ReplyReaders returns the ids of the users who have marked the reply as read.
func (s *ThreadService) ReplyReaders(ctx context.Context, replyID uint) ([]uint, error) {
	commentRepo := repository.NewCommentRepository(s.db)
	reply, err := commentRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if !reply.IsReply() {
		return nil, models.NewInvalidStateError("Only replies carry read state")
	}
	return commentRepo.ReadBy(ctx, replyID)
}
