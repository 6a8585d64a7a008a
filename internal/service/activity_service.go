package service

import (
	"context"
	"time"

	"agora/internal/events"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// ActivityService maintains each post's activity counters: the total comment
// count (top-level plus replies) and the last-activity timestamp that drives
// feed ordering. It subscribes to thread events and applies counter deltas
// inside the emitting transaction.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates an ActivityService.
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) recordActivity(ctx context.Context, tx *gorm.DB, postID uint) error {
	postRepo := repository.NewPostRepository(tx)
	if err := postRepo.BumpActivity(ctx, postID, time.Now().UTC()); err != nil {
		return err
	}
	return postRepo.AdjustTotalComments(ctx, postID, 1)
}

// HandleCommentAdded bumps the post's activity timestamp and comment total.
func (s *ActivityService) HandleCommentAdded(ctx context.Context, tx *gorm.DB, ev events.CommentAdded) error {
	return s.recordActivity(ctx, tx, ev.PostID)
}

// HandleReplyAdded bumps the post's activity timestamp and comment total.
// Replies count toward the total just like top-level comments.
func (s *ActivityService) HandleReplyAdded(ctx context.Context, tx *gorm.DB, ev events.ReplyAdded) error {
	return s.recordActivity(ctx, tx, ev.PostID)
}

// HandleCommentRemoved decrements the comment total by the comment itself
// plus every reply cascaded with it. Deletion does not touch the activity
// timestamp.
func (s *ActivityService) HandleCommentRemoved(ctx context.Context, tx *gorm.DB, ev events.CommentRemoved) error {
	return repository.NewPostRepository(tx).AdjustTotalComments(ctx, ev.PostID, -(1 + ev.ReplyCount))
}

// Recount rebuilds a post's counters from the comment table. It exists as a
// repair path; normal operation keeps counters exact through the handlers
// above.
func (s *ActivityService) Recount(ctx context.Context, postID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}

		commentRepo := repository.NewCommentRepository(tx)
		total, err := commentRepo.CountAll(ctx, postID)
		if err != nil {
			return err
		}
		latest, err := commentRepo.LatestActivity(ctx, postID)
		if err != nil {
			return err
		}
		if latest.IsZero() {
			latest = post.CreatedAt
		}
		return postRepo.SetTotalComments(ctx, postID, int(total), latest)
	})
}
