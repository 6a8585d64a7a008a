package service

import (
	"context"
	"fmt"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// PinService manages each user's pinned posts. Pin rows are the source of
// truth; the pinned flag on the post row is a derived cache kept in sync in
// the same transaction. Only a post's author may pin it, and each user holds
// at most limit pins.
type PinService struct {
	db    *gorm.DB
	limit int
}

// NewPinService creates a PinService enforcing the given pin cap.
func NewPinService(db *gorm.DB, limit int) *PinService {
	return &PinService{db: db, limit: limit}
}

// TogglePin pins the post when unpinned and unpins it when pinned, returning
// the resulting state. Pinning fails with LIMIT_EXCEEDED once the requester
// already holds the cap; unpinning is always allowed.
func (s *PinService) TogglePin(ctx context.Context, postID, requesterID uint) (bool, error) {
	var pinned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != requesterID {
			return models.NewForbiddenError("You can only pin your own posts")
		}

		// The user row lock serializes concurrent toggles by the same user,
		// making the count-then-insert cap check race-free.
		userRepo := repository.NewUserRepository(tx)
		if _, err := userRepo.GetForUpdate(ctx, requesterID); err != nil {
			return err
		}

		pinRepo := repository.NewPinRepository(tx)
		existing, err := pinRepo.GetByUserAndPost(ctx, requesterID, postID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := pinRepo.Delete(ctx, existing.ID); err != nil {
				return err
			}
			pinned = false
			return postRepo.SetPinned(ctx, postID, false)
		}

		count, err := pinRepo.CountByUser(ctx, requesterID)
		if err != nil {
			return err
		}
		if int(count) >= s.limit {
			return models.NewLimitExceededError(fmt.Sprintf("You can pin at most %d posts", s.limit))
		}
		if err := pinRepo.Create(ctx, &models.Pin{UserID: requesterID, PostID: postID}); err != nil {
			return err
		}
		pinned = true
		return postRepo.SetPinned(ctx, postID, true)
	})
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeLimitExceeded {
			observability.PinToggles.WithLabelValues("rejected").Inc()
		}
		return false, err
	}

	if pinned {
		observability.PinToggles.WithLabelValues("pinned").Inc()
	} else {
		observability.PinToggles.WithLabelValues("unpinned").Inc()
	}
	cache.InvalidatePost(ctx, postID)
	return pinned, nil
}

// ListPins returns the IDs of the posts the user currently has pinned.
func (s *PinService) ListPins(ctx context.Context, userID uint) ([]uint, error) {
	return repository.NewPinRepository(s.db).ListByUser(ctx, userID)
}
