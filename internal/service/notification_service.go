package service

import (
	"context"
	"fmt"

	"agora/internal/events"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"gorm.io/gorm"
)

const notificationPreviewLen = 80

// NotificationService produces notification records from thread events and
// serves each user's notification feed. Notification rows are the source of
// truth; the unread counter cached on the user row is updated in the same
// transaction and can be rebuilt with RecountUnread.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func preview(text string) string {
	if len(text) > notificationPreviewLen {
		return text[:notificationPreviewLen]
	}
	return text
}

func (s *NotificationService) notify(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	if err := repository.NewNotificationRepository(tx).Create(ctx, n); err != nil {
		return err
	}
	if err := repository.NewUserRepository(tx).AdjustUnread(ctx, n.RecipientID, 1); err != nil {
		return err
	}
	observability.NotificationsFanout.WithLabelValues(string(n.Type)).Inc()
	return nil
}

// HandleCommentAdded notifies the post author of a new top-level comment.
// Commenting on your own post produces nothing.
func (s *NotificationService) HandleCommentAdded(ctx context.Context, tx *gorm.DB, ev events.CommentAdded) error {
	if ev.PostAuthorID == ev.AuthorID {
		return nil
	}
	return s.notify(ctx, tx, &models.Notification{
		RecipientID: ev.PostAuthorID,
		Type:        models.NotificationComment,
		PostID:      ev.PostID,
		CommentID:   ev.CommentID,
		ActorID:     ev.AuthorID,
		Text:        preview(ev.Text),
	})
}

// HandleReplyAdded notifies the parent comment's author and the post author.
// The replier is never notified, and when the parent author and post author
// are the same person they get a single record, not two.
func (s *NotificationService) HandleReplyAdded(ctx context.Context, tx *gorm.DB, ev events.ReplyAdded) error {
	recipients := make([]uint, 0, 2)
	if ev.ParentAuthorID != ev.AuthorID {
		recipients = append(recipients, ev.ParentAuthorID)
	}
	if ev.PostAuthorID != ev.AuthorID && ev.PostAuthorID != ev.ParentAuthorID {
		recipients = append(recipients, ev.PostAuthorID)
	}

	for _, recipientID := range recipients {
		err := s.notify(ctx, tx, &models.Notification{
			RecipientID: recipientID,
			Type:        models.NotificationReply,
			PostID:      ev.PostID,
			CommentID:   ev.ReplyID,
			ActorID:     ev.AuthorID,
			Text:        preview(ev.Text),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// HandleCommentRemoved is a no-op. Notifications already delivered stay in
// the feed; post deletion removes them wholesale via DeleteByPost.
func (s *NotificationService) HandleCommentRemoved(ctx context.Context, tx *gorm.DB, ev events.CommentRemoved) error {
	return nil
}

// NotificationFeed is a user's notification list with the unread count.
type NotificationFeed struct {
	Notifications []*models.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) (*NotificationFeed, error) {
	user, err := repository.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications, err := repository.NewNotificationRepository(s.db).ListByRecipient(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return &NotificationFeed{
		Notifications: notifications,
		Unread:        user.UnreadNotifications,
	}, nil
}

// Reset marks the user's notifications read, zeroes the unread counter, and
// records every reply under the user's comments as seen. Calling it again
// with nothing pending changes nothing.
func (s *NotificationService) Reset(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx)
		if _, err := userRepo.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		if err := repository.NewNotificationRepository(tx).MarkAllRead(ctx, userID); err != nil {
			return err
		}
		if err := repository.NewCommentRepository(tx).MarkRepliesToAuthorRead(ctx, userID); err != nil {
			return err
		}
		return userRepo.SetUnread(ctx, userID, 0)
	})
}

// RecountUnread rebuilds the cached unread counter from the notification
// rows. Repair path only.
func (s *NotificationService) RecountUnread(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx)
		if _, err := userRepo.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		count, err := repository.NewNotificationRepository(tx).CountUnread(ctx, userID)
		if err != nil {
			return err
		}
		if err := userRepo.SetUnread(ctx, userID, int(count)); err != nil {
			return fmt.Errorf("recount unread for user %d: %w", userID, err)
		}
		return nil
	})
}
