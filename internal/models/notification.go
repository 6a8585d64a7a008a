package models

import "time"

// NotificationType tags the kind of activity a notification describes.
type NotificationType string

const (
	// NotificationComment is a new top-level comment on the recipient's post.
	NotificationComment NotificationType = "comment"
	// NotificationReply is a new reply to the recipient's comment, or reply
	// activity on the recipient's post.
	NotificationReply NotificationType = "reply"
)

// Notification is a single activity record for one recipient. A reply can
// produce up to two rows (parent comment author and post author) but never
// two rows for the same person.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	Type        NotificationType `gorm:"size:16;not null" json:"type"`
	PostID      uint             `gorm:"not null;index" json:"post_id"`
	CommentID   uint             `gorm:"not null" json:"comment_id"`
	ActorID     uint             `gorm:"not null" json:"actor_id"`
	Text        string           `json:"text"`
	Read        bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}
