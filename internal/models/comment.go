package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A nil ParentID marks a top-level
// comment; a non-nil ParentID marks a reply to a top-level comment on the
// same post. Replies never nest further (two-level threading).
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	MediaURL  string         `json:"media_url"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Replies   []*Comment     `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether the comment is attached to a parent comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentRead records that a user has seen a reply. One row per
// (comment, user); inserting an existing pair is a no-op.
type CommentRead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_read" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_read" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
