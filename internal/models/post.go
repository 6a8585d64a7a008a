package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a forum post.
//
// Upvotes/Downvotes cache the size of the post's vote sets (the votes table)
// and TotalComments caches the number of comments plus replies; all three are
// updated atomically alongside the rows they summarize. LastActivity is
// monotonically non-decreasing and bumped on every new comment or reply.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	MediaURL      string         `json:"media_url"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user"`
	Upvotes       int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes     int            `gorm:"not null;default:0" json:"downvotes"`
	TotalComments int            `gorm:"not null;default:0" json:"total_comments"`
	Pinned        bool           `gorm:"not null;default:false;index" json:"pinned"`
	LastActivity  time.Time      `gorm:"index" json:"last_activity"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
