package models

import "time"

// Pin marks a post as pinned by its author. The set of pin rows per user is
// the source of truth for pin state; Post.Pinned is the derived cache and is
// updated in the same transaction as the row. The per-user cap is enforced
// by PinService, default one pin per user.
type Pin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_pin_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_pin_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
