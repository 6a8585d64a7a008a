package models

import "time"

// VoteDirection is the direction of a post vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid reports whether the direction is one of the two known values.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote represents a user's vote on a post. The unique index on
// (post_id, user_id) guarantees a user holds at most one vote per post, so
// the up and down sets can never intersect. Changing sides updates the
// Direction column in place rather than deleting and re-inserting.
type Vote struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PostID    uint          `gorm:"not null;uniqueIndex:idx_vote_post_user" json:"post_id"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_vote_post_user" json:"user_id"`
	Direction VoteDirection `gorm:"size:8;not null" json:"direction"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
