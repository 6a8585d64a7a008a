// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered forum user.
//
// UnreadNotifications is a cached count of the user's unread notification
// rows. The rows are the source of truth; the column is maintained in the
// same transaction as every row mutation and can be repaired with
// NotificationService.RecountUnread.
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Username            string         `gorm:"unique;not null" json:"username"`
	Password            string         `gorm:"not null" json:"-"`
	Avatar              string         `json:"avatar"`
	UnreadNotifications int            `gorm:"not null;default:0" json:"unread_notifications"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
	Posts               []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
