package database

import (
	"agora/internal/models"

	"gorm.io/gorm"
)

// Models lists every model registered for auto-migration, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.CommentRead{},
		&models.Vote{},
		&models.Pin{},
		&models.Notification{},
	}
}

// Migrate runs GORM auto-migration for all registered models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
