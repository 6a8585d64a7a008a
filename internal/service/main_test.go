package service

import (
	"context"
	"fmt"
	"testing"

	"agora/internal/database"
	"agora/internal/events"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database. A single connection
// keeps concurrent test goroutines serialized the way Postgres row locks
// would in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// newEngine wires the full service stack on one test database, with the
// activity and notification handlers subscribed like in production.
type engine struct {
	db            *gorm.DB
	bus           *events.Bus
	posts         *PostService
	threads       *ThreadService
	votes         *VoteService
	pins          *PinService
	activity      *ActivityService
	notifications *NotificationService
}

func newEngine(t *testing.T, pinLimit int) *engine {
	t.Helper()
	db := newTestDB(t)

	bus := events.NewBus()
	activity := NewActivityService(db)
	notifications := NewNotificationService(db)
	bus.Subscribe(activity)
	bus.Subscribe(notifications)

	return &engine{
		db:            db,
		bus:           bus,
		posts:         NewPostService(db),
		threads:       NewThreadService(db, bus),
		votes:         NewVoteService(db),
		pins:          NewPinService(db, pinLimit),
		activity:      activity,
		notifications: notifications,
	}
}

func (e *engine) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *engine) createPost(t *testing.T, userID uint, title string) *models.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		UserID:  userID,
		Title:   title,
		Content: "content of " + title,
	})
	require.NoError(t, err)
	return post
}

func (e *engine) reloadPost(t *testing.T, postID uint) *models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, e.db.First(&post, postID).Error)
	return &post
}

func (e *engine) reloadUser(t *testing.T, userID uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.First(&user, userID).Error)
	return &user
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

// uniqueName disambiguates usernames across subtests sharing a database.
func uniqueName(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}
