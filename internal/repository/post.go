package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	BumpActivity(ctx context.Context, postID uint, at time.Time) error
	AdjustTotalComments(ctx context.Context, postID uint, delta int) error
	SetTotalComments(ctx context.Context, postID uint, total int, lastActivity time.Time) error
	SetVoteCounts(ctx context.Context, postID uint, up, down int) error
	SetPinned(ctx context.Context, postID uint, pinned bool) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetForUpdate loads a post under a row lock. Every read-modify-write of the
// post's vote counters, pin flag, or comment counters goes through this.
func (r *postRepository) GetForUpdate(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// List returns posts ordered pinned-first, then by most recent activity.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("pinned DESC").
		Order("last_activity DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// BumpActivity advances last_activity to at. The guard keeps the column
// monotonically non-decreasing even if events arrive out of order.
func (r *postRepository) BumpActivity(ctx context.Context, postID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND last_activity < ?", postID, at).
		Update("last_activity", at).Error
}

func (r *postRepository) AdjustTotalComments(ctx context.Context, postID uint, delta int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("total_comments", gorm.Expr(
			"CASE WHEN total_comments + ? < 0 THEN 0 ELSE total_comments + ? END",
			delta, delta,
		)).Error
}

func (r *postRepository) SetTotalComments(ctx context.Context, postID uint, total int, lastActivity time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"total_comments": total,
			"last_activity":  lastActivity,
		}).Error
}

func (r *postRepository) SetVoteCounts(ctx context.Context, postID uint, up, down int) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"upvotes":   up,
			"downvotes": down,
		}).Error
}

func (r *postRepository) SetPinned(ctx context.Context, postID uint, pinned bool) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("pinned", pinned).Error
}
