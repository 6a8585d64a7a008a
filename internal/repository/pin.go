package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// PinRepository defines the interface for pin set operations
type PinRepository interface {
	GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Pin, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]uint, error)
	Create(ctx context.Context, pin *models.Pin) error
	Delete(ctx context.Context, id uint) error
	DeleteByPost(ctx context.Context, postID uint) error
}

type pinRepository struct {
	db *gorm.DB
}

// NewPinRepository creates a new PinRepository
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

func (r *pinRepository) GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&pin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &pin, nil
}

func (r *pinRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Pin{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *pinRepository) ListByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Pin{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *pinRepository) Create(ctx context.Context, pin *models.Pin) error {
	return r.db.WithContext(ctx).Create(pin).Error
}

func (r *pinRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Pin{}, id).Error
}

// DeleteByPost removes the post's pin row no matter who owns it or what the
// cached pinned flag says. Post deletion calls this unconditionally so a
// deleted post can never leave a dangling pin behind.
func (r *pinRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Pin{}).Error
}
