package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// VoteRepository defines the interface for post vote operations
type VoteRepository interface {
	GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateDirection(ctx context.Context, voteID uint, direction models.VoteDirection) error
	CountByDirection(ctx context.Context, postID uint, direction models.VoteDirection) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) error
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&vote).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// UpdateDirection flips a vote in place. The row is never deleted and
// re-inserted, so the unique (post, user) index holds throughout.
func (r *voteRepository) UpdateDirection(ctx context.Context, voteID uint, direction models.VoteDirection) error {
	return r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("id = ?", voteID).
		Update("direction", direction).Error
}

func (r *voteRepository) CountByDirection(ctx context.Context, postID uint, direction models.VoteDirection) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("post_id = ? AND direction = ?", postID, direction).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Vote{}).Error
}
