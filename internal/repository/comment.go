package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment and reply operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	ReplyIDs(ctx context.Context, parentID uint) ([]uint, error)
	CountTopLevel(ctx context.Context, postID uint) (int64, error)
	CountAll(ctx context.Context, postID uint) (int64, error)
	LatestActivity(ctx context.Context, postID uint) (time.Time, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
	DeleteByPost(ctx context.Context, postID uint) error
	MarkRead(ctx context.Context, commentID, userID uint) error
	MarkRepliesToAuthorRead(ctx context.Context, authorID uint) error
	ReadBy(ctx context.Context, commentID uint) ([]uint, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListTopLevel returns one page of top-level comments, newest first, each
// with its full reply list (oldest first). Replies are never paginated.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	var replies []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id = ?", parentID).
		Order("created_at asc").
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) ReplyIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_id = ?", parentID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) CountTopLevel(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&count).Error
	return count, err
}

// CountAll counts every comment on the post, top-level and replies alike.
// This is the authoritative source for Post.TotalComments.
func (r *commentRepository) CountAll(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// LatestActivity returns the creation time of the newest comment on the
// post, or the zero time when the post has no comments.
func (r *commentRepository) LatestActivity(ctx context.Context, postID uint) (time.Time, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at desc").
		First(&comment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return comment.CreatedAt, nil
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Comment{}, ids).Error
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

// MarkRead records that userID has seen the comment. Inserting an existing
// (comment, user) pair is a no-op, making the operation idempotent.
func (r *commentRepository) MarkRead(ctx context.Context, commentID, userID uint) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO comment_reads (comment_id, user_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (comment_id, user_id) DO NOTHING`,
		commentID, userID, time.Now().UTC(),
	).Error
}

// MarkRepliesToAuthorRead marks every reply under the author's top-level
// comments as read by the author. Used by the notification reset.
func (r *commentRepository) MarkRepliesToAuthorRead(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO comment_reads (comment_id, user_id, created_at)
		 SELECT r.id, ?, ?
		 FROM comments r
		 JOIN comments p ON r.parent_id = p.id
		 WHERE p.user_id = ? AND r.user_id <> ?
		   AND r.deleted_at IS NULL AND p.deleted_at IS NULL
		 ON CONFLICT (comment_id, user_id) DO NOTHING`,
		authorID, time.Now().UTC(), authorID, authorID,
	).Error
}

func (r *commentRepository) ReadBy(ctx context.Context, commentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommentRead{}).
		Where("comment_id = ?", commentID).
		Pluck("user_id", &ids).Error
	return ids, err
}
