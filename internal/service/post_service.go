package service

import (
	"context"
	"math"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// PostService owns post CRUD and the post feed.
type PostService struct {
	db *gorm.DB
}

// CreatePostInput is the payload for creating a post.
type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	MediaURL string
}

// UpdatePostInput is the payload for editing a post. Empty fields keep their
// current value.
type UpdatePostInput struct {
	Title    string
	Content  string
	MediaURL string
}

// PostPage is one page of the post feed.
type PostPage struct {
	Posts       []*models.Post `json:"posts"`
	TotalPosts  int            `json:"total_posts"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// NewPostService creates a PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// CreatePost creates a post for the given user.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post := &models.Post{
		Title:        in.Title,
		Content:      in.Content,
		MediaURL:     in.MediaURL,
		UserID:       in.UserID,
		LastActivity: time.Now().UTC(),
	}
	if err := repository.NewPostRepository(s.db).Create(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidatePostLists(ctx)
	return repository.NewPostRepository(s.db).GetByID(ctx, post.ID)
}

// GetPost returns a post by ID, serving from cache when possible.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(postID), "post", &post, cache.PostTTL, func() error {
		found, err := repository.NewPostRepository(s.db).GetByID(ctx, postID)
		if err != nil {
			return err
		}
		post = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost edits a post. Only the author may edit it.
func (s *PostService) UpdatePost(ctx context.Context, postID, requesterID uint, in UpdatePostInput) (*models.Post, error) {
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != requesterID {
			return models.NewForbiddenError("You can only edit your own posts")
		}
		if in.Title != "" {
			post.Title = in.Title
		}
		if in.Content != "" {
			post.Content = in.Content
		}
		if in.MediaURL != "" {
			post.MediaURL = in.MediaURL
		}
		return postRepo.Update(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	return repository.NewPostRepository(s.db).GetByID(ctx, postID)
}

// DeletePost removes a post and everything attached to it: comments, votes,
// pins, and notifications, all in one transaction.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != requesterID {
			return models.NewForbiddenError("You can only delete your own posts")
		}

		if err := repository.NewCommentRepository(tx).DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if err := repository.NewVoteRepository(tx).DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if err := repository.NewPinRepository(tx).DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if err := repository.NewNotificationRepository(tx).DeleteByPost(ctx, postID); err != nil {
			return err
		}
		return postRepo.Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	return nil
}

// ListPosts returns one page of the feed, pinned posts first, then by most
// recent activity. Pages are cached briefly.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return nil, models.NewValidationError("Invalid limit value. Must be a positive number.")
	}

	var result PostPage
	err := cache.Aside(ctx, cache.PostListKey(page, limit), "post_list", &result, cache.PostListTTL, func() error {
		postRepo := repository.NewPostRepository(s.db)
		posts, err := postRepo.List(ctx, limit, (page-1)*limit)
		if err != nil {
			return err
		}
		total, err := postRepo.Count(ctx)
		if err != nil {
			return err
		}
		result = PostPage{
			Posts:       posts,
			TotalPosts:  int(total),
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUserPosts returns all posts by a user, newest first. Only the user
// themselves may list their posts.
func (s *PostService) GetUserPosts(ctx context.Context, userID, requesterID uint) ([]*models.Post, error) {
	if requesterID != userID {
		return nil, models.NewForbiddenError("You can only view your own posts")
	}
	if _, err := repository.NewUserRepository(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return repository.NewPostRepository(s.db).GetByUserID(ctx, userID)
}
