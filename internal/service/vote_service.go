package service

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"gorm.io/gorm"
)

// VoteService manages the per-post vote ledger. Each user holds at most one
// vote per post; casting the opposite direction flips the existing vote in
// one atomic step, and repeating the same direction is rejected.
type VoteService struct {
	db *gorm.DB
}

// VoteTally is a post's vote counters after a cast.
type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// NewVoteService creates a VoteService.
func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// CastVote records or flips userID's vote on a post and returns the updated
// tally. A repeated vote in the same direction returns an ALREADY_VOTED
// error and leaves the tally untouched.
func (s *VoteService) CastVote(ctx context.Context, postID, userID uint, direction models.VoteDirection) (*VoteTally, error) {
	if !direction.Valid() {
		return nil, models.NewValidationError("Direction must be \"up\" or \"down\"")
	}

	var tally VoteTally
	outcome := "new"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		post, err := postRepo.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}

		voteRepo := repository.NewVoteRepository(tx)
		existing, err := voteRepo.GetByPostAndUser(ctx, postID, userID)
		if err != nil {
			return err
		}

		tally = VoteTally{Upvotes: post.Upvotes, Downvotes: post.Downvotes}

		switch {
		case existing == nil:
			if err := voteRepo.Create(ctx, &models.Vote{
				PostID:    postID,
				UserID:    userID,
				Direction: direction,
			}); err != nil {
				return err
			}
			if direction == models.VoteUp {
				tally.Upvotes++
			} else {
				tally.Downvotes++
			}

		case existing.Direction == direction:
			outcome = "duplicate"
			return models.NewAlreadyVotedError()

		default:
			outcome = "flip"
			if err := voteRepo.UpdateDirection(ctx, existing.ID, direction); err != nil {
				return err
			}
			if direction == models.VoteUp {
				tally.Upvotes++
				tally.Downvotes--
			} else {
				tally.Downvotes++
				tally.Upvotes--
			}
		}

		return postRepo.SetVoteCounts(ctx, postID, tally.Upvotes, tally.Downvotes)
	})
	observability.VotesCast.WithLabelValues(string(direction), outcome).Inc()
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	return &tally, nil
}

// GetVote returns userID's current vote on the post, or nil when none.
func (s *VoteService) GetVote(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	if _, err := repository.NewPostRepository(s.db).GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return repository.NewVoteRepository(s.db).GetByPostAndUser(ctx, postID, userID)
}

// RecountVotes rebuilds a post's vote counters from the ledger. Repair path
// only; CastVote keeps them exact.
func (s *VoteService) RecountVotes(ctx context.Context, postID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postRepo := repository.NewPostRepository(tx)
		if _, err := postRepo.GetForUpdate(ctx, postID); err != nil {
			return err
		}

		voteRepo := repository.NewVoteRepository(tx)
		up, err := voteRepo.CountByDirection(ctx, postID, models.VoteUp)
		if err != nil {
			return err
		}
		down, err := voteRepo.CountByDirection(ctx, postID, models.VoteDown)
		if err != nil {
			return err
		}
		return postRepo.SetVoteCounts(ctx, postID, int(up), int(down))
	})
}
