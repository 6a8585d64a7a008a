// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"log"
	"math/rand"
	"time"

	"agora/internal/config"
	"agora/internal/events"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
}

// Seeder populates the database with realistic forum activity. All thread
// activity goes through the real services so counters and notifications end
// up consistent, exactly as they would from API traffic.
type Seeder struct {
	db       *gorm.DB
	rng      *rand.Rand
	posts    *service.PostService
	threads  *service.ThreadService
	votes    *service.VoteService
	pins     *service.PinService
	pinLimit int
}

// NewSeeder creates a Seeder wired to the full service stack.
func NewSeeder(db *gorm.DB, cfg *config.Config) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())

	bus := events.NewBus()
	bus.Subscribe(service.NewActivityService(db))
	bus.Subscribe(service.NewNotificationService(db))

	return &Seeder{
		db:       db,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		posts:    service.NewPostService(db),
		threads:  service.NewThreadService(db, bus),
		votes:    service.NewVoteService(db),
		pins:     service.NewPinService(db, cfg.PinLimit),
		pinLimit: cfg.PinLimit,
	}
}

// ClearAll deletes all seeded data, child tables first.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{
		"notifications", "comment_reads", "comments",
		"votes", "pins", "posts", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// Seed creates users, posts, and a mesh of comments, replies, votes, and
// pins across them.
func (s *Seeder) Seed(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	posts, err := s.seedPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.seedThreads(ctx, users, posts); err != nil {
		return err
	}
	if err := s.seedVotes(ctx, users, posts); err != nil {
		return err
	}
	if err := s.seedPins(ctx, posts); err != nil {
		return err
	}

	log.Println("Seeding complete. All users have the password: Password123!seed")
	return nil
}

func (s *Seeder) seedUsers(count int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!seed"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, &models.User{
			Username: gofakeit.Username() + gofakeit.DigitN(3),
			Password: string(hashed),
			Avatar:   "https://i.pravatar.cc/150?u=" + gofakeit.UUID(),
		})
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:  author.ID,
			Title:   gofakeit.Sentence(5),
			Content: gofakeit.Paragraph(1, 3, 8, "\n"),
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedThreads(ctx context.Context, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(5); i++ {
			commenter := users[s.rng.Intn(len(users))]
			comment, err := s.threads.AddComment(ctx, service.AddCommentInput{
				PostID:  post.ID,
				UserID:  commenter.ID,
				Content: gofakeit.Sentence(10),
			})
			if err != nil {
				return err
			}

			for j := 0; j < s.rng.Intn(3); j++ {
				replier := users[s.rng.Intn(len(users))]
				if _, err := s.threads.AddReply(ctx, service.AddReplyInput{
					PostID:   post.ID,
					ParentID: comment.ID,
					UserID:   replier.ID,
					Content:  gofakeit.Sentence(8),
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedVotes(ctx context.Context, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if s.rng.Intn(3) != 0 {
				continue
			}
			direction := models.VoteUp
			if s.rng.Intn(4) == 0 {
				direction = models.VoteDown
			}
			if _, err := s.votes.CastVote(ctx, post.ID, user.ID, direction); err != nil {
				if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeAlreadyVoted {
					continue
				}
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPins(ctx context.Context, posts []*models.Post) error {
	pinnedBy := make(map[uint]int)
	for _, post := range posts {
		if s.rng.Intn(4) != 0 {
			continue
		}
		if pinnedBy[post.UserID] >= s.pinLimit {
			continue
		}
		if _, err := s.pins.TogglePin(ctx, post.ID, post.UserID); err != nil {
			return err
		}
		pinnedBy[post.UserID]++
	}
	return nil
}
