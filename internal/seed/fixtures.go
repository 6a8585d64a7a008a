package seed

import (
	"context"
	"fmt"
	"os"

	"agora/internal/models"
	"agora/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Fixtures describes a deterministic data set loaded from a YAML file.
// Used for demos and acceptance environments where random data won't do.
type Fixtures struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

// FixtureUser is one user entry in a fixtures file.
type FixtureUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Avatar   string `yaml:"avatar"`
}

// FixturePost is one post entry in a fixtures file. Author references a
// username from the users section.
type FixturePost struct {
	Author   string           `yaml:"author"`
	Title    string           `yaml:"title"`
	Content  string           `yaml:"content"`
	Pinned   bool             `yaml:"pinned"`
	Comments []FixtureComment `yaml:"comments"`
}

// FixtureComment is one top-level comment with optional replies.
type FixtureComment struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
	Replies []struct {
		Author  string `yaml:"author"`
		Content string `yaml:"content"`
	} `yaml:"replies"`
}

// LoadFixtures parses a YAML fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// ApplyFixtures creates the fixture data through the service stack.
func (s *Seeder) ApplyFixtures(ctx context.Context, f *Fixtures) error {
	byName := make(map[string]*models.User, len(f.Users))
	for _, fu := range f.Users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(fu.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user := &models.User{
			Username: fu.Username,
			Password: string(hashed),
			Avatar:   fu.Avatar,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		byName[fu.Username] = user
	}

	for _, fp := range f.Posts {
		author, ok := byName[fp.Author]
		if !ok {
			return fmt.Errorf("fixture post %q references unknown user %q", fp.Title, fp.Author)
		}
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:  author.ID,
			Title:   fp.Title,
			Content: fp.Content,
		})
		if err != nil {
			return err
		}

		for _, fc := range fp.Comments {
			commenter, ok := byName[fc.Author]
			if !ok {
				return fmt.Errorf("fixture comment references unknown user %q", fc.Author)
			}
			comment, err := s.threads.AddComment(ctx, service.AddCommentInput{
				PostID:  post.ID,
				UserID:  commenter.ID,
				Content: fc.Content,
			})
			if err != nil {
				return err
			}
			for _, fr := range fc.Replies {
				replier, ok := byName[fr.Author]
				if !ok {
					return fmt.Errorf("fixture reply references unknown user %q", fr.Author)
				}
				if _, err := s.threads.AddReply(ctx, service.AddReplyInput{
					PostID:   post.ID,
					ParentID: comment.ID,
					UserID:   replier.ID,
					Content:  fr.Content,
				}); err != nil {
					return err
				}
			}
		}

		if fp.Pinned {
			if _, err := s.pins.TogglePin(ctx, post.ID, author.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
