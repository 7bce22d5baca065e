package seed

import (
	"context"
	"fmt"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/repository"

	"gorm.io/gorm"
)

var tagPool = []string{
	"go", "databases", "devops", "frontend", "backend", "security", "testing",
	"performance", "career", "tutorial", "opinion", "release-notes", "ai", "cloud",
}

// Seeder populates a database with generated or fixture data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	users   repository.UserRepository
	posts   repository.PostRepository
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		users:   repository.NewUserRepository(db),
		posts:   repository.NewPostRepository(db),
	}
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.InfoContext(ctx, "clearing database")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Comment{}, &models.Like{}, &models.PostTag{},
			&models.Post{}, &models.Tag{}, &models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Summary counts what SeedRandom created.
type Summary struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
	Likes    int
}

// SeedRandom creates numUsers accounts (the first one an admin) and numPosts
// posts spread over them, then adds likes and comment threads.
func (s *Seeder) SeedRandom(ctx context.Context, numUsers, numPosts int) (*Summary, error) {
	if numUsers < 1 {
		return nil, fmt.Errorf("seed: need at least one user, got %d", numUsers)
	}
	f := s.factory
	sum := &Summary{}

	for i := 0; i < numUsers; i++ {
		user, err := f.CreateUser(ctx, func(u *models.User) {
			if i == 0 {
				u.Role = models.RoleAdmin
			}
		})
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		sum.Users = append(sum.Users, user)
	}
	middleware.Logger.InfoContext(ctx, "seeded users", "count", len(sum.Users))

	for i := 0; i < numPosts; i++ {
		author := sum.Users[f.rng.Intn(len(sum.Users))]
		post, err := f.CreatePost(ctx, author, f.pickTags(tagPool, f.rng.Intn(4)))
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts = append(sum.Posts, post)
	}
	middleware.Logger.InfoContext(ctx, "seeded posts", "count", len(sum.Posts))

	for _, post := range sum.Posts {
		if post.IsDraft {
			continue
		}
		for _, i := range f.rng.Perm(len(sum.Users))[:f.rng.Intn(len(sum.Users)+1)] {
			if _, err := s.posts.Like(ctx, sum.Users[i].ID, post.ID); err != nil {
				return sum, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			sum.Likes++
		}

		var thread []*models.Comment
		for n := f.rng.Intn(4); n > 0; n-- {
			var parent *models.Comment
			if len(thread) > 0 && f.rng.Intn(2) == 0 {
				parent = thread[f.rng.Intn(len(thread))]
			}
			author := sum.Users[f.rng.Intn(len(sum.Users))]
			comment, err := f.CreateComment(ctx, author, post, parent, "")
			if err != nil {
				return sum, fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			thread = append(thread, comment)
			sum.Comments++
		}
	}
	middleware.Logger.InfoContext(ctx, "seeded engagement", "likes", sum.Likes, "comments", sum.Comments)
	return sum, nil
}
