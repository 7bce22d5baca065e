// Package seed creates demo and test data for the Inkpress database. It is
// intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Options tunes how data is generated.
type Options struct {
	// FastHash hashes passwords at bcrypt.MinCost. Accounts still log in normally.
	FastHash bool
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays int
	// Seed makes gofakeit output reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	opts     Options
	rng      *rand.Rand
	faker    *gofakeit.Faker
	seq      int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		opts:     opts,
		rng:      rand.New(rand.NewSource(seed)),
		faker:    gofakeit.New(seed),
	}
}

func (f *Factory) hashPassword(plain string) (string, error) {
	cost := bcrypt.DefaultCost
	if f.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (f *Factory) pastTime() time.Time {
	days := f.rng.Intn(f.opts.MaxDays)
	minutes := f.rng.Intn(24 * 60)
	return time.Now().Add(-time.Duration(days)*24*time.Hour - time.Duration(minutes)*time.Minute)
}

// CreateUser persists a generated member account. Overrides run before the
// password is hashed, so they may set a plain-text Password.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	user := &models.User{
		Name:         f.faker.Name(),
		Email:        fmt.Sprintf("%s.%d@%s", f.faker.Username(), f.seq, f.faker.DomainName()),
		Password:     DefaultPassword,
		Role:         models.RoleMember,
		Bio:          f.faker.Sentence(10),
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		CreatedAt:    f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}

	hashed, err := f.hashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author with generated content.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	f.seq++
	title := f.faker.Sentence(5)
	post := &models.Post{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", service.Slugify(title), f.seq),
		Content:     f.faker.Paragraph(3, 4, 12, "\n\n"),
		CoverImages: models.CoverList{fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID())},
		CoverVideos: models.CoverList{},
		IsDraft:     f.rng.Intn(10) == 0,
		AuthorID:    author.ID,
		CreatedAt:   f.pastTime(),
	}
	post.UpdatedAt = post.CreatedAt
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a generated post with the given tags.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, tags []string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.posts.CreateWithTags(ctx, post, tags); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post, as a reply when parent is set.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post, parent *models.Comment, content string) (*models.Comment, error) {
	if content == "" {
		content = f.faker.Sentence(f.rng.Intn(15) + 3)
	}
	comment := &models.Comment{
		Content:  content,
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// pickTags returns up to n distinct tags from pool.
func (f *Factory) pickTags(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked
}
