package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yaml
var demoFixtures []byte

// Fixtures is a hand-written data set, usually loaded from YAML.
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Posts []PostFixture `yaml:"posts"`
}

// UserFixture describes one account. Password defaults to DefaultPassword.
type UserFixture struct {
	Name     string      `yaml:"name"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     models.Role `yaml:"role"`
	Bio      string      `yaml:"bio"`
}

// PostFixture describes one post. Author is a user email.
type PostFixture struct {
	Title    string           `yaml:"title"`
	Slug     string           `yaml:"slug"`
	Author   string           `yaml:"author"`
	Content  string           `yaml:"content"`
	Tags     []string         `yaml:"tags"`
	Draft    bool             `yaml:"draft"`
	Covers   []string         `yaml:"covers"`
	LikedBy  []string         `yaml:"liked_by"`
	Comments []CommentFixture `yaml:"comments"`
}

// CommentFixture is a comment with its nested replies.
type CommentFixture struct {
	Author  string           `yaml:"author"`
	Content string           `yaml:"content"`
	Replies []CommentFixture `yaml:"replies"`
}

// LoadFixtures decodes YAML fixtures from r. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// DemoFixtures returns the built-in demo data set.
func DemoFixtures() (*Fixtures, error) {
	return LoadFixtures(bytes.NewReader(demoFixtures))
}

// Validate checks that the fixtures reference only declared users and use known roles.
func (fx *Fixtures) Validate() error {
	emails := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("users[%d]: name and email are required", i)
		}
		if u.Role != "" && !u.Role.Valid() {
			return fmt.Errorf("users[%d]: unknown role %q", i, u.Role)
		}
		if emails[email] {
			return fmt.Errorf("users[%d]: duplicate email %s", i, email)
		}
		emails[email] = true
	}

	known := func(email string) bool { return emails[strings.ToLower(strings.TrimSpace(email))] }

	var checkComments func(path string, cs []CommentFixture) error
	checkComments = func(path string, cs []CommentFixture) error {
		for i, c := range cs {
			at := fmt.Sprintf("%s[%d]", path, i)
			if !known(c.Author) {
				return fmt.Errorf("%s: unknown author %q", at, c.Author)
			}
			if strings.TrimSpace(c.Content) == "" {
				return fmt.Errorf("%s: content is required", at)
			}
			if err := checkComments(at+".replies", c.Replies); err != nil {
				return err
			}
		}
		return nil
	}

	for i, p := range fx.Posts {
		at := fmt.Sprintf("posts[%d]", i)
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%s: title is required", at)
		}
		if !known(p.Author) {
			return fmt.Errorf("%s: unknown author %q", at, p.Author)
		}
		for _, email := range p.LikedBy {
			if !known(email) {
				return fmt.Errorf("%s: unknown liker %q", at, email)
			}
		}
		if err := checkComments(at+".comments", p.Comments); err != nil {
			return err
		}
	}
	return nil
}

// FixtureResult counts what ApplyFixtures inserted.
type FixtureResult struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// ApplyFixtures inserts fx. Users whose email already exists and posts whose
// slug is already taken are reused, so applying the same fixtures twice is a no-op.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (FixtureResult, error) {
	var res FixtureResult
	users := make(map[string]*models.User, len(fx.Users))

	for _, uf := range fx.Users {
		email := strings.ToLower(strings.TrimSpace(uf.Email))
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return res, err
		}
		if existing != nil {
			users[email] = existing
			continue
		}

		user, err := s.factory.CreateUser(ctx, func(u *models.User) {
			u.Name = strings.TrimSpace(uf.Name)
			u.Email = email
			u.Bio = uf.Bio
			if uf.Password != "" {
				u.Password = uf.Password
			}
			if uf.Role != "" {
				u.Role = uf.Role
			}
		})
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", email, err)
		}
		users[email] = user
		res.Users++
	}
	lookup := func(email string) *models.User {
		return users[strings.ToLower(strings.TrimSpace(email))]
	}

	for _, pf := range fx.Posts {
		slug := pf.Slug
		if slug == "" {
			slug = service.Slugify(pf.Title)
		}
		taken, err := s.posts.SlugExists(ctx, slug, 0)
		if err != nil {
			return res, err
		}
		if taken {
			continue
		}

		covers := pf.Covers
		if covers == nil {
			covers = []string{}
		}
		post := &models.Post{
			Title:       strings.TrimSpace(pf.Title),
			Slug:        slug,
			Content:     pf.Content,
			CoverImages: models.CoverList(covers),
			CoverVideos: models.CoverList{},
			IsDraft:     pf.Draft,
			AuthorID:    lookup(pf.Author).ID,
		}
		if err := s.posts.CreateWithTags(ctx, post, pf.Tags); err != nil {
			if errors.Is(err, repository.ErrSlugTaken) {
				return res, models.NewSlugConflictError(slug)
			}
			return res, fmt.Errorf("create post %s: %w", slug, err)
		}
		res.Posts++

		for _, email := range pf.LikedBy {
			if _, err := s.posts.Like(ctx, lookup(email).ID, post.ID); err != nil {
				return res, err
			}
			res.Likes++
		}

		n, err := s.applyComments(ctx, post, nil, pf.Comments, lookup)
		if err != nil {
			return res, err
		}
		res.Comments += n
	}
	return res, nil
}

func (s *Seeder) applyComments(ctx context.Context, post *models.Post, parent *models.Comment, cs []CommentFixture, lookup func(string) *models.User) (int, error) {
	created := 0
	for _, cf := range cs {
		comment, err := s.factory.CreateComment(ctx, lookup(cf.Author), post, parent, strings.TrimSpace(cf.Content))
		if err != nil {
			return created, err
		}
		created++
		n, err := s.applyComments(ctx, post, comment, cf.Replies, lookup)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
