package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"inkpress/internal/cache"
	"inkpress/internal/jobs"
	"inkpress/internal/models"
	"inkpress/internal/observability"
	"inkpress/internal/repository"
	"inkpress/internal/validation"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	trendingLimit   = 5
)

type PostService struct {
	postRepo        repository.PostRepository
	tagRepo         repository.TagRepository
	cache           *cache.Store
	queue           JobSubmitter
	slugSuffix      func() string
	maxSlugAttempts int
}

type CreatePostInput struct {
	AuthorID      uint     `json:"-"`
	Title         string   `json:"title" validate:"notblank,max=300"`
	Content       string   `json:"content" validate:"notblank,max=100000"`
	Tags          []string `json:"tags" validate:"max=20,dive,notblank,max=50"`
	CoverImages   []string `json:"cover_images" validate:"max=20,dive,http_url"`
	CoverVideos   []string `json:"cover_videos" validate:"max=20,dive,http_url"`
	IsDraft       bool     `json:"is_draft"`
	GeneratedByAI bool     `json:"generated_by_ai"`
}

// UpdatePostInput carries a partial post update. Nil fields keep their value;
// a non-nil Tags replaces the whole tag set.
type UpdatePostInput struct {
	Title         *string   `json:"title" validate:"omitnil,notblank,max=300"`
	Content       *string   `json:"content" validate:"omitnil,notblank,max=100000"`
	Tags          *[]string `json:"tags" validate:"omitnil,max=20,dive,notblank,max=50"`
	CoverImages   *[]string `json:"cover_images" validate:"omitnil,max=20,dive,http_url"`
	CoverVideos   *[]string `json:"cover_videos" validate:"omitnil,max=20,dive,http_url"`
	IsDraft       *bool     `json:"is_draft"`
	GeneratedByAI *bool     `json:"generated_by_ai"`
}

func NewPostService(
	postRepo repository.PostRepository,
	tagRepo repository.TagRepository,
	store *cache.Store,
	queue JobSubmitter,
	slugSuffix func() string,
	maxSlugAttempts int,
) *PostService {
	if maxSlugAttempts < 1 {
		maxSlugAttempts = 1
	}
	return &PostService{
		postRepo:        postRepo,
		tagRepo:         tagRepo,
		cache:           store,
		queue:           queue,
		slugSuffix:      slugSuffix,
		maxSlugAttempts: maxSlugAttempts,
	}
}

func (s *PostService) disambiguate(base string) string {
	return base + "-" + s.slugSuffix()
}

// firstSlug returns base when it is free, otherwise base with a suffix.
func (s *PostService) firstSlug(ctx context.Context, base string, excludeID uint) (string, error) {
	taken, err := s.postRepo.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return s.disambiguate(base), nil
	}
	return base, nil
}

// withSlugRetry calls write with candidate slugs until one is accepted or the
// attempt cap is reached.
func (s *PostService) withSlugRetry(ctx context.Context, base string, excludeID uint, write func(slug string) error) error {
	slug, err := s.firstSlug(ctx, base, excludeID)
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err := write(slug)
		if !errors.Is(err, repository.ErrSlugTaken) {
			return err
		}
		if attempt >= s.maxSlugAttempts {
			return models.NewSlugConflictError(base)
		}
		slug = s.disambiguate(base)
	}
}

func (s *PostService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, trendingKey(trendingLimit), cache.TagUsageKey)
}

// InvalidateListings drops cached trending and tag listings after posts were
// removed outside this service, such as by a user delete.
func (s *PostService) InvalidateListings(ctx context.Context) {
	s.invalidate(ctx)
}

func trendingKey(limit int) string {
	return fmt.Sprintf("%s:%d", cache.TrendingKey, limit)
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, validationErr(err)
	}

	post := &models.Post{
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		CoverImages:   models.CoverList(nonNil(in.CoverImages)),
		CoverVideos:   models.CoverList(nonNil(in.CoverVideos)),
		IsDraft:       in.IsDraft,
		GeneratedByAI: in.GeneratedByAI,
		AuthorID:      in.AuthorID,
	}
	base := Slugify(post.Title)
	err := s.withSlugRetry(ctx, base, 0, func(slug string) error {
		post.ID = 0
		post.Slug = slug
		return s.postRepo.CreateWithTags(ctx, post, in.Tags)
	})
	if err != nil {
		return nil, err
	}

	status := models.PostStatusPublished
	if post.IsDraft {
		status = models.PostStatusDraft
	}
	observability.PostsCreated.WithLabelValues(status).Inc()
	s.invalidate(ctx)
	if !post.IsDraft {
		submitJob(ctx, s.queue, jobs.EmailNewPost, jobs.PostPayload{PostID: post.ID})
	}

	if created, err := s.postRepo.GetByID(ctx, post.ID); err == nil {
		return created, nil
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actor Actor, id uint, in UpdatePostInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	existing, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(existing.AuthorID) {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	upd := repository.PostUpdate{
		Title:         existing.Title,
		Slug:          existing.Slug,
		Content:       existing.Content,
		CoverImages:   existing.CoverImages,
		CoverVideos:   existing.CoverVideos,
		IsDraft:       existing.IsDraft,
		GeneratedByAI: existing.GeneratedByAI,
	}
	if in.Content != nil {
		upd.Content = *in.Content
	}
	if in.CoverImages != nil {
		upd.CoverImages = *in.CoverImages
	}
	if in.CoverVideos != nil {
		upd.CoverVideos = *in.CoverVideos
	}
	if in.IsDraft != nil {
		upd.IsDraft = *in.IsDraft
	}
	if in.GeneratedByAI != nil {
		upd.GeneratedByAI = *in.GeneratedByAI
	}
	if in.Tags != nil {
		upd.ReplaceTags = true
		upd.Tags = *in.Tags
	}

	var updated *models.Post
	write := func(slug string) error {
		upd.Slug = slug
		var err error
		updated, err = s.postRepo.Update(ctx, id, upd)
		return err
	}

	titleChanged := in.Title != nil && strings.TrimSpace(*in.Title) != existing.Title
	if titleChanged {
		upd.Title = strings.TrimSpace(*in.Title)
		base := Slugify(upd.Title)
		if base == existing.Slug {
			err = write(base)
		} else {
			err = s.withSlugRetry(ctx, base, id, write)
		}
	} else {
		err = write(existing.Slug)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	if existing.IsDraft && !updated.IsDraft {
		submitJob(ctx, s.queue, jobs.EmailNewPost, jobs.PostPayload{PostID: id})
	}
	return updated, nil
}

// Delete removes the post with its tags, likes and comments. Cover media stay
// on the asset host.
func (s *PostService) Delete(ctx context.Context, actor Actor, id uint) error {
	existing, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canModify(existing.AuthorID) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListPaginated pages through posts in the given status, newest update first.
func (s *PostService) ListPaginated(ctx context.Context, status string, page, pageSize int) (*models.PostPage, error) {
	switch status {
	case "":
		status = models.PostStatusPublished
	case models.PostStatusPublished, models.PostStatusDraft, models.PostStatusAll:
	default:
		return nil, models.NewValidationError("status must be one of: published draft all")
	}
	if page < 1 {
		return nil, models.NewValidationError("page must be at least 1")
	}
	if pageSize < 0 {
		return nil, models.NewValidationError("limit must not be negative")
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// An offset past every row makes List skip the query and return only the total.
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		offset = math.MaxInt
	}

	var (
		posts  []models.Post
		total  int64
		counts models.StatusCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, total, err = s.postRepo.List(gctx, status, pageSize, offset)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.postRepo.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []models.Post{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
		Counts:     counts,
	}, nil
}

// present hides drafts from everyone but their author and admins, and fills
// HasLiked for a signed-in viewer.
func (s *PostService) present(ctx context.Context, post *models.Post, viewer *Actor) (*models.Post, error) {
	if !canSee(viewer, post) {
		return nil, models.NewNotFoundError("Post", post.Slug)
	}
	if viewer != nil && viewer.ID != 0 {
		liked, err := s.postRepo.HasLiked(ctx, viewer.ID, post.ID)
		if err != nil {
			return nil, err
		}
		post.HasLiked = liked
	}
	return post, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string, viewer *Actor) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	return s.present(ctx, post, viewer)
}

func (s *PostService) GetByID(ctx context.Context, id uint, viewer *Actor) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, post, viewer)
}

// IncrementView bumps the view counter of the post ref names, by id or slug.
// Drafts only count views from viewers allowed to see them.
func (s *PostService) IncrementView(ctx context.Context, ref string, viewer *Actor) (int64, error) {
	post, err := resolveVisible(ctx, s.postRepo, ref, viewer)
	if err != nil {
		return 0, err
	}
	return s.postRepo.IncrementViews(ctx, post.ID)
}

// likeable loads postID and hides drafts the actor may not see.
func (s *PostService) likeable(ctx context.Context, actor Actor, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !canSee(&actor, post) {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (s *PostService) Like(ctx context.Context, actor Actor, postID uint) (models.LikeState, error) {
	if err := s.likeable(ctx, actor, postID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.postRepo.Like(ctx, actor.ID, postID)
	if err != nil {
		return state, err
	}
	observability.LikesRecorded.WithLabelValues("like").Inc()
	return state, nil
}

func (s *PostService) Unlike(ctx context.Context, actor Actor, postID uint) (models.LikeState, error) {
	if err := s.likeable(ctx, actor, postID); err != nil {
		return models.LikeState{}, err
	}
	state, err := s.postRepo.Unlike(ctx, actor.ID, postID)
	if err != nil {
		return state, err
	}
	observability.LikesRecorded.WithLabelValues("unlike").Inc()
	return state, nil
}

// Trending returns the most viewed, then most liked, published posts.
func (s *PostService) Trending(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.cache.Aside(ctx, trendingKey(trendingLimit), &posts, cache.TrendingTTL, func() error {
		var err error
		posts, err = s.postRepo.TopByEngagement(ctx, trendingLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

func (s *PostService) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	posts, err := s.postRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

func (s *PostService) ByTag(ctx context.Context, tag string) ([]models.Post, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, models.NewValidationError("Tag is required")
	}
	posts, err := s.postRepo.ByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

// TagUsage lists every tag with the number of posts using it.
func (s *PostService) TagUsage(ctx context.Context) ([]models.TagUsage, error) {
	var usage []models.TagUsage
	err := s.cache.Aside(ctx, cache.TagUsageKey, &usage, cache.TagUsageTTL, func() error {
		var err error
		usage, err = s.tagRepo.UsageCounts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if usage == nil {
		usage = []models.TagUsage{}
	}
	return usage, nil
}

// RecountLikes repairs every likes counter from the like rows and returns how
// many posts changed.
func (s *PostService) RecountLikes(ctx context.Context) (int64, error) {
	n, err := s.postRepo.RecountLikes(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilPosts(p []models.Post) []models.Post {
	if p == nil {
		return []models.Post{}
	}
	return p
}
