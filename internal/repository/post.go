package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"inkpress/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostUpdate lists the editable columns of a post. Tags is applied only when ReplaceTags is set.
type PostUpdate struct {
	Title         string
	Slug          string
	Content       string
	CoverImages   []string
	CoverVideos   []string
	IsDraft       bool
	GeneratedByAI bool
	ReplaceTags   bool
	Tags          []string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreateWithTags(ctx context.Context, post *models.Post, tagNames []string) error
	Update(ctx context.Context, id uint, upd PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	ResolveRef(ctx context.Context, ref string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Post, int64, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	IncrementViews(ctx context.Context, id uint) (int64, error)
	TopByEngagement(ctx context.Context, limit int) ([]models.Post, error)
	Search(ctx context.Context, query string) ([]models.Post, error)
	ByTag(ctx context.Context, tagName string) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)

	Like(ctx context.Context, userID, postID uint) (models.LikeState, error)
	Unlike(ctx context.Context, userID, postID uint) (models.LikeState, error)
	HasLiked(ctx context.Context, userID, postID uint) (bool, error)
	RecountLikes(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") })
}

// CreateWithTags inserts the post, resolves its tags and links them in one
// transaction. A slug collision returns ErrSlugTaken and leaves nothing behind.
func (r *postRepository) CreateWithTags(ctx context.Context, post *models.Post, tagNames []string) error {
	names, err := normalizeTagNames(tagNames)
	if err != nil {
		return err
	}

	var tags []models.Tag
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrSlugTaken
			}
			return err
		}
		var err error
		tags, err = linkTags(tx, post.ID, names)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return ErrSlugTaken
		}
		post.ID = 0
		return translateError(err, "Post", post.Slug)
	}
	post.Tags = tags
	return nil
}

// linkTags resolves names and inserts the post's join rows.
func linkTags(tx *gorm.DB, postID uint, names []string) ([]models.Tag, error) {
	tags, err := resolveTags(tx, names)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return tags, nil
	}
	rows := make([]models.PostTag, len(tags))
	for i, t := range tags {
		rows[i] = models.PostTag{PostID: postID, TagID: t.ID}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Update writes the editable columns and, when requested, replaces the tag set
// (delete every join row, then recreate) in the same transaction.
func (r *postRepository) Update(ctx context.Context, id uint, upd PostUpdate) (*models.Post, error) {
	var names []string
	if upd.ReplaceTags {
		var err error
		if names, err = normalizeTagNames(upd.Tags); err != nil {
			return nil, err
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{ID: id}).
			Omit(clause.Associations).
			Updates(map[string]interface{}{
				"title":           upd.Title,
				"slug":            upd.Slug,
				"content":         upd.Content,
				"cover_images":    coverList(upd.CoverImages),
				"cover_videos":    coverList(upd.CoverVideos),
				"is_draft":        upd.IsDraft,
				"generated_by_ai": upd.GeneratedByAI,
			})
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return ErrSlugTaken
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if !upd.ReplaceTags {
			return nil
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		_, err := linkTags(tx, id, names)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, translateError(err, "Post", id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the post with its join rows, likes and comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return err
		}
		return deletePostsCascade(tx, []uint{id})
	})
	return translateError(err, "Post", id)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, translateError(err, "Post", slug)
	}
	return &post, nil
}

// ResolveRef finds a post by numeric id first, then by slug.
func (r *postRepository) ResolveRef(ctx context.Context, ref string) (*models.Post, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewValidationError("Post reference is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id > 0 {
		post, err := r.GetByID(ctx, uint(id))
		if err == nil || !models.IsCode(err, models.CodeNotFound) {
			return post, err
		}
	}
	post, err := r.GetBySlug(ctx, ref)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Post", ref)
		}
		return nil, err
	}
	return post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translateError(err, "Post", slug)
	}
	return count > 0, nil
}

func applyStatus(db *gorm.DB, status string) *gorm.DB {
	switch status {
	case models.PostStatusDraft:
		return db.Where("is_draft = ?", true)
	case models.PostStatusAll:
		return db
	default:
		return db.Where("is_draft = ?", false)
	}
}

// List returns one page of posts with the given status, most recently updated first.
func (r *postRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := applyStatus(r.db.WithContext(ctx).Model(&models.Post{}), status).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Post", nil)
	}

	posts := []models.Post{}
	if offset < 0 || int64(offset) >= total {
		return posts, total, nil
	}
	err := withDetails(applyStatus(r.db.WithContext(ctx), status)).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, translateError(err, "Post", nil)
	}
	return posts, total, nil
}

func (r *postRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var counts models.StatusCounts
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&counts.All).Error; err != nil {
		return counts, translateError(err, "Post", nil)
	}
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("is_draft = ?", true).Count(&counts.Draft).Error; err != nil {
		return counts, translateError(err, "Post", nil)
	}
	counts.Published = counts.All - counts.Draft
	return counts, nil
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) (int64, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Select("id", "views").First(&post, id).Error
	})
	if err != nil {
		return 0, translateError(err, "Post", id)
	}
	return post.Views, nil
}

func (r *postRepository) TopByEngagement(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	err := withDetails(r.db.WithContext(ctx)).
		Where("is_draft = ?", false).
		Order("views DESC, likes_count DESC, id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query as a case-insensitive substring of title or content.
func (r *postRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	posts := []models.Post{}
	err := withDetails(r.db.WithContext(ctx)).
		Where("is_draft = ?", false).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("updated_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

func (r *postRepository) ByTag(ctx context.Context, tagName string) ([]models.Post, error) {
	db := r.db.WithContext(ctx)
	tagged := db.Model(&models.PostTag{}).
		Select("post_tags.post_id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name = ?", tagName)

	posts := []models.Post{}
	err := withDetails(db).
		Where("is_draft = ?", false).
		Where("id IN (?)", tagged).
		Order("updated_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

func coverList(urls []string) interface{} {
	if urls == nil {
		urls = []string{}
	}
	return models.CoverList(urls)
}
