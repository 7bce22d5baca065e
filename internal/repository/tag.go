package repository

import (
	"context"
	"strings"

	"inkpress/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	ResolveOrCreate(ctx context.Context, name string) (*models.Tag, error)
	ResolveOrCreateMany(ctx context.Context, names []string) ([]models.Tag, error)
	UsageCounts(ctx context.Context) ([]models.TagUsage, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) ResolveOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tags, err := r.ResolveOrCreateMany(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return &tags[0], nil
}

func (r *tagRepository) ResolveOrCreateMany(ctx context.Context, names []string) ([]models.Tag, error) {
	cleaned, err := normalizeTagNames(names)
	if err != nil {
		return nil, err
	}
	tags, err := resolveTags(r.db.WithContext(ctx), cleaned)
	if err != nil {
		return nil, translateError(err, "Tag", strings.Join(cleaned, ","))
	}
	return tags, nil
}

// UsageCounts lists every tag with the number of posts carrying it, most used first.
func (r *tagRepository) UsageCounts(ctx context.Context) ([]models.TagUsage, error) {
	var usage []models.TagUsage
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.name AS name, COUNT(post_tags.post_id) AS count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("count DESC, tags.name ASC").
		Scan(&usage).Error
	if err != nil {
		return nil, translateError(err, "Tag", nil)
	}
	return usage, nil
}

// normalizeTagNames trims names and drops duplicates, keeping first-seen order.
func normalizeTagNames(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, models.NewValidationError("Tag names must not be empty")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// resolveTags upserts each name and reads the stored row back. The insert
// never fails on an existing name, so concurrent callers converge on one row.
func resolveTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		var tag models.Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
