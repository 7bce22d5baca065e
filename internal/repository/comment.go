package repository

import (
	"context"

	"inkpress/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListAll(ctx context.Context) ([]*models.Comment, error)
	DeleteSubtree(ctx context.Context, id uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return translateError(err, "Comment", nil)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{ID: id}).Update("content", content)
	if res.Error != nil {
		return nil, translateError(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return r.GetByID(ctx, id)
}

// ListByPost returns the post's comments flat, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "Comment", nil)
	}
	return comments, nil
}

func (r *commentRepository) ListAll(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "Comment", nil)
	}
	return comments, nil
}

// DeleteSubtree removes the comment and all of its replies at any depth,
// children before parents, and reports how many rows went away.
func (r *commentRepository) DeleteSubtree(ctx context.Context, id uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, id).Error; err != nil {
			return err
		}
		var err error
		deleted, err = deleteCommentSubtrees(tx, []uint{id})
		return err
	})
	if err != nil {
		return 0, translateError(err, "Comment", id)
	}
	return deleted, nil
}
