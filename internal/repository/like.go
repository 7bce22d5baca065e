package repository

import (
	"context"

	"inkpress/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Like records the user's like once. The counter moves only when a row was
// inserted, in the same transaction as the insert.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (models.LikeState, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Select("id", "likes_count").First(&post, postID).Error
	})
	if err != nil {
		return models.LikeState{}, translateError(err, "Post", postID)
	}
	return models.LikeState{Likes: post.LikesCount, HasLiked: true}, nil
}

// Unlike removes the user's like, decrementing the counter only when a row went away.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (models.LikeState, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Post{}).Where("id = ? AND likes_count > 0", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - ?", res.RowsAffected)).Error; err != nil {
				return err
			}
		}
		return tx.Select("id", "likes_count").First(&post, postID).Error
	})
	if err != nil {
		return models.LikeState{}, translateError(err, "Post", postID)
	}
	return models.LikeState{Likes: post.LikesCount, HasLiked: false}, nil
}

func (r *postRepository) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "Like", postID)
	}
	return count > 0, nil
}

// RecountLikes repairs every drifted likes_count and reports how many posts changed.
func (r *postRepository) RecountLikes(ctx context.Context) (int64, error) {
	var changed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = recountLikes(tx, nil)
		return err
	})
	if err != nil {
		return 0, translateError(err, "Post", nil)
	}
	return changed, nil
}
