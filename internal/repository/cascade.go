package repository

import (
	"inkpress/internal/models"

	"gorm.io/gorm"
)

// commentSubtree returns the comments below rootIDs level by level, roots first.
func commentSubtree(tx *gorm.DB, rootIDs []uint) ([][]uint, error) {
	if len(rootIDs) == 0 {
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(rootIDs))
	for _, id := range rootIDs {
		seen[id] = struct{}{}
	}

	levels := [][]uint{rootIDs}
	frontier := rootIDs
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Order("id").
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		next := children[:0]
		for _, id := range children {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
	}
	return levels, nil
}

// deleteCommentSubtrees removes rootIDs and every reply below them, deepest level first.
func deleteCommentSubtrees(tx *gorm.DB, rootIDs []uint) (int64, error) {
	levels, err := commentSubtree(tx, rootIDs)
	if err != nil {
		return 0, err
	}
	var deleted int64
	for i := len(levels) - 1; i >= 0; i-- {
		res := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{})
		if res.Error != nil {
			return deleted, res.Error
		}
		deleted += res.RowsAffected
	}
	return deleted, nil
}

// deletePostsCascade removes the posts and everything that hangs off them:
// join rows, likes, comments, then the post rows.
func deletePostsCascade(tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error
}

const likeCountSubquery = "(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)"

// recountLikes resets likes_count from the like rows. With nil postIDs every
// drifted post is repaired; the result is the number of rows changed.
func recountLikes(tx *gorm.DB, postIDs []uint) (int64, error) {
	q := tx.Model(&models.Post{})
	if postIDs != nil {
		if len(postIDs) == 0 {
			return 0, nil
		}
		q = q.Where("id IN ?", postIDs)
	} else {
		q = q.Where("likes_count <> " + likeCountSubquery)
	}
	res := q.UpdateColumn("likes_count", gorm.Expr(likeCountSubquery))
	return res.RowsAffected, res.Error
}
