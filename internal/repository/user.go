package repository

import (
	"context"
	"errors"

	"inkpress/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A user with this email already exists")
		}
		return translateError(err, "User", user.Email)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("name", "email", "password", "profile_image", "bio").
		Updates(user)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("A user with this email already exists")
		}
		return translateError(res.Error, "User", user.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translateError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, translateError(err, "User", nil)
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, translateError(err, "User", nil)
	}
	return users, nil
}

// DeleteCascade removes a user with everything they own in one transaction:
// their likes (re-deriving the affected counters), their comments with all
// replies, their posts with join rows, likes and comments, then the user row.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return err
		}

		var likedPostIDs []uint
		if err := tx.Model(&models.Like{}).Where("user_id = ?", id).Pluck("post_id", &likedPostIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if _, err := recountLikes(tx, likedPostIDs); err != nil {
			return err
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if _, err := deleteCommentSubtrees(tx, commentIDs); err != nil {
			return err
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePostsCascade(tx, postIDs); err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
	return translateError(err, "User", id)
}
