package repository

import (
	"context"
	"fmt"
	"testing"

	"inkpress/internal/database"
	"inkpress/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Role:     models.RoleMember,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, db *gorm.DB, authorID uint, slug string, draft bool, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    slug,
		Slug:     slug,
		Content:  "content of " + slug,
		AuthorID: authorID,
		IsDraft:  draft,
	}
	require.NoError(t, NewPostRepository(db).CreateWithTags(context.Background(), p, tags))
	return p
}

func tagNames(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}
