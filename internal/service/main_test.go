package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"inkpress/internal/cache"
	"inkpress/internal/database"
	"inkpress/internal/jobs"
	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// jobRecorder is an in-memory JobSubmitter.
type jobRecorder struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (j *jobRecorder) Submit(_ context.Context, name string, _ interface{}, _ jobs.Schedule) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.names = append(j.names, name)
	return nil
}

func (j *jobRecorder) submitted() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.names...)
}

func sequenceSuffix() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func newPostService(db *gorm.DB, queue JobSubmitter, store *cache.Store) *PostService {
	return NewPostService(
		repository.NewPostRepository(db),
		repository.NewTagRepository(db),
		store,
		queue,
		sequenceSuffix(),
		5,
	)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
