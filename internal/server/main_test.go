package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/jobs"
	"inkpress/internal/media"
	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdminToken = "admin-access-token-for-tests"

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	queue *jobRecorder
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		JWTSecret:        "test-secret-that-is-at-least-32-characters",
		AdminAccessToken: testAdminToken,
		AllowedOrigins:   "*",
		SlugMaxAttempts:  5,
		MediaMaxUploadMB: 1,
	}
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

func newTestEnv(t *testing.T, customize ...func(*Deps)) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	queue := &jobRecorder{}
	deps := Deps{
		Config:     testConfig(),
		DB:         db,
		Queue:      queue,
		SlugSuffix: sequenceSuffix(),
	}
	for _, fn := range customize {
		fn(&deps)
	}
	srv, err := NewServer(deps)
	require.NoError(t, err)
	return &testEnv{srv: srv, app: srv.App(), db: db, queue: queue}
}

// createUser stores a user directly and returns it with a signed token.
func (e *testEnv) createUser(t *testing.T, name string, role models.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), u))
	token, err := e.srv.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) createPost(t *testing.T, author *models.User, title string, draft bool, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    title,
		Slug:     service.Slugify(title),
		Content:  "content of " + title,
		IsDraft:  draft,
		AuthorID: author.ID,
	}
	require.NoError(t, repository.NewPostRepository(e.db).CreateWithTags(context.Background(), p, tags))
	return p
}

// do sends a JSON request and returns the status with the raw body.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[models.ErrorResponse](t, raw).Code
}

// jobRecorder is an in-memory JobSubmitter.
type jobRecorder struct {
	mu    sync.Mutex
	names []string
}

func (j *jobRecorder) Submit(_ context.Context, name string, _ interface{}, _ jobs.Schedule) error {
	j.mu.Lock()
	defer j.mu.Unlock()
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

type fakeMediaStore struct {
	uploaded []media.UploadOptions
	deleted  []string
}

func (s *fakeMediaStore) Upload(_ context.Context, r io.Reader, size int64, opts media.UploadOptions) (*media.Object, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	s.uploaded = append(s.uploaded, opts)
	name := media.ObjectName(opts)
	return &media.Object{URL: "https://cdn.test/" + name, PublicID: name, ResourceType: opts.ResourceType, Size: size}, nil
}

func (s *fakeMediaStore) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type fakeGenerator struct {
	reply string
	err   error
}

func (g *fakeGenerator) Generate(context.Context, string) (string, error) {
	return g.reply, g.err
}
