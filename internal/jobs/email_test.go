package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"inkpress/internal/database"
	"inkpress/internal/mail"
	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]bool
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.To
	}
	return out
}

func setupEmailJobs(t *testing.T) (*EmailJobs, *recordingSender, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	sender := &recordingSender{failFor: map[string]bool{}}
	jobs := NewEmailJobs(repository.NewUserRepository(db), repository.NewPostRepository(db), sender, "https://inkpress.local/")
	return jobs, sender, db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(u).Error)
	return u
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestEmailJobs_Welcome(t *testing.T) {
	jobs, sender, db := setupEmailJobs(t)
	u := seedUser(t, db, "ada")

	require.NoError(t, jobs.Welcome(context.Background(), payload(t, UserPayload{UserID: u.ID})))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "https://inkpress.local")

	// A deleted user is not an error worth retrying.
	assert.NoError(t, jobs.Welcome(context.Background(), payload(t, UserPayload{UserID: 999})))
}

func TestEmailJobs_LoginAlert(t *testing.T) {
	jobs, sender, db := setupEmailJobs(t)
	u := seedUser(t, db, "grace")

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, jobs.LoginAlert(context.Background(), payload(t, LoginAlertPayload{UserID: u.ID, IP: "10.0.0.1", At: at})))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "10.0.0.1")
}

func TestEmailJobs_NewPostSkipsAuthorAndDrafts(t *testing.T) {
	jobs, sender, db := setupEmailJobs(t)
	author := seedUser(t, db, "author")
	seedUser(t, db, "reader1")
	seedUser(t, db, "reader2")

	published := &models.Post{Title: "Hello", Slug: "hello", Content: "c", AuthorID: author.ID}
	draft := &models.Post{Title: "Soon", Slug: "soon", Content: "c", AuthorID: author.ID, IsDraft: true}
	require.NoError(t, db.Create(published).Error)
	require.NoError(t, db.Create(draft).Error)

	require.NoError(t, jobs.NewPost(context.Background(), payload(t, PostPayload{PostID: draft.ID})))
	assert.Empty(t, sender.sent)

	require.NoError(t, jobs.NewPost(context.Background(), payload(t, PostPayload{PostID: published.ID})))
	assert.ElementsMatch(t, []string{"reader1@example.com", "reader2@example.com"}, sender.recipients())
	assert.Contains(t, sender.sent[0].HTML, "https://inkpress.local/posts/hello")
}

func TestEmailJobs_BroadcastFailsOnlyWhenNothingDelivered(t *testing.T) {
	jobs, sender, db := setupEmailJobs(t)
	author := seedUser(t, db, "author")
	seedUser(t, db, "reader1")
	seedUser(t, db, "reader2")
	post := &models.Post{Title: "Hello", Slug: "hello", Content: "c", AuthorID: author.ID}
	require.NoError(t, db.Create(post).Error)

	sender.failFor["reader1@example.com"] = true
	assert.NoError(t, jobs.NewPost(context.Background(), payload(t, PostPayload{PostID: post.ID})))

	sender.failFor["reader2@example.com"] = true
	sender.sent = nil
	assert.Error(t, jobs.NewPost(context.Background(), payload(t, PostPayload{PostID: post.ID})))
}

func TestEmailJobs_WeeklyDigest(t *testing.T) {
	jobs, sender, db := setupEmailJobs(t)

	// No trending posts means nothing to send.
	require.NoError(t, jobs.WeeklyDigest(context.Background(), nil))
	assert.Empty(t, sender.sent)

	author := seedUser(t, db, "author")
	for i := 0; i < 3; i++ {
		p := &models.Post{Title: fmt.Sprintf("Post %d", i), Slug: fmt.Sprintf("post-%d", i), Content: "c", AuthorID: author.ID, Views: int64(i * 10)}
		require.NoError(t, db.Create(p).Error)
	}

	require.NoError(t, jobs.WeeklyDigest(context.Background(), nil))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Post 2 (20 views)")
}

func TestEmailJobs_Register(t *testing.T) {
	jobs, _, _ := setupEmailJobs(t)
	w := NewWorker(NewQueue(nil), 1, time.Second)
	jobs.Register(w)
	for _, name := range []string{EmailWelcome, EmailLoginAlert, EmailNewPost, DigestWeekly} {
		assert.Contains(t, w.handlers, name)
	}
}
