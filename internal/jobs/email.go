package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inkpress/internal/mail"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/repository"
)

// UserPayload identifies the user a job is about.
type UserPayload struct {
	UserID uint `json:"user_id"`
}

// LoginAlertPayload describes a successful sign-in.
type LoginAlertPayload struct {
	UserID uint      `json:"user_id"`
	IP     string    `json:"ip,omitempty"`
	At     time.Time `json:"at"`
}

// PostPayload identifies the post a job is about.
type PostPayload struct {
	PostID uint `json:"post_id"`
}

const recipientBatch = 200

// DigestInterval is how often the trending digest goes out.
const DigestInterval = 7 * 24 * time.Hour

// EmailJobs renders and sends the transactional email jobs.
type EmailJobs struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	sender  mail.Sender
	siteURL string
}

// NewEmailJobs returns the email job handlers.
func NewEmailJobs(users repository.UserRepository, posts repository.PostRepository, sender mail.Sender, siteURL string) *EmailJobs {
	return &EmailJobs{
		users:   users,
		posts:   posts,
		sender:  sender,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Register attaches every email handler to w.
func (e *EmailJobs) Register(w *Worker) {
	w.Handle(EmailWelcome, e.Welcome)
	w.Handle(EmailLoginAlert, e.LoginAlert)
	w.Handle(EmailNewPost, e.NewPost)
	w.Handle(DigestWeekly, e.WeeklyDigest)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

func (e *EmailJobs) send(ctx context.Context, to, template string, data interface{}) error {
	subject, html, text, err := mail.Render(template, data)
	if err != nil {
		return err
	}
	return e.sender.Send(ctx, mail.Message{To: to, Subject: subject, HTML: html, Text: text})
}

func (e *EmailJobs) postURL(slug string) string {
	return e.siteURL + "/posts/" + slug
}

func (e *EmailJobs) Welcome(ctx context.Context, raw json.RawMessage) error {
	p, err := decode[UserPayload](raw)
	if err != nil {
		return err
	}
	user, err := e.users.GetByID(ctx, p.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil
		}
		return err
	}
	return e.send(ctx, user.Email, mail.TemplateWelcome, map[string]string{
		"Name":    user.Name,
		"SiteURL": e.siteURL,
	})
}

func (e *EmailJobs) LoginAlert(ctx context.Context, raw json.RawMessage) error {
	p, err := decode[LoginAlertPayload](raw)
	if err != nil {
		return err
	}
	user, err := e.users.GetByID(ctx, p.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil
		}
		return err
	}
	return e.send(ctx, user.Email, mail.TemplateLoginAlert, map[string]string{
		"Name": user.Name,
		"IP":   p.IP,
		"At":   p.At.UTC().Format(time.RFC1123),
	})
}

// NewPost announces a published post to every user except its author.
func (e *EmailJobs) NewPost(ctx context.Context, raw json.RawMessage) error {
	p, err := decode[PostPayload](raw)
	if err != nil {
		return err
	}
	post, err := e.posts.GetByID(ctx, p.PostID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil
		}
		return err
	}
	if post.IsDraft {
		return nil
	}

	author := "Someone"
	if post.Author != nil {
		author = post.Author.Name
	}
	return e.broadcast(ctx, post.AuthorID, mail.TemplateNewPost, func(u models.User) interface{} {
		return map[string]string{
			"Name":    u.Name,
			"Author":  author,
			"Title":   post.Title,
			"PostURL": e.postURL(post.Slug),
		}
	})
}

type digestEntry struct {
	Title string
	URL   string
	Views int64
}

// WeeklyDigest mails the current trending posts to every user.
func (e *EmailJobs) WeeklyDigest(ctx context.Context, _ json.RawMessage) error {
	top, err := e.posts.TopByEngagement(ctx, 5)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		return nil
	}
	entries := make([]digestEntry, len(top))
	for i, p := range top {
		entries[i] = digestEntry{Title: p.Title, URL: e.postURL(p.Slug), Views: p.Views}
	}
	return e.broadcast(ctx, 0, mail.TemplateDigest, func(u models.User) interface{} {
		return map[string]interface{}{"Name": u.Name, "Posts": entries}
	})
}

// broadcast mails every user but skip. Per-recipient failures are logged and
// the job fails only when no delivery succeeded.
func (e *EmailJobs) broadcast(ctx context.Context, skip uint, template string, data func(models.User) interface{}) error {
	var sent, failed int
	var lastErr error
	for offset := 0; ; offset += recipientBatch {
		users, err := e.users.List(ctx, recipientBatch, offset)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.ID == skip {
				continue
			}
			if err := e.send(ctx, u.Email, template, data(u)); err != nil {
				failed++
				lastErr = err
				middleware.Logger.WarnContext(ctx, "mail delivery failed",
					"template", template, "user_id", u.ID, "error", err)
				continue
			}
			sent++
		}
		if len(users) < recipientBatch {
			break
		}
	}
	if sent == 0 && failed > 0 {
		return fmt.Errorf("%s: all %d deliveries failed: %w", template, failed, lastErr)
	}
	return nil
}
