// Package service holds the business rules of Inkpress: identity, posts,
// comments, media and AI assistance.
package service

import (
	"context"
	"math"

	"inkpress/internal/jobs"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// canModify reports whether a may change something owned by ownerID.
func (a Actor) canModify(ownerID uint) bool {
	return a.IsAdmin() || (a.ID != 0 && a.ID == ownerID)
}

// canSee reports whether viewer, nil when anonymous, may see post. Drafts
// belong to their author and admins.
func canSee(viewer *Actor, post *models.Post) bool {
	return !post.IsDraft || (viewer != nil && viewer.canModify(post.AuthorID))
}

// resolveVisible looks up the post ref names and answers NOT_FOUND when
// viewer may not see it, so hidden drafts are indistinguishable from
// missing posts.
func resolveVisible(ctx context.Context, posts repository.PostRepository, ref string, viewer *Actor) (*models.Post, error) {
	post, err := posts.ResolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !canSee(viewer, post) {
		return nil, models.NewNotFoundError("Post", ref)
	}
	return post, nil
}

// pageOffset turns a 1-based page into a row offset. ok is false for pages
// below 1 and for offsets that would overflow an int.
func pageOffset(page, pageSize int) (offset int, ok bool) {
	if page < 1 || pageSize < 1 || page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

// JobSubmitter schedules background jobs.
type JobSubmitter interface {
	Submit(ctx context.Context, name string, payload interface{}, when jobs.Schedule) error
}

// submitJob runs name as soon as possible. Failures are logged, never returned.
func submitJob(ctx context.Context, q JobSubmitter, name string, payload interface{}) {
	if q == nil {
		return
	}
	if err := q.Submit(ctx, name, payload, jobs.Now()); err != nil {
		middleware.Logger.WarnContext(ctx, "job submission failed", "job", name, "error", err)
	}
}

func validationErr(err error) error {
	if err == nil {
		return nil
	}
	return models.NewValidationError(err.Error())
}
