package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkpress/internal/models"
	"inkpress/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type AddCommentInput struct {
	PostRef    string
	AuthorID   uint
	AuthorRole models.Role
	Content    string
	ParentID   *uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", models.NewValidationError("Content too long (max 10000 characters)")
	}
	return content, nil
}

// Add attaches a comment to the post ref names. A parent, when given, must be
// a comment on the same post.
func (s *CommentService) Add(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	post, err := resolveVisible(ctx, s.postRepo, in.PostRef, &Actor{ID: in.AuthorID, Role: in.AuthorRole})
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return nil, models.NewValidationError("Parent comment does not exist")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: in.AuthorID,
		PostID:   post.ID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if created, err := s.commentRepo.GetByID(ctx, comment.ID); err == nil {
		created.Replies = []*models.Comment{}
		return created, nil
	}
	comment.Replies = []*models.Comment{}
	return comment, nil
}

// ListForPost returns the comment forest of the post ref names. viewer is nil
// for anonymous callers.
func (s *CommentService) ListForPost(ctx context.Context, postRef string, viewer *Actor) ([]*models.Comment, error) {
	post, err := resolveVisible(ctx, s.postRepo, postRef, viewer)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return BuildForest(comments), nil
}

// ListAll returns every comment as a forest. Admins only.
func (s *CommentService) ListAll(ctx context.Context, actor Actor) ([]*models.Comment, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}
	comments, err := s.commentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildForest(comments), nil
}

// BuildForest nests comments under their parents. Input order is preserved
// among siblings; a comment whose parent is absent or appears later becomes a root.
func BuildForest(comments []*models.Comment) []*models.Comment {
	nodes := make(map[uint]*models.Comment, len(comments))
	roots := make([]*models.Comment, 0)
	for _, c := range comments {
		c.Replies = []*models.Comment{}
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				nodes[c.ID] = c
				continue
			}
		}
		roots = append(roots, c)
		nodes[c.ID] = c
	}
	return roots
}

// Update changes the text of a comment. Only its author may edit it.
func (s *CommentService) Update(ctx context.Context, actor Actor, id uint, content string) (*models.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	existing, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actor.ID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	return s.commentRepo.UpdateContent(ctx, id, content)
}

// Delete removes a comment and all of its replies. The comment's author, the
// post's author and admins may delete.
func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) (int64, error) {
	existing, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !actor.canModify(existing.AuthorID) {
		post, err := s.postRepo.GetByID(ctx, existing.PostID)
		if err != nil {
			return 0, err
		}
		if post.AuthorID != actor.ID {
			return 0, models.NewForbiddenError("You cannot delete this comment")
		}
	}
	return s.commentRepo.DeleteSubtree(ctx, id)
}
