package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPostComments handles GET /api/posts/:id/comments
// @Summary Comment tree of a post
// @Description Comments nested under their parents, oldest first.
// @Tags comments
// @Produce json
// @Param id path string true "Post ID or slug"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) ListPostComments(c *fiber.Ctx) error {
	forest, err := s.commentService.ListForPost(c.UserContext(), c.Params("id"), viewer(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(forest)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID or slug"
// @Param request body object{content=string,parent_id=int} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	actor := mustActor(c)
	comment, err := s.commentService.Add(c.UserContext(), service.AddCommentInput{
		PostRef:    c.Params("id"),
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Content:    req.Content,
		ParentID:   req.ParentID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListAllComments handles GET /api/comments
// @Summary Every comment as a forest
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) ListAllComments(c *fiber.Ctx) error {
	forest, err := s.commentService.ListAll(c.UserContext(), mustActor(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(forest)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New text"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.Update(c.UserContext(), mustActor(c), id, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment and its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{deleted=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	deleted, err := s.commentService.Delete(c.UserContext(), mustActor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
