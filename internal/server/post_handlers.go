package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Paginated listing. Draft and all listings require an admin token.
// @Tags posts
// @Produce json
// @Param status query string false "published (default), draft or all"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.PostPage
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	status := c.Query("status", models.PostStatusPublished)
	if status == models.PostStatusDraft || status == models.PostStatusAll {
		if v := viewer(c); v == nil || !v.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
	}

	page, err := s.postService.ListPaginated(c.UserContext(), status,
		c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.AuthorID = mustActor(c).ID

	post, err := s.postService.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Partial update. A tags array replaces the whole tag set. Author or admin only.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.Update(c.UserContext(), mustActor(c), id, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), mustActor(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post by ID
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetByID(c.UserContext(), id, viewer(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/slug/{slug} [get]
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	post, err := s.postService.GetBySlug(c.UserContext(), c.Params("slug"), viewer(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// PostsByTag handles GET /api/posts/tag/:tag
// @Summary Published posts with a tag
// @Tags posts
// @Produce json
// @Param tag path string true "Tag name"
// @Success 200 {array} models.Post
// @Router /posts/tag/{tag} [get]
func (s *Server) PostsByTag(c *fiber.Ctx) error {
	posts, err := s.postService.ByTag(c.UserContext(), c.Params("tag"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/posts/search?q=...
// @Summary Search published posts
// @Tags posts
// @Produce json
// @Param q query string true "Text to find in title or content"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// TrendingPosts handles GET /api/posts/trending
// @Summary Trending posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts/trending [get]
func (s *Server) TrendingPosts(c *fiber.Ctx) error {
	posts, err := s.postService.Trending(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// IncrementView handles POST /api/posts/:id/view
// @Summary Count a view
// @Description The reference may be a numeric ID or a slug.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID or slug"
// @Success 200 {object} object{views=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/view [post]
func (s *Server) IncrementView(c *fiber.Ctx) error {
	views, err := s.postService.IncrementView(c.UserContext(), c.Params("id"), viewer(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"views": views})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.postService.Like(c.UserContext(), mustActor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(state)
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.postService.Unlike(c.UserContext(), mustActor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(state)
}

// ListTags handles GET /api/tags
// @Summary Tags with usage counts
// @Tags tags
// @Produce json
// @Success 200 {array} models.TagUsage
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	usage, err := s.postService.TagUsage(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(usage)
}
