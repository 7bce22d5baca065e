package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), mustActor(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user
// @Description Partial update; omitted fields are kept.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,email=string,password=string,bio=string,profile_image=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name         *string `json:"name"`
		Email        *string `json:"email"`
		Password     *string `json:"password"`
		Bio          *string `json:"bio"`
		ProfileImage *string `json:"profile_image"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:       mustActor(c).ID,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext(), mustActor(c),
		c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete a user
// @Description Removes the account with its posts, comments and likes. Self or admin only.
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), mustActor(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	s.postService.InvalidateListings(c.UserContext())
	return c.SendStatus(fiber.StatusNoContent)
}
