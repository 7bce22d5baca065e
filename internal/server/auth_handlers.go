package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account. A matching admin_access_token grants the admin role.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,admin_access_token=string} true "Registration"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name             string `json:"name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		AdminAccessToken string `json:"admin_access_token"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		AdminAccessToken: req.AdminAccessToken,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.userService.Authenticate(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.IP(),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}
