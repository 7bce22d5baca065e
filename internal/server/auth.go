package server

import (
	"context"
	"strings"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userID"
	localRole   = "role"
)

// bearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// authenticate verifies the bearer token and loads the account behind it, so
// the role is always the stored one rather than the one the token was issued with.
func (s *Server) authenticate(c *fiber.Ctx, raw string) (*models.User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func setCaller(c *fiber.Ctx, user *models.User) {
	c.Locals(localUserID, user.ID)
	c.Locals(localRole, user.Role)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
	c.SetUserContext(ctx)
}

// AuthRequired rejects requests without a valid bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		user, err := s.authenticate(c, raw)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		setCaller(c, user)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := bearerToken(c); raw != "" {
			if user, err := s.authenticate(c, raw); err == nil {
				setCaller(c, user)
			}
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the caller is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := currentActor(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if !actor.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// currentActor reads the authenticated caller from locals.
func currentActor(c *fiber.Ctx) (service.Actor, bool) {
	id, ok := c.Locals(localUserID).(uint)
	if !ok || id == 0 {
		return service.Actor{}, false
	}
	role, _ := c.Locals(localRole).(models.Role)
	return service.Actor{ID: id, Role: role}, true
}

// viewer returns the caller for optionally authenticated reads, or nil.
func viewer(c *fiber.Ctx) *service.Actor {
	actor, ok := currentActor(c)
	if !ok {
		return nil
	}
	return &actor
}
