package middleware

import (
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) map[string]interface{} {
	m, _ := c.Locals(userLocal).(map[string]interface{})
	return m
}

// UserID returns the session user's id.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	s, _ := GetUser(c)["user_id"].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UserRole returns the session user's role, or "".
func UserRole(c *fiber.Ctx) string {
	r, _ := GetUser(c)["role"].(string)
	return r
}
