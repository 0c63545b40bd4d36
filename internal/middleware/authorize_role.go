package middleware

import (
	"brokerage-backend/internal/config"
	"brokerage-backend/internal/pkg/constants"
	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireRole allows the request when the session user has one of roles.
// In development the role check is skipped; handlers that need the user still require one.
func RequireRole(env config.Environment, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if env != nil && env.IsDevelopment() {
			return c.Next()
		}
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		role := UserRole(c)
		if !constants.IsValidRole(role) {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
	}
}
