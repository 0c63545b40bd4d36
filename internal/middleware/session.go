package middleware

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookieName  = "brokerage.sid"
	SessionRedisPrefix = "session:"
)

// SessionUser is the shape stored in the session under "user" by the login service.
type SessionUser struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Session loads the session user from redis into Locals("user"). Sessions are created
// by the login service; this API only reads them. Cookie values may be "s:id.signature".
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if strings.HasPrefix(sessionID, "s:") {
			sessionID = strings.SplitN(sessionID[2:], ".", 2)[0]
		}
		c.Locals(userLocal, nil)
		if sessionID == "" || rdb == nil {
			return c.Next()
		}

		b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("session lookup failed")
			}
			return c.Next()
		}
		var data struct {
			User *SessionUser `json:"user"`
		}
		if err := json.Unmarshal(b, &data); err != nil || data.User == nil {
			return c.Next()
		}
		c.Locals(userLocal, map[string]interface{}{
			"user_id": data.User.UserID,
			"name":    data.User.Name,
			"email":   data.User.Email,
			"role":    data.User.Role,
		})
		return c.Next()
	}
}
