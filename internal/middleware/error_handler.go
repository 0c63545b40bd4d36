package middleware

import (
	"context"
	"encoding/json"
	"time"

	"brokerage-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorLogSize bounds the redis error log read by /health/errors.
const ErrorLogSize = 50

// ErrorHandler is the global error handler. Returns the standard error format and
// records server errors in the redis error log when rdb is set.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
			RecordError(rdb, c, err.Error())
		}
		return response.Error(c, message, code, nil)
	}
}

// RecordError pushes one entry onto the redis error log, trimmed to ErrorLogSize.
func RecordError(rdb *redis.Client, c *fiber.Ctx, message string) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC(),
		"path":     c.OriginalURL(),
		"method":   c.Method(),
		"trace_id": GetTraceID(c),
		"message":  message,
	})
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to record error log entry")
	}
}
