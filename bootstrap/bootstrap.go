package bootstrap

import (
	"brokerage-backend/internal/config"
	"brokerage-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless hosting (the api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.SetupLogging()
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
