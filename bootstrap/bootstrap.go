package bootstrap

import (
	"foundersbook-backend/internal/config"
	"foundersbook-backend/internal/interfaces/router"
	"foundersbook-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless deployments (the api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app, _, err := router.CreateApp(cfg)
	return app, err
}
