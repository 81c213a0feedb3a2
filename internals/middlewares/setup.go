package middlewares

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/middlewares/logger"
)

// SetupMiddlewares: urutan recover → request log → timeout → cors → limiter.
func SetupMiddlewares(app *fiber.App, log *slog.Logger, corsOrigins string, requestTimeout time.Duration) {
	app.Use(RecoveryMiddleware(log))
	app.Use(logger.RequestLogger(log))
	app.Use(TimeoutContext(requestTimeout))
	app.Use(CorsMiddleware(corsOrigins))
	app.Use(GlobalRateLimiter())
}

// TimeoutContext memasang deadline di UserContext (dibawa sampai query DB).
func TimeoutContext(d time.Duration) fiber.Handler {
	if d <= 0 {
		d = 5 * time.Second
	}
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
