package middlewares

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RecoveryMiddleware: panic → 500, stack trace masuk log.
func RecoveryMiddleware(log *slog.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			log.ErrorContext(c.UserContext(), "panic recovered",
				"panic", fmt.Sprint(e), "method", c.Method(), "path", c.Path(),
				"request_id", c.Locals("reqid"), "stack", string(debug.Stack()))
		},
	})
}
