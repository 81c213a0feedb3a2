package logger

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
)

// RequestLogger: request id + access log (slog). Request id dibaca dari X-Request-ID atau dibuat baru.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = utils.UUID()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("reqid", id)

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// status final ditentukan ErrorHandler; pakai kode fiber.Error kalau ada
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		log.Log(c.UserContext(), level, "http request",
			"request_id", id,
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"ip", c.IP(),
			"duration", time.Since(start).String(),
		)
		return err
	}
}
