package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
)

func BaseRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg configs.Config) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Schoolku fees service running 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "Connected"
		redisStatus := "Disabled"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(ctx, db); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}
		// redis hanya cache → gagal ping tidak bikin DOWN
		if rdb != nil {
			redisStatus = "Connected"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "Redis connection error"
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"redis":          redisStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    cfg.Env,
		})
	})
}
