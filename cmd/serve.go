package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	helper "schoolku_backend/internals/helpers"
	middlewares "schoolku_backend/internals/middlewares"
	routes "schoolku_backend/internals/route"
)

func newServeCommand() *cobra.Command {
	var (
		autoMigrate     bool
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Jalankan HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := database.ConnectDB(cfg, log)
			if err != nil {
				return err
			}
			if autoMigrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}
			database.WarmUp(db, log)

			rdb, err := database.ConnectRedis(cmd.Context(), cfg, log)
			if err != nil {
				// cache opsional, jalan terus tanpa redis
				log.Warn("redis tidak tersedia", "error", err)
				rdb = nil
			}

			app := newApp(cfg, log, db, rdb)

			go func() {
				log.Info("listening", "port", cfg.Port)
				if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
					log.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			// graceful shutdown + tutup pool DB & redis
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = app.ShutdownWithContext(ctx)

			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			if rdb != nil {
				_ = rdb.Close()
			}
			log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "AutoMigrate sebelum server jalan")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "batas waktu graceful shutdown")
	return cmd
}

func newApp(cfg configs.Config, log *slog.Logger, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler:            helper.FromFiberError,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, log, cfg.CorsOrigins, cfg.RequestTimeout)

	routes.SetupRoutes(app, db, rdb, cfg, log)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second
	return app
}
