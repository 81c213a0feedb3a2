package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/constants"
	feesRoutes "schoolku_backend/internals/features/finance/fees/route"
	middlewares "schoolku_backend/internals/middlewares"
	authMiddleware "schoolku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg configs.Config, log *slog.Logger) {
	startTime = time.Now()

	BaseRoutes(app, db, rdb, cfg)

	jwtOpts := authMiddleware.AuthJWTOpts{
		Secret:              cfg.JWTSecret,
		AllowCookieFallback: true,
	}
	if rdb != nil {
		jwtOpts.BlacklistChecker = authMiddleware.RedisBlacklist(rdb)
	}

	// ===================== PRIVATE (USER) =====================
	log.Info("setting up PRIVATE group (siswa/wali)")
	user := app.Group("/api/u",
		authMiddleware.AuthJWT(jwtOpts),
		authMiddleware.RequireTenant(),
		authMiddleware.RequireRoles(constants.FeeSelfRoles...),
	)

	// ===================== ADMIN (per sekolah) =====================
	log.Info("setting up ADMIN group (Auth + Tenant + RoleCheck)")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(jwtOpts),
		authMiddleware.RequireTenant(),
		authMiddleware.RequireRolesMsg(constants.RoleErrorStaff("keuangan"), constants.FeeStaffRoles...),
		middlewares.MutationRateLimiter(),
	)

	fees := feesRoutes.NewFeesHandler(db, rdb, cfg.SummaryTTL, log)
	feesRoutes.FeesAdminRoutes(admin, fees)
	feesRoutes.FeesUserRoutes(user, fees)

	log.Info("routes ready")
}
