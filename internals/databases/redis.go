package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"schoolku_backend/internals/configs"
)

// ConnectRedis: REDIS_ADDR kosong → (nil, nil), fitur cache & blacklist dimatikan.
func ConnectRedis(ctx context.Context, cfg configs.Config, log *slog.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR kosong, summary cache & token blacklist nonaktif")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("gagal konek redis: %w", err)
	}
	log.Info("redis connected", "addr", cfg.RedisAddr)
	return rdb, nil
}
