package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	feeModel "schoolku_backend/internals/features/finance/fees/model"
)

// DSN lengkap + statement_timeout. Kalau lewat PgBouncer, arahkan host/port ke PgBouncer.
func DSN(cfg configs.Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=schoolku&options=-c statement_timeout=3000",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode,
	)
}

func ConnectDB(cfg configs.Config, log *slog.Logger) (*gorm.DB, error) {
	log.Info("koneksi ke PostgreSQL...", "host", cfg.DBHost, "db", cfg.DBName)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(cfg),
		PreferSimpleProtocol: true, // cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{Logger: configs.NewGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("gagal konek DB: %w", err)
	}
	TunePool(db, log)
	log.Info("DB connected")
	return db, nil
}

func TunePool(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("pool tune err", "error", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate: AutoMigrate seluruh tabel keuangan (biaya & beasiswa).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(feeModel.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WarmUp: ping ringan di background supaya pool sudah terisi.
func WarmUp(db *gorm.DB, log *slog.Logger) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log.Warn("warm-up ping err", "error", err)
		}
	}()
}
