package configs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

type Config struct {
	Env  string
	Port string

	JWTSecret   string
	CorsOrigins string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SummaryTTL    time.Duration

	RequestTimeout time.Duration

	LogLevel string
	LogFile  string
}

// =======================
// ENV LOADER
// =======================

// LoadEnv: .env dipakai hanya di luar Railway; ENV sistem selalu menang.
// files kosong → ".env".
func LoadEnv(files ...string) {
	if os.Getenv("RAILWAY_ENVIRONMENT") != "" {
		slog.Info("running in Railway, pakai ENV dari sistem")
		return
	}
	if err := godotenv.Load(files...); err != nil {
		slog.Warn("tidak menemukan .env file, pakai ENV dari sistem")
		return
	}
	slog.Info(".env file berhasil dimuat")
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(GetEnv(key)); err == nil {
		return n
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(GetEnv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET belum diset")

// Load membaca seluruh konfigurasi dari ENV (panggil LoadEnv dulu).
func Load() (Config, error) {
	cfg := Config{
		Env:            GetEnv("APP_ENV", "development"),
		Port:           GetEnv("PORT", "3000"),
		JWTSecret:      GetEnv("JWT_SECRET"),
		CorsOrigins:    GetEnv("CORS_ALLOW_ORIGINS"),
		DBUser:         GetEnv("DB_USER"),
		DBPassword:     GetEnv("DB_PASSWORD"),
		DBHost:         GetEnv("DB_HOST", "localhost"),
		DBPort:         GetEnv("DB_PORT", "5432"),
		DBName:         GetEnv("DB_NAME"),
		DBSSLMode:      GetEnv("DB_SSLMODE", "require"),
		RedisAddr:      GetEnv("REDIS_ADDR"),
		RedisPassword:  GetEnv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),
		SummaryTTL:     getDuration("FEES_SUMMARY_TTL", 10*time.Minute),
		RequestTimeout: getDuration("HTTP_REQUEST_TIMEOUT", 5*time.Second),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFile:        GetEnv("LOG_FILE"),
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}
	return cfg, nil
}

// =======================
// GORM LOGGER (slog)
// =======================

type GormLogger struct {
	Log           *slog.Logger
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(log *slog.Logger) gormLogger.Interface {
	return &GormLogger{
		Log:           log.With("component", "gorm"),
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		l.Log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		l.Log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		l.Log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{"file", utils.FileWithLineNum(), "elapsed", elapsed.String(), "rows", rows, "sql", sql}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormLogger.Error:
		l.Log.ErrorContext(ctx, "sql error", append(attrs, "error", err)...)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		l.Log.WarnContext(ctx, "slow sql", attrs...)
	case l.LogLevel >= gormLogger.Info:
		l.Log.DebugContext(ctx, "sql", attrs...)
	}
}
