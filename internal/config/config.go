// Package config reads runtime settings for the API and the bot from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset. It is public, so it is only accepted
// for local development without a bootstrapped super admin.
const DevJWTSecret = "dev-secret-change-me"

// Config holds every tunable of the gym backend.
type Config struct {
	HTTPAddress    string
	DatabaseURL    string
	DBLogLevel     string
	DBMaxOpenConns int

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	UploadDir      string
	MaxUploadBytes int64
	CORSOrigins    []string

	CheckInWindow           time.Duration
	MembershipCheckInterval time.Duration
	ExpiryReminderWindow    time.Duration

	KafkaBrokers       []string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	TelegramToken string

	SuperAdminEmail    string
	SuperAdminPassword string
}

// Load reads .env (if present) and the environment, applying defaults for local dev.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Log.Info("No .env file found, reading environment variables")
	}

	cfg := Config{
		HTTPAddress:    getEnv("HTTP_ADDRESS", ":8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBLogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 20),

		JWTSecret: getEnv("JWT_SECRET", DevJWTSecret),
		JWTIssuer: getEnv("JWT_ISSUER", "gym-nexus"),
		JWTTTL:    getDurationEnv("JWT_TTL", 24*time.Hour),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 5<<20)),
		CORSOrigins:    splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		CheckInWindow:           getDurationEnv("CHECKIN_WINDOW", 12*time.Hour),
		MembershipCheckInterval: getDurationEnv("MEMBERSHIP_CHECK_INTERVAL", time.Hour),
		ExpiryReminderWindow:    getDurationEnv("EXPIRY_REMINDER_WINDOW", 72*time.Hour),

		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 50),

		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.CheckInWindow <= 0 {
		return cfg, fmt.Errorf("CHECKIN_WINDOW must be positive")
	}
	if cfg.JWTSecret == DevJWTSecret {
		if cfg.SuperAdminEmail != "" {
			return cfg, fmt.Errorf("JWT_SECRET must be set when SUPER_ADMIN_EMAIL is set")
		}
		utils.Log.Warn("JWT_SECRET not set, signing tokens with the development secret")
	}
	return cfg, nil
}

// OutboxEnabled reports whether domain events should be recorded and shipped to Kafka.
func (c Config) OutboxEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		utils.Log.Warnf("invalid duration for %s=%q, using %s", key, value, fallback)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		utils.Log.Warnf("invalid integer for %s=%q, using %d", key, value, fallback)
	}
	return fallback
}
