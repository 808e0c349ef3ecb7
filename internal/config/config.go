package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	Env           string
	DatabaseDSN   string
	SessionSecret string
	SessionTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/eyeq?parseTime=true"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		SessionTTL:    24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", getEnv("EMAIL_USER", "")),
	}

	if cfg.Env == "production" && cfg.SessionSecret == "dev-secret-change-in-production" {
		slog.Error("SESSION_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
	}
	return fallback
}
