// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the binaries need from the environment. It is
// loaded once in main and injected; nothing reads env vars after startup.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr string
	RabbitURL string

	EmailProvider  string
	MailgunAPIKey  string
	MailgunDomain  string
	SendGridAPIKey string
	ResendAPIKey   string
	EmailFrom      string

	MainSiteURL      string
	PublicSiteURL    string
	AutomationAPIKey string

	SendDelay time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		MetricsAddr: envOr("METRICS_ADDR", ":9091"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBName:     envOr("DB_NAME", "fooodis"),

		RedisAddr: envOr("REDIS_ADDR", "localhost:6379"),
		RabbitURL: os.Getenv("RABBITMQ_URL"),

		EmailProvider:  envOr("EMAIL_PROVIDER", "console"),
		MailgunAPIKey:  os.Getenv("MAILGUN_API_KEY"),
		MailgunDomain:  envOr("MAILGUN_DOMAIN", "mg.fooodis.com"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		EmailFrom:      envOr("EMAIL_FROM", "Fooodis <newsletter@fooodis.com>"),

		MainSiteURL:      envOr("MAIN_SITE_URL", "https://fooodis.com"),
		PublicSiteURL:    envOr("PUBLIC_SITE_URL", "https://fooodis.com"),
		AutomationAPIKey: os.Getenv("AUTOMATION_API_KEY"),

		SendDelay: time.Duration(envInt("SEND_DELAY_MS", 100)) * time.Millisecond,
	}
}

// DatabaseDSN builds the postgres connection string.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
