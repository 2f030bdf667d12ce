package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Service
	ServiceName     string
	APIPort         int
	APIKey          string
	CORSAllowOrigin string
	LogLevel        string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string

	// Exchange
	DeribitBaseURL string

	// Ingestion
	FetchIntervalSeconds int

	// Notifications
	WebhookURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:     envStr("SERVICE_NAME", "deribit-client"),
		APIPort:         envInt("API_PORT", 8000),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),
		LogLevel:        envStr("LOG_LEVEL", "info"),

		DatabaseURL: envStr("DATABASE_URL", ""),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envInt("DB_PORT", 5432),
		DBName:      envStr("DB_NAME", "deribit_db"),
		DBUser:      envStr("DB_USER", ""),
		DBPassword:  envStr("DB_PASSWORD", ""),

		DeribitBaseURL: envStr("DERIBIT_BASE_URL", "https://www.deribit.com/api/v2"),

		FetchIntervalSeconds: envInt("FETCH_INTERVAL_SECONDS", 60),

		WebhookURL: envStr("WEBHOOK_URL", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" && c.DBUser == "" {
		errs = append(errs, "DB_USER is required when DATABASE_URL is not set")
	}
	if c.FetchIntervalSeconds <= 0 {
		errs = append(errs, "FETCH_INTERVAL_SECONDS must be positive")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, "API_PORT must be a valid port number")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
