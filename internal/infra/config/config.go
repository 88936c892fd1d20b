package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the portal
type AppConfig struct {
	APIBaseURL         string // backend origin + "/api"
	HTTPAddr           string
	PublicURL          string // where users reach the portal; used in Telegram messages
	SessionSecret      string
	JWTSecret          string
	CookieSecure       bool
	CORSAllowedOrigins []string
	DefaultPhoneRegion string
	BackendTimeout     time.Duration

	CacheSize int
	CacheTTL  time.Duration

	DatabaseURL     string // optional; enables the Telegram relay and review history
	RedisURL        string // optional; enables link codes and the relay lock
	TelegramToken   string // optional; enables the bot
	AdminTelegramID int64

	LogLevel    string
	Environment string

	CronSpecRelay        string
	CronSpecQueueRefresh string
	CronSpecStatsRefresh string
	CronSpecDigest       string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8081/api"), "/")
	if _, err = url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/")

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.SessionSecret)

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.CookieSecure = cfg.IsProduction()

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.DefaultPhoneRegion = strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "TZ"))

	if cfg.BackendTimeout, err = time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	if cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "512")); err != nil || cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %q", os.Getenv("CACHE_SIZE"))
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "10s")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN requires DATABASE_URL for subscriptions")
	}

	cfg.CronSpecRelay = getEnv("CRON_SPEC_RELAY", "@every 30s")
	cfg.CronSpecQueueRefresh = getEnv("CRON_SPEC_QUEUE_REFRESH", "@every 120s")
	cfg.CronSpecStatsRefresh = getEnv("CRON_SPEC_STATS_REFRESH", "@every 300s")
	cfg.CronSpecDigest = getEnv("CRON_SPEC_DIGEST", "0 9 * * *") // 9 AM daily

	return cfg, nil
}

// APIOrigin is the backend origin without the "/api" prefix, used to resolve uploaded file paths.
func (c *AppConfig) APIOrigin() string {
	return strings.TrimSuffix(strings.TrimRight(c.APIBaseURL, "/"), "/api")
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

func (c *AppConfig) RelayEnabled() bool {
	return c.TelegramToken != "" && c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
