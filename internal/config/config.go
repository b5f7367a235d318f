package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pixlink/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultPixGoBaseURL    = "https://pixgo.org/api/v1"
	DefaultPixGoRateLimit  = 5.0
	DefaultPollInterval    = 5 * time.Second
	DefaultStoreDriver     = "file"
	DefaultStorePath       = "payment_intents.json"
	DefaultCheckoutBaseURL = "http://localhost:5173/#/checkout/"
	DefaultSessionPath     = ".pixlink_session"
)

// Config is resolved once at startup and treated as read-only afterwards.
type Config struct {
	AppEnv string

	PixGoAPIKey    string
	PixGoBaseURL   string
	PixGoRateLimit float64
	PollInterval   time.Duration

	StoreDriver string
	StorePath   string
	DBURL       string

	CheckoutBaseURL string

	AdminPasswordHash string
	AdminPassword     string
	JWTSecret         string
	SessionPath       string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:            os.Getenv("APP_ENV"),
		PixGoAPIKey:       firstNonEmpty(os.Getenv("PIXGO_API_KEY"), os.Getenv("PIXUP_API_KEY")),
		PixGoBaseURL:      envOr("PIXGO_BASE_URL", DefaultPixGoBaseURL),
		PixGoRateLimit:    parseRate(os.Getenv("PIXGO_RATE_LIMIT")),
		PollInterval:      parseInterval(os.Getenv("POLL_INTERVAL")),
		StoreDriver:       strings.ToLower(envOr("STORE_DRIVER", DefaultStoreDriver)),
		StorePath:         envOr("STORE_PATH", DefaultStorePath),
		DBURL:             os.Getenv("DB_URL"),
		CheckoutBaseURL:   envOr("CHECKOUT_BASE_URL", DefaultCheckoutBaseURL),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionPath:       envOr("SESSION_PATH", DefaultSessionPath),
	}

	if cfg.PixGoAPIKey == "" {
		logger.L().Warn("PIXGO_API_KEY is not set, intent creation is disabled")
	}

	return cfg
}

// HasAPIKey reports whether the gateway key was provided.
func (c *Config) HasAPIKey() bool {
	return c.PixGoAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.L().Warn("invalid POLL_INTERVAL, using default",
			zap.String("value", raw),
			zap.Duration("default", DefaultPollInterval),
		)
		return DefaultPollInterval
	}
	return d
}

func parseRate(raw string) float64 {
	if raw == "" {
		return DefaultPixGoRateLimit
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil || r <= 0 {
		logger.L().Warn("invalid PIXGO_RATE_LIMIT, using default",
			zap.String("value", raw),
			zap.Float64("default", DefaultPixGoRateLimit),
		)
		return DefaultPixGoRateLimit
	}
	return r
}
