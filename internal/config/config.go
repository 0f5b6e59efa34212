package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "file:carrental.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "12h"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultCurrency       = "KZT"
	defaultDepositPercent = "100"
	defaultPhoneRegion    = "KZ"
	defaultNoShowGrace    = "24h"
	defaultNoShowCron     = "0 */15 * * * *"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret    string
	JWTTTL       time.Duration
	AuthDisabled bool

	LogLevel  string
	LogFormat string

	DefaultCurrency       string
	DefaultDepositPercent int
	PhoneDefaultRegion    string

	NoShowGrace time.Duration
	NoShowCron  string

	CORSAllowedOrigins []string
}

// Load reads the runtime configuration from the environment. A .env file in
// the working directory is honoured when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AuthDisabled = parseBoolEnv("AUTH_DISABLED", "false")
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))
	cfg.DefaultCurrency = strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_CURRENCY", defaultCurrency)))
	cfg.PhoneDefaultRegion = strings.ToUpper(strings.TrimSpace(getEnv("PHONE_DEFAULT_REGION", defaultPhoneRegion)))
	cfg.NoShowCron = strings.TrimSpace(getEnv("NO_SHOW_CRON", defaultNoShowCron))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.NoShowGrace, err = parseDurationEnv("NO_SHOW_GRACE", defaultNoShowGrace)
	if err != nil {
		return nil, err
	}
	cfg.DefaultDepositPercent, err = parseIntEnv("DEFAULT_DEPOSIT_PERCENT", defaultDepositPercent)
	if err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.NoShowGrace < 0 {
		return fmt.Errorf("NO_SHOW_GRACE must be >= 0")
	}
	if cfg.DefaultDepositPercent < 0 || cfg.DefaultDepositPercent > 100 {
		return fmt.Errorf("DEFAULT_DEPOSIT_PERCENT must be between 0 and 100")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be an ISO 4217 code")
	}
	if cfg.NoShowCron == "" {
		return fmt.Errorf("NO_SHOW_CRON must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.AuthDisabled {
			return fmt.Errorf("in prod/release AUTH_DISABLED is not allowed")
		}
	}
	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
