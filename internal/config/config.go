// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default token parameters. Override via environment only for tests or
// unusual deployments.
const (
	DefaultBcryptCost          = 12
	DefaultAccessTokenTTLSecs  = 900
	DefaultRefreshTokenTTLDays = 60
	DefaultRefreshTokenBytes   = 32
	MinRefreshTokenBytes       = 32
	MinSessionSecretLen        = 32
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string // debug, info, warn, error
	ListenAddr        string // API listen address (e.g., ":8080")
	MetricsListenAddr string // Metrics listener address (e.g., "localhost:9090")
	DatabasePath      string // SQLite database path

	SessionSecret       string // Required: HMAC secret for access tokens
	BcryptCost          int    // Password hash work factor
	AccessTokenTTLSecs  int    // Access token lifetime in seconds
	RefreshTokenTTLDays int    // Refresh token lifetime in days
	RefreshTokenBytes   int    // Random bytes per refresh secret
	CookieSecure        bool   // Set Secure on auth cookies (production)
}

// Load parses configuration from environment variables.
// Optional fields have defaults suitable for local development; Validate
// reports what is missing for a deployable configuration.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", "localhost:9090"),
		DatabasePath:      getEnv("DATABASE_PATH", "/data/enroll.db"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		CookieSecure:      getEnv("COOKIE_SECURE", "true") == "true",
	}

	var err error
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", DefaultBcryptCost); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTLSecs, err = getEnvInt("ACCESS_TOKEN_TTL_SECONDS", DefaultAccessTokenTTLSecs); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTLDays, err = getEnvInt("REFRESH_TOKEN_TTL_DAYS", DefaultRefreshTokenTTLDays); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenBytes, err = getEnvInt("REFRESH_TOKEN_BYTES", DefaultRefreshTokenBytes); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
// A missing SESSION_SECRET is fatal: access tokens cannot be signed without it.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLen)
	}
	if c.BcryptCost < 10 || c.BcryptCost > 20 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 20, got %d", c.BcryptCost)
	}
	if c.AccessTokenTTLSecs <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_SECONDS must be positive, got %d", c.AccessTokenTTLSecs)
	}
	if c.RefreshTokenTTLDays <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be positive, got %d", c.RefreshTokenTTLDays)
	}
	if c.RefreshTokenBytes < MinRefreshTokenBytes {
		return fmt.Errorf("REFRESH_TOKEN_BYTES must be at least %d, got %d", MinRefreshTokenBytes, c.RefreshTokenBytes)
	}
	return nil
}

// getEnv returns an environment variable or a fallback value.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable, falling back when unset.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
