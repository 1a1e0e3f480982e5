// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the server settings. Values come from the environment; a
// .env file is loaded by main before this runs.
type Config struct {
	Addr       string
	DBPath     string
	JWTSecret  string
	LogLevel   string
	TokenTTL   time.Duration
	RateLimit  int
	RateWindow time.Duration
}

// Load reads the configuration from environment variables, applying defaults
// for everything except the JWT secret.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:       getEnv("CAMPKEEPER_ADDR", ":8080"),
		DBPath:     getEnv("CAMPKEEPER_DB_PATH", "campkeeper.db"),
		JWTSecret:  os.Getenv("CAMPKEEPER_JWT_SECRET"),
		LogLevel:   getEnv("CAMPKEEPER_LOG_LEVEL", "info"),
		TokenTTL:   24 * time.Hour,
		RateLimit:  300,
		RateWindow: time.Minute,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("CAMPKEEPER_JWT_SECRET is required")
	}

	if v := os.Getenv("CAMPKEEPER_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CAMPKEEPER_TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}

	if v := os.Getenv("CAMPKEEPER_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CAMPKEEPER_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = limit
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
