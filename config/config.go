// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Yamine-coder/gestion-rh-sub000/reconcile"
)

// Config holds every runtime setting of the engine.
type Config struct {
	// Port the HTTP API listens on.
	Port int
	// BackendURL is the base URL of the authoritative scheduling server.
	BackendURL string
	// DatabasePath is the sqlite file holding review-decision overrides.
	DatabasePath string
	// OverrideTTL bounds how long a local review decision shadows the
	// server's status.
	OverrideTTL time.Duration
	// RefreshInterval drives the background variance refresh.
	RefreshInterval time.Duration
	// LogLevel is a zerolog level string (debug, info, warn, error).
	LogLevel string
}

// Load reads the environment, after merging in a .env file when one
// exists. Missing optional settings fall back to defaults; a missing
// backend URL is an error since the engine is useless without it.
func Load() (*Config, error) {
	// Absent file is fine; environment wins over file values.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		BackendURL:      getEnv("BACKEND_URL", ""),
		DatabasePath:    getEnv("DATABASE_PATH", "overrides.db"),
		OverrideTTL:     getEnvAsDuration("OVERRIDE_TTL", reconcile.DefaultTTL),
		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 30*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT %d out of range", cfg.Port)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
