// Package config resolves clipdeck settings from the environment and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL         = "http://localhost:8800/api"
	defaultCategory       = "shorts"
	defaultLogLevel       = "warn"
	defaultRequestTimeout = 15 * time.Second
)

// Config holds the resolved settings.
type Config struct {
	APIURL         string
	ConfigDir      string
	Category       string
	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads envFile (or ./.env when envFile is empty and present) into the
// process environment without overriding variables already set, then resolves
// the settings.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}
	return FromEnv()
}

// FromEnv resolves the settings from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		APIURL:         getEnv("CLIPDECK_API_URL", defaultAPIURL),
		ConfigDir:      getEnv("CLIPDECK_CONFIG_DIR", defaultConfigDir()),
		Category:       getEnv("CLIPDECK_CATEGORY", defaultCategory),
		LogLevel:       getEnv("CLIPDECK_LOG_LEVEL", defaultLogLevel),
		RequestTimeout: defaultRequestTimeout,
	}

	if v := getEnv("CLIPDECK_REQUEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid CLIPDECK_REQUEST_TIMEOUT %q: must be a positive duration like 10s", v)
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}

func defaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "clipdeck")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
