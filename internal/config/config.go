package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultIMGWAPIURL = "https://danepubliczne.imgw.pl/api/data/synop"

// AppConfig holds all process settings, populated from environment
// variables with sensible defaults.
type AppConfig struct {
	Port         string
	DatabasePath string

	// Upstream IMGW endpoint and per-call timeout.
	IMGWAPIURL string
	APITimeout time.Duration

	// FetchInterval controls how often the background scheduler pulls the feed.
	FetchInterval time.Duration

	// MaxHistoryDays caps the lookback of historical queries.
	MaxHistoryDays int

	// CurrentLimit caps the number of stations in the current view.
	CurrentLimit int

	LogLevel slog.Level
}

// Load reads configuration from the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "weather_data.db")
	cfg.IMGWAPIURL = getenvDefault("IMGW_API_URL", defaultIMGWAPIURL)

	timeoutStr := getenvDefault("API_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout

	intervalStr := getenvDefault("FETCH_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.MaxHistoryDays = getenvInt("MAX_HISTORY_DAYS", 30)
	cfg.CurrentLimit = getenvInt("CURRENT_LIMIT", 100)

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
