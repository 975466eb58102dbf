// Package config provides configuration for the supervisor dashboard.
package config

import (
	"os"
	"time"
)

// Config holds the dashboard configuration.
type Config struct {
	// Bot operational API
	BotURL string
	APIKey string

	// Supervised process
	BotBinary  string
	BotConfig  string
	ScratchDir string

	// Refresh intervals
	StatusRefresh time.Duration

	// Log buffer size (lines)
	LogLines int
}

// Load returns configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		BotURL:        getEnv("SHAREGRAB_URL", "http://127.0.0.1:9848"),
		APIKey:        getEnv("SHAREGRAB_API_KEY", os.Getenv("API_KEY")),
		BotBinary:     getEnv("SHAREGRAB_BOT_BINARY", "sharegrab-bot"),
		BotConfig:     getEnv("SHAREGRAB_BOT_CONFIG", ""),
		ScratchDir:    getEnv("SHAREGRAB_SCRATCH_DIR", "/data/scratch"),
		StatusRefresh: getDuration("SHAREGRAB_STATUS_REFRESH", 5*time.Second),
		LogLines:      1000,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
