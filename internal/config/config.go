package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Server   ServerConfig   `yaml:"server"`
	Stage    StageConfig    `yaml:"stage"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Extract  ExtractConfig  `yaml:"extract"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Worker   WorkerConfig   `yaml:"worker"`
	History  HistoryConfig  `yaml:"history"`
}

// TelegramConfig holds chat transport configuration. The attachment
// ceiling is a transport-imposed limit and may change upstream, so it is
// configurable rather than a constant.
type TelegramConfig struct {
	Token             string        `yaml:"token" envconfig:"TELEGRAM_BOT_TOKEN"`
	MaxAttachmentSize int64         `yaml:"max_attachment_size" envconfig:"TELEGRAM_MAX_ATTACHMENT_SIZE"`
	UpdateTimeout     int           `yaml:"update_timeout" envconfig:"TELEGRAM_UPDATE_TIMEOUT"`
	SendTimeout       time.Duration `yaml:"send_timeout" envconfig:"TELEGRAM_SEND_TIMEOUT"`
}

// ServerConfig holds the operational HTTP endpoint configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

// StageConfig holds scratch storage configuration.
type StageConfig struct {
	Path        string        `yaml:"path" envconfig:"STAGE_PATH"`
	SweepMaxAge time.Duration `yaml:"sweep_max_age" envconfig:"STAGE_SWEEP_MAX_AGE"`
}

// FetchConfig holds media transfer configuration.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" envconfig:"FETCH_TIMEOUT"`
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"FETCH_READ_TIMEOUT"`
	RetryDelay  time.Duration `yaml:"retry_delay" envconfig:"FETCH_RETRY_DELAY"`
	UserAgent   string        `yaml:"user_agent" envconfig:"FETCH_USER_AGENT"`
}

// ExtractConfig holds platform extraction configuration. Base URLs are
// overridable so extractors can be pointed at test servers.
type ExtractConfig struct {
	Timeout          time.Duration `yaml:"timeout" envconfig:"EXTRACT_TIMEOUT"`
	RetryDelay       time.Duration `yaml:"retry_delay" envconfig:"EXTRACT_RETRY_DELAY"`
	UserAgent        string        `yaml:"user_agent" envconfig:"EXTRACT_USER_AGENT"`
	InstagramBaseURL string        `yaml:"instagram_base_url" envconfig:"EXTRACT_INSTAGRAM_BASE_URL"`
	YouTubeBaseURL   string        `yaml:"youtube_base_url" envconfig:"EXTRACT_YOUTUBE_BASE_URL"`
	TikTokBaseURL    string        `yaml:"tiktok_base_url" envconfig:"EXTRACT_TIKTOK_BASE_URL"`
	FacebookBaseURL  string        `yaml:"facebook_base_url" envconfig:"EXTRACT_FACEBOOK_BASE_URL"`
}

// GeminiConfig holds caption service configuration. The free-tier quota is
// upstream-imposed (on the order of 15 requests/minute); the adapter
// surfaces quota errors to the user instead of retrying.
type GeminiConfig struct {
	APIKey         string        `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
	BaseURL        string        `yaml:"base_url" envconfig:"GEMINI_BASE_URL"`
	Model          string        `yaml:"model" envconfig:"GEMINI_MODEL"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"GEMINI_TIMEOUT"`
	MaxTopicLength int           `yaml:"max_topic_length" envconfig:"GEMINI_MAX_TOPIC_LENGTH"`
	HashtagCount   int           `yaml:"hashtag_count" envconfig:"GEMINI_HASHTAG_COUNT"`
}

// WorkerConfig holds request worker configuration. The count bounds
// simultaneous outbound connections and scratch disk usage.
type WorkerConfig struct {
	Count int `yaml:"count" envconfig:"WORKER_COUNT"`
}

// HistoryConfig holds the outcome journal configuration.
type HistoryConfig struct {
	Path string `yaml:"path" envconfig:"HISTORY_PATH"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// defaultConfig returns the built-in defaults. They are applied before the
// file is read so that precedence stays defaults < file < environment;
// envconfig default tags would re-apply on top of file values.
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			MaxAttachmentSize: 52428800, // 50 MiB
			UpdateTimeout:     30,
			SendTimeout:       2 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         9848,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: time.Minute,
		},
		Stage: StageConfig{
			Path:        "/data/scratch",
			SweepMaxAge: time.Hour,
		},
		Fetch: FetchConfig{
			Timeout:     5 * time.Minute,
			ReadTimeout: 30 * time.Second,
			RetryDelay:  2 * time.Second,
			UserAgent:   defaultUserAgent,
		},
		Extract: ExtractConfig{
			Timeout:          30 * time.Second,
			RetryDelay:       2 * time.Second,
			UserAgent:        defaultUserAgent,
			InstagramBaseURL: "https://www.instagram.com",
			YouTubeBaseURL:   "https://www.youtube.com",
			TikTokBaseURL:    "https://www.tiktok.com",
			FacebookBaseURL:  "https://www.facebook.com",
		},
		Gemini: GeminiConfig{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			Model:          "gemini-2.5-flash",
			Timeout:        30 * time.Second,
			MaxTopicLength: 200,
			HashtagCount:   15,
		},
		Worker: WorkerConfig{
			Count: 2,
		},
		History: HistoryConfig{
			Path: "/data/sharegrab.db",
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.MaxAttachmentSize <= 0 {
		return fmt.Errorf("TELEGRAM_MAX_ATTACHMENT_SIZE must be positive")
	}
	if c.Stage.Path == "" {
		return fmt.Errorf("STAGE_PATH is required")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
