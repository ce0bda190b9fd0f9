// Package common provides shared utilities for Opening Bell
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Opening Bell
type Config struct {
	Environment string        `toml:"environment"`
	Data        DataConfig    `toml:"data"`
	Digest      DigestConfig  `toml:"digest"`
	Quota       QuotaConfig   `toml:"quota"`
	Clients     ClientsConfig `toml:"clients"`
	Email       EmailConfig   `toml:"email"`
	Logging     LoggingConfig `toml:"logging"`
}

// DataConfig holds paths to the user and watchlist files
type DataConfig struct {
	UsersPath     string `toml:"users_path"`
	WatchlistPath string `toml:"watchlist_path"`
}

// DigestConfig holds digest generation settings
type DigestConfig struct {
	BatchSize          int `toml:"batch_size"`
	NewsWindowDays     int `toml:"news_window_days"`
	EarningsWindowDays int `toml:"earnings_window_days"`
}

// NewsWindow returns the news lookback window as a duration
func (c *DigestConfig) NewsWindow() time.Duration {
	return time.Duration(c.NewsWindowDays) * 24 * time.Hour
}

// EarningsWindow returns the earnings recency window as a duration
func (c *DigestConfig) EarningsWindow() time.Duration {
	return time.Duration(c.EarningsWindowDays) * 24 * time.Hour
}

// QuotaConfig holds generative-model quota limits
type QuotaConfig struct {
	RequestsPerMinute int `toml:"requests_per_minute"`
	RequestsPerDay    int `toml:"requests_per_day"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
	Yahoo  YahooConfig  `toml:"yahoo"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EmailConfig holds SMTP delivery configuration
type EmailConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	From      string `toml:"from"`
	Recipient string `toml:"recipient"` // fallback recipient for users without an email
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Data: DataConfig{
			UsersPath:     "data/users.json",
			WatchlistPath: "data/watchlist.json",
		},
		Digest: DigestConfig{
			BatchSize:          10,
			NewsWindowDays:     7,
			EarningsWindowDays: 1,
		},
		Quota: QuotaConfig{
			RequestsPerMinute: 1000,
			RequestsPerDay:    999999,
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Email: EmailConfig{
			Host: "smtp.gmail.com",
			Port: 465,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("OPENBELL_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("OPENBELL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if batch := os.Getenv("OPENBELL_BATCH_SIZE"); batch != "" {
		if b, err := strconv.Atoi(batch); err == nil && b > 0 {
			config.Digest.BatchSize = b
		}
	}

	// Gemini key: GEMINI_API_KEY preferred, GOOGLE_API_KEY accepted
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			config.Clients.Gemini.APIKey = key
			break
		}
	}

	// Email settings keep the original .env variable names
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		config.Email.Username = v
		config.Email.From = v
	}
	if v := os.Getenv("SENDER_PASSWORD"); v != "" {
		config.Email.Password = v
	}
	if v := os.Getenv("RECIPIENT_EMAIL"); v != "" {
		config.Email.Recipient = v
	}
}

// ValidateRequired returns the names of required settings that are missing.
// Missing credentials are the only fatal configuration errors; everything
// else has a default.
func (c *Config) ValidateRequired() []string {
	var missing []string

	if c.Clients.Gemini.APIKey == "" {
		missing = append(missing, "clients.gemini.api_key")
	}
	if c.Email.Username == "" {
		missing = append(missing, "email.username")
	}
	if c.Email.Password == "" {
		missing = append(missing, "email.password")
	}

	return missing
}
