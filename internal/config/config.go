// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and validates them per run mode.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidationMode selects which settings are required.
type ValidationMode int

const (
	// ServerMode requires everything needed to serve webhooks.
	ServerMode ValidationMode = iota
	// ToolMode is used by nvnctl; only the page token is required.
	ToolMode
)

// Config holds all application configuration
type Config struct {
	// Messenger
	PageAccessToken string
	VerifyToken     string
	AppSecret       string // optional; enables X-Hub-Signature-256 checks
	GraphAPIURL     string
	GraphAPIVersion string

	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string

	// Auth
	JWTSecret string

	// REST API per-client rate limit
	APIRateBurst  float64
	APIRateRefill float64 // tokens per second

	// Data
	DataDir               string
	CatalogReloadInterval time.Duration

	Bot     BotConfig
	Scraper ScraperConfig
	R2      R2Config

	// Observability
	SentryToken         string
	SentryHost          string
	SentryEnvironment   string
	SentryRelease       string
	SentrySampleRate    float64
	BetterStackToken    string
	BetterStackEndpoint string
	MetricsAuthEnabled  bool
	MetricsUsername     string
	MetricsPassword     string
}

// BotConfig holds dispatcher-facing settings.
type BotConfig struct {
	Timezone         string
	GreetingImageURL string
	PageURL          string
	GroupURL         string
	MessengerTimeout time.Duration
}

// ScraperConfig holds crawler endpoints and retry policy. Empty endpoints
// use the crawler defaults.
type ScraperConfig struct {
	Timeout    time.Duration
	MaxRetries int
	LotteryURL string
	YouTubeURL string
	DiseaseURL string
	SearchURL  string
}

// R2Config configures the snapshot upload target.
type R2Config struct {
	Enabled          bool
	AccountID        string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	BucketName       string
	SnapshotPrefix   string
	SnapshotInterval time.Duration
	SnapshotRetain   int
}

// Load reads configuration for ServerMode.
func Load() (*Config, error) {
	return LoadForMode(ServerMode)
}

// LoadForMode reads configuration from environment variables and validates
// it for the given mode. A .env file is loaded first when present.
func LoadForMode(mode ValidationMode) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PageAccessToken: getEnv(EnvPageAccessToken, ""),
		VerifyToken:     getEnv(EnvVerifyToken, ""),
		AppSecret:       getEnv(EnvAppSecret, ""),
		GraphAPIURL:     strings.TrimRight(getEnv(EnvGraphAPIURL, "https://graph.facebook.com"), "/"),
		GraphAPIVersion: getEnv(EnvGraphAPIVersion, "v15.0"),

		Port:            getEnv(EnvPort, "3000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, hostname()),

		JWTSecret: getEnv(EnvJWTSecret, "nvn-font"),

		APIRateBurst:  getFloatEnv(EnvAPIRateBurst, 30),
		APIRateRefill: getFloatEnv(EnvAPIRateRefill, 1),

		DataDir:               getEnv(EnvDataDir, getDefaultDataDir()),
		CatalogReloadInterval: getDurationEnv(EnvCatalogReloadInterval, CatalogReload),

		Bot: BotConfig{
			Timezone:         getEnv(EnvTimezone, "Asia/Ho_Chi_Minh"),
			GreetingImageURL: getEnv(EnvGreetingImageURL, "https://i.pinimg.com/originals/e0/bf/18/e0bf18ff384586f1b0c1fe7105e859b1.gif"),
			PageURL:          getEnv(EnvPageURL, "https://www.facebook.com/NVNFONT/"),
			GroupURL:         getEnv(EnvGroupURL, "https://www.facebook.com/groups/NVNFONT/"),
			MessengerTimeout: getDurationEnv(EnvMessengerTimeout, MessengerRequest),
		},

		Scraper: ScraperConfig{
			Timeout:    getDurationEnv(EnvScraperTimeout, ScraperRequest),
			MaxRetries: getIntEnv(EnvScraperMaxRetries, 3),
			LotteryURL: getEnv(EnvLotteryURL, ""),
			YouTubeURL: getEnv(EnvYouTubeURL, ""),
			DiseaseURL: getEnv(EnvDiseaseURL, ""),
			SearchURL:  getEnv(EnvSearchURL, ""),
		},

		R2: R2Config{
			Enabled:          getBoolEnv(EnvR2Enabled, false),
			AccountID:        getEnv(EnvR2AccountID, ""),
			Endpoint:         getEnv(EnvR2Endpoint, ""),
			AccessKeyID:      getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey:  getEnv(EnvR2SecretAccessKey, ""),
			BucketName:       getEnv(EnvR2BucketName, ""),
			SnapshotPrefix:   getEnv(EnvR2SnapshotPrefix, "snapshots/"),
			SnapshotInterval: getDurationEnv(EnvR2SnapshotInterval, SnapshotUpload),
			SnapshotRetain:   getIntEnv(EnvR2SnapshotRetain, 7),
		},

		SentryToken:         getEnv(EnvSentryToken, ""),
		SentryHost:          getEnv(EnvSentryHost, ""),
		SentryEnvironment:   getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:       getEnv(EnvSentryRelease, ""),
		SentrySampleRate:    getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
		MetricsAuthEnabled:  getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:     getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:     getEnv(EnvMetricsPassword, ""),
	}

	if cfg.R2.Endpoint == "" && cfg.R2.AccountID != "" {
		cfg.R2.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID)
	}

	if err := cfg.ValidateForMode(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for ServerMode.
func (c *Config) Validate() error {
	return c.ValidateForMode(ServerMode)
}

// ValidateForMode checks required values for the given mode.
func (c *Config) ValidateForMode(mode ValidationMode) error {
	var errs []error

	if c.PageAccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPageAccessToken))
	}
	if c.GraphAPIVersion == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvGraphAPIVersion))
	}

	if mode == ServerMode {
		if c.VerifyToken == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvVerifyToken))
		}
		if c.Port == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvPort))
		}
		if c.JWTSecret == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvJWTSecret))
		}
		if c.MetricsAuthEnabled && c.MetricsPassword == "" {
			errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
		}
		if c.SentryToken != "" && c.SentryHost == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
		}
		if c.CatalogReloadInterval <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvCatalogReloadInterval, c.CatalogReloadInterval))
		}
		if c.APIRateBurst < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvAPIRateBurst, c.APIRateBurst))
		}
		if c.APIRateRefill <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvAPIRateRefill, c.APIRateRefill))
		}
	}

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.Bot.MessengerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvMessengerTimeout, c.Bot.MessengerTimeout))
	}
	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvTimezone, err))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvScraperTimeout, c.Scraper.Timeout))
	}
	if c.Scraper.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvScraperMaxRetries, c.Scraper.MaxRetries))
	}
	if c.R2.Enabled {
		if err := c.R2.validate(); err != nil {
			errs = append(errs, fmt.Errorf("r2 config: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (r R2Config) validate() error {
	var errs []error
	if r.Endpoint == "" {
		errs = append(errs, fmt.Errorf("%s or %s is required", EnvR2Endpoint, EnvR2AccountID))
	}
	if r.AccessKeyID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2AccessKeyID))
	}
	if r.SecretAccessKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2SecretAccessKey))
	}
	if r.BucketName == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvR2BucketName))
	}
	if r.SnapshotInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvR2SnapshotInterval, r.SnapshotInterval))
	}
	if r.SnapshotRetain < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvR2SnapshotRetain, r.SnapshotRetain))
	}
	return errors.Join(errs...)
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "nvnfont.db")
}

// Location returns the configured bot timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "nvnfont-bot"
	}
	return name
}
