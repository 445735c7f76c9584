package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// CheckConfig defines report defaults.
type CheckConfig struct {
	ExpectedPages int    // verify: expected page count, <= 0 skips the check
	PreviewPages  int    // preview: number of leading pages shown
	Suppress      string // verify: "form" | "none"
}

// SourceConfig defines how remote inputs are fetched.
type SourceConfig struct {
	HTTPTimeout  time.Duration
	Password     string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	TempMaxAge   time.Duration
}

// MetricsConfig defines where run metrics are written.
type MetricsConfig struct {
	Textfile string
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Check   CheckConfig
	Source  SourceConfig
	Metrics MetricsConfig
}

// FromEnv loads .env (if present) and then the environment with sensible defaults.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{}

	// Logging defaults
	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/pdfcheck.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	// Axiom defaults
	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfcheck",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Check = CheckConfig{
		ExpectedPages: parseInt(getEnv("CHECK_EXPECTED_PAGES", "4"), 4),
		PreviewPages:  parseInt(getEnv("CHECK_PREVIEW_PAGES", "3"), 3),
		Suppress:      strings.ToLower(getEnv("CHECK_SUPPRESS", "form")),
	}
	if cfg.Check.PreviewPages <= 0 {
		cfg.Check.PreviewPages = 3
	}

	cfg.Source = SourceConfig{
		HTTPTimeout:  parseDuration(getEnv("SOURCE_HTTP_TIMEOUT", "60s"), 60*time.Second),
		Password:     getEnv("SOURCE_PASSWORD", ""),
		AWSRegion:    getEnv("AWS_REGION", ""),
		AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		TempMaxAge:   parseDuration(getEnv("TEMP_MAX_AGE", "24h"), 24*time.Hour),
	}

	cfg.Metrics = MetricsConfig{
		Textfile: getEnv("METRICS_TEXTFILE", ""),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
