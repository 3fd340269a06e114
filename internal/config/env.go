package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
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

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// OCRConfig controls page text extraction.
type OCRConfig struct {
	// Language passed to tesseract, "+"-separated for multiple.
	Language string
	// DPI used when rasterizing pages for OCR.
	DPI int
	// MinTextChars is the embedded-text length below which a page is
	// considered scanned and sent through OCR.
	MinTextChars int
	// Force skips embedded text entirely and OCRs every page.
	Force bool
}

// SplitConfig controls grouping and output naming.
type SplitConfig struct {
	SimilarityThreshold float64
	Template            string
	OutputDir           string
}

// QueueConfig defines queue connectivity and names for service mode.
type QueueConfig struct {
	RedisURL     string
	Stream       string
	Group        string
	PollInterval time.Duration
	Concurrency  int
}

// ServerConfig holds HTTP server settings for service mode.
type ServerConfig struct {
	Port string
}

// Config is the top-level configuration.
type Config struct {
	ConfigDir string
	Logging   LoggingConfig
	Axiom     AxiomConfig
	OCR       OCRConfig
	Split     SplitConfig
	Queue     QueueConfig
	Server    ServerConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.ConfigDir = getEnv("SCORESPLIT_CONFIG_DIR", defaultConfigDir())

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/scoresplit.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_scoresplit",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.OCR = OCRConfig{
		Language:     getEnv("OCR_LANGUAGE", "eng"),
		DPI:          parseInt(getEnv("OCR_DPI", "300"), 300),
		MinTextChars: parseInt(getEnv("OCR_MIN_TEXT_CHARS", "20"), 20),
		Force:        parseBool(getEnv("OCR_FORCE", "0")),
	}

	cfg.Split = SplitConfig{
		SimilarityThreshold: parseFloat(getEnv("SPLIT_SIMILARITY_THRESHOLD", "0.8"), 0.8),
		Template:            getEnv("SPLIT_NAME_TEMPLATE", "{title}_{part}"),
		OutputDir:           getEnv("SPLIT_OUTPUT_DIR", "output"),
	}

	cfg.Queue = QueueConfig{
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		Stream:       getEnv("QUEUE_STREAM", "jobs:split:pdfs"),
		Group:        getEnv("QUEUE_GROUP", "workers:split"),
		PollInterval: parseDuration(getEnv("QUEUE_POLL_INTERVAL", "100ms"), 100*time.Millisecond),
		Concurrency:  parseInt(getEnv("WORKER_CONCURRENCY", "2"), 2),
	}

	cfg.Server = ServerConfig{
		Port: getEnv("PORT", "8080"),
	}

	return cfg
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scoresplit"
	}
	return filepath.Join(home, ".scoresplit")
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

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
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
