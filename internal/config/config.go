// Package config handles Parley configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds Parley configuration
type Config struct {
	// Database path (SQLite file)
	DatabasePath string

	// HTTP server settings
	ListenAddr string

	// Provider settings
	OpenAIAPIKey string
	GeminiAPIKey string
	GroqAPIKey   string

	OpenAIModel string
	GeminiModel string
	GroqModel   string

	// DefaultProvider handles text-only turns; image turns always go to a
	// vision-capable adapter regardless of this setting.
	DefaultProvider string

	// Generation settings
	Temperature     float64
	MaxOutputTokens int

	// Operation timeout for one provider call
	RequestTimeout time.Duration

	// Context window settings
	HistoryWindow   int // recent messages included per turn
	MessageTruncate int // chars of each history message included
	SummaryCap      int // max chars of the rolling summary

	// Image settings
	MaxUploadBytes int64
	FetchTimeout   time.Duration

	// Object storage directory for uploaded images
	StorageDir string

	// Verbose mode for debugging
	Verbose bool
}

// Load loads configuration from environment and defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:    defaultDatabasePath(),
		ListenAddr:      ":8080",
		OpenAIModel:     "gpt-4o",
		GeminiModel:     "gemini-2.0-flash",
		GroqModel:       "llama-3.3-70b-versatile",
		DefaultProvider: "openai",
		Temperature:     0.7,
		MaxOutputTokens: 1000,
		RequestTimeout:  30 * time.Second,
		HistoryWindow:   4,
		MessageTruncate: 150,
		SummaryCap:      1000,
		MaxUploadBytes:  10 << 20, // 10 MiB
		FetchTimeout:    15 * time.Second,
		StorageDir:      defaultStorageDir(),
	}

	// Environment overrides
	if v := os.Getenv("PARLEY_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("PARLEY_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.GroqAPIKey = v
	}
	if v := os.Getenv("PARLEY_OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("PARLEY_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("PARLEY_GROQ_MODEL"); v != "" {
		cfg.GroqModel = v
	}
	if v := os.Getenv("PARLEY_DEFAULT_PROVIDER"); v != "" {
		cfg.DefaultProvider = v
	}
	if v := os.Getenv("PARLEY_TEMPERATURE"); v != "" {
		cfg.Temperature = parseFloatOrDefault(v, 0.7)
	}
	if v := os.Getenv("PARLEY_MAX_OUTPUT_TOKENS"); v != "" {
		cfg.MaxOutputTokens = parseIntOrDefault(v, 1000)
	}
	if v := os.Getenv("PARLEY_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = parseDurationOrDefault(v, 30*time.Second)
	}
	if v := os.Getenv("PARLEY_HISTORY_WINDOW"); v != "" {
		cfg.HistoryWindow = parseIntOrDefault(v, 4)
	}
	if v := os.Getenv("PARLEY_MESSAGE_TRUNCATE"); v != "" {
		cfg.MessageTruncate = parseIntOrDefault(v, 150)
	}
	if v := os.Getenv("PARLEY_SUMMARY_CAP"); v != "" {
		cfg.SummaryCap = parseIntOrDefault(v, 1000)
	}
	if v := os.Getenv("PARLEY_MAX_UPLOAD_BYTES"); v != "" {
		cfg.MaxUploadBytes = int64(parseIntOrDefault(v, 10<<20))
	}
	if v := os.Getenv("PARLEY_FETCH_TIMEOUT"); v != "" {
		cfg.FetchTimeout = parseDurationOrDefault(v, 15*time.Second)
	}
	if v := os.Getenv("PARLEY_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("PARLEY_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1"
	}

	return cfg, nil
}

// defaultDatabasePath returns SQLite in the working directory
func defaultDatabasePath() string {
	dir, err := os.Getwd()
	if err != nil {
		return filepath.Join(".parley", "parley.db")
	}
	return filepath.Join(dir, ".parley", "parley.db")
}

func defaultStorageDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return filepath.Join(".parley", "images")
	}
	return filepath.Join(dir, ".parley", "images")
}

func parseIntOrDefault(s string, def int) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return def
	}
	return i
}

func parseFloatOrDefault(s string, def float64) float64 {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return def
	}
	return f
}

func parseDurationOrDefault(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
