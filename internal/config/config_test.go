package config

import (
	"testing"
	"time"
)

func TestParseIntOrDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"5", 10, 5},
		{"1000", 0, 1000},
		{"-3", 10, -3},
		{"abc", 10, 10}, // invalid returns default
		{"", 10, 10},    // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseIntOrDefault(tt.input, tt.def)
			if result != tt.expected {
				t.Errorf("parseIntOrDefault(%q, %d) = %d; want %d", tt.input, tt.def, result, tt.expected)
			}
		})
	}
}

func TestParseFloatOrDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      float64
		expected float64
	}{
		{"0.7", 1.0, 0.7},
		{"1", 0.5, 1.0},
		{"nope", 0.5, 0.5},
		{"", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseFloatOrDefault(tt.input, tt.def)
			if result != tt.expected {
				t.Errorf("parseFloatOrDefault(%q, %g) = %g; want %g", tt.input, tt.def, result, tt.expected)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      time.Duration
		expected time.Duration
	}{
		{"30s", time.Minute, 30 * time.Second},
		{"2m", time.Minute, 2 * time.Minute},
		{"invalid", time.Minute, time.Minute},
		{"", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseDurationOrDefault(tt.input, tt.def)
			if result != tt.expected {
				t.Errorf("parseDurationOrDefault(%q, %v) = %v; want %v", tt.input, tt.def, result, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HistoryWindow != 4 {
		t.Errorf("HistoryWindow = %d; want 4", cfg.HistoryWindow)
	}
	if cfg.SummaryCap != 1000 {
		t.Errorf("SummaryCap = %d; want 1000", cfg.SummaryCap)
	}
	if cfg.MessageTruncate != 150 {
		t.Errorf("MessageTruncate = %d; want 150", cfg.MessageTruncate)
	}
	if cfg.MaxOutputTokens != 1000 {
		t.Errorf("MaxOutputTokens = %d; want 1000", cfg.MaxOutputTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %g; want 0.7", cfg.Temperature)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PARLEY_HISTORY_WINDOW", "8")
	t.Setenv("PARLEY_REQUEST_TIMEOUT", "45s")
	t.Setenv("PARLEY_DEFAULT_PROVIDER", "gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HistoryWindow != 8 {
		t.Errorf("HistoryWindow = %d; want 8", cfg.HistoryWindow)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v; want 45s", cfg.RequestTimeout)
	}
	if cfg.DefaultProvider != "gemini" {
		t.Errorf("DefaultProvider = %q; want gemini", cfg.DefaultProvider)
	}
}

func TestLoadZeroTemperature(t *testing.T) {
	t.Setenv("PARLEY_TEMPERATURE", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %g; want 0", cfg.Temperature)
	}
}
