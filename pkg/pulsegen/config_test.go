// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Frequency != DefaultFrequencyRange {
		t.Errorf("frequency = %+v, want %+v", cfg.Frequency, DefaultFrequencyRange)
	}
	if len(cfg.Malformed) == 0 {
		t.Error("default malformed catalog is empty")
	}
	if len(cfg.Phrases.ControlSuccess) == 0 {
		t.Error("default control success phrases are empty")
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variant.yaml")
	content := `
frequency:
  min: 1
  max: 100
malformed:
  - "QQQ"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Frequency.Max != 100 {
		t.Errorf("frequency max = %d, want 100", cfg.Frequency.Max)
	}
	// Untouched keys keep their defaults
	if cfg.Width != DefaultWidthRange {
		t.Errorf("width = %+v, want default %+v", cfg.Width, DefaultWidthRange)
	}
	if cfg.Weights.Sum() != 5 {
		t.Errorf("weights sum = %d, want default 5", cfg.Weights.Sum())
	}
	if len(cfg.Malformed) != 1 || cfg.Malformed[0] != "QQQ" {
		t.Errorf("malformed = %v, want [QQQ]", cfg.Malformed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("frequency: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default", func(c *Config) {}, true},
		{"inverted range", func(c *Config) { c.Frequency = Range{Min: 10, Max: 5} }, false},
		{"zero min", func(c *Config) { c.Width = Range{Min: 0, Max: 10} }, false},
		{"negative weight", func(c *Config) { c.Weights.Start = -1 }, false},
		{"all weights zero", func(c *Config) { c.Weights = Weights{} }, false},
		{"single weight", func(c *Config) { c.Weights = Weights{Stop: 3} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestRangeSpan(t *testing.T) {
	if got := (Range{Min: 1, Max: 59}).Span(); got != 59 {
		t.Errorf("Span = %d, want 59", got)
	}
	if got := (Range{Min: 5, Max: 5}).Span(); got != 1 {
		t.Errorf("Span = %d, want 1", got)
	}
}
