// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive integer parameter range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Span returns the number of values in the range.
func (r Range) Span() int {
	return r.Max - r.Min + 1
}

// Valid reports whether the range is non-empty with positive bounds.
func (r Range) Valid() bool {
	return r.Min >= 1 && r.Max >= r.Min
}

// Weights holds the integer selection weights for Mixed and FocusStartStop
// generation. Selection probability is weight / sum of weights; a zero weight
// removes the command type from the pool.
type Weights struct {
	Frequency int `yaml:"frequency"`
	Width     int `yaml:"width"`
	Amplitude int `yaml:"amplitude"`
	Start     int `yaml:"start"`
	Stop      int `yaml:"stop"`
}

// Sum returns the total weight.
func (w Weights) Sum() int {
	return w.Frequency + w.Width + w.Amplitude + w.Start + w.Stop
}

// Phrases holds the classifier's ordered substring lists. All matching is
// case-insensitive.
type Phrases struct {
	ControlSuccess []string `yaml:"control_success"`
	ControlAlready []string `yaml:"control_already"`
	ParamSuccess   []string `yaml:"param_success"`
	ParamFailure   []string `yaml:"param_failure"`
}

// Config carries everything two firmware variants disagree on: parameter
// ranges, reply phrasing, and the malformed catalog. The engine reads bounds
// and phrases from here only, never from constants.
type Config struct {
	Frequency Range    `yaml:"frequency"`
	Width     Range    `yaml:"width"`
	Amplitude Range    `yaml:"amplitude"`
	Weights   Weights  `yaml:"weights"`
	Malformed []string `yaml:"malformed"`
	Phrases   Phrases  `yaml:"phrases"`
}

// DefaultConfig returns the UART firmware variant defaults with a uniform
// command pool.
func DefaultConfig() Config {
	return Config{
		Frequency: DefaultFrequencyRange,
		Width:     DefaultWidthRange,
		Amplitude: DefaultAmplitudeRange,
		Weights: Weights{
			Frequency: 1,
			Width:     1,
			Amplitude: 1,
			Start:     1,
			Stop:      1,
		},
		Malformed: DefaultMalformedCatalog,
		Phrases: Phrases{
			ControlSuccess: DefaultControlSuccessPhrases,
			ControlAlready: DefaultControlAlreadyPhrases,
			ParamSuccess:   DefaultParamSuccessPhrases,
			ParamFailure:   DefaultParamFailurePhrases,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. Absent keys keep
// their default values, so a file may override just one range or phrase list.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %v", path, err)
	}

	return cfg, nil
}

// Validate checks ranges and weights.
func (c Config) Validate() error {
	if !c.Frequency.Valid() {
		return fmt.Errorf("frequency range %d-%d is invalid", c.Frequency.Min, c.Frequency.Max)
	}
	if !c.Width.Valid() {
		return fmt.Errorf("width range %d-%d is invalid", c.Width.Min, c.Width.Max)
	}
	if !c.Amplitude.Valid() {
		return fmt.Errorf("amplitude range %d-%d is invalid", c.Amplitude.Min, c.Amplitude.Max)
	}
	if c.Weights.Frequency < 0 || c.Weights.Width < 0 || c.Weights.Amplitude < 0 ||
		c.Weights.Start < 0 || c.Weights.Stop < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if c.Weights.Sum() == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}
