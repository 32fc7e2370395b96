// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import "testing"

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		wantText string
		wantKind CommandKind
	}{
		{"set frequency", SetFrequency(25), "SF;25", KindParameter},
		{"set width", SetWidth(3), "SW;3", KindParameter},
		{"set amplitude", SetAmplitude(10), "SA;10", KindParameter},
		{"start", Start(), "SON", KindControl},
		{"stop", Stop(), "SOFF", KindControl},
		{"malformed", Malformed("SF;;"), "SF;;", KindMalformed},
		{"malformed empty", Malformed(""), "", KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", tt.cmd.Text, tt.wantText)
			}
			if tt.cmd.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d", tt.cmd.Kind, tt.wantKind)
			}
		})
	}
}

func TestCommandStartStopPredicates(t *testing.T) {
	if !Start().IsStart() || Start().IsStop() {
		t.Error("Start() predicates wrong")
	}
	if !Stop().IsStop() || Stop().IsStart() {
		t.Error("Stop() predicates wrong")
	}
	// A malformed lowercase variant is not a control command.
	if Malformed("son").IsStart() {
		t.Error("malformed 'son' treated as SON")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want CommandKind
	}{
		{"SON", KindControl},
		{"SOFF", KindControl},
		{"SF;25", KindParameter},
		{"SW;3", KindParameter},
		{"SA;10", KindParameter},
		{"SF;150", KindParameter}, // well-formed, range is the firmware's call
		{"SA;-1", KindParameter},  // negative but numeric
		{"son", KindMalformed},
		{"SONN", KindMalformed},
		{"SON;1", KindMalformed},
		{"SF;;", KindMalformed},
		{"SW;abc", KindMalformed},
		{"SW", KindMalformed},
		{"SA;", KindMalformed},
		{"", KindMalformed},
		{"XXX", KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseCommand(tt.text)
			if got.Kind != tt.want {
				t.Errorf("ParseCommand(%q).Kind = %d, want %d", tt.text, got.Kind, tt.want)
			}
			if got.Text != tt.text {
				t.Errorf("ParseCommand(%q).Text = %q, text must be preserved", tt.text, got.Text)
			}
		})
	}
}
