// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestGeneratorWellFormedWithinRanges(t *testing.T) {
	cfg := DefaultConfig()
	gen := NewGenerator(cfg, ModeMixed, 0, 42)

	for i := 0; i < 2000; i++ {
		round := gen.Next(StateUnknown)
		if round.Malformed {
			t.Fatalf("malformed round with malformedPct=0")
		}

		cmd := round.Command
		switch cmd.Kind {
		case KindControl:
			if cmd.Text != CmdStart && cmd.Text != CmdStop {
				t.Fatalf("unexpected control command %q", cmd.Text)
			}
		case KindParameter:
			tok, arg, ok := strings.Cut(cmd.Text, FieldSeparator)
			if !ok {
				t.Fatalf("parameter command without separator: %q", cmd.Text)
			}
			n, err := strconv.Atoi(arg)
			if err != nil {
				t.Fatalf("non-numeric argument in %q", cmd.Text)
			}
			var r Range
			switch tok {
			case CmdSetFrequency:
				r = cfg.Frequency
			case CmdSetWidth:
				r = cfg.Width
			case CmdSetAmplitude:
				r = cfg.Amplitude
			default:
				t.Fatalf("unexpected parameter token %q", tok)
			}
			if n < r.Min || n > r.Max {
				t.Fatalf("%q outside range %d-%d", cmd.Text, r.Min, r.Max)
			}
		default:
			t.Fatalf("unexpected kind %d for %q", cmd.Kind, cmd.Text)
		}
	}
}

func TestGeneratorRespectsConfiguredRanges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = WideFrequencyRange
	cfg.Width = WideWidthRange
	cfg.Weights = Weights{Frequency: 1, Width: 1}
	gen := NewGenerator(cfg, ModeMixed, 0, 7)

	seenAbove59 := false
	for i := 0; i < 5000; i++ {
		cmd := gen.Next(StateUnknown).Command
		_, arg, _ := strings.Cut(cmd.Text, FieldSeparator)
		n, _ := strconv.Atoi(arg)
		if n > 100 || n < 1 {
			t.Fatalf("%q outside configured 1-100", cmd.Text)
		}
		if n > 59 {
			seenAbove59 = true
		}
	}
	if !seenAbove59 {
		t.Error("wide range never produced a value above 59")
	}
}

func TestGeneratorRapidToggle(t *testing.T) {
	gen := NewGenerator(DefaultConfig(), ModeRapidToggle, 0, 1)

	// From Unknown the toggle stops first to establish a known state.
	if cmd := gen.Next(StateUnknown).Command; !cmd.IsStop() {
		t.Fatalf("first toggle from Unknown = %q, want SOFF", cmd.Text)
	}

	// Toggling N times from a known state: even N returns to it, odd N
	// lands on the opposite.
	for _, n := range []int{1, 2, 5, 8} {
		state := StateStopped
		for i := 0; i < n; i++ {
			cmd := gen.Next(state).Command
			switch {
			case cmd.IsStart():
				if state == StateRunning {
					t.Fatalf("SON while expected state already RUNNING")
				}
				state = StateRunning
			case cmd.IsStop():
				if state == StateStopped {
					t.Fatalf("SOFF while expected state already STOPPED")
				}
				state = StateStopped
			default:
				t.Fatalf("rapid toggle produced %q", cmd.Text)
			}
		}

		want := StateStopped
		if n%2 == 1 {
			want = StateRunning
		}
		if state != want {
			t.Errorf("after %d toggles from STOPPED: state = %s, want %s", n, state, want)
		}
	}
}

func TestGeneratorMalformedRate(t *testing.T) {
	tests := []struct {
		pct float64
	}{
		{0.0},
		{0.12},
		{0.5},
		{1.0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("pct=%.2f", tt.pct), func(t *testing.T) {
			gen := NewGenerator(DefaultConfig(), ModeMixed, tt.pct, 99)

			const iters = 20000
			malformed := 0
			for i := 0; i < iters; i++ {
				if gen.Next(StateUnknown).Malformed {
					malformed++
				}
			}

			got := float64(malformed) / iters
			if math.Abs(got-tt.pct) > 0.02 {
				t.Errorf("empirical malformed fraction %.3f, want %.2f ±0.02", got, tt.pct)
			}
		})
	}
}

func TestGeneratorMalformedDrawsFromCatalog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Malformed = []string{"AAA", "BBB"}
	gen := NewGenerator(cfg, ModeMixed, 1.0, 3)

	for i := 0; i < 100; i++ {
		round := gen.Next(StateUnknown)
		if !round.Malformed {
			t.Fatalf("expected every round malformed at pct=1.0")
		}
		if round.Command.Kind != KindMalformed {
			t.Fatalf("malformed round has kind %d", round.Command.Kind)
		}
		if round.Command.Text != "AAA" && round.Command.Text != "BBB" {
			t.Fatalf("malformed text %q not from catalog", round.Command.Text)
		}
	}
}

func TestGeneratorFocusMode(t *testing.T) {
	gen := NewGenerator(DefaultConfig(), ModeFocusStartStop, 0, 11)

	const iters = 5000
	control := 0
	for i := 0; i < iters; i++ {
		if gen.Next(StateUnknown).Command.Kind == KindControl {
			control++
		}
	}

	// focusWeights give control commands 10 of 13 slots.
	frac := float64(control) / iters
	if frac < 0.65 {
		t.Errorf("focus mode produced only %.2f control commands", frac)
	}
}

func TestGeneratorDeterministicFromSeed(t *testing.T) {
	a := NewGenerator(DefaultConfig(), ModeMixed, 0.2, 1234)
	b := NewGenerator(DefaultConfig(), ModeMixed, 0.2, 1234)

	for i := 0; i < 500; i++ {
		ra, rb := a.Next(StateUnknown), b.Next(StateUnknown)
		if ra != rb {
			t.Fatalf("iteration %d diverged: %+v != %+v", i, ra, rb)
		}
	}
}
