// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import "math/rand"

// Mode selects the generation strategy.
type Mode int

const (
	// ModeMixed draws from the full weighted command pool.
	ModeMixed Mode = iota
	// ModeRapidToggle alternates SOFF/SON deterministically from the last
	// expected SystemState, ignoring randomness.
	ModeRapidToggle
	// ModeFocusStartStop uses a pool heavily biased toward SON/SOFF.
	ModeFocusStartStop
)

// String returns a short label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeRapidToggle:
		return "rapid-toggle"
	case ModeFocusStartStop:
		return "focus-start-stop"
	default:
		return "mixed"
	}
}

// Round is one iteration's command decision. The whole burst of a round sends
// the same command, so a malformed round repeats one catalog string rather
// than re-rolling per burst element.
type Round struct {
	Command   Command
	Malformed bool
}

// Generator produces the next command for a round. It owns its own random
// source so runs are reproducible from a seed.
type Generator struct {
	cfg          Config
	mode         Mode
	malformedPct float64
	rng          *rand.Rand
}

// focusWeights biases the pool toward the control commands while keeping a
// trickle of parameter changes in flight.
var focusWeights = Weights{
	Frequency: 1,
	Width:     1,
	Amplitude: 1,
	Start:     5,
	Stop:      5,
}

// NewGenerator creates a generator. malformedPct is the per-round probability
// of substituting a catalog entry, in [0,1].
func NewGenerator(cfg Config, mode Mode, malformedPct float64, seed int64) *Generator {
	return &Generator{
		cfg:          cfg,
		mode:         mode,
		malformedPct: malformedPct,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Next produces the round's command. state is the session's expected device
// state, used only by ModeRapidToggle.
func (g *Generator) Next(state SystemState) Round {
	// One malformed decision per round, shared by the whole burst.
	if g.malformedPct > 0 && len(g.cfg.Malformed) > 0 && g.rng.Float64() < g.malformedPct {
		entry := g.cfg.Malformed[g.rng.Intn(len(g.cfg.Malformed))]
		return Round{Command: Malformed(entry), Malformed: true}
	}

	switch g.mode {
	case ModeRapidToggle:
		return Round{Command: g.toggle(state)}
	case ModeFocusStartStop:
		return Round{Command: g.weighted(focusWeights)}
	default:
		return Round{Command: g.weighted(g.cfg.Weights)}
	}
}

// toggle alternates against the expected state. From Unknown it stops first,
// establishing a known state before the alternation begins.
func (g *Generator) toggle(state SystemState) Command {
	if state == StateRunning {
		return Stop()
	}
	if state == StateStopped {
		return Start()
	}
	return Stop()
}

// weighted selects a command type with probability weight/sum, then draws the
// parameter value uniformly from its configured inclusive range.
func (g *Generator) weighted(w Weights) Command {
	sum := w.Sum()
	if sum <= 0 {
		return SetFrequency(g.intInRange(g.cfg.Frequency))
	}

	n := g.rng.Intn(sum)
	switch {
	case n < w.Frequency:
		return SetFrequency(g.intInRange(g.cfg.Frequency))
	case n < w.Frequency+w.Width:
		return SetWidth(g.intInRange(g.cfg.Width))
	case n < w.Frequency+w.Width+w.Amplitude:
		return SetAmplitude(g.intInRange(g.cfg.Amplitude))
	case n < w.Frequency+w.Width+w.Amplitude+w.Start:
		return Start()
	default:
		return Stop()
	}
}

func (g *Generator) intInRange(r Range) int {
	return r.Min + g.rng.Intn(r.Span())
}
