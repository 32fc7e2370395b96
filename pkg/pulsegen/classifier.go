// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import "strings"

// Outcome is the classified result of one command/response exchange.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeAlready
	OutcomeError
	OutcomeUnknown
	OutcomeTimeout
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeAlready:
		return "ALREADY"
	case OutcomeError:
		return "ERROR"
	case OutcomeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Success reports whether the outcome counts as a success for statistics.
// ALREADY confirms the device state rather than contradicting it.
func (o Outcome) Success() bool {
	return o == OutcomeOK || o == OutcomeAlready
}

// SystemState tracks the device's expected running/stopped state across a
// session. It starts Unknown and is moved only by classified control replies.
type SystemState int

const (
	StateUnknown SystemState = iota
	StateRunning
	StateStopped
)

// String returns a short label for the state.
func (s SystemState) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Classifier maps raw response text to an Outcome and maintains the session's
// SystemState. The firmware's replies are informal free text, so the rules
// are ordered case-insensitive substring lists: control commands classify
// strictly (silence on SON/SOFF is itself a protocol violation), parameter
// commands classify permissively (unrecognized but non-empty text is assumed
// to be an acknowledgement phrased inconsistently).
type Classifier struct {
	phrases Phrases
	state   SystemState
}

// NewClassifier creates a classifier with the given phrase lists and an
// Unknown initial state.
func NewClassifier(phrases Phrases) *Classifier {
	return &Classifier{phrases: phrases, state: StateUnknown}
}

// State returns the currently expected device state.
func (c *Classifier) State() SystemState {
	return c.state
}

// Reset returns the state to Unknown without touching the phrase lists.
func (c *Classifier) Reset() {
	c.state = StateUnknown
}

// Classify turns a response to the given command into an Outcome and updates
// the expected SystemState. First matching rule wins.
func (c *Classifier) Classify(cmd Command, response string) Outcome {
	switch cmd.Kind {
	case KindControl:
		return c.classifyControl(cmd, response)
	default:
		// Parameter and malformed commands share the permissive rule;
		// malformed commands never move the state.
		return classifyPermissive(c.phrases, response)
	}
}

func (c *Classifier) classifyControl(cmd Command, response string) Outcome {
	if strings.TrimSpace(response) == "" {
		// Silence on a control command gates the rest of the session's
		// validity, so it is flagged rather than tolerated.
		return OutcomeTimeout
	}

	if containsAny(response, c.phrases.ControlSuccess) {
		c.applyControl(cmd)
		return OutcomeOK
	}
	if containsAny(response, c.phrases.ControlAlready) {
		c.applyControl(cmd)
		return OutcomeAlready
	}
	return OutcomeError
}

// applyControl moves the expected state unconditionally on success or
// already: both replies agree on where the device ended up.
func (c *Classifier) applyControl(cmd Command) {
	if cmd.IsStart() {
		c.state = StateRunning
	} else if cmd.IsStop() {
		c.state = StateStopped
	}
}

func classifyPermissive(phrases Phrases, response string) Outcome {
	if containsAny(response, phrases.ParamSuccess) {
		return OutcomeOK
	}
	if containsAny(response, phrases.ParamFailure) {
		return OutcomeError
	}
	if strings.TrimSpace(response) == "" {
		return OutcomeError
	}
	// Unrecognized but non-empty text is assumed benign.
	return OutcomeOK
}

// containsAny reports whether the response contains any of the phrases,
// case-insensitively.
func containsAny(response string, phrases []string) bool {
	upper := strings.ToUpper(response)
	for _, p := range phrases {
		if strings.Contains(upper, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
