// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import "time"

// Wire format constants for the pulse generator's line protocol.
const (
	// Prompt is the single character the firmware prints once a response
	// frame is complete.
	Prompt = '>'

	// Terminator ends every command on the wire.
	Terminator = "\r"

	// FieldSeparator splits a command token from its argument (SF;25).
	FieldSeparator = ";"
)

// Command tokens
const (
	CmdSetFrequency = "SF"
	CmdSetWidth     = "SW"
	CmdSetAmplitude = "SA"
	CmdStart        = "SON"
	CmdStop         = "SOFF"
)

// Timing defaults
const (
	// DefaultPollInterval is the sleep between empty transport reads while
	// waiting for the prompt.
	DefaultPollInterval = 2 * time.Millisecond

	// DefaultReadTimeout bounds how long a single response is awaited.
	DefaultReadTimeout = 1 * time.Second

	// DefaultCommandDelay is the pause after the last command of a burst.
	DefaultCommandDelay = 200 * time.Millisecond
)

// Parameter range defaults match the UART firmware variant. The BLE variant
// accepts frequency and width up to 100; both sets are reachable through
// Config, the engine never hard-codes a bound.
var (
	DefaultFrequencyRange = Range{Min: 1, Max: 59}
	DefaultWidthRange     = Range{Min: 1, Max: 10}
	DefaultAmplitudeRange = Range{Min: 1, Max: 30}

	WideFrequencyRange = Range{Min: 1, Max: 100}
	WideWidthRange     = Range{Min: 1, Max: 100}
)

// DefaultMalformedCatalog contains the strings used to probe the firmware's
// command parser: truncated tokens, non-numeric and out-of-range arguments,
// and case/spacing variants of the control commands.
var DefaultMalformedCatalog = []string{
	"XXX",
	"SF;;",
	"SW;abc",
	"SA;-1",
	"SF;999999",
	"",
	"SW",
	"SA;",
	"son",
	"SON;1",
	"SONN",
}

// Default classifier phrase lists. The firmware's replies are informal text,
// so matching is case-insensitive substring containment, first match wins.
var (
	DefaultControlSuccessPhrases = []string{"OK", "STARTED", "STOPPED"}
	DefaultControlAlreadyPhrases = []string{"ALREADY"}
	DefaultParamSuccessPhrases   = []string{"OK", "Frequency set", "Pulse width set", "Amplitude set"}
	DefaultParamFailurePhrases   = []string{"ERROR", "unknown"}
)
