// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind distinguishes how a command is classified and whether it may
// move the device's running/stopped state.
type CommandKind int

const (
	// KindParameter sets a pulse parameter (SF, SW, SA). State-independent.
	KindParameter CommandKind = iota
	// KindControl starts or stops pulse output (SON, SOFF).
	KindControl
	// KindMalformed is a deliberate protocol violation from the catalog.
	KindMalformed
)

// Command is an immutable wire command plus its kind. The kind drives
// classification; the text is sent verbatim (terminator added by the channel).
type Command struct {
	Text string
	Kind CommandKind
}

// Command builder functions produce well-formed commands. Range checking is
// the generator's job; these simply format.

// SetFrequency builds an SF;<hz> command.
func SetFrequency(hz int) Command {
	return Command{Text: fmt.Sprintf("%s%s%d", CmdSetFrequency, FieldSeparator, hz), Kind: KindParameter}
}

// SetWidth builds an SW;<width> command. Width is in firmware units of 100 µs.
func SetWidth(width int) Command {
	return Command{Text: fmt.Sprintf("%s%s%d", CmdSetWidth, FieldSeparator, width), Kind: KindParameter}
}

// SetAmplitude builds an SA;<amp> command.
func SetAmplitude(amp int) Command {
	return Command{Text: fmt.Sprintf("%s%s%d", CmdSetAmplitude, FieldSeparator, amp), Kind: KindParameter}
}

// Start builds the SON control command.
func Start() Command {
	return Command{Text: CmdStart, Kind: KindControl}
}

// Stop builds the SOFF control command.
func Stop() Command {
	return Command{Text: CmdStop, Kind: KindControl}
}

// Malformed wraps a catalog entry. The text is sent exactly as given,
// including the empty string.
func Malformed(text string) Command {
	return Command{Text: text, Kind: KindMalformed}
}

// IsStart reports whether the command is the exact SON control command.
func (c Command) IsStart() bool {
	return c.Kind == KindControl && c.Text == CmdStart
}

// IsStop reports whether the command is the exact SOFF control command.
func (c Command) IsStop() bool {
	return c.Kind == KindControl && c.Text == CmdStop
}

// ParseCommand classifies a literal command string the way the firmware's
// parser would: exact SON/SOFF are control, a known parameter token with a
// numeric argument is a parameter set, anything else is malformed. Scripted
// cases use this so their literal commands classify like generated ones.
func ParseCommand(text string) Command {
	switch text {
	case CmdStart, CmdStop:
		return Command{Text: text, Kind: KindControl}
	}

	tok, arg, ok := strings.Cut(text, FieldSeparator)
	if ok {
		switch tok {
		case CmdSetFrequency, CmdSetWidth, CmdSetAmplitude:
			if _, err := strconv.Atoi(arg); err == nil {
				return Command{Text: text, Kind: KindParameter}
			}
		}
	}

	return Command{Text: text, Kind: KindMalformed}
}
