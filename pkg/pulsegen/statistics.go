// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"time"
)

// Exchange is one command/response pair, kept in order for later inspection.
type Exchange struct {
	Command   string
	Response  string
	Outcome   Outcome
	Malformed bool
	Timestamp time.Time
}

// Stats tracks a single run's counters and exchange log. One instance is
// created per run, mutated only by the run's loop, and returned for the
// final report; it is never shared across runs.
type Stats struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	Sent      uint64
	OK        uint64
	Errors    uint64
	Timeouts  uint64
	Malformed uint64

	// Control command breakdown
	StartOK  uint64
	StartErr uint64
	StopOK   uint64
	StopErr  uint64

	// Ordered command/response log
	Exchanges []Exchange

	// Rates (calculated)
	CommandRate float64 // commands/sec
	ErrorRate   float64 // errors/sec
}

// NewStats creates a statistics tracker for one run.
func NewStats() *Stats {
	now := time.Now()
	return &Stats{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Record updates counters for one classified exchange and appends it to the
// log.
func (s *Stats) Record(cmd Command, response string, outcome Outcome, malformed bool) {
	s.Sent++

	if malformed {
		s.Malformed++
	}

	if outcome.Success() {
		s.OK++
	} else {
		s.Errors++
		if outcome == OutcomeTimeout {
			s.Timeouts++
		}
	}

	if cmd.IsStart() {
		if outcome.Success() {
			s.StartOK++
		} else {
			s.StartErr++
		}
	} else if cmd.IsStop() {
		if outcome.Success() {
			s.StopOK++
		} else {
			s.StopErr++
		}
	}

	s.Exchanges = append(s.Exchanges, Exchange{
		Command:   cmd.Text,
		Response:  response,
		Outcome:   outcome,
		Malformed: malformed,
		Timestamp: time.Now(),
	})

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates command and error rates.
func (s *Stats) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.CommandRate = float64(s.Sent) / elapsed
		s.ErrorRate = float64(s.Errors) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Stats) String() string {
	s.CalculateRates()

	var okPercent, errorPercent float64
	if s.Sent > 0 {
		okPercent = float64(s.OK) * 100.0 / float64(s.Sent)
		errorPercent = float64(s.Errors) * 100.0 / float64(s.Sent)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Commands Sent:   %8d\n", s.Sent)
	result += fmt.Sprintf("OK:              %8d (%.1f%%)\n", s.OK, okPercent)
	result += fmt.Sprintf("Errors:          %8d (%.1f%%)\n", s.Errors, errorPercent)

	if s.Timeouts > 0 {
		result += fmt.Sprintf("  Timeouts:         %5d\n", s.Timeouts)
	}
	if s.Malformed > 0 {
		result += fmt.Sprintf("Malformed Sent:  %8d\n", s.Malformed)
	}
	if s.StartOK+s.StartErr > 0 {
		result += fmt.Sprintf("SON:             %8d ok, %d err\n", s.StartOK, s.StartErr)
	}
	if s.StopOK+s.StopErr > 0 {
		result += fmt.Sprintf("SOFF:            %8d ok, %d err\n", s.StopOK, s.StopErr)
	}

	result += fmt.Sprintf("Command Rate:    %8.1f cmds/sec\n", s.CommandRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all counters and clears the exchange log.
func (s *Stats) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.Sent = 0
	s.OK = 0
	s.Errors = 0
	s.Timeouts = 0
	s.Malformed = 0
	s.StartOK = 0
	s.StartErr = 0
	s.StopOK = 0
	s.StopErr = 0
	s.Exchanges = nil
	s.CommandRate = 0
	s.ErrorRate = 0
}
