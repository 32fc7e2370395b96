// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"strings"
	"time"
)

// ScriptedCase is a named, fixed command script with expected-substring
// assertions. Commands and Expect are parallel: Expect[i] lists acceptable
// substrings for the reply to Commands[i], matched case-insensitively, any
// one sufficing. Cases are immutable once defined.
type ScriptedCase struct {
	Name     string
	Commands []string
	Expect   [][]string
}

// StepResult records one command of a case against its expectation.
type StepResult struct {
	Command  string
	Response string
	Expected []string
	Matched  bool
}

// CaseResult is the evaluation of one scripted case. Passed is true iff every
// step matched; a failing step never short-circuits the remaining steps, so
// the full trace is always available.
type CaseResult struct {
	Name   string
	Passed bool
	Steps  []StepResult
}

// DefaultCases exercises the control-command contract and the
// state-independence of parameter commands.
var DefaultCases = []ScriptedCase{
	{
		Name:     "double stop reports already",
		Commands: []string{"SOFF", "SOFF"},
		Expect: [][]string{
			{"STOPPED", "OK"},
			{"ALREADY"},
		},
	},
	{
		Name:     "double start reports already",
		Commands: []string{"SON", "SON"},
		Expect: [][]string{
			{"STARTED", "OK"},
			{"ALREADY"},
		},
	},
	{
		Name:     "parameters accepted while stopped",
		Commands: []string{"SOFF", "SF;5", "SW;3", "SA;10", "SON"},
		Expect: [][]string{
			{"STOPPED", "OK", "ALREADY"},
			{"OK"},
			{"OK"},
			{"OK"},
			{"STARTED", "OK", "ALREADY"},
		},
	},
	{
		Name:     "parameter limits rejected",
		Commands: []string{"SF;1", "SF;0", "SW;1", "SW;0", "SA;1", "SA;0"},
		Expect: [][]string{
			{"OK"},
			{"ERROR"},
			{"OK"},
			{"ERROR"},
			{"OK"},
			{"ERROR"},
		},
	},
}

// SequenceOptions configures a scripted run.
type SequenceOptions struct {
	// Delay is the pause between a command and its response read.
	Delay time.Duration

	// ReadTimeout bounds how long each response is awaited.
	ReadTimeout time.Duration

	// Observer, if set, sees every exchange as it happens.
	Observer Observer
}

// SequenceRunner executes scripted cases in order. Assertion failures are
// recorded per case and never abort the session; only a transport fault does.
// Every run ends by sending one SON beyond the scripted cases, leaving the
// physical system running regardless of what the script did to it.
type SequenceRunner struct {
	opts SequenceOptions
}

// NewSequenceRunner creates a runner with the given options.
func NewSequenceRunner(opts SequenceOptions) *SequenceRunner {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &SequenceRunner{opts: opts}
}

// Run executes the cases and returns per-case results plus the run's Stats.
// On a transport fault the results so far and the error are both returned;
// the trailing SON is still attempted once before unwinding.
func (r *SequenceRunner) Run(ch *FramedChannel, cls *Classifier, cases []ScriptedCase) ([]CaseResult, *Stats, error) {
	stats := NewStats()
	results := make([]CaseResult, 0, len(cases))

	for ci, sc := range cases {
		result := CaseResult{Name: sc.Name, Passed: true}

		for i, text := range sc.Commands {
			resp, err := r.exchange(ch, cls, stats, ci, i, text)
			if err != nil {
				r.parkRunning(ch, cls, stats)
				return results, stats, err
			}

			var expected []string
			if i < len(sc.Expect) {
				expected = sc.Expect[i]
			}

			matched := matchesAny(resp, expected)
			if !matched {
				result.Passed = false
			}
			result.Steps = append(result.Steps, StepResult{
				Command:  text,
				Response: resp,
				Expected: expected,
				Matched:  matched,
			})
		}

		results = append(results, result)
	}

	if err := r.parkRunning(ch, cls, stats); err != nil {
		return results, stats, err
	}

	return results, stats, nil
}

// exchange sends one literal command and reads its reply.
func (r *SequenceRunner) exchange(ch *FramedChannel, cls *Classifier, stats *Stats, iteration, step int, text string) (string, error) {
	cmd := ParseCommand(text)

	if err := ch.WriteCommand(cmd.Text); err != nil {
		return "", err
	}
	if r.opts.Delay > 0 {
		time.Sleep(r.opts.Delay)
	}

	resp, err := ch.ReadResponse(r.opts.ReadTimeout)
	if err != nil {
		return resp, err
	}

	outcome := cls.Classify(cmd, resp)
	stats.Record(cmd, resp, outcome, cmd.Kind == KindMalformed)

	if r.opts.Observer != nil {
		r.opts.Observer(iteration, step, stats.Exchanges[len(stats.Exchanges)-1], cls.State())
	}

	return resp, nil
}

// parkRunning sends the trailing SON. One shot, no retry: if the device does
// not answer, looping would not make the bench any safer.
func (r *SequenceRunner) parkRunning(ch *FramedChannel, cls *Classifier, stats *Stats) error {
	_, err := r.exchange(ch, cls, stats, -1, -1, CmdStart)
	return err
}

// matchesAny reports whether the response contains any one of the expected
// substrings, case-insensitively. An empty expectation list matches anything.
func matchesAny(response string, expected []string) bool {
	if len(expected) == 0 {
		return true
	}
	upper := strings.ToUpper(response)
	for _, e := range expected {
		if strings.Contains(upper, strings.ToUpper(e)) {
			return true
		}
	}
	return false
}
