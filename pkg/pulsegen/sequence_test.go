// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"testing"
)

func TestSequenceDoubleStopReportsAlready(t *testing.T) {
	ch, _ := simChannel()
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	cases := []ScriptedCase{{
		Name:     "double stop",
		Commands: []string{"SOFF", "SOFF"},
		Expect:   [][]string{{"STOPPED", "OK"}, {"ALREADY"}},
	}}

	results, stats, err := runner.Run(ch, cls, cases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("case failed: %+v", results)
	}
	if stats.StopOK != 2 {
		t.Errorf("StopOK = %d, want 2 (ALREADY counts as success)", stats.StopOK)
	}
}

func TestSequenceParameterCommandsStateIndependent(t *testing.T) {
	ch, _ := simChannel()
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	cases := []ScriptedCase{{
		Name:     "parameters while stopped",
		Commands: []string{"SOFF", "SF;5", "SW;3", "SA;10", "SON"},
		Expect: [][]string{
			{"STOPPED", "OK"},
			{"OK"},
			{"OK"},
			{"OK"},
			{"STARTED", "OK"},
		},
	}}

	results, stats, err := runner.Run(ch, cls, cases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("case failed: %+v", results[0].Steps)
	}

	// The three parameter commands classify OK while the device is stopped.
	for _, ex := range stats.Exchanges[1:4] {
		if !ex.Outcome.Success() {
			t.Errorf("%s -> %s while stopped, want success", ex.Command, ex.Outcome)
		}
	}
}

func TestSequenceFailureDoesNotShortCircuit(t *testing.T) {
	dev := &fakeDevice{respond: func(cmd string) string {
		return "ERROR: unknown command\r\n> "
	}}
	ch := NewFramedChannel(dev)
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	cases := []ScriptedCase{{
		Name:     "everything rejected",
		Commands: []string{"SOFF", "SF;5", "SON"},
		Expect:   [][]string{{"STOPPED"}, {"OK"}, {"STARTED"}},
	}}

	results, _, err := runner.Run(ch, cls, cases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	res := results[0]
	if res.Passed {
		t.Fatal("case passed against a rejecting firmware")
	}
	if len(res.Steps) != 3 {
		t.Fatalf("steps = %d, want 3 (no short-circuit)", len(res.Steps))
	}
	for i, step := range res.Steps {
		if step.Matched {
			t.Errorf("step %d matched unexpectedly", i)
		}
	}

	// The trailing SON still went out: 3 scripted + 1 park.
	if len(dev.writes) != 4 {
		t.Errorf("writes = %v, want 3 scripted commands plus SON", dev.writes)
	}
}

func TestSequenceAlwaysEndsWithStart(t *testing.T) {
	ch, dev := simChannel()
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	cases := []ScriptedCase{{
		Name:     "leaves device stopped",
		Commands: []string{"SOFF"},
		Expect:   [][]string{{"STOPPED"}},
	}}

	results, _, err := runner.Run(ch, cls, cases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("case failed: %+v", results[0].Steps)
	}

	last := dev.writes[len(dev.writes)-1]
	if last != CmdStart {
		t.Errorf("last wire command = %q, want %q", last, CmdStart)
	}
	if cls.State() != StateRunning {
		t.Errorf("final state = %s, want RUNNING", cls.State())
	}
}

func TestSequenceTransportFaultStillParks(t *testing.T) {
	calls := 0
	dev := &fakeDevice{}
	dev.respond = func(cmd string) string {
		calls++
		return "STOPPED\r\n> "
	}
	ch := NewFramedChannel(dev)
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	// Fail reads after the first exchange
	cases := []ScriptedCase{{
		Name:     "fault midway",
		Commands: []string{"SOFF", "SOFF"},
		Expect:   [][]string{{"STOPPED"}, {"ALREADY"}},
	}}

	faultAfter := 1
	origRespond := dev.respond
	dev.respond = func(cmd string) string {
		if calls >= faultAfter {
			dev.readErr = fmt.Errorf("device unplugged")
		}
		return origRespond(cmd)
	}

	results, _, err := runner.Run(ch, cls, cases)
	if err == nil {
		t.Fatal("expected transport fault")
	}
	if len(results) != 0 {
		t.Errorf("results = %d completed cases, want 0", len(results))
	}

	// The park attempt still wrote SON even though its read will fail.
	last := dev.writes[len(dev.writes)-1]
	if last != CmdStart {
		t.Errorf("last wire command = %q, want %q", last, CmdStart)
	}
}

func TestSequenceDefaultCasesAgainstSim(t *testing.T) {
	ch, _ := simChannel()
	cls := NewClassifier(DefaultConfig().Phrases)
	runner := NewSequenceRunner(SequenceOptions{})

	results, _, err := runner.Run(ch, cls, DefaultCases)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(DefaultCases) {
		t.Fatalf("results = %d, want %d", len(results), len(DefaultCases))
	}
	for _, res := range results {
		if !res.Passed {
			t.Errorf("case %q failed: %+v", res.Name, res.Steps)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		response string
		expected []string
		want     bool
	}{
		{"STOPPED\r\n> ", []string{"stopped"}, true},
		{"Already running\r\n> ", []string{"ALREADY"}, true},
		{"OK\r\n> ", []string{"STARTED", "OK"}, true},
		{"ERROR\r\n> ", []string{"OK"}, false},
		{"", []string{"OK"}, false},
		{"anything", nil, true},
	}

	for _, tt := range tests {
		if got := matchesAny(tt.response, tt.expected); got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.response, tt.expected, got, tt.want)
		}
	}
}
