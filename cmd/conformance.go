// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpulse/pulseprobe/pkg/pulsegen"
)

var (
	seqDelay       time.Duration
	seqReadTimeout time.Duration
	seqResetDelay  time.Duration
	seqVerbose     bool
)

var conformanceCmd = &cobra.Command{
	Use:   "conformance",
	Short: "Run scripted command sequences and assert expected replies",
	Long: `Execute fixed command scripts against the firmware and check each reply for
an expected substring (case-insensitive).

The built-in cases probe the control-command contract (a second SOFF must
answer ALREADY, a second SON likewise), the state-independence of parameter
commands, and rejection of out-of-range parameter values. A failed expectation
marks the case failed but never aborts it - the remaining commands still run
so the full trace is visible.

The session always ends with one SON beyond the scripted cases, leaving the
device running for whatever test follows.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Connection or transport error`,
	RunE: runConformance,
}

func init() {
	rootCmd.AddCommand(conformanceCmd)
	conformanceCmd.Flags().DurationVar(&seqDelay, "delay", pulsegen.DefaultCommandDelay, "Delay between a command and its response read")
	conformanceCmd.Flags().DurationVar(&seqReadTimeout, "timeout", pulsegen.DefaultReadTimeout, "Per-response read timeout")
	conformanceCmd.Flags().DurationVar(&seqResetDelay, "reset-delay", time.Second, "Settle time after opening the connection")
	conformanceCmd.Flags().BoolVar(&seqVerbose, "verbose", false, "Show every command and response")
}

func runConformance(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Pulseprobe - Conformance Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Cases: %d\n\n", len(pulsegen.DefaultCases))

	ch := pulsegen.NewFramedChannel(conn)
	cls := pulsegen.NewClassifier(cfg.Phrases)

	if seqResetDelay > 0 {
		time.Sleep(seqResetDelay)
	}
	if _, err := ch.ReadResponse(seqReadTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Transport error: %v\n", err)
		os.Exit(2)
	}

	var observer pulsegen.Observer
	if seqVerbose {
		observer = func(_, _ int, ex pulsegen.Exchange, state pulsegen.SystemState) {
			fmt.Printf("-> %s\n", ex.Command)
			fmt.Printf("  <- %q [%s, state %s]\n", ex.Response, ex.Outcome, state)
		}
	}

	runner := pulsegen.NewSequenceRunner(pulsegen.SequenceOptions{
		Delay:       seqDelay,
		ReadTimeout: seqReadTimeout,
		Observer:    observer,
	})

	results, stats, runErr := runner.Run(ch, cls, pulsegen.DefaultCases)

	failed := 0
	for _, res := range results {
		if res.Passed {
			fmt.Printf("PASS  %s\n", res.Name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", res.Name)
		for _, step := range res.Steps {
			mark := "ok"
			if !step.Matched {
				mark = "MISMATCH"
			}
			fmt.Printf("      -> %-12s <- %-30q expected %v  %s\n",
				step.Command, step.Response, step.Expected, mark)
		}
	}

	fmt.Println()
	fmt.Print(stats.String())
	fmt.Printf("Final expected state: %s\n", cls.State())

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Transport error: %v\n", runErr)
		os.Exit(2)
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d cases failed\n", failed, len(results))
		os.Exit(1)
	}

	fmt.Printf("\nAll %d cases passed\n", len(results))
	return nil
}
