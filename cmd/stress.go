// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openpulse/pulseprobe/pkg/pulsegen"
)

var (
	stressIters        int
	stressDelay        time.Duration
	stressBurst        int
	stressMalformedPct float64
	stressFlood        bool
	stressIntense      bool
	stressSlow         bool
	stressRapidToggle  bool
	stressFocus        bool
	stressVerbose      bool
	stressUseTUI       bool
	stressSeed         int64
	stressReadTimeout  time.Duration
	stressResetDelay   time.Duration
	stressMaxFreq      int
	stressMaxWidth     int
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Send randomized commands and track firmware responses",
	Long: `Drive the pulse generator with randomized SF/SW/SA/SON/SOFF commands and
classify every response.

Each iteration picks one command (well-formed within the configured ranges, or
a malformed catalog entry with probability --malformed-pct) and sends it
--burst times back-to-back. Intermediate burst commands are not delayed; the
last waits --delay before the response is read. Classified errors never stop
the run - only a transport fault does.

Generation modes:
  default            weighted random over all five command types
  --rapid-toggle     deterministic SOFF/SON alternation
  --focus-start-stop pool biased toward the control commands

Presets:
  --intense  iters>=5000, delay<=10ms, burst>=8, malformed-pct>=0.12, flood
  --slow     multiply delay by 5

A run always finishes with one SON so the bench is left running, including
after Ctrl+C.

Exit codes:
  0 - Run completed
  2 - Connection or transport error`,
	RunE: runStress,
}

func init() {
	rootCmd.AddCommand(stressCmd)
	stressCmd.Flags().IntVar(&stressIters, "iters", 200, "Number of command iterations")
	stressCmd.Flags().DurationVar(&stressDelay, "delay", pulsegen.DefaultCommandDelay, "Delay after the last command of a burst")
	stressCmd.Flags().IntVar(&stressBurst, "burst", 1, "Send N commands back-to-back per iteration")
	stressCmd.Flags().Float64Var(&stressMalformedPct, "malformed-pct", 0.0, "Fraction (0..1) of iterations sending malformed commands")
	stressCmd.Flags().BoolVar(&stressFlood, "flood", false, "Minimize waits between commands")
	stressCmd.Flags().BoolVar(&stressIntense, "intense", false, "Enable intense defaults (high iters, bursts, malformed)")
	stressCmd.Flags().BoolVar(&stressSlow, "slow", false, "Multiply delay by 5 for slower testing")
	stressCmd.Flags().BoolVar(&stressRapidToggle, "rapid-toggle", false, "Alternate SOFF/SON deterministically")
	stressCmd.Flags().BoolVar(&stressFocus, "focus-start-stop", false, "Bias command pool toward SON/SOFF")
	stressCmd.Flags().BoolVar(&stressVerbose, "verbose", false, "Show every command and response")
	stressCmd.Flags().BoolVar(&stressUseTUI, "tui", false, "Live terminal UI with statistics and exchange log")
	stressCmd.Flags().Int64Var(&stressSeed, "seed", 0, "Random seed (0 = time-based)")
	stressCmd.Flags().DurationVar(&stressReadTimeout, "timeout", pulsegen.DefaultReadTimeout, "Per-response read timeout")
	stressCmd.Flags().DurationVar(&stressResetDelay, "reset-delay", time.Second, "Settle time after opening the connection")
	stressCmd.Flags().IntVar(&stressMaxFreq, "max-freq", 0, "Override max frequency (e.g. 100 for the BLE variant)")
	stressCmd.Flags().IntVar(&stressMaxWidth, "max-width", 0, "Override max pulse width (e.g. 100 for the BLE variant)")
}

func stressMode() pulsegen.Mode {
	switch {
	case stressRapidToggle:
		return pulsegen.ModeRapidToggle
	case stressFocus:
		return pulsegen.ModeFocusStartStop
	default:
		return pulsegen.ModeMixed
	}
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	if stressMaxFreq > 0 {
		cfg.Frequency.Max = stressMaxFreq
	}
	if stressMaxWidth > 0 {
		cfg.Width.Max = stressMaxWidth
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if stressSlow {
		stressDelay *= 5
		fmt.Printf("Slow mode: effective delay=%v\n", stressDelay)
	}
	if stressIntense {
		if stressIters < 5000 {
			stressIters = 5000
		}
		if stressDelay > 10*time.Millisecond {
			stressDelay = 10 * time.Millisecond
		}
		if stressBurst < 8 {
			stressBurst = 8
		}
		if stressMalformedPct < 0.12 {
			stressMalformedPct = 0.12
		}
		stressFlood = true
		fmt.Printf("Intense mode: iters=%d, delay=%v, burst=%d, malformed-pct=%.2f\n",
			stressIters, stressDelay, stressBurst, stressMalformedPct)
	}

	seed := stressSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	ch := pulsegen.NewFramedChannel(conn)
	gen := pulsegen.NewGenerator(cfg, stressMode(), stressMalformedPct, seed)
	cls := pulsegen.NewClassifier(cfg.Phrases)

	// Let the firmware settle, then swallow its banner
	if stressResetDelay > 0 {
		time.Sleep(stressResetDelay)
	}
	banner, err := ch.ReadResponse(stressReadTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Transport error: %v\n", err)
		os.Exit(2)
	}
	if stressVerbose && banner != "" {
		fmt.Printf("Banner: %q\n\n", banner)
	}

	// Ctrl+C stops the run between sends; the device is still parked running.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if stressUseTUI {
		return runStressTUI(ctx, ch, gen, cls, connInfo)
	}
	return runStressText(ctx, ch, gen, cls, connInfo)
}

func runStressText(ctx context.Context, ch *pulsegen.FramedChannel, gen *pulsegen.Generator, cls *pulsegen.Classifier, connInfo string) error {
	fmt.Printf("Pulseprobe - Stress Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Mode: %s | iters=%d burst=%d delay=%v malformed-pct=%.2f flood=%v\n",
		stressMode(), stressIters, stressBurst, stressDelay, stressMalformedPct, stressFlood)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	var observer pulsegen.Observer
	if stressVerbose {
		observer = func(iteration, burstIndex int, ex pulsegen.Exchange, state pulsegen.SystemState) {
			fmt.Printf("[%d/%d] (burst %d/%d) -> %s\n", iteration+1, stressIters, burstIndex+1, stressBurst, ex.Command)
			fmt.Printf("  <- %q [%s, state %s]\n", ex.Response, ex.Outcome, state)
		}
	}

	runner := pulsegen.NewStressRunner(pulsegen.StressOptions{
		Iterations:  stressIters,
		Burst:       stressBurst,
		Delay:       stressDelay,
		Flood:       stressFlood,
		ReadTimeout: stressReadTimeout,
		Observer:    observer,
	})

	stats, runErr := runner.Run(ctx, ch, gen, cls)

	// Park the device running before reporting, even after an interrupt.
	// Best effort, one shot.
	parkDevice(ch, cls, stats)

	printStressReport(stats, cls.State())

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Transport error: %v\n", runErr)
		os.Exit(2)
	}
	return nil
}

// parkDevice sends one SON so the bench is left in a known-safe state.
func parkDevice(ch *pulsegen.FramedChannel, cls *pulsegen.Classifier, stats *pulsegen.Stats) {
	if err := ch.WriteCommand(pulsegen.CmdStart); err != nil {
		return
	}
	resp, err := ch.ReadResponse(pulsegen.DefaultReadTimeout)
	if err != nil {
		return
	}
	outcome := cls.Classify(pulsegen.Start(), resp)
	stats.Record(pulsegen.Start(), resp, outcome, false)
}

func printStressReport(stats *pulsegen.Stats, state pulsegen.SystemState) {
	fmt.Println()
	fmt.Print(stats.String())
	fmt.Printf("Final expected state: %s\n", state)

	// Sample responses for eyeballing firmware phrasing drift
	if stressVerbose {
		return
	}
	limit := 20
	if len(stats.Exchanges) < limit {
		limit = len(stats.Exchanges)
	}
	if limit == 0 {
		return
	}
	fmt.Printf("\nSample exchanges (first %d):\n", limit)
	for _, ex := range stats.Exchanges[:limit] {
		fmt.Printf("-> %s\n", ex.Command)
		fmt.Printf("<- %q [%s]\n", ex.Response, ex.Outcome)
	}
}

// runStressTUI drives the runner from a goroutine and feeds exchanges to the
// bubbletea program.
func runStressTUI(ctx context.Context, ch *pulsegen.FramedChannel, gen *pulsegen.Generator, cls *pulsegen.Classifier, connInfo string) error {
	m := initialStressModel(connInfo, stressIters*stressBurst)
	p := tea.NewProgram(m, tea.WithAltScreen())

	runner := pulsegen.NewStressRunner(pulsegen.StressOptions{
		Iterations:  stressIters,
		Burst:       stressBurst,
		Delay:       stressDelay,
		Flood:       stressFlood,
		ReadTimeout: stressReadTimeout,
		Observer: func(iteration, burstIndex int, ex pulsegen.Exchange, state pulsegen.SystemState) {
			p.Send(exchangeMsg{exchange: ex, state: state})
		},
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats *pulsegen.Stats
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, runErr = runner.Run(runCtx, ch, gen, cls)
		parkDevice(ch, cls, stats)
		p.Send(runDoneMsg{err: runErr})
	}()

	_, tuiErr := p.Run()

	// Quitting the TUI stops the run; wait for the runner to park the device.
	cancel()
	<-done

	if tuiErr != nil {
		return fmt.Errorf("TUI error: %v", tuiErr)
	}

	if stats != nil {
		printStressReport(stats, cls.State())
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Transport error: %v\n", runErr)
		os.Exit(2)
	}
	return nil
}
