// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpulse/pulseprobe/pkg/pulsegen"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for the firmware prompt",
	Long: `Wait for the firmware's banner or prompt character on the connection.

The pulse generator prints a banner ending in '>' when it boots and after
every processed command. This command first listens for that prompt; if
nothing arrives it sends a bare carriage return to provoke one, then listens
again.

Exit codes:
  0 - Prompt received before timeout
  1 - Timeout reached without seeing the prompt
  2 - Connection error

Useful for checking cabling, baud rate, or the WebSocket bridge before a
longer run.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Second, "How long to wait for the prompt")
}

func runProbe(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Pulseprobe - Connection Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %v\n", probeTimeout)
	fmt.Printf("Waiting for firmware prompt...\n\n")

	ch := pulsegen.NewFramedChannel(conn)

	// Boot banner, if the device just reset
	resp, err := ch.ReadResponse(probeTimeout / 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)
	}

	if !strings.ContainsRune(resp, pulsegen.Prompt) {
		// Nudge the parser; an empty command answers with a fresh prompt
		if err := ch.WriteCommand(""); err != nil {
			fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
			os.Exit(2)
		}
		more, err := ch.ReadResponse(probeTimeout / 2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
		resp += more
	}

	if strings.ContainsRune(resp, pulsegen.Prompt) {
		fmt.Printf("SUCCESS: Prompt received\n")
		if trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(resp), string(pulsegen.Prompt))); trimmed != "" {
			fmt.Printf("  Banner: %q\n", trimmed)
		}
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "TIMEOUT: No prompt within %v\n", probeTimeout)
	os.Exit(1)
	return nil
}
