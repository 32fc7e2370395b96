// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/openpulse/pulseprobe/pkg/pulsegen"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Engine configuration file
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "pulseprobe",
	Short: "Pulse generator protocol stress tester",
	Long: `Pulseprobe - A conformance and stress-testing tool for the pulse generator's
line command protocol (SF/SW/SA parameter commands, SON/SOFF control commands).

Provides commands for randomized stress runs, scripted conformance cases,
connectivity probing and raw output monitoring.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the PULSEPROBE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Parameter ranges, command weights, the malformed-command catalog and the
response phrase lists can be overridden with a YAML file via --config. The
defaults match the UART firmware variant (frequency 1-59, width 1-10,
amplitude 1-30).`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Engine configuration
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (ranges, weights, catalog, phrases)")
}

// loadEngineConfig returns the engine configuration, applying --config if set.
func loadEngineConfig() (pulsegen.Config, error) {
	if configFile == "" {
		return pulsegen.DefaultConfig(), nil
	}
	return pulsegen.LoadConfig(configFile)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
