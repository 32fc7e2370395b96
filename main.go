// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs
//
// Pulseprobe - Pulse Generator Protocol Stress Tester
//
// A CLI tool for stress-testing and conformance-checking the pulse
// generator's line command protocol over serial or a WebSocket bridge.

package main

import (
	"os"

	"github.com/openpulse/pulseprobe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
