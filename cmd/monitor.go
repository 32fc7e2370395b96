// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display raw firmware output",
	Long: `Continuously print whatever the pulse generator emits, as it arrives.

Output is shown verbatim apart from lossy UTF-8 decoding, so garbled frames
from a struggling device are visible rather than fatal. No commands are sent.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Pulseprobe - Raw Output Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	buf := make([]byte, 256)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			// For WebSocket connections, a read error usually means
			// the connection is permanently closed - exit gracefully
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			return nil
		}

		if n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		fmt.Print(strings.ToValidUTF8(string(buf[:n]), "�"))
	}
}
