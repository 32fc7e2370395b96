// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Transport is the byte-stream channel the engine drives. Read must be
// non-blocking or near-non-blocking: it returns whatever is buffered,
// possibly zero bytes, without waiting for a full line. The serial transport
// achieves this with a short read timeout, the WebSocket transport with an
// internal receive buffer.
type Transport interface {
	io.Writer
	// Read fills p with available bytes. n == 0 with a nil error means no
	// data was pending.
	Read(p []byte) (n int, err error)
	Close() error
}

// FramedChannel frames the line protocol over a Transport: commands go out
// with the terminator appended, responses are accumulated until the prompt
// character or a deadline.
type FramedChannel struct {
	transport    Transport
	prompt       rune
	terminator   string
	pollInterval time.Duration
}

// NewFramedChannel wraps a transport with the protocol's prompt and
// terminator.
func NewFramedChannel(t Transport) *FramedChannel {
	return &FramedChannel{
		transport:    t,
		prompt:       Prompt,
		terminator:   Terminator,
		pollInterval: DefaultPollInterval,
	}
}

// WriteCommand sends one command line. A write failure is a transport fault:
// the caller aborts the run, there is no retry.
func (fc *FramedChannel) WriteCommand(cmd string) error {
	data := []byte(cmd + fc.terminator)
	n, err := fc.transport.Write(data)
	if err != nil {
		return fmt.Errorf("transport write failed: %v", err)
	}
	if n < len(data) {
		return fmt.Errorf("transport write truncated: %d of %d bytes", n, len(data))
	}
	return nil
}

// ReadResponse accumulates decoded text until the buffer contains the prompt
// character or the deadline passes, whichever comes first. It never blocks
// past timeout and may return an empty string. Undecodable bytes are dropped
// rather than surfaced as errors: a device under stress may emit partial or
// garbled frames, and losing a byte is not a reason to kill the session.
// A hard transport read error is fatal and returned alongside whatever text
// arrived before it.
func (fc *FramedChannel) ReadResponse(timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	var resp strings.Builder
	buf := make([]byte, 256)

	for time.Now().Before(deadline) {
		n, err := fc.transport.Read(buf)
		if err != nil {
			return resp.String(), fmt.Errorf("transport read failed: %v", err)
		}

		if n == 0 {
			time.Sleep(fc.pollInterval)
			continue
		}

		resp.WriteString(strings.ToValidUTF8(string(buf[:n]), ""))
		if strings.ContainsRune(resp.String(), fc.prompt) {
			break
		}
	}

	return resp.String(), nil
}

// Close closes the underlying transport.
func (fc *FramedChannel) Close() error {
	return fc.transport.Close()
}
