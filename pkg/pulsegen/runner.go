// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Openpulse Labs

package pulsegen

import (
	"context"
	"time"
)

// Observer is called after each exchange is classified. Nil observers are
// allowed; the runner never prints on its own.
type Observer func(iteration, burstIndex int, ex Exchange, state SystemState)

// StressOptions configures a stress run.
type StressOptions struct {
	// Iterations is the number of rounds. Each round picks one command and
	// sends it Burst times.
	Iterations int

	// Burst is the number of back-to-back sends per round. Minimum 1.
	Burst int

	// Delay is the pause after the last send of a round. Intermediate burst
	// elements never wait.
	Delay time.Duration

	// Flood collapses all inter-command delays to zero.
	Flood bool

	// ReadTimeout bounds how long each response is awaited.
	ReadTimeout time.Duration

	// Observer, if set, sees every exchange as it happens.
	Observer Observer
}

// normalized fills in zero values.
func (o StressOptions) normalized() StressOptions {
	if o.Burst < 1 {
		o.Burst = 1
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	return o
}

// StressRunner drives iterations of generate → send → read → classify →
// record against one exclusively-owned channel. A classified error never
// stops the run; the whole point is to keep stressing the device through
// errors. Only a transport fault aborts, and the partial Stats are still
// returned so the operator sees how far the run got.
type StressRunner struct {
	opts StressOptions
}

// NewStressRunner creates a runner with the given options.
func NewStressRunner(opts StressOptions) *StressRunner {
	return &StressRunner{opts: opts.normalized()}
}

// Run executes the configured iterations. Cancelling ctx stops the run
// between sends; the accumulated Stats and ctx.Err() are returned so the
// caller can still report and park the device.
func (r *StressRunner) Run(ctx context.Context, ch *FramedChannel, gen *Generator, cls *Classifier) (*Stats, error) {
	stats := NewStats()

	for i := 0; i < r.opts.Iterations; i++ {
		round := gen.Next(cls.State())

		for b := 0; b < r.opts.Burst; b++ {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			if err := ch.WriteCommand(round.Command.Text); err != nil {
				return stats, err
			}

			// Settle time before reading, only after the last burst element.
			if wait := r.delayFor(b); wait > 0 {
				time.Sleep(wait)
			}

			resp, err := ch.ReadResponse(r.opts.ReadTimeout)
			if err != nil {
				return stats, err
			}

			outcome := cls.Classify(round.Command, resp)
			stats.Record(round.Command, resp, outcome, round.Malformed)

			if r.opts.Observer != nil {
				r.opts.Observer(i, b, stats.Exchanges[len(stats.Exchanges)-1], cls.State())
			}
		}
	}

	return stats, nil
}

func (r *StressRunner) delayFor(burstIndex int) time.Duration {
	if r.opts.Flood {
		return 0
	}
	if burstIndex < r.opts.Burst-1 {
		return 0
	}
	return r.opts.Delay
}
