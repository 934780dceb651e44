// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package scheduler drives the fixed-rate control loop tick: an
// absolute, monotonic-time-anchored wake-up schedule so transient
// work stretches do not compound into drift. Exactly one suspension
// point exists per iteration -- the sleep to the next tick boundary.
package scheduler

import (
	"context"
	"log"
	"time"
)

// TickFunc is run once per scheduler period. An error is logged but
// never stops the schedule; the flight-control loop has no "return an
// error" boundary at steady state.
type TickFunc func() error

// Scheduler runs TickFunc at a fixed period using an absolute wake-up
// schedule: next wake = prev wake + period, recomputed from the
// anchor rather than from "now", so tick work that stays within the
// period does not accumulate into drift. If a tick overruns, the next tick fires
// immediately and the schedule re-anchors; there is no attempt to
// "catch up" with compressed ticks.
type Scheduler struct {
	Period time.Duration
	Tick   TickFunc

	// OnOverrun, if set, is called whenever a tick finishes past the
	// next scheduled wake-up, with how far past it the tick finished.
	// Used for telemetry/logging; it must not block.
	OnOverrun func(overrun time.Duration)
}

// New returns a Scheduler with the given fixed period and tick
// callback.
func New(period time.Duration, tick TickFunc) *Scheduler {
	return &Scheduler{Period: period, Tick: tick}
}

// Run blocks, driving Tick at the configured period until ctx is
// cancelled. On cancellation it is the caller's responsibility to have
// already forced the actuation layer to a safe state: if the control
// thread is stopped by higher layers, it must first write MotorMin to
// all channels.
func (s *Scheduler) Run(ctx context.Context) error {
	next := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Tick(); err != nil {
			log.Printf("scheduler: tick error: %v", err)
		}

		next = next.Add(s.Period)
		now := time.Now()

		if now.After(next) {
			overrun := now.Sub(next)
			if s.OnOverrun != nil {
				s.OnOverrun(overrun)
			}
			// Re-anchor: the next tick fires immediately rather than
			// attempting to compress multiple missed periods.
			next = now
			continue
		}

		sleepFor := next.Sub(now)
		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
