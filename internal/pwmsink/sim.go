// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pwmsink

import (
	"sync"

	"github.com/aeroloop/flightcore/internal/flight"
)

// SimSink is a host-simulation flight.PwmSink: it records the last
// commanded outputs instead of driving real GPIO pins.
type SimSink struct {
	mu   sync.Mutex
	last flight.MotorOutputs
}

// NewSimSink returns a SimSink with every channel at MotorMin.
func NewSimSink() *SimSink {
	return &SimSink{last: flight.AllMin()}
}

func (s *SimSink) Write(outputs flight.MotorOutputs) error {
	s.mu.Lock()
	s.last = outputs
	s.mu.Unlock()
	return nil
}

// Last returns the most recently written outputs.
func (s *SimSink) Last() flight.MotorOutputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SimGpio is a host-simulation flight.Gpio: it records the armed flag
// instead of driving a real LED pin.
type SimGpio struct {
	mu    sync.Mutex
	armed bool
}

func NewSimGpio() *SimGpio { return &SimGpio{} }

func (g *SimGpio) SetArmed(armed bool) error {
	g.mu.Lock()
	g.armed = armed
	g.mu.Unlock()
	return nil
}

// Armed reports the last value set.
func (g *SimGpio) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}
