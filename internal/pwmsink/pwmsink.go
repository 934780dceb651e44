// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pwmsink implements flight.PwmSink and flight.Gpio against
// periph.io GPIO pins. There is no periph.io driver for a dedicated
// ESC PWM peripheral in this dependency set (that's normally a
// board-specific PCA9685/sysfs-pwm chip, neither of which this
// codebase depends on), so each channel is driven as a software PWM:
// a goroutine per pin toggles it high for a duration proportional to
// the last commanded pulse width within a fixed 20ms frame, the
// standard RC servo/ESC update period.
package pwmsink

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/aeroloop/flightcore/internal/flight"
)

// frameInterval is the standard RC PWM update period.
const frameInterval = 20 * time.Millisecond

// Sink drives 8 GPIO-backed PWM channels in software.
type Sink struct {
	pins     [8]gpio.PinIO
	pulses   [8]atomic.Uint32 // microseconds, written by Write, read by the per-pin goroutines
	stop     chan struct{}
	stopOnce sync.Once
}

// Open resolves the 8 named GPIO pins and starts one software-PWM
// goroutine per channel. pinNames must name exactly 8 pins, in
// channel order.
func Open(pinNames [8]string) (*Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pwmsink: periph host init: %w", err)
	}

	s := &Sink{stop: make(chan struct{})}
	for i, name := range pinNames {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("pwmsink: channel %d pin %q not found", i+1, name)
		}
		s.pins[i] = pin
		s.pulses[i].Store(uint32(flight.MotorMin))
		go s.drive(i)
	}
	return s, nil
}

// Write latches the commanded pulse widths; the per-pin goroutines
// pick them up on their next frame.
func (s *Sink) Write(outputs flight.MotorOutputs) error {
	for i, v := range outputs {
		s.pulses[i].Store(uint32(v))
	}
	return nil
}

// Close stops every channel's drive goroutine, leaving the pins low.
func (s *Sink) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Sink) drive(channel int) {
	pin := s.pins[channel]
	for {
		select {
		case <-s.stop:
			_ = pin.Out(gpio.Low)
			return
		default:
		}

		high := time.Duration(s.pulses[channel].Load()) * time.Microsecond
		low := frameInterval - high

		_ = pin.Out(gpio.High)
		time.Sleep(high)
		_ = pin.Out(gpio.Low)
		if low > 0 {
			time.Sleep(low)
		}
	}
}

// ArmingLED implements flight.Gpio against a single GPIO pin mirroring
// the armed flag.
type ArmingLED struct {
	pin gpio.PinIO
}

// OpenArmingLED resolves the named pin.
func OpenArmingLED(pinName string) (*ArmingLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pwmsink: periph host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("pwmsink: arming LED pin %q not found", pinName)
	}
	return &ArmingLED{pin: pin}, nil
}

// SetArmed drives the LED pin high when armed, low otherwise.
func (a *ArmingLED) SetArmed(armed bool) error {
	if armed {
		return a.pin.Out(gpio.High)
	}
	return a.pin.Out(gpio.Low)
}
