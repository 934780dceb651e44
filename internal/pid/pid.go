// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pid implements the scalar proportional-integral-derivative
// controller used by every axis and cascade stage in internal/control.
package pid

import "github.com/aeroloop/flightcore/internal/geo"

// Controller holds one PID axis's gains and running state. It is not
// safe for concurrent use; the control loop owns every instance
// exclusively and updates it once per tick.
type Controller struct {
	Kp, Ki, Kd float64
	MaxI       float64 // integral clamp magnitude

	integral   float64
	prevError  float64
	lastOutput float64
}

// New returns a Controller with the given gains and integral clamp.
func New(kp, ki, kd, maxIntegral float64) *Controller {
	return &Controller{Kp: kp, Ki: ki, Kd: kd, MaxI: maxIntegral}
}

// Update advances the controller by one tick and returns the new
// output. dt must be > 0; the scheduler guarantees this via the fixed
// loop period, so Update does not itself validate it.
func (c *Controller) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	c.integral += err * dt
	c.integral = geo.Clamp(c.integral, -c.MaxI, c.MaxI)

	derivative := (err - c.prevError) / dt
	c.prevError = err

	c.lastOutput = c.Kp*err + c.Ki*c.integral + c.Kd*derivative
	return c.lastOutput
}

// Reset zeroes the integrator and error history. Called on the
// disarmed->armed transition so stale integral terms cannot launch
// the craft the instant it arms.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevError = 0
	c.lastOutput = 0
}

// Integral returns the current integrator value, for invariant checks.
func (c *Controller) Integral() float64 { return c.integral }
