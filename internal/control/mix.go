// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control implements the attitude inner loop, the altitude and
// position cascades, the flight-mode arbitrator and RTH logic, the
// obstacle-avoidance override, and the safety monitor -- the part of
// the pipeline that turns setpoints and an attitude estimate into
// per-motor PWM commands.
package control

import (
	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/geo"
)

// mixAndEmit runs the roll/pitch/yaw attitude PIDs against the current
// estimate, mixes them into the standard quad-X per-motor thrust
// commands, and writes the result to the PWM sink. The sign
// convention below must be preserved exactly; flipping any one of
// them inverts a control axis on real hardware.
func (l *Loop) mixAndEmit(estimate attitude.EulerAngles) error {
	if !l.state.Armed() {
		outputs := flight.AllMin()
		l.state.SetMotors(outputs)
		return l.pwm.Write(outputs)
	}

	cmd := l.state.Command()

	r := l.rollPID.Update(float64(cmd.Setpoint.Roll), float64(estimate.Roll), dt)
	p := l.pitchPID.Update(float64(cmd.Setpoint.Pitch), float64(estimate.Pitch), dt)
	y := l.yawPID.Update(float64(cmd.Setpoint.Yaw), float64(estimate.Yaw), dt)

	base := float64(cmd.Throttle)

	m1 := clampMotor(base - r + p - y) // front-right, CCW
	m2 := clampMotor(base + r + p + y) // rear-right, CW
	m3 := clampMotor(base - r - p + y) // front-left, CW
	m4 := clampMotor(base + r - p - y) // rear-left, CCW

	outputs := flight.MotorOutputs{
		m1, m2, m3, m4,
		flight.MotorMin, flight.MotorMin, flight.MotorMin, flight.MotorMin,
	}

	l.state.SetMotors(outputs)
	return l.pwm.Write(outputs)
}

func clampMotor(v float64) uint16 {
	return uint16(geo.Clamp(v, float64(flight.MotorMin), float64(flight.MotorMax)))
}

// resetAttitudeIntegrators zeroes the roll/pitch/yaw PID integrators.
// Called on the disarmed->armed edge so stale integral terms cannot
// launch the craft the instant it arms.
func (l *Loop) resetAttitudeIntegrators() {
	l.rollPID.Reset()
	l.pitchPID.Reset()
	l.yawPID.Reset()
}
