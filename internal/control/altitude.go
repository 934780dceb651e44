// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/geo"
)

// climbRateLimit bounds the outer altitude PID's output.
const climbRateLimit = 3.0 // m/s

// altitudeCascade runs when mode >= AltitudeHold: an outer
// altitude->climb-rate PID feeding an inner climb-rate->throttle PID,
// around the 1500us hover baseline.
func (l *Loop) altitudeCascade() {
	cmd := l.state.Command()
	baro := l.state.GetBaro()

	targetClimbRate := l.altOuterPID.Update(float64(cmd.TargetAltitude), float64(baro.Altitude), dt)
	targetClimbRate = geo.Clamp(targetClimbRate, -climbRateLimit, climbRateLimit)

	throttleAdjust := l.altInnerPID.Update(targetClimbRate, float64(baro.VerticalSpeed), dt)

	throttle := geo.Clamp(float64(flight.HoverThrottle)+throttleAdjust, float64(flight.MotorMin), float64(flight.MotorMax))
	l.state.SetThrottle(float32(throttle))
}
