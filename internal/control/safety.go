// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"math"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/flight"
)

// tiltFailsafeDeg is the absolute roll/pitch magnitude beyond which
// the safety monitor disarms unconditionally.
const tiltFailsafeDeg = 45.0

// safetyMonitor is evaluated every tick, after every controller has
// run and before the attitude mix: it disarms on excessive tilt or a
// NaN estimate, demotes PositionHold-or-above modes that have lost
// their GPS fix, and drives the arming LED to mirror the armed flag.
// Battery failsafe is a documented future hook, not implemented here.
func (l *Loop) safetyMonitor(estimate attitude.EulerAngles) {
	roll, pitch := float64(estimate.Roll), float64(estimate.Pitch)

	if math.IsNaN(roll) || math.IsNaN(pitch) {
		l.state.Disarm()
	} else if math.Abs(roll) > tiltFailsafeDeg || math.Abs(pitch) > tiltFailsafeDeg {
		l.state.Disarm()
	}

	mode := l.state.Mode()
	if mode >= flight.ModePositionHold && !l.state.GetGPS().FixValid {
		l.state.SetFlightMode(flight.ModeAltitudeHold)
	}

	if l.gpio != nil {
		_ = l.gpio.SetArmed(l.state.Armed())
	}
}
