// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import "github.com/aeroloop/flightcore/internal/geo"

const (
	// rthAltitude is the climb altitude RTH targets while below it.
	// Navigation toward home starts in the same step; it does not wait
	// for this altitude to be reached.
	rthAltitude = 20.0 // meters
	// rthLandDistance/rthLandAltitude define the land condition.
	rthLandDistance = 2.0 // meters
	rthLandAltitude = 1.0 // meters
	// rthDescendDistance triggers the final descend-near-home setpoint.
	rthDescendDistance = 3.0 // meters
	rthDescendAltitude = 0.5 // meters
)

// rthStep implements return-to-home: climb to a safe altitude if
// below it, navigate toward home via the position cascade, and land
// (disarm) once close enough and low enough.
func (l *Loop) rthStep() {
	g := l.state.GetGPS()
	if !g.FixValid {
		return
	}

	cmd := l.state.Command()
	baroAlt := float64(l.state.GetBaro().Altitude)
	d := geo.DistanceMeters(g.Pos, cmd.Home)

	if d < rthLandDistance && baroAlt < rthLandAltitude {
		l.state.Disarm()
		return
	}

	if baroAlt < rthAltitude {
		l.state.SetTargetAltitude(rthAltitude)
	}

	l.state.SetTargetPosition(cmd.Home)

	if d < rthDescendDistance {
		l.state.SetTargetAltitude(rthDescendAltitude)
	}
}
