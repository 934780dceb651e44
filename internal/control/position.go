// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"math"

	"github.com/aeroloop/flightcore/internal/geo"
)

const (
	velocityLimit = 5.0  // m/s, outer position PID output clamp
	tiltLimit     = 25.0 // degrees, final setpoint clamp
)

// positionCascade runs when mode >= PositionHold and the GPS fix is
// valid; the arbitrator in loop.go only calls this when mode
// qualifies, so the fix-valid gate is checked here since it is
// specific to this cascade, not to mode sequencing.
//
// The north/east error decomposition, the outer PID's setpoint=0,
// measured=error convention, and the body-frame rotation signs below
// must be kept exactly as they are: the chain of negations from the
// velocity-error terms into roll/pitch is the mixer's counterpart
// sign convention run in reverse, not something to "simplify" here.
func (l *Loop) positionCascade() {
	g := l.state.GetGPS()
	if !g.FixValid {
		return
	}
	cmd := l.state.Command()

	d := geo.DistanceMeters(g.Pos, cmd.TargetPosition)
	bearingRad := toRad(geo.BearingDeg(g.Pos, cmd.TargetPosition))

	errN := d * math.Cos(bearingRad)
	errE := d * math.Sin(bearingRad)

	targetVN := geo.Clamp(l.posNPID.Update(0, errN, dt), -velocityLimit, velocityLimit)
	targetVE := geo.Clamp(l.posEPID.Update(0, errE, dt), -velocityLimit, velocityLimit)

	headingRad := toRad(float64(g.HeadingDeg))
	vN := float64(g.GroundSpeed) * math.Cos(headingRad)
	vE := float64(g.GroundSpeed) * math.Sin(headingRad)

	aN := l.velNPID.Update(targetVN, vN, dt)
	aE := l.velEPID.Update(targetVE, vE, dt)

	yawRad := toRad(float64(l.estimator.Estimate().Yaw))
	pitch := -(aN*math.Cos(yawRad) + aE*math.Sin(yawRad))
	roll := -(aE*math.Cos(yawRad) - aN*math.Sin(yawRad))

	sp := cmd.Setpoint
	sp.Pitch = float32(geo.Clamp(pitch, -tiltLimit, tiltLimit))
	sp.Roll = float32(geo.Clamp(roll, -tiltLimit, tiltLimit))
	l.state.SetSetpoint(sp)
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
