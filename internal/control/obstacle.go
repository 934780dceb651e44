// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import "math"

// obstacleTriggerDistance is how close a detected obstacle must be
// before the override engages.
const obstacleTriggerDistance = 2.0 // meters

// escapeRollDeg is the fixed lateral-escape roll magnitude.
const escapeRollDeg = 10.0

// obstacleOverride runs after navigation and before the attitude mix,
// so it supersedes any position-hold lateral command for this tick.
func (l *Loop) obstacleOverride() {
	o := l.state.GetObstacle()
	if !o.Detected || o.Distance >= obstacleTriggerDistance {
		return
	}

	cmd := l.state.Command()
	sp := cmd.Setpoint

	if sp.Pitch < 0 {
		sp.Pitch = 0
	}
	sp.Roll = float32(escapeRollDeg * math.Sin(toRad(float64(o.Bearing)+90)))

	l.state.SetSetpoint(sp)
}
