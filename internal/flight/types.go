// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package flight

// Mode is the flight-mode state machine value. The total order below
// is load-bearing: failsafe logic only ever downgrades to a lower
// mode, never silently jumps to a higher one.
type Mode int32

const (
	ModeManual Mode = iota
	ModeStabilize
	ModeAltitudeHold
	ModePositionHold
	ModeAuto
	ModeReturnToHome
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "Manual"
	case ModeStabilize:
		return "Stabilize"
	case ModeAltitudeHold:
		return "AltitudeHold"
	case ModePositionHold:
		return "PositionHold"
	case ModeAuto:
		return "Auto"
	case ModeReturnToHome:
		return "ReturnToHome"
	default:
		return "Unknown"
	}
}

const (
	// MotorMin is the disarmed-floor and minimum-armed PWM pulse width.
	MotorMin uint16 = 1000
	// MotorMax is the ceiling PWM pulse width.
	MotorMax uint16 = 2000
	// HoverThrottle is the baseline collective throttle the altitude
	// cascade adjusts around.
	HoverThrottle float32 = 1500
)

// MotorOutputs is eight PWM channel pulse widths in microseconds.
// Channels 1-4 (indices 0-3) drive the quad-X mix; 5-8 are reserved
// and always hold MotorMin.
type MotorOutputs [8]uint16

// AllMin returns MotorOutputs with every channel at MotorMin, the
// disarmed/shutdown state.
func AllMin() MotorOutputs {
	var m MotorOutputs
	for i := range m {
		m[i] = MotorMin
	}
	return m
}
