// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package flight

import (
	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/geo"
)

// Command is the shared flight-command state: the current throttle
// and attitude setpoint the control loop is driving toward, plus the
// navigation targets a higher-level collaborator (mission planner,
// radio link, RTH logic) may set.
type Command struct {
	Throttle       float32 // microsecond pulse, 1000-2000
	Setpoint       attitude.EulerAngles
	TargetAltitude float32
	TargetPosition geo.Position
	Home           geo.Position
}

// PwmSink is the motor-output capability contract. The core never
// touches PWM peripherals directly; it is handed a sink at
// construction so the same control code runs on hardware or in
// on-host simulation.
type PwmSink interface {
	Write(outputs MotorOutputs) error
}

// Gpio is the arming-LED capability contract. SetArmed mirrors the
// armed flag on a single digital output every tick.
type Gpio interface {
	SetArmed(armed bool) error
}
