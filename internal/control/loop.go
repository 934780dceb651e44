// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"time"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/imu"
	"github.com/aeroloop/flightcore/internal/pid"
)

// LoopHz is the fixed control-loop rate. dt is baked as a constant
// because the scheduler guarantees fixed-rate execution; a
// variable-rate port would need to thread dt through every Update
// call instead.
const (
	LoopHz = 400
	DT     = 1.0 / LoopHz
)

// dt is the package-local alias used by every PID and estimator call
// in this package.
const dt = DT

// Gains holds every tunable PID gain and clamp the core uses. Loaded
// from config at startup; see internal/config.
type Gains struct {
	RollKp, RollKi, RollKd, RollMaxI       float64
	PitchKp, PitchKi, PitchKd, PitchMaxI   float64
	YawKp, YawKi, YawKd, YawMaxI           float64
	AltOuterKp, AltOuterKi, AltOuterKd     float64
	AltOuterMaxI                           float64
	AltInnerKp, AltInnerKi, AltInnerKd     float64
	AltInnerMaxI                           float64
	PosKp, PosKi, PosKd, PosMaxI           float64
	VelKp, VelKi, VelKd, VelMaxI           float64
}

// DefaultGains returns the stock gain set: gentle enough to be stable
// at 400Hz on a generic quad-X frame.
func DefaultGains() Gains {
	return Gains{
		RollKp: 1.5, RollKi: 0.1, RollKd: 0.05, RollMaxI: 20,
		PitchKp: 1.5, PitchKi: 0.1, PitchKd: 0.05, PitchMaxI: 20,
		YawKp: 2.0, YawKi: 0.0, YawKd: 0.0, YawMaxI: 20,
		AltOuterKp: 1.0, AltOuterKi: 0.05, AltOuterKd: 0.1, AltOuterMaxI: 3,
		AltInnerKp: 80, AltInnerKi: 20, AltInnerKd: 5, AltInnerMaxI: 200,
		PosKp: 0.6, PosKi: 0.0, PosKd: 0.1, PosMaxI: 5,
		VelKp: 3.0, VelKi: 0.0, VelKd: 0.3, VelMaxI: 25,
	}
}

// Loop is the per-tick control pipeline. It owns the attitude
// estimator and every PID controller exclusively; the only shared
// state it touches is flight.State, through the synchronization that
// type provides.
type Loop struct {
	state *flight.State
	imu   imu.Bus
	pwm   flight.PwmSink
	gpio  flight.Gpio

	estimator *attitude.Estimator

	rollPID, pitchPID, yawPID *pid.Controller

	altOuterPID, altInnerPID *pid.Controller
	posNPID, posEPID         *pid.Controller
	velNPID, velEPID         *pid.Controller

	wasArmed bool
}

// New builds a control loop against the given shared state and
// hardware capability contracts, with the given gains.
func New(state *flight.State, bus imu.Bus, pwm flight.PwmSink, gpio flight.Gpio, g Gains) *Loop {
	return &Loop{
		state:     state,
		imu:       bus,
		pwm:       pwm,
		gpio:      gpio,
		estimator: attitude.New(),
		rollPID:   pid.New(g.RollKp, g.RollKi, g.RollKd, g.RollMaxI),
		pitchPID:  pid.New(g.PitchKp, g.PitchKi, g.PitchKd, g.PitchMaxI),
		yawPID:    pid.New(g.YawKp, g.YawKi, g.YawKd, g.YawMaxI),

		altOuterPID: pid.New(g.AltOuterKp, g.AltOuterKi, g.AltOuterKd, g.AltOuterMaxI),
		altInnerPID: pid.New(g.AltInnerKp, g.AltInnerKi, g.AltInnerKd, g.AltInnerMaxI),
		posNPID:     pid.New(g.PosKp, g.PosKi, g.PosKd, g.PosMaxI),
		posEPID:     pid.New(g.PosKp, g.PosKi, g.PosKd, g.PosMaxI),
		velNPID:     pid.New(g.VelKp, g.VelKi, g.VelKd, g.VelMaxI),
		velEPID:     pid.New(g.VelKp, g.VelKi, g.VelKd, g.VelMaxI),
	}
}

// Tick runs one iteration of the control pipeline: read IMU, estimate
// attitude, run the mode-dependent setpoint controllers, obstacle
// override, safety monitor, attitude mix, emit.
func (l *Loop) Tick() error {
	raw, err := l.imu.ReadRaw()
	if err != nil {
		return err
	}

	estimate := l.estimator.Update(raw.Gyro, raw.Accel, dt)
	l.state.UpdateIMU(raw, estimate, time.Now())

	armed := l.state.Armed()
	if armed && !l.wasArmed {
		l.resetAttitudeIntegrators()
	}
	l.wasArmed = armed

	mode := l.state.Mode()

	switch mode {
	case flight.ModeAltitudeHold, flight.ModePositionHold, flight.ModeAuto:
		l.altitudeCascade()
	case flight.ModeReturnToHome:
		l.rthStep()
		l.altitudeCascade()
	}

	if mode >= flight.ModePositionHold {
		l.positionCascade()
	}

	l.obstacleOverride()
	l.safetyMonitor(estimate)

	return l.mixAndEmit(estimate)
}
