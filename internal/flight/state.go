// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package flight holds the process-wide flight state: the ingest API
// that sensor drivers and the command channel publish into, and the
// Command/MotorOutputs the control loop owns. Rather than
// package-level globals, every producer and consumer holds a
// reference to a single State instantiated at startup.
package flight

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/baro"
	"github.com/aeroloop/flightcore/internal/geo"
	"github.com/aeroloop/flightcore/internal/gps"
	"github.com/aeroloop/flightcore/internal/imu"
	"github.com/aeroloop/flightcore/internal/obstacle"
)

// State is the single shared instance the control loop reads every
// tick and producers (GPS feed, baro driver, obstacle rangefinder,
// radio/command channel) publish into. Each snapshot is guarded by
// its own RWMutex so a producer publishing one snapshot can never
// block a reader of another, and every publish replaces the whole
// record so readers never observe a torn mix of old and new fields.
//
// armed and mode are accessed from multiple writers (the command
// channel, the safety monitor, RTH trigger) and are plain atomics.
type State struct {
	imuMu  sync.RWMutex
	imu    imu.Sample
	gpsMu  sync.RWMutex
	gps    gps.Sample
	baroMu sync.RWMutex
	baro   baro.Sample
	obsMu  sync.RWMutex
	obs    obstacle.Sample

	cmdMu sync.RWMutex
	cmd   Command

	motorsMu sync.RWMutex
	motors   MotorOutputs

	armed atomic.Bool
	mode  atomic.Int32
}

// New returns a State with every snapshot zeroed, mode=Manual,
// disarmed, and motors at MotorMin.
func New() *State {
	s := &State{motors: AllMin()}
	s.mode.Store(int32(ModeManual))
	return s
}

// --- IMU ---

// UpdateIMU atomically replaces the IMU snapshot. The control loop
// typically reads the IMU bus itself within the tick rather than
// going through this setter, but it is exposed for drivers that push
// samples from an interrupt context.
func (s *State) UpdateIMU(raw imu.Raw, estimate attitude.EulerAngles, ts time.Time) {
	s.imuMu.Lock()
	s.imu = imu.Sample{Accel: raw.Accel, Gyro: raw.Gyro, Estimate: estimate, Timestamp: ts}
	s.imuMu.Unlock()
}

// GetIMU returns the most recent IMU snapshot.
func (s *State) GetIMU() imu.Sample {
	s.imuMu.RLock()
	defer s.imuMu.RUnlock()
	return s.imu
}

// --- GPS ---

// UpdateGPS replaces the GPS snapshot. FixValid is re-derived here from
// the satellite count, so the published snapshot always satisfies
// FixValid == (Satellites >= gps.MinSatsForFix).
func (s *State) UpdateGPS(sample gps.Sample) {
	sample.FixValid = sample.Satellites >= gps.MinSatsForFix
	s.gpsMu.Lock()
	s.gps = sample
	s.gpsMu.Unlock()
}

// GetGPS returns the most recent GPS snapshot.
func (s *State) GetGPS() gps.Sample {
	s.gpsMu.RLock()
	defer s.gpsMu.RUnlock()
	return s.gps
}

// --- Baro ---

// UpdateBaro replaces the barometric altitude snapshot.
func (s *State) UpdateBaro(sample baro.Sample) {
	s.baroMu.Lock()
	s.baro = sample
	s.baroMu.Unlock()
}

// GetBaro returns the most recent barometric snapshot.
func (s *State) GetBaro() baro.Sample {
	s.baroMu.RLock()
	defer s.baroMu.RUnlock()
	return s.baro
}

// --- Obstacle ---

// UpdateObstacle replaces the obstacle-proximity snapshot.
func (s *State) UpdateObstacle(sample obstacle.Sample) {
	s.obsMu.Lock()
	s.obs = sample
	s.obsMu.Unlock()
}

// GetObstacle returns the most recent obstacle snapshot.
func (s *State) GetObstacle() obstacle.Sample {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	return s.obs
}

// --- Command / setpoints ---

// SetTargetAltitude sets the altitude cascade's outer-loop setpoint.
func (s *State) SetTargetAltitude(m float32) {
	s.cmdMu.Lock()
	s.cmd.TargetAltitude = m
	s.cmdMu.Unlock()
}

// SetTargetPosition sets the position cascade's navigation target.
func (s *State) SetTargetPosition(p geo.Position) {
	s.cmdMu.Lock()
	s.cmd.TargetPosition = p
	s.cmdMu.Unlock()
}

// SetHome sets the return-to-home anchor position.
func (s *State) SetHome(p geo.Position) {
	s.cmdMu.Lock()
	s.cmd.Home = p
	s.cmdMu.Unlock()
}

// SetThrottle is called by the altitude cascade (control-thread only).
func (s *State) SetThrottle(v float32) {
	s.cmdMu.Lock()
	s.cmd.Throttle = v
	s.cmdMu.Unlock()
}

// SetSetpoint is called by the position cascade and obstacle override
// (control-thread only).
func (s *State) SetSetpoint(e attitude.EulerAngles) {
	s.cmdMu.Lock()
	s.cmd.Setpoint = e
	s.cmdMu.Unlock()
}

// Command returns a consistent snapshot of the full command record.
func (s *State) Command() Command {
	s.cmdMu.RLock()
	defer s.cmdMu.RUnlock()
	return s.cmd
}

// --- Motors (telemetry readback) ---

// SetMotors publishes the mixer's latest output, for telemetry.
func (s *State) SetMotors(m MotorOutputs) {
	s.motorsMu.Lock()
	s.motors = m
	s.motorsMu.Unlock()
}

// GetMotors returns the most recently emitted motor outputs.
func (s *State) GetMotors() MotorOutputs {
	s.motorsMu.RLock()
	defer s.motorsMu.RUnlock()
	return s.motors
}

// --- Armed / Mode (atomics, multi-writer) ---

// Arm sets the armed flag. The safety monitor may immediately disarm
// again on the next tick if conditions are unsafe; Arm itself never
// rejects.
func (s *State) Arm() { s.armed.Store(true) }

// Disarm clears the armed flag. One-way within a tick: rearming
// requires an explicit Arm call.
func (s *State) Disarm() { s.armed.Store(false) }

// Armed reports the current armed flag.
func (s *State) Armed() bool { return s.armed.Load() }

// SetFlightMode requests a mode change. Used both by the external
// command channel and by the safety monitor's failsafe downgrades.
func (s *State) SetFlightMode(m Mode) { s.mode.Store(int32(m)) }

// Mode returns the current flight mode.
func (s *State) Mode() Mode { return Mode(s.mode.Load()) }

// TriggerRTH requests return-to-home by setting mode directly.
func (s *State) TriggerRTH() { s.SetFlightMode(ModeReturnToHome) }
