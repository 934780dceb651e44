// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imu defines the capability contract the control core uses
// to read the flight IMU, independent of any specific bus driver. A
// real driver lives in internal/imubus; on-host simulation substitutes
// a fake that satisfies the same interface.
package imu

import (
	"time"

	"github.com/aeroloop/flightcore/internal/attitude"
)

// Identity is the expected WHO_AM_I register value. Init aborts (and
// the control loop never starts) if the device reports anything else.
const Identity = 0xEA

// Raw is one accelerometer+gyro burst read, already scaled into
// physical units (g and deg/s).
type Raw struct {
	Accel attitude.Vector3 // g
	Gyro  attitude.Vector3 // deg/s
}

// Sample is the control loop's view of the most recent IMU reading:
// the raw inputs plus the attitude estimate derived from them.
type Sample struct {
	Accel     attitude.Vector3
	Gyro      attitude.Vector3
	Estimate  attitude.EulerAngles
	Timestamp time.Time
}

// Bus is the hardware capability contract for the IMU: an identity
// check performed once at init, and a burst accel+gyro read performed
// once per tick. The core never touches SPI registers directly; it is
// handed a Bus at construction so the same control code runs against
// real hardware or a host simulation.
type Bus interface {
	// WhoAmI returns the identity register value (register 0x00).
	WhoAmI() (byte, error)
	// Configure runs the power/range/clock sequence described in the
	// hardware contract. Called once, after WhoAmI succeeds.
	Configure() error
	// ReadRaw performs a burst read of the accelerometer (register
	// 0x2D) and gyro (register 0x33) registers, scaled to g/deg-s.
	ReadRaw() (Raw, error)
}

// DecodeAxis assembles a 16-bit two's-complement sample from a
// big-endian high-then-low register pair, as the device returns it.
func DecodeAxis(high, low byte) int16 {
	return int16(uint16(high)<<8 | uint16(low))
}
