// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package attitude fuses gyro and accelerometer samples into a roll/
// pitch/yaw estimate with a complementary filter. There is no EKF and
// no magnetometer here: yaw is gyro-only and will drift without a
// heading reference.
package attitude

import (
	"math"

	"github.com/aeroloop/flightcore/internal/geo"
)

// alpha is the gyro weight in the complementary filter fusion. 0.98
// gives roughly a 120ms accelerometer time-constant at 400Hz
// (alpha*dt/(1-alpha) = 0.98*2.5ms/0.02).
const alpha = 0.98

// Vector3 is a body-frame angular rate (deg/s) or specific force (g).
type Vector3 struct {
	X, Y, Z float32
}

// EulerAngles holds roll/pitch/yaw in degrees. Roll and pitch are kept
// in [-180,180] after wrapping; yaw is kept in [0,360).
type EulerAngles struct {
	Roll, Pitch, Yaw float32
}

// Estimator is the complementary filter's running state: the control
// loop's current best estimate of orientation. Owned exclusively by
// the control thread.
type Estimator struct {
	angle EulerAngles
}

// New returns an Estimator with a zeroed initial estimate.
func New() *Estimator {
	return &Estimator{}
}

// Update advances the estimate by one tick given the latest gyro rate
// (deg/s) and accelerometer reading (g), and returns the new estimate.
func (e *Estimator) Update(gyro, accel Vector3, dt float64) EulerAngles {
	accelRoll := math.Atan2(float64(accel.Y), float64(accel.Z)) * 180 / math.Pi
	accelPitch := math.Atan2(-float64(accel.X), math.Sqrt(float64(accel.Y)*float64(accel.Y)+float64(accel.Z)*float64(accel.Z))) * 180 / math.Pi

	gyroRoll := float64(e.angle.Roll) + float64(gyro.X)*dt
	gyroPitch := float64(e.angle.Pitch) + float64(gyro.Y)*dt
	gyroYaw := float64(e.angle.Yaw) + float64(gyro.Z)*dt

	roll := alpha*gyroRoll + (1-alpha)*accelRoll
	pitch := alpha*gyroPitch + (1-alpha)*accelPitch

	e.angle = EulerAngles{
		Roll:  float32(geo.Wrap180(roll)),
		Pitch: float32(geo.Wrap180(pitch)),
		Yaw:   float32(geo.Wrap360(gyroYaw)),
	}
	return e.angle
}

// Estimate returns the current fused estimate without advancing it.
func (e *Estimator) Estimate() EulerAngles {
	return e.angle
}
