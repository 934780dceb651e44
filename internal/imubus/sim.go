// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imubus

import (
	"math/rand"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/imu"
)

// Sim is a host-simulation imu.Bus: it never touches real hardware
// and reports a level, lightly-noisy attitude so the control core can
// run (and be demoed) on a development machine without a periph.io
// target.
type Sim struct {
	rng *rand.Rand
}

// NewSim returns a Sim seeded deterministically, so simulated runs are
// reproducible.
func NewSim(seed int64) *Sim {
	return &Sim{rng: rand.New(rand.NewSource(seed))}
}

func (s *Sim) WhoAmI() (byte, error) { return imu.Identity, nil }

func (s *Sim) Configure() error { return nil }

// ReadRaw reports level flight (1g on Z, no rotation) plus small
// Gaussian noise, wide enough to exercise the complementary filter's
// convergence behavior without ever tripping the tilt failsafe.
func (s *Sim) ReadRaw() (imu.Raw, error) {
	noise := func(sigma float64) float32 { return float32(s.rng.NormFloat64() * sigma) }
	return imu.Raw{
		Accel: attitude.Vector3{
			X: noise(0.01),
			Y: noise(0.01),
			Z: 1 + noise(0.005),
		},
		Gyro: attitude.Vector3{
			X: noise(0.2),
			Y: noise(0.2),
			Z: noise(0.2),
		},
	}, nil
}
