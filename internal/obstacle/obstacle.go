// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package obstacle defines the rangefinder snapshot consumed by the
// avoidance override. Rangefinder driving is out of scope here; only
// the shape of the feed matters to the core.
package obstacle

// Sample is a single obstacle-proximity reading relative to the nose.
type Sample struct {
	Distance float32 // meters
	Bearing  float32 // degrees relative to nose
	Detected bool
}
