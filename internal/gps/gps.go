// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gps defines the GPS snapshot the control core consumes. NMEA
// parsing and serial ingest live in internal/gpsfeed; this package is
// just the shape of the data the position cascade reads.
package gps

import "github.com/aeroloop/flightcore/internal/geo"

// MinSatsForFix is the satellite-count threshold below which a fix is
// considered unusable, regardless of what the receiver itself reports.
const MinSatsForFix = 6

// Sample is a single GPS snapshot. FixValid must always equal
// Satellites >= MinSatsForFix; producers enforce this at construction
// rather than leaving it to be derived by readers.
type Sample struct {
	Pos          geo.Position
	GroundSpeed  float32 // m/s
	HeadingDeg   float32 // course over ground, 0=N, clockwise
	Satellites   int
	FixValid     bool
}

// NewSample builds a Sample, deriving FixValid from the satellite
// count so producers cannot construct an inconsistent snapshot.
func NewSample(pos geo.Position, groundSpeed, headingDeg float32, satellites int) Sample {
	return Sample{
		Pos:         pos,
		GroundSpeed: groundSpeed,
		HeadingDeg:  headingDeg,
		Satellites:  satellites,
		FixValid:    satellites >= MinSatsForFix,
	}
}
