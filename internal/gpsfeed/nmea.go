// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gpsfeed reads NMEA sentences off a serial GPS receiver and
// folds them into the shared flight.State ingest API as gps.Sample
// values. It runs on its own goroutine, outside the 400Hz control
// loop: the position/velocity cascade reads whatever the most recent
// UpdateGPS call left behind.
package gpsfeed

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/geo"
	"github.com/aeroloop/flightcore/internal/gps"
)

// Feed accumulates RMC (position/speed/course) and GGA (satellite
// count) sentences into a single gps.Sample, pushed into State on
// every RMC fix -- the same cadence the source's own fix rate
// provides.
type Feed struct {
	state *flight.State

	lat, lon   float64
	groundKt   float64
	courseDeg  float64
	satellites int
}

// Open opens the serial port at the given name/baud (8 data bits, 1
// stop bit, no parity) and returns it as a reader to pass to Feed.Run.
func Open(portName string, baud int) (io.ReadCloser, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("gpsfeed: open %s: %w", portName, err)
	}
	return port, nil
}

// New returns a Feed that publishes fixes into state.
func New(state *flight.State) *Feed {
	return &Feed{state: state}
}

// Run reads NMEA sentences from r until it returns an error (including
// io.EOF), pushing an updated gps.Sample into the shared state after
// every RMC sentence. Intended to run on its own goroutine for the
// life of the process; the caller decides whether a read error is
// fatal.
func (f *Feed) Run(r io.Reader) error {
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("gpsfeed: read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		switch s := sentence.(type) {
		case nmea.RMC:
			f.lat = s.Latitude
			f.lon = s.Longitude
			f.groundKt = s.Speed
			f.courseDeg = s.Course
			f.publish()

		case nmea.GGA:
			f.satellites = s.NumSatellites

		default:
			// GSA/VTG/GSV carry DOP and satellite-in-view detail this
			// core does not act on; dropped (spec: GPS ingest only
			// needs position, ground speed, heading, satellite count).
		}
	}
}

// publish derives a gps.Sample from the accumulated sentence fields
// and writes it into shared state.
func (f *Feed) publish() {
	pos := geo.Position{Lat: f.lat, Lon: f.lon}
	groundSpeedMS := float32(f.groundKt * 0.514444)
	sample := gps.NewSample(pos, groundSpeedMS, float32(f.courseDeg), f.satellites)
	f.state.UpdateGPS(sample)
}

// RunLogging wraps Run, logging and returning the terminal error
// instead of panicking the caller's goroutine, matching this
// codebase's "log and return" error policy for background feeds.
func (f *Feed) RunLogging(r io.Reader) error {
	err := f.Run(r)
	if err != nil {
		log.Printf("gpsfeed: terminated: %v", err)
	}
	return err
}
