// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imubus provides the real and simulated internal/imu.Bus
// implementations. The real driver talks to the flight IMU over raw
// SPI rather than through a datasheet-specific device package: the
// chip's register map (WHO_AM_I at 0x00, accel burst at 0x2D, gyro
// burst at 0x33) does not correspond to any device periph.io ships a
// high-level driver for, so this stays one layer down, at
// periph.io/x/conn/v3/spi.
package imubus

import (
	"fmt"
	"time"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/imu"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	regWhoAmI    = 0x00
	regPowerMgmt = 0x06
	regGyroCfg   = 0x01
	regAccelCfg  = 0x14
	regAccel     = 0x2D
	regGyro      = 0x33

	readBit = 0x80

	accelLSBPerG      = 16384.0
	gyroLSBPerDegSec  = 131.0
)

// Bus is the real periph.io-backed implementation of imu.Bus. It reads
// and writes the device over a raw SPI connection, with chip-select
// driven by a dedicated GPIO line.
type Bus struct {
	conn spi.Conn
	cs   gpio.PinIO
}

// Open initializes the periph host, opens the named SPI port, and
// resolves the chip-select GPIO line by name. Call Configure() once
// WhoAmI() has confirmed the device identity: an absent IMU or a
// WHO_AM_I mismatch must abort init so the control loop never starts.
func Open(spiDevice, csPin string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("imubus: periph host init: %w", err)
	}

	port, err := spireg.Open(spiDevice)
	if err != nil {
		return nil, fmt.Errorf("imubus: open SPI port %q: %w", spiDevice, err)
	}

	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("imubus: SPI connect: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("imubus: CS pin %q not found", csPin)
	}

	return &Bus{conn: conn, cs: cs}, nil
}

// WhoAmI reads register 0x00. Per the hardware contract this must
// return 0xEA (imu.Identity) before Configure is called.
func (b *Bus) WhoAmI() (byte, error) {
	return b.readRegister(regWhoAmI)
}

// Configure runs the power/clock/range sequence from the hardware
// contract: reset, select clock source, then set gyro range to +-250
// dps and accel range to +-2g.
func (b *Bus) Configure() error {
	if err := b.writeRegister(regPowerMgmt, 0x80); err != nil {
		return fmt.Errorf("imubus: reset: %w", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := b.writeRegister(regPowerMgmt, 0x01); err != nil {
		return fmt.Errorf("imubus: select clock source: %w", err)
	}
	if err := b.writeRegister(regGyroCfg, 0x00); err != nil {
		return fmt.Errorf("imubus: set gyro range: %w", err)
	}
	if err := b.writeRegister(regAccelCfg, 0x00); err != nil {
		return fmt.Errorf("imubus: set accel range: %w", err)
	}
	return nil
}

// ReadRaw burst-reads six accel bytes from 0x2D and six gyro bytes
// from 0x33, decoding each axis as big-endian high-then-low and
// scaling to g / deg-per-second.
func (b *Bus) ReadRaw() (imu.Raw, error) {
	accelBytes, err := b.burstRead(regAccel, 6)
	if err != nil {
		return imu.Raw{}, fmt.Errorf("imubus: accel burst read: %w", err)
	}
	gyroBytes, err := b.burstRead(regGyro, 6)
	if err != nil {
		return imu.Raw{}, fmt.Errorf("imubus: gyro burst read: %w", err)
	}

	ax := imu.DecodeAxis(accelBytes[0], accelBytes[1])
	ay := imu.DecodeAxis(accelBytes[2], accelBytes[3])
	az := imu.DecodeAxis(accelBytes[4], accelBytes[5])
	gx := imu.DecodeAxis(gyroBytes[0], gyroBytes[1])
	gy := imu.DecodeAxis(gyroBytes[2], gyroBytes[3])
	gz := imu.DecodeAxis(gyroBytes[4], gyroBytes[5])

	return imu.Raw{
		Accel: attitude.Vector3{
			X: float32(ax) / accelLSBPerG,
			Y: float32(ay) / accelLSBPerG,
			Z: float32(az) / accelLSBPerG,
		},
		Gyro: attitude.Vector3{
			X: float32(gx) / gyroLSBPerDegSec,
			Y: float32(gy) / gyroLSBPerDegSec,
			Z: float32(gz) / gyroLSBPerDegSec,
		},
	}, nil
}

func (b *Bus) readRegister(addr byte) (byte, error) {
	tx := []byte{addr | readBit, 0x00}
	rx := make([]byte, len(tx))
	if err := b.exchange(tx, rx); err != nil {
		return 0, err
	}
	return rx[1], nil
}

func (b *Bus) writeRegister(addr, value byte) error {
	tx := []byte{addr &^ readBit, value}
	rx := make([]byte, len(tx))
	return b.exchange(tx, rx)
}

// burstRead reads n consecutive registers starting at addr in a
// single SPI exchange, avoiding the sample skew a per-register read
// loop would introduce.
func (b *Bus) burstRead(addr byte, n int) ([]byte, error) {
	tx := make([]byte, n+1)
	tx[0] = addr | readBit
	rx := make([]byte, n+1)
	if err := b.exchange(tx, rx); err != nil {
		return nil, err
	}
	return rx[1:], nil
}

// exchange frames one SPI transaction with an explicit chip-select
// pulse. The CS line is a plain GPIO rather than the controller's
// dedicated hardware CS0, so it has to be driven by hand around every
// transfer.
func (b *Bus) exchange(tx, rx []byte) error {
	if err := b.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("cs assert: %w", err)
	}
	defer b.cs.Out(gpio.High)
	return b.conn.Tx(tx, rx)
}
