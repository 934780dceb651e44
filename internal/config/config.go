// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package config loads the flight core's tunables from a flat
// KEY=VALUE file: loop timing, PID gains per axis/cascade, safety
// thresholds, RTH parameters, and the telemetry/hardware endpoints.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aeroloop/flightcore/internal/control"
)

// Config holds all application configuration values.
type Config struct {
	// Hardware
	IMUSPIDevice string
	IMUCSPin     string
	GPSSerialPort string
	GPSBaudRate   int

	// MQTT telemetry
	MQTTBroker          string
	MQTTClientID        string
	TopicCommand        string
	TopicIMU            string
	TopicGPS            string
	TopicMotors         string
	TelemetryIntervalMS int

	// Websocket telemetry
	WebTelemetryPort int

	// Safety / RTH thresholds
	TiltFailsafeDeg float64
	RTHAltitudeM    float64

	// PID gains
	Gains control.Gains
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct,
// seeded with control.DefaultGains() so a config file only needs to
// override the gains it actually wants to tune.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		TiltFailsafeDeg: 45,
		RTHAltitudeM:    20,
		Gains:           control.DefaultGains(),
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = v

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_MOTORS":
		c.TopicMotors = value
	case "TELEMETRY_INTERVAL_MS":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TELEMETRY_INTERVAL_MS %q: %w", value, err)
		}
		c.TelemetryIntervalMS = v

	case "WEB_TELEMETRY_PORT":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_TELEMETRY_PORT %q: %w", value, err)
		}
		c.WebTelemetryPort = v

	case "TILT_FAILSAFE_DEG":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TILT_FAILSAFE_DEG %q: %w", value, err)
		}
		c.TiltFailsafeDeg = v
	case "RTH_ALTITUDE_M":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RTH_ALTITUDE_M %q: %w", value, err)
		}
		c.RTHAltitudeM = v

	case "ROLL_KP":
		return setFloat(&c.Gains.RollKp, value, key)
	case "ROLL_KI":
		return setFloat(&c.Gains.RollKi, value, key)
	case "ROLL_KD":
		return setFloat(&c.Gains.RollKd, value, key)
	case "ROLL_MAX_I":
		return setFloat(&c.Gains.RollMaxI, value, key)
	case "PITCH_KP":
		return setFloat(&c.Gains.PitchKp, value, key)
	case "PITCH_KI":
		return setFloat(&c.Gains.PitchKi, value, key)
	case "PITCH_KD":
		return setFloat(&c.Gains.PitchKd, value, key)
	case "PITCH_MAX_I":
		return setFloat(&c.Gains.PitchMaxI, value, key)
	case "YAW_KP":
		return setFloat(&c.Gains.YawKp, value, key)
	case "YAW_KI":
		return setFloat(&c.Gains.YawKi, value, key)
	case "YAW_KD":
		return setFloat(&c.Gains.YawKd, value, key)
	case "YAW_MAX_I":
		return setFloat(&c.Gains.YawMaxI, value, key)
	case "ALT_OUTER_KP":
		return setFloat(&c.Gains.AltOuterKp, value, key)
	case "ALT_OUTER_KI":
		return setFloat(&c.Gains.AltOuterKi, value, key)
	case "ALT_OUTER_KD":
		return setFloat(&c.Gains.AltOuterKd, value, key)
	case "ALT_INNER_KP":
		return setFloat(&c.Gains.AltInnerKp, value, key)
	case "ALT_INNER_KI":
		return setFloat(&c.Gains.AltInnerKi, value, key)
	case "ALT_INNER_KD":
		return setFloat(&c.Gains.AltInnerKd, value, key)
	case "POS_KP":
		return setFloat(&c.Gains.PosKp, value, key)
	case "POS_KI":
		return setFloat(&c.Gains.PosKi, value, key)
	case "POS_KD":
		return setFloat(&c.Gains.PosKd, value, key)
	case "VEL_KP":
		return setFloat(&c.Gains.VelKp, value, key)
	case "VEL_KI":
		return setFloat(&c.Gains.VelKi, value, key)
	case "VEL_KD":
		return setFloat(&c.Gains.VelKd, value, key)

	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setFloat(dst *float64, value, key string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	if c.TelemetryIntervalMS == 0 {
		return fmt.Errorf("TELEMETRY_INTERVAL_MS is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so repeated calls (e.g. from multiple cmd entry points in
// the same process) are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
