// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry publishes periodic snapshots of flight.State over
// MQTT and a websocket, outside the 400Hz control loop: telemetry is
// observational and must never add a suspension point to the tick
// path.
package telemetry

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/aeroloop/flightcore/internal/flight"
)

// MQTTPublisher periodically publishes JSON snapshots of the shared
// flight state to configured topics.
type MQTTPublisher struct {
	client   mqtt.Client
	state    *flight.State
	topics   Topics
	interval time.Duration
}

// Topics names the MQTT topics telemetry publishes to.
type Topics struct {
	Command string
	IMU     string
	GPS     string
	Motors  string
}

// Snapshot is the JSON shape published to Topics.Command once per
// telemetry interval. The IMU, GPS and Motors topics carry the bare
// imu.Sample, gps.Sample and MotorOutputs values instead.
type Snapshot struct {
	Time    time.Time           `json:"time"`
	Armed   bool                `json:"armed"`
	Mode    string              `json:"mode"`
	Command flight.Command      `json:"command"`
	Motors  flight.MotorOutputs `json:"motors"`
}

// NewMQTTPublisher connects to broker under clientID. The connection
// attempt is synchronous: it returns only after the broker has
// accepted or refused the connection.
func NewMQTTPublisher(broker, clientID string, state *flight.State, topics Topics, interval time.Duration) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	return &MQTTPublisher{client: client, state: state, topics: topics, interval: interval}, nil
}

// Run publishes a Snapshot every interval until ctx-like stop channel
// closes. Publish errors are logged, never fatal: a dropped telemetry
// sample must not affect flight.
func (p *MQTTPublisher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.client.Disconnect(250)

	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			p.publishOnce(t)
		}
	}
}

func (p *MQTTPublisher) publishOnce(t time.Time) {
	snap := Snapshot{
		Time:    t,
		Armed:   p.state.Armed(),
		Mode:    p.state.Mode().String(),
		Command: p.state.Command(),
		Motors:  p.state.GetMotors(),
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("telemetry: marshal error: %v", err)
		return
	}

	if token := p.client.Publish(p.topics.Command, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("telemetry: publish %s: %v", p.topics.Command, token.Error())
	}

	imuSample := p.state.GetIMU()
	if payload, err := json.Marshal(imuSample); err == nil {
		if token := p.client.Publish(p.topics.IMU, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: publish %s: %v", p.topics.IMU, token.Error())
		}
	}

	gpsSample := p.state.GetGPS()
	if payload, err := json.Marshal(gpsSample); err == nil {
		if token := p.client.Publish(p.topics.GPS, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: publish %s: %v", p.topics.GPS, token.Error())
		}
	}

	if payload, err := json.Marshal(snap.Motors); err == nil {
		if token := p.client.Publish(p.topics.Motors, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("telemetry: publish %s: %v", p.topics.Motors, token.Error())
		}
	}
}
