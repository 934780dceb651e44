// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aeroloop/flightcore/internal/flight"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard, not exposed beyond the operator's network
	},
}

// Dashboard pushes the same Snapshot telemetry publishes to MQTT over
// a websocket, for a local ground-control dashboard.
type Dashboard struct {
	state    *flight.State
	interval time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewDashboard returns a Dashboard that broadcasts a Snapshot to every
// connected client every interval.
func NewDashboard(state *flight.State, interval time.Duration) *Dashboard {
	return &Dashboard{
		state:    state,
		interval: interval,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades the connection and registers it for broadcast. This
// is a push-only telemetry feed: inbound messages are read only to
// detect disconnect and are otherwise ignored, so a client that never
// sends anything is still served.
func (d *Dashboard) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: websocket upgrade error: %v", err)
		return
	}

	d.mu.Lock()
	d.conns[conn] = struct{}{}
	d.mu.Unlock()

	// Block on reads purely to detect client disconnect; any inbound
	// message is ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	d.mu.Lock()
	delete(d.conns, conn)
	d.mu.Unlock()
	conn.Close()
}

// Run broadcasts a Snapshot to every connected client every interval,
// until stop closes.
func (d *Dashboard) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			d.broadcast(t)
		}
	}
}

func (d *Dashboard) broadcast(t time.Time) {
	snap := Snapshot{
		Time:    t,
		Armed:   d.state.Armed(),
		Mode:    d.state.Mode().String(),
		Command: d.state.Command(),
		Motors:  d.state.GetMotors(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for conn := range d.conns {
		if err := conn.WriteJSON(snap); err != nil {
			log.Printf("telemetry: websocket write error: %v", err)
			conn.Close()
			delete(d.conns, conn)
		}
	}
}
