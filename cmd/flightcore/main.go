// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeroloop/flightcore/internal/config"
	"github.com/aeroloop/flightcore/internal/control"
	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/gpsfeed"
	"github.com/aeroloop/flightcore/internal/imu"
	"github.com/aeroloop/flightcore/internal/imubus"
	"github.com/aeroloop/flightcore/internal/pwmsink"
	"github.com/aeroloop/flightcore/internal/scheduler"
	"github.com/aeroloop/flightcore/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "./flightcore_config.txt", "path to configuration file")
	sim := flag.Bool("sim", false, "run against simulated IMU/PWM/GPIO instead of real hardware")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	state := flight.New()

	bus, pwm, armingLED, err := openHardware(cfg, *sim)
	if err != nil {
		log.Fatalf("hardware init: %v", err)
	}

	who, err := bus.WhoAmI()
	if err != nil || who != imu.Identity {
		log.Fatalf("IMU identity check failed: got 0x%02X, want 0x%02X, err=%v", who, imu.Identity, err)
	}
	if err := bus.Configure(); err != nil {
		log.Fatalf("IMU configure: %v", err)
	}

	loop := control.New(state, bus, pwm, armingLED, cfg.Gains)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	sched := scheduler.New(time.Second/control.LoopHz, loop.Tick)
	sched.OnOverrun = func(d time.Duration) {
		log.Printf("control loop overrun by %v", d)
	}

	g.Go(func() error {
		err := sched.Run(gctx)
		// The scheduler only stops on context cancellation (a signal,
		// or another supervised goroutine failing; tick errors are
		// logged and ticking continues). Either way the actuation layer
		// must see MOTOR_MIN before this goroutine returns.
		if writeErr := pwm.Write(flight.AllMin()); writeErr != nil {
			log.Printf("failed to zero motors on shutdown: %v", writeErr)
		}
		return err
	})

	if !*sim {
		g.Go(func() error {
			port, err := gpsfeed.Open(cfg.GPSSerialPort, cfg.GPSBaudRate)
			if err != nil {
				return err
			}
			defer port.Close()
			return gpsfeed.New(state).Run(port)
		})
	}

	telemetryStop := make(chan struct{})
	g.Go(func() error {
		<-gctx.Done()
		close(telemetryStop)
		return nil
	})

	if cfg.MQTTBroker != "" {
		topics := telemetry.Topics{
			Command: cfg.TopicCommand,
			IMU:     cfg.TopicIMU,
			GPS:     cfg.TopicGPS,
			Motors:  cfg.TopicMotors,
		}
		pub, err := telemetry.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, state, topics,
			time.Duration(cfg.TelemetryIntervalMS)*time.Millisecond)
		if err != nil {
			log.Fatalf("mqtt telemetry: %v", err)
		}
		g.Go(func() error {
			pub.Run(telemetryStop)
			return nil
		})
	}

	if cfg.WebTelemetryPort != 0 {
		dash := telemetry.NewDashboard(state, time.Duration(cfg.TelemetryIntervalMS)*time.Millisecond)
		g.Go(func() error {
			dash.Run(telemetryStop)
			return nil
		})

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", dash.Handler)
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebTelemetryPort), Handler: mux}

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	log.Println("flightcore running")
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("fatal: %v", err)
	}
}

// openHardware returns the IMU bus, motor PWM sink, and arming-LED
// GPIO, backed by real periph.io peripherals or the host-simulation
// doubles depending on sim.
func openHardware(cfg *config.Config, sim bool) (imu.Bus, flight.PwmSink, flight.Gpio, error) {
	if sim {
		return imubus.NewSim(1), pwmsink.NewSimSink(), pwmsink.NewSimGpio(), nil
	}

	bus, err := imubus.Open(cfg.IMUSPIDevice, cfg.IMUCSPin)
	if err != nil {
		return nil, nil, nil, err
	}

	pwm, err := pwmsink.Open(motorPins)
	if err != nil {
		return nil, nil, nil, err
	}

	led, err := pwmsink.OpenArmingLED(armingLEDPin)
	if err != nil {
		return nil, nil, nil, err
	}

	return bus, pwm, led, nil
}

// motorPins and armingLEDPin name the GPIO lines driving the 8 motor
// channels and the arming LED. Fixed rather than configurable: they
// describe the airframe's wiring, not a deployment-time tunable.
var motorPins = [8]string{
	"GPIO17", "GPIO27", "GPIO22", "GPIO23",
	"GPIO24", "GPIO25", "GPIO5", "GPIO6",
}

const armingLEDPin = "GPIO26"
