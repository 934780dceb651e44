package control

import (
	"math"
	"testing"

	"github.com/aeroloop/flightcore/internal/attitude"
	"github.com/aeroloop/flightcore/internal/baro"
	"github.com/aeroloop/flightcore/internal/flight"
	"github.com/aeroloop/flightcore/internal/geo"
	"github.com/aeroloop/flightcore/internal/gps"
	"github.com/aeroloop/flightcore/internal/imu"
	"github.com/aeroloop/flightcore/internal/obstacle"
)

// fakeBus is a deterministic imu.Bus for tests: it always reports the
// raw reading it was built with (levelBus: 0 gyro, 1g straight down).
type fakeBus struct {
	raw imu.Raw
	err error
}

func (f *fakeBus) WhoAmI() (byte, error) { return imu.Identity, nil }
func (f *fakeBus) Configure() error      { return nil }
func (f *fakeBus) ReadRaw() (imu.Raw, error) {
	return f.raw, f.err
}

type fakePwm struct {
	last flight.MotorOutputs
	n    int
}

func (p *fakePwm) Write(o flight.MotorOutputs) error {
	p.last = o
	p.n++
	return nil
}

type fakeGpio struct {
	armed bool
}

func (g *fakeGpio) SetArmed(a bool) error {
	g.armed = a
	return nil
}

func levelBus() *fakeBus {
	return &fakeBus{raw: imu.Raw{Accel: attitude.Vector3{Z: 1}}}
}

// primeEstimate ticks the loop 500 times so the complementary filter
// has converged on whatever reading the loop's bus reports before the
// tick under test.
func primeEstimate(t *testing.T, l *Loop, pwm *fakePwm) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if err := l.Tick(); err != nil {
			t.Fatalf("priming tick: %v", err)
		}
	}
}

func newTestLoop(bus imu.Bus) (*Loop, *flight.State, *fakePwm, *fakeGpio) {
	state := flight.New()
	pwm := &fakePwm{}
	gpio := &fakeGpio{}
	l := New(state, bus, pwm, gpio, DefaultGains())
	return l, state, pwm, gpio
}

// Scenario 1 (spec 8): hover-stable.
func TestHoverStable(t *testing.T) {
	bus := levelBus()
	l, state, pwm, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModeStabilize)
	state.SetThrottle(1500)

	primeEstimate(t, l, pwm)

	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	for i, m := range pwm.last[:4] {
		if math.Abs(float64(m)-1500) > 1 {
			t.Errorf("motor %d = %d, want ~1500", i+1, m)
		}
	}
}

// Scenario 2 (spec 8): roll disturbance.
func TestRollDisturbance(t *testing.T) {
	// accel tilted so the estimator settles at roll=+10deg: with
	// az=1 and ay chosen so atan2(ay,az) ~ 10deg.
	ay := float32(math.Tan(10 * math.Pi / 180))
	bus := &fakeBus{raw: imu.Raw{Accel: attitude.Vector3{Y: ay, Z: 1}}}

	l, state, pwm, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModeStabilize)
	state.SetThrottle(1500)

	primeEstimate(t, l, pwm)
	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	m1, m2, m3, m4 := pwm.last[0], pwm.last[1], pwm.last[2], pwm.last[3]
	if !(m1 > 1500 && m3 > 1500) {
		t.Errorf("expected m1,m3 > 1500 under positive roll estimate, got m1=%d m3=%d", m1, m3)
	}
	if !(m2 < 1500 && m4 < 1500) {
		t.Errorf("expected m2,m4 < 1500 under positive roll estimate, got m2=%d m4=%d", m2, m4)
	}
	for i, m := range pwm.last {
		if m < flight.MotorMin || m > flight.MotorMax {
			t.Errorf("motor %d = %d out of range", i+1, m)
		}
	}
}

// Scenario 3 (spec 8): tilt failsafe.
func TestTiltFailsafe(t *testing.T) {
	ay := float32(math.Tan(46 * math.Pi / 180))
	bus := &fakeBus{raw: imu.Raw{Accel: attitude.Vector3{Y: ay, Z: 1}}}

	l, state, pwm, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModeStabilize)
	state.SetThrottle(1500)

	for i := 0; i < 500; i++ {
		if err := l.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	if state.Armed() {
		t.Fatalf("expected disarm after exceeding tilt failsafe")
	}
	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	for i, m := range pwm.last {
		if m != flight.MotorMin {
			t.Errorf("motor %d = %d, want MotorMin after disarm", i+1, m)
		}
	}
}

// Scenario 4 (spec 8): GPS loss demotion.
func TestGPSLossDemotion(t *testing.T) {
	bus := levelBus()
	l, state, _, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModePositionHold)
	state.UpdateGPS(gps.NewSample(geo.Position{}, 0, 0, 3))

	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if got := state.Mode(); got != flight.ModeAltitudeHold {
		t.Errorf("mode = %v, want AltitudeHold after GPS loss", got)
	}
}

// Scenario 5 (spec 8): RTH land.
func TestRTHLand(t *testing.T) {
	bus := levelBus()
	l, state, _, _ := newTestLoop(bus)
	state.Arm()
	home := geo.Position{Lat: 10, Lon: 20}
	state.SetHome(home)
	state.UpdateGPS(gps.NewSample(home, 0, 0, 8))
	state.UpdateBaro(baro.Sample{Altitude: 0.4})
	state.SetFlightMode(flight.ModeReturnToHome)

	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if state.Armed() {
		t.Fatalf("expected disarm on RTH land condition")
	}
}

// Scenario 6 (spec 8): obstacle escape.
func TestObstacleEscape(t *testing.T) {
	bus := levelBus()
	l, state, _, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModeStabilize)
	state.SetSetpoint(attitude.EulerAngles{Pitch: -8})
	state.UpdateObstacle(obstacle.Sample{Distance: 1.5, Bearing: 0, Detected: true})

	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	sp := state.Command().Setpoint
	if sp.Pitch != 0 {
		t.Errorf("pitch setpoint = %v, want 0 after obstacle override", sp.Pitch)
	}
	if math.Abs(float64(sp.Roll)-10) > 0.01 {
		t.Errorf("roll setpoint = %v, want ~10", sp.Roll)
	}
}

func TestIntegratorClampInvariant(t *testing.T) {
	bus := levelBus()
	l, state, _, _ := newTestLoop(bus)
	state.Arm()
	state.SetFlightMode(flight.ModeStabilize)
	state.SetSetpoint(attitude.EulerAngles{Roll: 90}) // sustained large error

	for i := 0; i < 2000; i++ {
		if err := l.Tick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
		if math.Abs(l.rollPID.Integral()) > l.rollPID.MaxI+1e-9 {
			t.Fatalf("integral %v exceeds MaxI %v at tick %d", l.rollPID.Integral(), l.rollPID.MaxI, i)
		}
	}
}

func TestDisarmedMotorsAllMin(t *testing.T) {
	bus := levelBus()
	l, state, pwm, _ := newTestLoop(bus)
	state.Disarm()

	if err := l.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	for i, m := range pwm.last {
		if m != flight.MotorMin {
			t.Errorf("motor %d = %d, want MotorMin while disarmed", i+1, m)
		}
	}
}
