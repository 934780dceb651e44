package flight

import (
	"sync"
	"testing"

	"github.com/aeroloop/flightcore/internal/geo"
	"github.com/aeroloop/flightcore/internal/gps"
)

func TestNewStateDefaults(t *testing.T) {
	s := New()
	if s.Armed() {
		t.Errorf("new state should be disarmed")
	}
	if s.Mode() != ModeManual {
		t.Errorf("new state mode = %v, want Manual", s.Mode())
	}
	for i, m := range s.GetMotors() {
		if m != MotorMin {
			t.Errorf("motor %d = %d, want MotorMin", i, m)
		}
	}
}

func TestArmDisarm(t *testing.T) {
	s := New()
	s.Arm()
	if !s.Armed() {
		t.Fatalf("expected armed after Arm()")
	}
	s.Disarm()
	if s.Armed() {
		t.Fatalf("expected disarmed after Disarm()")
	}
}

func TestCommandSnapshotIsConsistent(t *testing.T) {
	s := New()
	home := geo.Position{Lat: 1, Lon: 2}
	s.SetHome(home)
	s.SetThrottle(1600)
	s.SetTargetAltitude(15)

	cmd := s.Command()
	if cmd.Home != home || cmd.Throttle != 1600 || cmd.TargetAltitude != 15 {
		t.Errorf("command snapshot = %+v, fields did not round-trip", cmd)
	}
}

func TestGPSFixValidityDerivedAtPublish(t *testing.T) {
	s := New()
	s.UpdateGPS(gps.NewSample(geo.Position{}, 0, 0, 3))
	if s.GetGPS().FixValid {
		t.Errorf("3 satellites should not be a valid fix")
	}
	s.UpdateGPS(gps.NewSample(geo.Position{}, 0, 0, 8))
	if !s.GetGPS().FixValid {
		t.Errorf("8 satellites should be a valid fix")
	}
}

// Concurrent readers/writers on independent snapshots must not race or
// deadlock (spec 5's single-writer/single-reader-per-snapshot model).
func TestConcurrentAccessDoesNotRace(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.UpdateGPS(gps.NewSample(geo.Position{}, 0, 0, 8))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.GetGPS()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.SetThrottle(1500)
		}
	}()

	wg.Wait()
}
