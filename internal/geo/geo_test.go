package geo

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		x, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
	}
	for _, c := range cases {
		if got := Clamp(c.x, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%v,%v,%v) = %v, want %v", c.x, c.lo, c.hi, got, c.want)
		}
	}
}

func TestClampNaN(t *testing.T) {
	if got := Clamp(math.NaN(), 0, 10); !math.IsNaN(got) {
		t.Errorf("Clamp(NaN) = %v, want NaN propagated", got)
	}
}

func TestWrap180(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{180, -180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{540, -180},
	}
	for _, c := range cases {
		if got := Wrap180(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Wrap180(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestWrap180Idempotent(t *testing.T) {
	for _, a := range []float64{0, 45, -45, 179, -179, 360, 721, -721} {
		w1 := Wrap180(a)
		w2 := Wrap180(w1)
		if math.Abs(w1-w2) > 1e-9 {
			t.Errorf("Wrap180 not idempotent at %v: %v != %v", a, w1, w2)
		}
	}
}

func TestWrap360Range(t *testing.T) {
	for _, a := range []float64{-720, -361, -1, 0, 359, 360, 361, 720.5} {
		w := Wrap360(a)
		if w < 0 || w >= 360 {
			t.Errorf("Wrap360(%v) = %v, out of [0,360)", a, w)
		}
	}
}

func TestDistanceSelfZero(t *testing.T) {
	p := Position{Lat: 37.7749, Lon: -122.4194}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("DistanceMeters(p,p) = %v, want 0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	p1 := Position{Lat: 37.7749, Lon: -122.4194}
	p2 := Position{Lat: 34.0522, Lon: -118.2437}
	d1 := DistanceMeters(p1, p2)
	d2 := DistanceMeters(p2, p1)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("distance not symmetric: %v != %v", d1, d2)
	}
	// SF to LA is roughly 560km.
	if d1 < 500_000 || d1 > 620_000 {
		t.Errorf("distance SF->LA = %v, expected ~560km", d1)
	}
}

func TestBearingCardinal(t *testing.T) {
	origin := Position{Lat: 0, Lon: 0}
	north := Position{Lat: 1, Lon: 0}
	east := Position{Lat: 0, Lon: 1}

	if b := BearingDeg(origin, north); math.Abs(b-0) > 0.5 {
		t.Errorf("bearing to due north = %v, want ~0", b)
	}
	if b := BearingDeg(origin, east); math.Abs(b-90) > 0.5 {
		t.Errorf("bearing to due east = %v, want ~90", b)
	}
}
