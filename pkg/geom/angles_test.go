package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{math.Pi / 2, math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2 * math.Pi, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	// Crossing the wrap-around must take the short way.
	got := AngleDiff(math.Pi-0.1, -math.Pi+0.1)
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("AngleDiff across wrap = %v, want 0.2", got)
	}

	got = AngleDiff(0.5, 0.2)
	if math.Abs(got+0.3) > 1e-9 {
		t.Errorf("AngleDiff = %v, want -0.3", got)
	}
}

func TestBearing(t *testing.T) {
	origin := orb.Point{0, 0}
	tests := []struct {
		name string
		to   orb.Point
		want float64
	}{
		{"north", orb.Point{0, -10}, 0},
		{"east", orb.Point{10, 0}, math.Pi / 2},
		{"south", orb.Point{0, 10}, math.Pi},
		{"west", orb.Point{-10, 0}, -math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bearing(origin, tt.to); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Bearing = %v, want %v", got, tt.want)
			}
		})
	}
}
