package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistanceToSegment(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}

	tests := []struct {
		name string
		p    orb.Point
		want float64
	}{
		{"above middle", orb.Point{5, 3}, 3},
		{"beyond end", orb.Point{13, 4}, 5},
		{"before start", orb.Point{-3, -4}, 5},
		{"on segment", orb.Point{7, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceToSegment(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DistanceToSegment = %v, want %v", got, tt.want)
			}
		})
	}

	// Degenerate zero-length segment
	if got := DistanceToSegment(orb.Point{3, 4}, a, a); math.Abs(got-5) > 1e-9 {
		t.Errorf("degenerate segment distance = %v, want 5", got)
	}
}

func TestSegmentsCross(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, q1, q2 orb.Point
		want           bool
	}{
		{"plain crossing", orb.Point{0, 0}, orb.Point{10, 10}, orb.Point{0, 10}, orb.Point{10, 0}, true},
		{"parallel", orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{0, 1}, orb.Point{10, 1}, false},
		{"disjoint", orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{5, 5}, orb.Point{6, 5}, false},
		{"touching endpoint", orb.Point{0, 0}, orb.Point{5, 5}, orb.Point{5, 5}, orb.Point{10, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsCross(tt.p1, tt.p2, tt.q1, tt.q2); got != tt.want {
				t.Errorf("SegmentsCross = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentIntersection(t *testing.T) {
	pt, ok := SegmentIntersection(orb.Point{0, 0}, orb.Point{10, 10}, orb.Point{0, 10}, orb.Point{10, 0})
	if !ok {
		t.Fatal("expected intersection")
	}
	if math.Abs(pt[0]-5) > 1e-9 || math.Abs(pt[1]-5) > 1e-9 {
		t.Errorf("intersection = %v, want (5, 5)", pt)
	}

	if _, ok := SegmentIntersection(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1}); ok {
		t.Error("parallel segments must not intersect")
	}
}
