package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Transform places floor-local geometry into the campus-wide frame.
// Application order is scale, then rotation, then translation. The
// transform is invertible whenever Scale > 0.
type Transform struct {
	Scale       float64
	RotationDeg float64
	Offset      orb.Point
}

// Identity returns a transform that maps every point to itself.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a floor-local point into the campus frame.
func (t Transform) Apply(p orb.Point) orb.Point {
	sin, cos := math.Sincos(t.RotationDeg * math.Pi / 180.0)
	x := p[0] * t.Scale
	y := p[1] * t.Scale
	return orb.Point{
		x*cos - y*sin + t.Offset[0],
		x*sin + y*cos + t.Offset[1],
	}
}

// Invert maps a campus-frame point back into floor-local coordinates.
// Scale must be > 0; a non-positive scale returns the input unchanged.
func (t Transform) Invert(p orb.Point) orb.Point {
	if t.Scale <= 0 {
		return p
	}
	sin, cos := math.Sincos(t.RotationDeg * math.Pi / 180.0)
	x := p[0] - t.Offset[0]
	y := p[1] - t.Offset[1]
	// Inverse rotation, then inverse scale.
	rx := x*cos + y*sin
	ry := -x*sin + y*cos
	return orb.Point{rx / t.Scale, ry / t.Scale}
}

// ApplySegment transforms both endpoints of a wall segment.
func (t Transform) ApplySegment(a, b orb.Point) (orb.Point, orb.Point) {
	return t.Apply(a), t.Apply(b)
}

// ApplyRing transforms every vertex of a polygon ring.
func (t Transform) ApplyRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = t.Apply(p)
	}
	return out
}

// ApplyPolygon transforms every ring of a polygon.
func (t Transform) ApplyPolygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		out[i] = t.ApplyRing(ring)
	}
	return out
}
