package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// DistanceToSegment returns the minimum distance from a point to the
// segment ab.
func DistanceToSegment(p, a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]

	if dx == 0 && dy == 0 {
		// Segment is a point
		return Distance(p, a)
	}

	// Parameter t for the projection of p onto the line
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)

	if t < 0 {
		return Distance(p, a)
	} else if t > 1 {
		return Distance(p, b)
	}

	closest := orb.Point{a[0] + t*dx, a[1] + t*dy}
	return Distance(p, closest)
}

// Distance returns the Euclidean distance between two campus points.
func Distance(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// SegmentsCross reports whether segment p1-p2 properly intersects
// segment q1-q2, including touching endpoints.
func SegmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear touching cases
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// SegmentIntersection returns the intersection point of segments p1-p2
// and q1-q2 and whether a single such point exists.
func SegmentIntersection(p1, p2, q1, q2 orb.Point) (orb.Point, bool) {
	rx := p2[0] - p1[0]
	ry := p2[1] - p1[1]
	sx := q2[0] - q1[0]
	sy := q2[1] - q1[1]

	denom := rx*sy - ry*sx
	if denom == 0 {
		return orb.Point{}, false
	}

	t := ((q1[0]-p1[0])*sy - (q1[1]-p1[1])*sx) / denom
	u := ((q1[0]-p1[0])*ry - (q1[1]-p1[1])*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return orb.Point{}, false
	}
	return orb.Point{p1[0] + t*rx, p1[1] + t*ry}, true
}

// cross returns the z-component of (b-a) x (c-a).
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment assumes a, b, c are collinear and reports whether c lies on ab.
func onSegment(a, b, c orb.Point) bool {
	return math.Min(a[0], b[0]) <= c[0] && c[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= c[1] && c[1] <= math.Max(a[1], b[1])
}
