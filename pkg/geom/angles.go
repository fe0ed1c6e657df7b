package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// NormalizeAngle wraps an angle in radians to the range (-pi, pi].
func NormalizeAngle(rad float64) float64 {
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	for rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	return rad
}

// AngleDiff returns the shortest signed angular difference to - from,
// normalized to (-pi, pi].
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// Bearing returns the heading from one campus point toward another.
// Headings use the step convention: 0 = north, clockwise positive, and a
// step advances along (sin h, -cos h).
func Bearing(from, to orb.Point) float64 {
	dx := to[0] - from[0]
	dy := to[1] - from[1]
	return math.Atan2(dx, -dy)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
