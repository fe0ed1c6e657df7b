package correction

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnav/pkg/model"
)

func pathWithHeadings(headings ...float64) []model.PathPoint {
	pts := make([]model.PathPoint, len(headings))
	for i, h := range headings {
		pts[i] = model.PathPoint{
			Position: orb.Point{float64(i), 0},
			Heading:  h,
		}
	}
	return pts
}

func TestDetectTurnNinetyFiveDegrees(t *testing.T) {
	deg := math.Pi / 180
	ctx := pathWithHeadings(0, 5*deg)
	// Sharpest change happens at the second buffer step.
	buf := pathWithHeadings(10*deg, 80*deg, 95*deg)
	buf[0].Position = orb.Point{2, 0}
	buf[1].Position = orb.Point{3, 0}
	buf[2].Position = orb.Point{4, 0}

	ev, ok := DetectTurn(ctx, buf, 60*deg)
	require.True(t, ok, "95 degree swing above 60 degree threshold")

	assert.InDelta(t, 95*deg, ev.HeadingDelta, 1e-9)
	assert.InDelta(t, 10*deg, ev.PreHeading, 1e-9, "heading going into the sharpest step")
	assert.InDelta(t, 80*deg, ev.PostHeading, 1e-9, "heading coming out of the sharpest step")
	assert.Equal(t, 1, ev.BufferIndex, "sharpest delta is 70 degrees into buf[1]")
	assert.Equal(t, orb.Point{3, 0}, ev.Position)
}

func TestDetectTurnSharpStepUndoneStillReported(t *testing.T) {
	deg := math.Pi / 180
	// A hard right immediately walked back: the cumulative change is
	// zero, but the single 90 degree step is itself above threshold.
	buf := pathWithHeadings(0, 90*deg, 0)
	buf[1].Position = orb.Point{1, 0}

	ev, ok := DetectTurn(nil, buf, 60*deg)
	require.True(t, ok, "single step above threshold must report even when undone")

	assert.InDelta(t, 0, ev.HeadingDelta, 1e-9, "cumulative change cancels out")
	assert.InDelta(t, 0, ev.PreHeading, 1e-9)
	assert.InDelta(t, 90*deg, ev.PostHeading, 1e-9)
	assert.Equal(t, 1, ev.BufferIndex)
	assert.Equal(t, orb.Point{1, 0}, ev.Position)
}

func TestDetectTurnBelowThreshold(t *testing.T) {
	deg := math.Pi / 180
	// Gentle drift, every delta under 10 degrees, cumulative 40.
	buf := pathWithHeadings(0, 8*deg, 16*deg, 24*deg, 32*deg, 40*deg)

	_, ok := DetectTurn(nil, buf, 60*deg)
	assert.False(t, ok)
}

func TestDetectTurnSharpestInContextClampsToZero(t *testing.T) {
	deg := math.Pi / 180
	// The big swing is entirely inside the context window.
	ctx := pathWithHeadings(0, 80*deg)
	buf := pathWithHeadings(85*deg, 90*deg)

	ev, ok := DetectTurn(ctx, buf, 60*deg)
	require.True(t, ok)
	assert.Equal(t, 0, ev.BufferIndex)
}

func TestDetectTurnNeedsTwoPoints(t *testing.T) {
	_, ok := DetectTurn(nil, pathWithHeadings(1.0), 0.1)
	assert.False(t, ok)

	_, ok = DetectTurn(nil, nil, 0.1)
	assert.False(t, ok)
}

func TestDetectTurnWrapAround(t *testing.T) {
	deg := math.Pi / 180
	// Crossing the pi boundary: 170 -> -170 is a +20 degree move.
	buf := pathWithHeadings(120*deg, 170*deg, -170*deg)

	ev, ok := DetectTurn(nil, buf, 60*deg)
	require.True(t, ok)
	assert.InDelta(t, 70*deg, ev.HeadingDelta, 1e-9)
}
