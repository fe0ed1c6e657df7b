// Package correction detects turns in the tracked path and nudges
// dead-reckoned positions back toward plausible, wall-respecting spots.
package correction

import (
	"math"

	"campusnav/pkg/geom"
	"campusnav/pkg/model"
)

// DetectTurn scans the heading history formed by contextPts followed by
// buffer and reports a turn when either the cumulative heading change or
// the sharpest single step meets thresholdRad. The returned event's
// BufferIndex points at the sharpest single step within buffer; a
// sharpest step that falls inside the context window clamps to 0.
func DetectTurn(contextPts, buffer []model.PathPoint, thresholdRad float64) (model.TurnEvent, bool) {
	combined := make([]model.PathPoint, 0, len(contextPts)+len(buffer))
	combined = append(combined, contextPts...)
	combined = append(combined, buffer...)
	if len(combined) < 2 {
		return model.TurnEvent{}, false
	}

	cumulative := 0.0
	sharpest := 0.0
	sharpestIdx := 1
	for i := 1; i < len(combined); i++ {
		d := geom.AngleDiff(combined[i-1].Heading, combined[i].Heading)
		cumulative += d
		if math.Abs(d) > sharpest {
			sharpest = math.Abs(d)
			sharpestIdx = i
		}
	}

	if math.Abs(cumulative) < thresholdRad && sharpest < thresholdRad {
		return model.TurnEvent{}, false
	}

	bufferIdx := sharpestIdx - len(contextPts)
	if bufferIdx < 0 {
		bufferIdx = 0
	}

	return model.TurnEvent{
		BufferIndex:  bufferIdx,
		PreHeading:   combined[sharpestIdx-1].Heading,
		PostHeading:  combined[sharpestIdx].Heading,
		HeadingDelta: cumulative,
		Position:     combined[sharpestIdx].Position,
	}, true
}
