package model

import (
	"github.com/paulmach/orb"
)

// StepEvent is emitted by the tracker for every processed footstep.
type StepEvent struct {
	StrideLengthCm float64   `json:"stride_length_cm"`
	Cadence        float64   `json:"cadence"`
	Position       orb.Point `json:"position"`
	Heading        float64   `json:"heading"`
}

// TurnEvent reports an abrupt heading change in recent step history.
// PreHeading and PostHeading bracket the sharpest single step;
// HeadingDelta is the cumulative change over the whole window.
// BufferIndex is relative to the in-progress step buffer the detector
// was given; entries from the leading context clamp to 0.
type TurnEvent struct {
	BufferIndex  int       `json:"buffer_index"`
	PreHeading   float64   `json:"pre_heading"`
	PostHeading  float64   `json:"post_heading"`
	HeadingDelta float64   `json:"heading_delta"`
	Position     orb.Point `json:"position"`
}

// FloorChangeEvent reports that the detected building/floor changed.
// Building and Floor are nil when the user is outdoors.
type FloorChangeEvent struct {
	Building *BuildingID `json:"building"`
	Floor    *FloorID    `json:"floor"`
}

// StairTransitionEvent is emitted when a stairwell transition is confirmed.
// PreClimbedSteps credits the steps already taken between the candidate
// latch and the classifier confirmation.
type StairTransitionEvent struct {
	Pair            StairPair      `json:"pair"`
	Direction       StairDirection `json:"direction"`
	StartPosition   orb.Point      `json:"start_position"`
	EndPosition     orb.Point      `json:"end_position"`
	FromFloor       FloorID        `json:"from_floor"`
	ToFloor         FloorID        `json:"to_floor"`
	PreClimbedSteps int            `json:"pre_climbed_steps"`
}
