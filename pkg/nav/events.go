package nav

import "campusnav/pkg/model"

// EventKind tags a navigation event for observers and stream clients.
type EventKind string

const (
	EventStep            EventKind = "step"
	EventTurn            EventKind = "turn"
	EventFloorChange     EventKind = "floor_change"
	EventStairTransition EventKind = "stair_transition"
)

// Event is the tagged union delivered to session observers. Exactly one
// of the payload fields is non-nil, matching Kind.
type Event struct {
	Kind        EventKind                   `json:"kind"`
	Step        *model.StepEvent            `json:"step,omitempty"`
	Turn        *model.TurnEvent            `json:"turn,omitempty"`
	FloorChange *model.FloorChangeEvent     `json:"floor_change,omitempty"`
	Stair       *model.StairTransitionEvent `json:"stair_transition,omitempty"`
}
