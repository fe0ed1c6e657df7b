package model

import (
	"github.com/paulmach/orb"
)

// BuildingID identifies a building within the campus.
type BuildingID string

// FloorID identifies a single floor of a building.
type FloorID string

// PathPoint is one fix on a tracked path. Points are immutable once
// appended; a correction produces a new point, it never rewrites history.
type PathPoint struct {
	Position orb.Point `json:"position"`
	// Heading in radians, 0 = north, clockwise positive, normalized to (-pi, pi].
	Heading float64 `json:"heading"`
}

// Wall is a single wall segment in campus-wide coordinates.
type Wall struct {
	A orb.Point `json:"a"`
	B orb.Point `json:"b"`
}

// Entrance describes a routable doorway on a floor.
type Entrance struct {
	RoomNumber string     `json:"room_number"`
	Name       string     `json:"name"`
	Position   orb.Point  `json:"position"`
	Building   BuildingID `json:"building"`
	Floor      FloorID    `json:"floor"`
}

// FloorConstraintData carries the walls and entrances of one floor,
// already transformed into the campus frame. The navigation core treats
// it as read-only; it is swapped wholesale on floor change or reload.
type FloorConstraintData struct {
	Floor     FloorID    `json:"floor"`
	Walls     []Wall     `json:"walls"`
	Entrances []Entrance `json:"entrances"`
}

// CampusBuilding is one floor of one building, placed in the campus frame.
// The order of buildings in a slice is significant: the building/floor
// detector returns the first containing match, not the nearest.
type CampusBuilding struct {
	Building    BuildingID           `json:"building"`
	Floor       FloorID              `json:"floor"`
	FloorNumber int                  `json:"floor_number"`
	Boundary    []orb.Polygon        `json:"boundary"`
	Constraints *FloorConstraintData `json:"constraints"`
}

// StairPair models one physical stairwell connecting a point on one
// floor to the corresponding point on the adjacent floor above it.
type StairPair struct {
	TopPosition    orb.Point `json:"top_position"`
	TopFloor       FloorID   `json:"top_floor"`
	TopFloorNumber int       `json:"top_floor_number"`

	BottomPosition    orb.Point `json:"bottom_position"`
	BottomFloor       FloorID   `json:"bottom_floor"`
	BottomFloorNumber int       `json:"bottom_floor_number"`
}

// StairDirection is the vertical direction of a stairwell transition.
type StairDirection int

const (
	StairUp StairDirection = iota
	StairDown
)

func (d StairDirection) String() string {
	if d == StairUp {
		return "up"
	}
	return "down"
}

// FloorPathSegment is the portion of a route confined to a single floor,
// or the stair connector between two floors (IsTransition).
type FloorPathSegment struct {
	Floor        FloorID     `json:"floor"`
	FloorNumber  int         `json:"floor_number"`
	Building     BuildingID  `json:"building"`
	Waypoints    []orb.Point `json:"waypoints"`
	IsTransition bool        `json:"is_transition"`
}

// Route is an ordered list of per-floor segments. An empty route means
// no path was found.
type Route []FloorPathSegment

// ClassifierLabel is one output of the external motion classifier.
// The core depends only on this pair, never on the classifier internals.
type ClassifierLabel struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Motion classifier labels the stair detector understands.
const (
	LabelUpstairs   = "upstairs"
	LabelDownstairs = "downstairs"
)
