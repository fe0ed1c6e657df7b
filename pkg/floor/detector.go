// Package floor resolves a campus position to the building floor whose
// boundary contains it.
package floor

import (
	"log/slog"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"campusnav/pkg/model"
)

// Detector maps positions to floors. Candidate floors are checked in
// list order and the first containing boundary wins, so overlapping
// footprints resolve deterministically.
type Detector struct {
	mu        sync.Mutex
	logger    *slog.Logger
	buildings []model.CampusBuilding

	current   *model.CampusBuilding // nil while outdoors
	havePrior bool
}

// NewDetector creates a detector over the loaded campus floors.
func NewDetector(buildings []model.CampusBuilding, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger, buildings: buildings}
}

// SetInitial pins the current floor by id, bypassing geometry. Used
// when the session origin names its floor explicitly.
func (d *Detector) SetInitial(floor model.FloorID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.havePrior = true
	d.current = nil
	for i := range d.buildings {
		if d.buildings[i].Floor == floor {
			d.current = &d.buildings[i]
			return
		}
	}
}

// Current returns the floor the detector last resolved to, or false
// while outdoors or before any update.
func (d *Detector) Current() (model.CampusBuilding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return model.CampusBuilding{}, false
	}
	return *d.current, true
}

// Locate resolves a position without touching detector state.
func (d *Detector) Locate(p orb.Point) (model.CampusBuilding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b := d.locate(p); b != nil {
		return *b, true
	}
	return model.CampusBuilding{}, false
}

// Update resolves a position and reports whether the floor changed
// since the previous update. On change it returns the event and the
// new floor's constraints (nil when the position is outdoors).
func (d *Detector) Update(p orb.Point) (model.FloorChangeEvent, *model.FloorConstraintData, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	found := d.locate(p)

	// Floors of one building overlap in plan view, and horizontal
	// movement cannot change floors. Stay pinned until the user leaves
	// the building; only stair transitions switch floors within it.
	if d.havePrior && d.current != nil && found != nil && d.current.Building == found.Building {
		return model.FloorChangeEvent{}, nil, false
	}

	changed := !d.havePrior || !sameFloor(d.current, found)
	d.havePrior = true
	d.current = found
	if !changed {
		return model.FloorChangeEvent{}, nil, false
	}

	if found == nil {
		d.logger.Debug("position resolved outdoors", "x", p[0], "y", p[1])
		return model.FloorChangeEvent{}, nil, true
	}

	building := found.Building
	floorID := found.Floor
	d.logger.Info("floor changed", "building", building, "floor", floorID)
	return model.FloorChangeEvent{
		Building: &building,
		Floor:    &floorID,
	}, found.Constraints, true
}

func (d *Detector) locate(p orb.Point) *model.CampusBuilding {
	for i := range d.buildings {
		if containsPoint(d.buildings[i].Boundary, p) {
			return &d.buildings[i]
		}
	}
	return nil
}

func sameFloor(a, b *model.CampusBuilding) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Floor == b.Floor
}

// containsPoint tests the boundary polygons in order. Degenerate rings
// with fewer than three vertices contain nothing.
func containsPoint(polys []orb.Polygon, p orb.Point) bool {
	for _, poly := range polys {
		if len(poly) == 0 || len(poly[0]) < 3 {
			continue
		}
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}
