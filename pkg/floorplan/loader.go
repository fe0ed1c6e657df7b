// Package floorplan loads building floor-plan documents and transforms
// their geometry into the campus-wide coordinate frame.
package floorplan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campusnav/pkg/geom"
	"campusnav/pkg/model"
)

// Feature property keys understood by the loader.
const (
	propKind = "kind"
	propRoom = "room"
	propName = "name"

	kindBoundary = "boundary"
	kindWall     = "wall"
	kindEntrance = "entrance"
)

// Document is one building's floor-plan file, geometry in floor-local
// coordinates plus the placement of the building within the campus.
type Document struct {
	Building  model.BuildingID `json:"building"`
	Placement Placement        `json:"placement"`
	Floors    []FloorDoc       `json:"floors"`
	Stairs    []StairDoc       `json:"stairs"`
}

// Placement positions a building in the campus frame.
type Placement struct {
	Scale       float64   `json:"scale"`
	RotationDeg float64   `json:"rotation_deg"`
	Offset      orb.Point `json:"offset"`
}

// FloorDoc is one floor's local geometry.
type FloorDoc struct {
	ID       model.FloorID   `json:"id"`
	Number   int             `json:"number"`
	Features json.RawMessage `json:"features"`
}

// StairDoc is one stairwell in floor-local coordinates.
type StairDoc struct {
	TopFloor    model.FloorID `json:"top_floor"`
	BottomFloor model.FloorID `json:"bottom_floor"`
	Top         orb.Point     `json:"top"`
	Bottom      orb.Point     `json:"bottom"`
}

// Campus is the fully transformed result of loading all floor plans.
// Building order follows file name order; the building/floor detector
// relies on it being stable.
type Campus struct {
	Buildings []model.CampusBuilding
	Stairs    []model.StairPair
	Entrances []model.Entrance
}

// LoadDir loads every *.json floor-plan document in dir. Malformed
// documents or floors are logged and skipped; they are never fatal.
func LoadDir(dir string, logger *slog.Logger) (*Campus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read floorplan dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	campus := &Campus{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable floorplan", "file", name, "error", err)
			continue
		}
		doc, err := Parse(data)
		if err != nil {
			logger.Warn("skipping malformed floorplan", "file", name, "error", err)
			continue
		}
		Merge(campus, doc, logger)
	}

	logger.Info("floor plans loaded",
		"buildings", len(names),
		"floors", len(campus.Buildings),
		"stairs", len(campus.Stairs),
		"entrances", len(campus.Entrances))
	return campus, nil
}

// Parse decodes a single floor-plan document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse floorplan document: %w", err)
	}
	if doc.Building == "" {
		return nil, fmt.Errorf("floorplan document missing building id")
	}
	if doc.Placement.Scale == 0 {
		doc.Placement.Scale = 1
	}
	return &doc, nil
}

// Merge transforms a document into the campus frame and appends its
// floors, stairs and entrances to the campus. Floors with unparseable
// features are skipped.
func Merge(campus *Campus, doc *Document, logger *slog.Logger) {
	tr := geom.Transform{
		Scale:       doc.Placement.Scale,
		RotationDeg: doc.Placement.RotationDeg,
		Offset:      doc.Placement.Offset,
	}

	numbers := make(map[model.FloorID]int, len(doc.Floors))
	for _, f := range doc.Floors {
		numbers[f.ID] = f.Number
	}

	for _, f := range doc.Floors {
		building, err := buildFloor(doc.Building, f, tr)
		if err != nil {
			logger.Warn("skipping malformed floor", "building", doc.Building, "floor", f.ID, "error", err)
			continue
		}
		campus.Buildings = append(campus.Buildings, building)
		campus.Entrances = append(campus.Entrances, building.Constraints.Entrances...)
	}

	for _, s := range doc.Stairs {
		campus.Stairs = append(campus.Stairs, model.StairPair{
			TopPosition:       tr.Apply(s.Top),
			TopFloor:          s.TopFloor,
			TopFloorNumber:    numbers[s.TopFloor],
			BottomPosition:    tr.Apply(s.Bottom),
			BottomFloor:       s.BottomFloor,
			BottomFloorNumber: numbers[s.BottomFloor],
		})
	}
}

func buildFloor(buildingID model.BuildingID, f FloorDoc, tr geom.Transform) (model.CampusBuilding, error) {
	if f.ID == "" {
		return model.CampusBuilding{}, fmt.Errorf("floor missing id")
	}

	fc, err := geojson.UnmarshalFeatureCollection(f.Features)
	if err != nil {
		return model.CampusBuilding{}, fmt.Errorf("failed to parse features: %w", err)
	}

	constraints := &model.FloorConstraintData{Floor: f.ID}
	var boundary []orb.Polygon

	for _, feat := range fc.Features {
		kind, _ := feat.Properties[propKind].(string)
		switch kind {
		case kindBoundary:
			boundary = append(boundary, boundaryPolygons(feat.Geometry, tr)...)
		case kindWall:
			constraints.Walls = append(constraints.Walls, wallSegments(feat.Geometry, tr)...)
		case kindEntrance:
			pt, ok := feat.Geometry.(orb.Point)
			if !ok {
				continue
			}
			constraints.Entrances = append(constraints.Entrances, model.Entrance{
				RoomNumber: stringProp(feat.Properties, propRoom),
				Name:       stringProp(feat.Properties, propName),
				Position:   tr.Apply(pt),
				Building:   buildingID,
				Floor:      f.ID,
			})
		}
	}

	if len(boundary) == 0 {
		return model.CampusBuilding{}, fmt.Errorf("floor has no boundary polygon")
	}

	return model.CampusBuilding{
		Building:    buildingID,
		Floor:       f.ID,
		FloorNumber: f.Number,
		Boundary:    boundary,
		Constraints: constraints,
	}, nil
}

func boundaryPolygons(g orb.Geometry, tr geom.Transform) []orb.Polygon {
	switch geo := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{tr.ApplyPolygon(geo)}
	case orb.MultiPolygon:
		out := make([]orb.Polygon, 0, len(geo))
		for _, poly := range geo {
			out = append(out, tr.ApplyPolygon(poly))
		}
		return out
	}
	return nil
}

func wallSegments(g orb.Geometry, tr geom.Transform) []model.Wall {
	var walls []model.Wall
	appendLine := func(line orb.LineString) {
		for i := 0; i+1 < len(line); i++ {
			a, b := tr.ApplySegment(line[i], line[i+1])
			walls = append(walls, model.Wall{A: a, B: b})
		}
	}

	switch geo := g.(type) {
	case orb.LineString:
		appendLine(geo)
	case orb.MultiLineString:
		for _, line := range geo {
			appendLine(line)
		}
	}
	return walls
}

func stringProp(props geojson.Properties, key string) string {
	if val, ok := props[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
