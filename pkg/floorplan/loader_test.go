package floorplan

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"campusnav/pkg/model"
)

const scienceDoc = `{
  "building": "science",
  "placement": {"scale": 1, "rotation_deg": 0, "offset": [100, 50]},
  "floors": [
    {
      "id": "science-1",
      "number": 1,
      "features": {
        "type": "FeatureCollection",
        "features": [
          {"type": "Feature", "properties": {"kind": "boundary"},
           "geometry": {"type": "Polygon", "coordinates": [[[0,0],[40,0],[40,30],[0,30],[0,0]]]}},
          {"type": "Feature", "properties": {"kind": "wall"},
           "geometry": {"type": "LineString", "coordinates": [[10,0],[10,20],[30,20]]}},
          {"type": "Feature", "properties": {"kind": "entrance", "room": "101", "name": "Physics Lab"},
           "geometry": {"type": "Point", "coordinates": [12, 18]}}
        ]
      }
    },
    {
      "id": "science-2",
      "number": 2,
      "features": {
        "type": "FeatureCollection",
        "features": [
          {"type": "Feature", "properties": {"kind": "boundary"},
           "geometry": {"type": "Polygon", "coordinates": [[[0,0],[40,0],[40,30],[0,30],[0,0]]]}}
        ]
      }
    }
  ],
  "stairs": [
    {"top_floor": "science-2", "bottom_floor": "science-1", "top": [38, 2], "bottom": [38, 2]}
  ]
}`

func TestParseAndMerge(t *testing.T) {
	doc, err := Parse([]byte(scienceDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	campus := &Campus{}
	Merge(campus, doc, slog.Default())

	if len(campus.Buildings) != 2 {
		t.Fatalf("buildings = %d, want 2 floors", len(campus.Buildings))
	}

	f1 := campus.Buildings[0]
	if f1.Floor != "science-1" || f1.Building != "science" || f1.FloorNumber != 1 {
		t.Errorf("floor 1 identity wrong: %+v", f1)
	}

	// Placement offset applied to boundary
	v := f1.Boundary[0][0][1]
	if v[0] != 140 || v[1] != 50 {
		t.Errorf("boundary vertex = %v, want (140, 50)", v)
	}

	// LineString with 3 points becomes 2 wall segments
	if len(f1.Constraints.Walls) != 2 {
		t.Errorf("walls = %d, want 2", len(f1.Constraints.Walls))
	}

	if len(campus.Entrances) != 1 {
		t.Fatalf("entrances = %d, want 1", len(campus.Entrances))
	}
	ent := campus.Entrances[0]
	if ent.RoomNumber != "101" || ent.Name != "Physics Lab" {
		t.Errorf("entrance metadata wrong: %+v", ent)
	}
	if math.Abs(ent.Position[0]-112) > 1e-9 || math.Abs(ent.Position[1]-68) > 1e-9 {
		t.Errorf("entrance position = %v, want (112, 68)", ent.Position)
	}

	if len(campus.Stairs) != 1 {
		t.Fatalf("stairs = %d, want 1", len(campus.Stairs))
	}
	stair := campus.Stairs[0]
	if stair.TopFloor != "science-2" || stair.TopFloorNumber != 2 || stair.BottomFloorNumber != 1 {
		t.Errorf("stair pair wrong: %+v", stair)
	}
}

func TestParseRejectsMissingBuilding(t *testing.T) {
	if _, err := Parse([]byte(`{"floors": []}`)); err == nil {
		t.Error("Parse accepted document without building id")
	}
}

func TestMergeSkipsMalformedFloor(t *testing.T) {
	doc, err := Parse([]byte(`{
	  "building": "annex",
	  "floors": [
	    {"id": "annex-1", "number": 1, "features": {"type": "FeatureCollection", "features": []}}
	  ]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	campus := &Campus{}
	Merge(campus, doc, slog.Default())
	// No boundary polygon: the floor must be skipped, not fail the merge.
	if len(campus.Buildings) != 0 {
		t.Errorf("buildings = %d, want 0 for boundary-less floor", len(campus.Buildings))
	}
}

func TestLoadDirSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a_science.json"), []byte(scienceDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b_broken.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	campus, err := LoadDir(dir, slog.Default())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(campus.Buildings) != 2 {
		t.Errorf("buildings = %d, want 2 from the valid file", len(campus.Buildings))
	}

	var ids []model.FloorID
	for _, b := range campus.Buildings {
		ids = append(ids, b.Floor)
	}
	if ids[0] != "science-1" || ids[1] != "science-2" {
		t.Errorf("floor order = %v", ids)
	}
}
