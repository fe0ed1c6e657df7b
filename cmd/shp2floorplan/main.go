// Command shp2floorplan converts a surveyed shapefile into a floor-plan
// document: polygons become the floor boundary, polylines become walls,
// and points become entrances. Attribute columns named "room" and
// "name" are carried onto entrance features.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"campusnav/pkg/floorplan"
	"campusnav/pkg/model"
)

func main() {
	inputPath := flag.String("input", "", "Path to input .shp file")
	outputPath := flag.String("output", "", "Path to output floor-plan .json file")
	building := flag.String("building", "", "Building id for the document")
	floorID := flag.String("floor", "", "Floor id for the converted features")
	floorNumber := flag.Int("number", 1, "Floor number")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" || *building == "" || *floorID == "" {
		flag.Usage()
		log.Fatal("Input, output, building and floor are required")
	}

	if err := run(*inputPath, *outputPath, *building, *floorID, *floorNumber); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath, building, floorID string, floorNumber int) error {
	shape, err := shp.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	fc := geojson.NewFeatureCollection()
	for shape.Next() {
		n, p := shape.Shape()

		var f *geojson.Feature
		switch s := p.(type) {
		case *shp.Null:
			continue
		case *shp.Polygon:
			f = geojson.NewFeature(convertPolygon(s))
			f.Properties["kind"] = "boundary"
		case *shp.PolyLine:
			f = geojson.NewFeature(convertPolyLine(s))
			f.Properties["kind"] = "wall"
		case *shp.Point:
			f = geojson.NewFeature(orb.Point{s.X, s.Y})
			f.Properties["kind"] = "entrance"
			for i, name := range fieldNames {
				if name == "room" || name == "name" {
					f.Properties[name] = shape.ReadAttribute(n, i)
				}
			}
		default:
			log.Printf("Skipping unsupported shape type: %T", p)
			continue
		}
		fc.Append(f)
	}

	if err := shape.Err(); err != nil {
		return fmt.Errorf("error iterating shapes: %w", err)
	}

	features, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	doc := floorplan.Document{
		Building:  model.BuildingID(building),
		Placement: floorplan.Placement{Scale: 1},
		Floors: []floorplan.FloorDoc{{
			ID:       model.FloorID(floorID),
			Number:   floorNumber,
			Features: features,
		}},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal floor-plan document: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Converted %d features into %s\n", len(fc.Features), outputPath)
	return nil
}

func convertPolyLine(s *shp.PolyLine) orb.MultiLineString {
	var multiline orb.MultiLineString
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		var line orb.LineString
		for j := start; j < end; j++ {
			line = append(line, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		multiline = append(multiline, line)
	}
	return multiline
}

func convertPolygon(s *shp.Polygon) orb.Polygon {
	var poly orb.Polygon
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		var ring orb.Ring
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		poly = append(poly, ring)
	}
	return poly
}
