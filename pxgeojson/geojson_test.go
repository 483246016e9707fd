package pxgeojson

import (
	"encoding/json"
	"testing"

	"github.com/kwv/pxvectorize/vectorize"
)

func redPixelShapes(t *testing.T) []*vectorize.Shape {
	t.Helper()
	shapes, err := vectorize.Vectorize(vectorize.DefaultConfig(), 1, 1, []vectorize.RGB{{R: 255, G: 0, B: 0}})
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	return shapes
}

func TestShapeToFeatureHasFillAndRing(t *testing.T) {
	shapes := redPixelShapes(t)
	f := ShapeToFeature(shapes[0])
	if f == nil {
		t.Fatal("ShapeToFeature returned nil")
	}
	if f.Type != "Feature" {
		t.Fatalf("Type = %q, want Feature", f.Type)
	}
	if f.Properties["fill"] != "#ff0000" {
		t.Fatalf("fill = %v, want #ff0000", f.Properties["fill"])
	}
	if f.Geometry.Type != GeometryPolygon {
		t.Fatalf("Geometry.Type = %q, want Polygon", f.Geometry.Type)
	}

	var rings [][][2]float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
		t.Fatalf("unmarshal coordinates: %v", err)
	}
	if len(rings) == 0 {
		t.Fatal("expected at least one ring")
	}
	outer := rings[0]
	if len(outer) < 4 {
		t.Fatalf("outer ring has %d points, want at least 4", len(outer))
	}
	if outer[0] != outer[len(outer)-1] {
		t.Fatalf("ring not closed: %v vs %v", outer[0], outer[len(outer)-1])
	}
}

func TestShapesToFeatureCollection(t *testing.T) {
	shapes := redPixelShapes(t)
	fc := ShapesToFeatureCollection(shapes)
	if fc.Type != "FeatureCollection" {
		t.Fatalf("Type = %q, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(fc.Features))
	}
}

func TestFeatureCollectionMarshalsValidJSON(t *testing.T) {
	shapes := redPixelShapes(t)
	fc := ShapesToFeatureCollection(shapes)
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded["type"] != "FeatureCollection" {
		t.Fatalf("decoded type = %v, want FeatureCollection", decoded["type"])
	}
}
