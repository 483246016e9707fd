package pxrender

import (
	"bytes"
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

func TestShapesToOrbPolygons(t *testing.T) {
	shapes := redPixelShapes(t)
	polys := ShapesToOrbPolygons(shapes)
	if len(polys) != 1 {
		t.Fatalf("len(polys) = %d, want 1", len(polys))
	}
	if len(polys[0]) == 0 {
		t.Fatal("expected at least one ring (the outer boundary)")
	}
	outer := polys[0][0]
	if len(outer) < 4 {
		t.Fatalf("outer ring has %d points, want at least 4", len(outer))
	}
	if outer[0] != outer[len(outer)-1] {
		t.Fatalf("ring is not closed: first %v != last %v", outer[0], outer[len(outer)-1])
	}
}

func TestRenderSVGProducesOutput(t *testing.T) {
	shapes := redPixelShapes(t)
	var buf bytes.Buffer
	if err := RenderSVG(&buf, shapes, 10); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty SVG output")
	}
}

func TestBoundsOfEmptyShapes(t *testing.T) {
	minX, minY, maxX, maxY := bounds(nil)
	if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
		t.Fatalf("bounds(nil) = (%v,%v,%v,%v), want all zero", minX, minY, maxX, maxY)
	}
}
