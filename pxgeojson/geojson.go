// Package pxgeojson renders vectorized shapes as GeoJSON features, using
// hand-rolled geometry types in the same shape the teacher's own
// geojson.go uses rather than pulling in paulmach/orb/geojson's richer
// (and here unneeded) feature model.
package pxgeojson

import (
	"encoding/json"
	"fmt"

	"github.com/kwv/pxvectorize/vectorize"
)

// GeometryType is the GeoJSON geometry discriminator.
type GeometryType string

const (
	GeometryPolygon GeometryType = "Polygon"
)

// Geometry is a GeoJSON geometry object. Coordinates are kept pre-encoded
// so Polygon rings of varying nesting depth marshal without a union type.
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is a single GeoJSON feature: one shape's fill color and outline.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON FeatureCollection of shape features.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates an empty FeatureCollection.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection.
func (fc *FeatureCollection) AddFeature(f *Feature) {
	if f != nil {
		fc.Features = append(fc.Features, f)
	}
}

func ringFromSpline(spline *vectorize.ClosedBSpline) [][2]float64 {
	lo, hi := spline.Domain()
	knots := spline.Knots()
	degree := spline.Degree()

	var ring [][2]float64
	for _, u := range knots[degree : len(knots)-degree] {
		if u < lo || u > hi {
			continue
		}
		p := spline.Eval(u)
		ring = append(ring, [2]float64{p.X, p.Y})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

func fillHex(v vectorize.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
}

// ShapeToFeature converts a single shape's smoothed outline into a GeoJSON
// Polygon feature: the outside ring first, hole rings after, with the
// shape's color carried as a "fill" property the way the reference
// SVG/GeoJSON writers both key their output on shape.Value.
func ShapeToFeature(s *vectorize.Shape) *Feature {
	splines := s.SmoothSplines()
	if len(splines) == 0 {
		return nil
	}

	rings := make([][][2]float64, 0, len(splines))
	for _, spline := range splines {
		ring := ringFromSpline(spline)
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return nil
	}

	coordsJSON, _ := json.Marshal(rings)
	return &Feature{
		Type: "Feature",
		Geometry: &Geometry{
			Type:        GeometryPolygon,
			Coordinates: coordsJSON,
		},
		Properties: map[string]interface{}{
			"fill": fillHex(s.Value),
		},
	}
}

// ShapesToFeatureCollection converts every shape into a Feature, skipping
// shapes whose smoothed outline degenerates to nothing.
func ShapesToFeatureCollection(shapes []*vectorize.Shape) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, s := range shapes {
		fc.AddFeature(ShapeToFeature(s))
	}
	return fc
}
