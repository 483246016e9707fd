// Package pxrender turns vectorized shapes into SVG, PNG or raw polygon
// output, mirroring the teacher's shared canvas-renderer plumbing but
// keyed on a shape's fill color instead of a map layer's type.
package pxrender

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/kwv/pxvectorize/vectorize"
)

// canvasRenderer is implemented by both the svg and rasterizer backends.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func bounds(shapes []*vectorize.Shape) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, shape := range shapes {
		for _, spline := range shape.SmoothSplines() {
			for _, p := range spline.Points() {
				if p.X < minX {
					minX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y > maxY {
					maxY = p.Y
				}
			}
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}

func shapePath(shape *vectorize.Shape, scale float64, minX, minY float64) *canvas.Path {
	cp := &canvas.Path{}
	for _, spline := range shape.SmoothSplines() {
		segs := spline.QuadraticBezierSegments()
		if len(segs) == 0 {
			continue
		}
		start := segs[0][0]
		cp.MoveTo((start.X-minX)*scale, (start.Y-minY)*scale)
		for _, seg := range segs {
			cp.QuadTo((seg[1].X-minX)*scale, (seg[1].Y-minY)*scale, (seg[2].X-minX)*scale, (seg[2].Y-minY)*scale)
		}
		cp.Close()
	}
	return cp
}

func renderToCanvas(r canvasRenderer, shapes []*vectorize.Shape, scale, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	r.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	minX, minY, _, _ := bounds(shapes)

	for _, shape := range shapes {
		v := shape.Value
		if v.R == 255 && v.G == 255 && v.B == 255 {
			// White fills are skipped, following the reference SVG writer's
			// convention of treating white as "no shape".
			continue
		}
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: rgbaOf(v)}
		style.Stroke = canvas.Paint{Color: rgbaOf(v)}
		r.RenderPath(shapePath(shape, scale, minX, minY), style, canvas.Identity)
	}
}

// RenderSVG writes shapes as an SVG document scaled by scale pixel units
// per source pixel.
func RenderSVG(w io.Writer, shapes []*vectorize.Shape, scale float64) error {
	minX, minY, maxX, maxY := bounds(shapes)
	width := (maxX - minX) * scale
	height := (maxY - minY) * scale

	r := svg.New(w, width, height, nil)
	renderToCanvas(r, shapes, scale, width, height)
	if err := r.Close(); err != nil {
		return fmt.Errorf("closing SVG renderer: %w", err)
	}
	return nil
}

// RenderPNG rasterizes shapes at the given scale and dpi and encodes the
// result as a PNG.
func RenderPNG(w io.Writer, shapes []*vectorize.Shape, scale, dpi float64) error {
	minX, minY, maxX, maxY := bounds(shapes)
	width := (maxX - minX) * scale
	height := (maxY - minY) * scale

	rast := rasterizer.New(width, height, canvas.DPI(dpi), canvas.DefaultColorSpace)
	renderToCanvas(rast, shapes, scale, width, height)

	if err := png.Encode(w, rast); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// ShapesToOrbPolygons samples each shape's smoothed splines at their knot
// values into orb rings, for callers that want raw polygon geometry
// instead of an SVG or PNG.
func ShapesToOrbPolygons(shapes []*vectorize.Shape) []orb.Polygon {
	polys := make([]orb.Polygon, 0, len(shapes))
	for _, shape := range shapes {
		splines := shape.SmoothSplines()
		if len(splines) == 0 {
			continue
		}
		poly := make(orb.Polygon, 0, len(splines))
		for _, spline := range splines {
			poly = append(poly, splineToRing(spline))
		}
		polys = append(polys, poly)
	}
	return polys
}

func splineToRing(spline *vectorize.ClosedBSpline) orb.Ring {
	lo, hi := spline.Domain()
	knots := spline.Knots()
	degree := spline.Degree()

	var ring orb.Ring
	for _, u := range knots[degree : len(knots)-degree] {
		if u < lo || u > hi {
			continue
		}
		p := spline.Eval(u)
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

func rgbaOf(v vectorize.RGB) color.RGBA {
	return color.RGBA{R: v.R, G: v.G, B: v.B, A: 255}
}
