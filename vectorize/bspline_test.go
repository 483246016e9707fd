package vectorize

import (
	"math"
	"math/rand"
	"testing"
)

func square() []Vec2 {
	return []Vec2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
}

func TestClosedBSplineWrapInvariant(t *testing.T) {
	spline, err := curveToClosedBSpline(square(), 2)
	if err != nil {
		t.Fatalf("curveToClosedBSpline: %v", err)
	}
	if err := checkWrapped(spline.points, spline.degree, spline.unwrappedLen); err != nil {
		t.Fatalf("fresh fit violates wrap invariant: %v", err)
	}

	spline.MovePoint(0, Vec2{1, 1})
	if err := checkWrapped(spline.points, spline.degree, spline.unwrappedLen); err != nil {
		t.Fatalf("after MovePoint(0, ...): %v", err)
	}
	if spline.points[spline.unwrappedLen] != (Vec2{1, 1}) {
		t.Fatalf("wrap copy not updated: %v", spline.points[spline.unwrappedLen])
	}
}

func TestQuadraticBezierRoundTrip(t *testing.T) {
	spline, err := curveToClosedBSpline(square(), 2)
	if err != nil {
		t.Fatalf("curveToClosedBSpline: %v", err)
	}

	knots := spline.Knots()
	domainLo, domainHi := spline.Domain()
	var onCurveKnots []float64
	for _, k := range knots[spline.Degree() : len(knots)-spline.Degree()] {
		if k >= domainLo && k <= domainHi {
			onCurveKnots = append(onCurveKnots, k)
		}
	}

	segs := spline.QuadraticBezierSegments()
	if len(segs) == 0 {
		t.Fatal("expected at least one bezier segment")
	}

	for i := 0; i+1 < len(segs); i++ {
		if !vecClose(segs[i][2], segs[i+1][0], 1e-9) {
			t.Fatalf("segment %d end %v does not join segment %d start %v", i, segs[i][2], i+1, segs[i+1][0])
		}
	}
	if !vecClose(segs[len(segs)-1][2], segs[0][0], 1e-9) {
		t.Fatalf("last segment end %v does not close the loop at %v", segs[len(segs)-1][2], segs[0][0])
	}

	for i, u := range onCurveKnots {
		got := spline.Eval(u)
		want := segs[i%len(segs)][0]
		if !vecClose(got, want, 1e-6) {
			t.Fatalf("Eval(%v) = %v, want %v (on-curve anchor %d)", u, got, want, i)
		}
	}
}

func vecClose(a, b Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestSmootherIdempotentWithZeroGuesses(t *testing.T) {
	spline, err := curveToClosedBSpline(square(), 2)
	if err != nil {
		t.Fatalf("curveToClosedBSpline: %v", err)
	}
	before := append([]Vec2(nil), spline.Points()...)

	cfg := SmootherConfig{Iterations: 5, PointGuesses: 0, GuessOffset: 0.05, IntervalsPerSpan: 10, PositionalWeight: 1}
	smoother := NewSplineSmoother(spline, cfg, rand.New(rand.NewSource(1)))
	after := smoother.Smooth()

	for i, p := range after.Points() {
		if p != before[i] {
			t.Fatalf("point %d changed from %v to %v with PointGuesses=0", i, before[i], p)
		}
	}
}

func TestSmootherDeterministicUnderFixedSeed(t *testing.T) {
	pts := []Vec2{{0, 0}, {5, 1}, {6, 6}, {1, 5}}

	run := func() []Vec2 {
		spline, err := curveToClosedBSpline(pts, 2)
		if err != nil {
			t.Fatalf("curveToClosedBSpline: %v", err)
		}
		cfg := SmootherConfig{Iterations: 20, PointGuesses: 20, GuessOffset: 0.05, IntervalsPerSpan: 20, PositionalWeight: 1}
		smoother := NewSplineSmoother(spline, cfg, rand.New(rand.NewSource(7)))
		return smoother.Smooth().Points()
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("point count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between identically-seeded runs: %v vs %v", i, a[i], b[i])
		}
	}

	smoothed, err := curveToClosedBSpline(pts, 2)
	if err != nil {
		t.Fatalf("curveToClosedBSpline: %v", err)
	}
	if err := checkWrapped(smoothed.points, smoothed.degree, smoothed.unwrappedLen); err != nil {
		t.Fatalf("reference fit violates wrap invariant: %v", err)
	}
	if err := checkWrapped(a, 2, len(a)-2); err != nil {
		t.Fatalf("smoothed points violate wrap invariant: %v", err)
	}
}

func TestDegreeMismatchRejected(t *testing.T) {
	_, err := NewBSpline([]float64{0, 1, 2}, []Vec2{{0, 0}, {1, 1}}, 2)
	if err == nil {
		t.Fatal("expected DegreeMismatch error")
	}
	if verr, ok := err.(*Error); !ok || verr.Kind != DegreeMismatch {
		t.Fatalf("err = %v, want DegreeMismatch", err)
	}
}
