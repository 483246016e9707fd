package vectorize

import "math"

// BSpline is a B-spline curve of a given degree over a non-decreasing
// knot vector, evaluated with De Boor's algorithm.
type BSpline struct {
	degree int
	knots  []float64
	points []Vec2

	derivative *BSpline
}

// NewBSpline validates and constructs an open B-spline: m = n + p + 1,
// where m = len(knots)-1, n = len(points)-1, p = degree.
func NewBSpline(knots []float64, points []Vec2, degree int) (*BSpline, error) {
	m := len(knots) - 1
	n := len(points) - 1
	if m != n+degree+1 {
		return nil, errf(DegreeMismatch, "vectorize: bspline has %d knots, %d points and degree %d, want len(knots)-1 == len(points)-1+degree+1", len(knots), len(points), degree)
	}
	return &BSpline{degree: degree, knots: append([]float64(nil), knots...), points: append([]Vec2(nil), points...)}, nil
}

// Degree returns the spline's polynomial degree.
func (b *BSpline) Degree() int { return b.degree }

// Knots returns the knot vector.
func (b *BSpline) Knots() []float64 { return b.knots }

// Points returns the control points.
func (b *BSpline) Points() []Vec2 { return b.points }

// Domain returns the parameter interval over which the spline is defined.
func (b *BSpline) Domain() (float64, float64) {
	return b.knots[b.degree], b.knots[len(b.knots)-b.degree-1]
}

func (b *BSpline) resetCache() {
	b.derivative = nil
}

// MovePoint relocates control point i and invalidates any cached
// derivative.
func (b *BSpline) MovePoint(i int, p Vec2) {
	b.points[i] = p
	b.resetCache()
}

// span returns knot interval i, clamped to the spline's domain.
func (b *BSpline) span(i int) (float64, float64) {
	lo, hi := b.Domain()
	d0, d1 := b.knots[i], b.knots[i+1]
	if d0 < lo {
		d0 = lo
	}
	if d1 < lo {
		d1 = lo
	}
	if d0 > hi {
		d0 = hi
	}
	if d1 > hi {
		d1 = hi
	}
	return d0, d1
}

func (b *BSpline) pointSpans(index int) [][2]float64 {
	out := make([][2]float64, 0, b.degree)
	for i := 0; i < b.degree; i++ {
		d0, d1 := b.span(index + i)
		out = append(out, [2]float64{d0, d1})
	}
	return out
}

// Eval evaluates the spline at parameter u using De Boor's algorithm.
func (b *BSpline) Eval(u float64) Vec2 {
	s := 0
	for _, k := range b.knots {
		if k == u {
			s++
		}
	}

	k := 0
	for k < len(b.knots) && b.knots[k] < u {
		k++
	}
	if s == 0 {
		k--
	}

	if b.degree == 0 {
		idx := k
		if idx >= len(b.points) {
			idx = len(b.points) - 1
		}
		return b.points[idx]
	}

	level := make(map[int]Vec2, b.degree-s+1)
	for i := k - b.degree; i <= k-s; i++ {
		level[i] = b.points[i]
	}
	for r := 1; r <= b.degree-s; r++ {
		next := make(map[int]Vec2)
		for i := k - b.degree + r; i <= k-s; i++ {
			a := (u - b.knots[i]) / (b.knots[i+b.degree-r+1] - b.knots[i])
			next[i] = level[i-1].Scale(1 - a).Add(level[i].Scale(a))
		}
		level = next
	}

	return level[k-s]
}

// Derivative returns (and caches) the degree-(p-1) derivative spline.
func (b *BSpline) Derivative() *BSpline {
	if b.derivative != nil {
		return b.derivative
	}
	p := b.degree
	points := make([]Vec2, len(b.points)-1)
	for i := range points {
		denom := b.knots[i+1+p] - b.knots[i+1]
		factor := float64(p) / denom
		points[i] = b.points[i+1].Sub(b.points[i]).Scale(factor)
	}
	d := &BSpline{degree: p - 1, knots: b.knots[1 : len(b.knots)-1], points: points}
	b.derivative = d
	return d
}

// Curvature returns the absolute curvature |κ| at parameter u, or 0 where
// the first derivative vanishes.
func (b *BSpline) Curvature(u float64) float64 {
	d1 := b.Derivative().Eval(u)
	d2 := b.Derivative().Derivative().Eval(u)
	num := d1.X*d2.Y - d1.Y*d2.X
	den := math.Pow(d1.X*d1.X+d1.Y*d1.Y, 1.5)
	if den == 0 {
		return 0
	}
	return math.Abs(num / den)
}

// integrateOverSpan numerically integrates f over [lo, hi] via the
// trapezoid rule with the given number of intervals.
func integrateOverSpan(f func(float64) float64, lo, hi float64, intervals int) float64 {
	if hi <= lo || intervals <= 0 {
		return 0
	}
	step := (hi - lo) / float64(intervals)
	sum := (f(lo) + f(hi)) / 2
	for i := 1; i < intervals; i++ {
		sum += f(lo + float64(i)*step)
	}
	return sum * step
}

// integrateFor numerically integrates f over every non-degenerate knot
// span touching control point index.
func (b *BSpline) integrateFor(index int, f func(float64) float64, intervalsPerSpan int) float64 {
	total := 0.0
	for _, sp := range b.pointSpans(index) {
		if sp[0] == sp[1] {
			continue
		}
		total += integrateOverSpan(f, sp[0], sp[1], intervalsPerSpan)
	}
	return total
}

// CurvatureEnergy integrates the curvature around control point index over
// its supporting knot spans.
func (b *BSpline) CurvatureEnergy(index, intervalsPerSpan int) float64 {
	return b.integrateFor(index, b.Curvature, intervalsPerSpan)
}

// QuadraticBezierSegments splits a degree-2 spline into its constituent
// on-curve/control/on-curve triples. Requires degree == 2.
func (b *BSpline) QuadraticBezierSegments() [][3]Vec2 {
	controlPoints := b.points[1 : len(b.points)-1]
	knotParams := b.knots[2 : len(b.knots)-2]
	onCurve := make([]Vec2, len(knotParams))
	for i, u := range knotParams {
		onCurve[i] = b.Eval(u)
	}

	segs := make([][3]Vec2, 0, len(controlPoints))
	for i := 0; i < len(controlPoints) && i+1 < len(onCurve); i++ {
		segs = append(segs, [3]Vec2{onCurve[i], controlPoints[i], onCurve[i+1]})
	}
	return segs
}

// Reversed returns a spline tracing the same curve in the opposite
// direction: parameter u maps to 1-u, knots and points reverse in lockstep.
func (b *BSpline) Reversed() *BSpline {
	n := len(b.knots)
	knots := make([]float64, n)
	for i, k := range b.knots {
		knots[n-1-i] = 1 - k
	}
	points := make([]Vec2, len(b.points))
	for i, p := range b.points {
		points[len(b.points)-1-i] = p
	}
	return &BSpline{degree: b.degree, knots: knots, points: points}
}

// ClosedBSpline is a BSpline whose control polygon wraps: the first
// degree points repeat the last degree points, so the curve closes on
// itself with full continuity at the seam.
type ClosedBSpline struct {
	*BSpline
	unwrappedLen int
}

// NewClosedBSpline validates the wrap invariant (points[0:degree] ==
// points[len-degree:]) in addition to BSpline's own degree/knot/point
// invariant.
func NewClosedBSpline(knots []float64, points []Vec2, degree int) (*ClosedBSpline, error) {
	b, err := NewBSpline(knots, points, degree)
	if err != nil {
		return nil, err
	}
	unwrapped := len(points) - degree
	if err := checkWrapped(b.points, degree, unwrapped); err != nil {
		return nil, err
	}
	return &ClosedBSpline{BSpline: b, unwrappedLen: unwrapped}, nil
}

func checkWrapped(points []Vec2, degree, unwrappedLen int) error {
	for i := 0; i < degree; i++ {
		if points[i] != points[unwrappedLen+i] {
			return errf(SplineInvariant, "vectorize: closed bspline control point %d does not match its wrap copy at %d", i, unwrappedLen+i)
		}
	}
	return nil
}

// UsefulPoints returns the unwrapped (non-duplicated) control points.
func (c *ClosedBSpline) UsefulPoints() []Vec2 {
	return c.points[:c.unwrappedLen]
}

// MovePoint relocates control point i (and, if i falls within the first
// degree points, its wrap-around duplicate too) and invalidates the
// cached derivative.
func (c *ClosedBSpline) MovePoint(i int, p Vec2) {
	i = i % c.unwrappedLen
	c.BSpline.MovePoint(i, p)
	if i < c.degree {
		c.BSpline.MovePoint(i+c.unwrappedLen, p)
	}
}

// span overrides BSpline.span to wrap knot-interval lookups around the
// closed spline's domain instead of clamping at its edges.
func (c *ClosedBSpline) span(i int) (float64, float64) {
	lo, hi := c.Domain()
	d0, d1 := c.knots[i], c.knots[i+1]
	if d0 < lo {
		return c.spanAt(i + len(c.points) - c.degree)
	}
	if d1 > hi {
		return c.spanAt(i + c.degree - len(c.points))
	}
	return d0, d1
}

func (c *ClosedBSpline) spanAt(i int) (float64, float64) {
	lo, hi := c.Domain()
	d0, d1 := c.knots[i], c.knots[i+1]
	if d0 < lo {
		d0 = lo
	}
	if d1 > hi {
		d1 = hi
	}
	return d0, d1
}

func (c *ClosedBSpline) pointSpans(index int) [][2]float64 {
	out := make([][2]float64, 0, c.degree)
	for i := 0; i < c.degree; i++ {
		d0, d1 := c.span(index + i)
		out = append(out, [2]float64{d0, d1})
	}
	return out
}

// CurvatureEnergy overrides BSpline.CurvatureEnergy to use the closed
// spline's wraparound span lookup.
func (c *ClosedBSpline) CurvatureEnergy(index, intervalsPerSpan int) float64 {
	total := 0.0
	for _, sp := range c.pointSpans(index) {
		if sp[0] == sp[1] {
			continue
		}
		total += integrateOverSpan(c.Curvature, sp[0], sp[1], intervalsPerSpan)
	}
	return total
}

// Reversed returns a ClosedBSpline tracing the same closed curve in the
// opposite direction. The wrap invariant holds automatically: reversing
// two equal subsequences yields two equal subsequences.
func (c *ClosedBSpline) Reversed() *ClosedBSpline {
	base := c.BSpline.Reversed()
	return &ClosedBSpline{BSpline: base, unwrappedLen: c.unwrappedLen}
}

// curveToClosedBSpline fits a closed quadratic B-spline whose control
// polygon is the given ordered corner loop.
func curveToClosedBSpline(points []Vec2, degree int) (*ClosedBSpline, error) {
	n := len(points)
	ctrl := make([]Vec2, 0, n+degree)
	ctrl = append(ctrl, points...)
	ctrl = append(ctrl, points[:degree]...)

	m := len(ctrl) + degree
	knots := make([]float64, m+1)
	for i := range knots {
		knots[i] = float64(i) / float64(m)
	}

	return NewClosedBSpline(knots, ctrl, degree)
}

// fitClosedBSpline fits the degree-2 closed B-spline whose control
// polygon is the path's corner loop (stage 7a).
func fitClosedBSpline(corners []Corner) *ClosedBSpline {
	points := make([]Vec2, len(corners))
	for i, c := range corners {
		points[i] = cornerToVec2(c)
	}
	spline, err := curveToClosedBSpline(points, 2)
	if err != nil {
		// A path is always built from a loop of >= 3 distinct corners by
		// construction, so the wrap invariant cannot fail here.
		panic(err)
	}
	return spline
}
