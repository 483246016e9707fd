package vectorize

import (
	"math"
	"math/rand"
)

// SplineSmoother relaxes a fitted closed B-spline toward lower curvature
// energy via randomized local search, while an L4 positional penalty
// keeps control points from drifting far from their original fit.
type SplineSmoother struct {
	orig   *ClosedBSpline
	spline *ClosedBSpline
	rng    *rand.Rand
	cfg    SmootherConfig
}

// SmootherConfig carries the smoother's tunable constants.
type SmootherConfig struct {
	Iterations       int
	PointGuesses     int
	GuessOffset      float64
	IntervalsPerSpan int
	PositionalWeight float64
}

// NewSplineSmoother creates a smoother over a copy of fit, leaving fit
// itself untouched as the positional-energy reference point.
func NewSplineSmoother(fit *ClosedBSpline, cfg SmootherConfig, rng *rand.Rand) *SplineSmoother {
	points := append([]Vec2(nil), fit.Points()...)
	knots := append([]float64(nil), fit.Knots()...)
	relaxed, err := NewClosedBSpline(knots, points, fit.Degree())
	if err != nil {
		panic(err)
	}
	return &SplineSmoother{orig: fit, spline: relaxed, rng: rng, cfg: cfg}
}

func (s *SplineSmoother) ePositional(i int) float64 {
	d := s.spline.UsefulPoints()[i].Sub(s.orig.UsefulPoints()[i]).Len()
	return math.Pow(d, 4) * s.cfg.PositionalWeight
}

func (s *SplineSmoother) eCurvature(i int) float64 {
	return s.spline.CurvatureEnergy(i, s.cfg.IntervalsPerSpan)
}

func (s *SplineSmoother) pointEnergy(i int) float64 {
	return s.eCurvature(i) + s.ePositional(i)
}

func (s *SplineSmoother) randOffset() Vec2 {
	r := s.rng.Float64() * s.cfg.GuessOffset
	theta := s.rng.Float64() * 2 * math.Pi
	return Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

func (s *SplineSmoother) smoothPoint(i int, start Vec2) {
	bestEnergy := s.pointEnergy(i)
	best := start

	for g := 0; g < s.cfg.PointGuesses; g++ {
		candidate := start.Add(s.randOffset())
		s.spline.MovePoint(i, candidate)
		if e := s.pointEnergy(i); e < bestEnergy {
			bestEnergy = e
			best = candidate
		}
	}

	s.spline.MovePoint(i, best)
}

// Smooth runs the configured number of local-search iterations over every
// useful (non-duplicated) control point and returns the relaxed spline.
func (s *SplineSmoother) Smooth() *ClosedBSpline {
	for it := 0; it < s.cfg.Iterations; it++ {
		snapshot := append([]Vec2(nil), s.spline.UsefulPoints()...)
		for i, p := range snapshot {
			s.smoothPoint(i, p)
		}
	}
	return s.spline
}
