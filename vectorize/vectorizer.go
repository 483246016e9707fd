package vectorize

import "math/rand"

// Config carries the tunable constants the reference algorithm fixes as
// literals, so callers can experiment without forking the pipeline. The
// zero value is not directly usable; call DefaultConfig for the standard
// constants, or override individual fields on top of it.
type Config struct {
	YThreshold, UThreshold, VThreshold int
	IslandWeight                       int
	SparseWindow                       [2]int

	SmootherIterations   int
	PointGuesses         int
	GuessOffset          float64
	IntervalsPerSpan     int
	PositionalMultiplier float64

	Seed int64
}

// DefaultConfig returns the constants the reference implementation uses.
func DefaultConfig() Config {
	return Config{
		YThreshold: 48,
		UThreshold: 7,
		VThreshold: 6,

		IslandWeight: 5,
		SparseWindow: [2]int{8, 8},

		SmootherIterations:   20,
		PointGuesses:         20,
		GuessOffset:          0.05,
		IntervalsPerSpan:     20,
		PositionalMultiplier: 1,

		Seed: 1,
	}
}

func (cfg Config) smootherConfig() SmootherConfig {
	return SmootherConfig{
		Iterations:       cfg.SmootherIterations,
		PointGuesses:     cfg.PointGuesses,
		GuessOffset:      cfg.GuessOffset,
		IntervalsPerSpan: cfg.IntervalsPerSpan,
		PositionalWeight: cfg.PositionalMultiplier,
	}
}

// Vectorize runs the full seven-stage pipeline over a row-major width x
// height grid of pixels (row 0 at the top) and returns one Shape per
// maximal run of similarity-connected pixels.
func Vectorize(cfg Config, width, height int, pixels []RGB) ([]*Shape, error) {
	sim, err := BuildSimilarityGraph(cfg, width, height, pixels)
	if err != nil {
		return nil, err
	}

	if err := resolveDiagonals(cfg, sim, width, height); err != nil {
		return nil, err
	}

	pg := deformPixelGrid(cfg, sim, width, height)

	shapes := extractShapes(sim)

	outline := buildOutlineGraph(sim, pg)

	cache := make(map[pathKey]*Path)
	refs := make(map[*Path]int)
	buildShapeOutlines(outline, shapes, cache, refs)

	rng := rand.New(rand.NewSource(cfg.Seed))
	smoothed := make(map[*Path]bool)
	for _, shape := range shapes {
		if shape.outside != nil {
			smoothPath(cfg, rng, refs, smoothed, shape.outside)
		}
		for _, p := range shape.inside {
			smoothPath(cfg, rng, refs, smoothed, p)
		}
	}

	return shapes, nil
}

// smoothPath smooths a path's fitted spline in place, once per distinct
// path, skipping paths referenced by only one shape, whose fitted spline
// is used unsmoothed.
func smoothPath(cfg Config, rng *rand.Rand, refs map[*Path]int, done map[*Path]bool, p *Path) {
	if done[p] {
		return
	}
	done[p] = true

	if refs[p] < 2 {
		p.Smooth = p.Spline
		return
	}

	smoother := NewSplineSmoother(p.Spline, cfg.smootherConfig(), rng)
	p.Smooth = smoother.Smooth()
}
