package vectorize

// resolveDiagonals implements stage 2: a 2x2 pixel block holding both of
// its diagonal similarity edges and no other edge is ambiguous and must be
// resolved by the curve/sparse/island Gestalt heuristics; a block with both
// diagonals and six edges in total (fully similar) drops both diagonals;
// a block with both diagonals and any other edge count violates the
// structural invariant the heuristics assume.
func resolveDiagonals(cfg Config, g *SimilarityGraph, width, height int) error {
	type pair [2]simEdgeView
	var ambiguous []pair

	for by := 0; by < height-1; by++ {
		for bx := 0; bx < width-1; bx++ {
			nodes := []Pixel{
				{X: bx, Y: by}, {X: bx + 1, Y: by},
				{X: bx, Y: by + 1}, {X: bx + 1, Y: by + 1},
			}
			edges := g.edgesAmong(nodes)
			var diagonals []simEdgeView
			for _, e := range edges {
				if e.Diagonal {
					diagonals = append(diagonals, e)
				}
			}
			switch len(diagonals) {
			case 0, 1:
				// nothing to resolve
			case 2:
				switch len(edges) {
				case 6:
					g.removeEdge(diagonals[0].A, diagonals[0].B)
					g.removeEdge(diagonals[1].A, diagonals[1].B)
				case 2:
					ambiguous = append(ambiguous, pair{diagonals[0], diagonals[1]})
				default:
					return errf(StructuralInvariant, "vectorize: 2x2 block at (%d,%d) has %d edges with 2 diagonals, want 2 or 6", bx, by, len(edges))
				}
			default:
				return errf(StructuralInvariant, "vectorize: 2x2 block at (%d,%d) has %d diagonal edges, want 0, 1 or 2", bx, by, len(diagonals))
			}
		}
	}

	// Weights are computed for every ambiguous pair before any edge is
	// removed: edgeWeight reads live degree/neighbor state, so removing an
	// earlier pair's edge first would change what a later pair's weight
	// computation sees whenever two ambiguous blocks share a pixel.
	weights := make([][2]int, len(ambiguous))
	for i, pr := range ambiguous {
		weights[i] = [2]int{edgeWeight(cfg, g, pr[0]), edgeWeight(cfg, g, pr[1])}
	}

	for i, pr := range ambiguous {
		w0, w1 := weights[i][0], weights[i][1]
		min := w0
		if w1 < min {
			min = w1
		}
		if w0 == min {
			g.removeEdge(pr[0].A, pr[0].B)
		}
		if w1 == min {
			g.removeEdge(pr[1].A, pr[1].B)
		}
	}

	return nil
}

func edgeWeight(cfg Config, g *SimilarityGraph, e simEdgeView) int {
	return weightCurve(g, e) + weightSparse(cfg, g, e) + weightIsland(cfg, g, e)
}

// weightCurve rewards a diagonal that continues a valence-2 walk: start
// at the edge itself and keep following valence-2 nodes outward, counting
// how many edges belong to the same curve, the starting edge included.
func weightCurve(g *SimilarityGraph, e simEdgeView) int {
	type ek struct{ A, B Pixel }
	canon := func(a, b Pixel) ek {
		if b.Less(a) {
			a, b = b, a
		}
		return ek{a, b}
	}

	inCurve := map[ek]bool{canon(e.A, e.B): true}
	stack := []Pixel{e.A, e.B}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		neighbors := g.Neighbors(n)
		if len(neighbors) != 2 {
			continue
		}
		for _, nb := range neighbors {
			k := canon(n, nb)
			if inCurve[k] {
				continue
			}
			inCurve[k] = true
			stack = append(stack, nb)
		}
	}

	return len(inCurve)
}

// weightSparse rewards a diagonal whose neighborhood is sparse: count how
// many pixels are flood-fill reachable from the edge's endpoints within an
// 8x8 window centered on the edge, then weight negatively (fewer reachable
// pixels, i.e. a sparser neighborhood, scores higher).
func weightSparse(cfg Config, g *SimilarityGraph, e simEdgeView) int {
	winW, winH := cfg.SparseWindow[0], cfg.SparseWindow[1]
	minX := e.A.X
	if e.B.X < minX {
		minX = e.B.X
	}
	minY := e.A.Y
	if e.B.Y < minY {
		minY = e.B.Y
	}
	offX := winW/2 - 1 - minX
	offY := winH/2 - 1 - minY

	inWindow := func(p Pixel) bool {
		x, y := p.X+offX, p.Y+offY
		return x >= 0 && x < winW && y >= 0 && y < winH
	}

	seen := map[Pixel]bool{e.A: true, e.B: true}
	queue := []Pixel{e.A, e.B}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(n) {
			if seen[nb] {
				continue
			}
			if !inWindow(nb) {
				continue
			}
			seen[nb] = true
			queue = append(queue, nb)
		}
	}

	return -len(seen)
}

// weightIsland rewards a diagonal that keeps a degree-1 pixel attached to
// the graph.
func weightIsland(cfg Config, g *SimilarityGraph, e simEdgeView) int {
	if g.Degree(e.A) == 1 || g.Degree(e.B) == 1 {
		return cfg.IslandWeight
	}
	return 0
}
