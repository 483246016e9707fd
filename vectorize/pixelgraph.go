package vectorize

// PixelGraph is the pixel-cell dual lattice G_p: one node per corner of
// the pixel grid, edges along the grid lines, deformed around diagonal
// similarity edges so Voronoi-like cell boundaries separate dissimilar
// pixels that happen to touch only at a corner.
type PixelGraph struct {
	adjacency map[Corner]map[Corner]bool
	order     []Corner
}

func newPixelGraph() *PixelGraph {
	return &PixelGraph{adjacency: make(map[Corner]map[Corner]bool)}
}

func (g *PixelGraph) addNode(c Corner) {
	if _, ok := g.adjacency[c]; ok {
		return
	}
	g.adjacency[c] = make(map[Corner]bool)
	g.order = append(g.order, c)
}

func (g *PixelGraph) hasNode(c Corner) bool {
	_, ok := g.adjacency[c]
	return ok
}

func (g *PixelGraph) addEdge(a, b Corner) {
	g.addNode(a)
	g.addNode(b)
	g.adjacency[a][b] = true
	g.adjacency[b][a] = true
}

func (g *PixelGraph) removeEdge(a, b Corner) {
	delete(g.adjacency[a], b)
	delete(g.adjacency[b], a)
}

func (g *PixelGraph) hasEdge(a, b Corner) bool {
	_, ok := g.adjacency[a][b]
	return ok
}

func (g *PixelGraph) removeNode(c Corner) {
	for n := range g.adjacency[c] {
		delete(g.adjacency[n], c)
	}
	delete(g.adjacency, c)
}

// Neighbors returns c's lattice neighbors.
func (g *PixelGraph) Neighbors(c Corner) []Corner {
	out := make([]Corner, 0, len(g.adjacency[c]))
	for n := range g.adjacency[c] {
		out = append(out, n)
	}
	return out
}

// Degree returns c's lattice degree.
func (g *PixelGraph) Degree(c Corner) int {
	return len(g.adjacency[c])
}

// Nodes returns a snapshot of the current node set in insertion order.
func (g *PixelGraph) Nodes() []Corner {
	out := make([]Corner, 0, len(g.order))
	for _, c := range g.order {
		if g.hasNode(c) {
			out = append(out, c)
		}
	}
	return out
}

// newPixelLattice builds the undeformed (width+1) x (height+1) corner
// grid of stage 3.
func newPixelLattice(width, height int) *PixelGraph {
	g := newPixelGraph()
	for x := 0; x <= width; x++ {
		for y := 0; y <= height; y++ {
			g.addNode(cornerAt(x, y))
		}
	}
	for x := 0; x <= width; x++ {
		for y := 0; y <= height; y++ {
			if x < width {
				g.addEdge(cornerAt(x, y), cornerAt(x+1, y))
			}
			if y < height {
				g.addEdge(cornerAt(x, y), cornerAt(x, y+1))
			}
		}
	}
	return g
}

// deformPixelGrid runs stage 4: for every diagonal similarity edge, notch
// the lattice boundary away from whichever orthogonally-adjacent pixel
// disagrees with the cell being examined, then collapse every
// now-redundant degree-<=2 corner except the four image corners.
func deformPixelGrid(cfg Config, sim *SimilarityGraph, width, height int) *PixelGraph {
	pg := newPixelLattice(width, height)

	for _, n := range sim.Nodes() {
		for _, m := range sim.DiagonalNeighbors(n) {
			deformCell(sim, pg, n, m)
		}
	}

	imageCorners := map[Corner]bool{
		cornerAt(0, 0):          true,
		cornerAt(width, 0):      true,
		cornerAt(0, height):     true,
		cornerAt(width, height): true,
	}

	var toRemove []Corner
	for _, c := range pg.Nodes() {
		if imageCorners[c] {
			continue
		}
		neighbors := pg.Neighbors(c)
		if len(neighbors) == 2 {
			pg.addEdge(neighbors[0], neighbors[1])
		}
		if len(neighbors) <= 2 {
			toRemove = append(toRemove, c)
		}
	}
	for _, c := range toRemove {
		pg.removeNode(c)
	}

	for _, p := range sim.Nodes() {
		for c := range sim.Corners(p) {
			if !pg.hasNode(c) {
				sim.removeCorner(p, c)
			}
		}
	}

	return pg
}

// deformCell examines both orthogonally-adjacent pixels around the corner
// shared by n and its diagonal neighbor m, notching the lattice away from
// whichever one differs in color from n. adjA and adjB are always
// in-bounds: their coordinates are drawn componentwise from n and m,
// which are themselves existing similarity-graph nodes.
func deformCell(sim *SimilarityGraph, pg *PixelGraph, n, m Pixel) {
	offX4 := 4 * (m.X - n.X)
	offY4 := 4 * (m.Y - n.Y)
	maxX, maxY := n.X, n.Y
	if m.X > maxX {
		maxX = m.X
	}
	if m.Y > maxY {
		maxY = m.Y
	}
	pixnode := Corner{X4: 4 * maxX, Y4: 4 * maxY}

	nVal := sim.Value(n)

	adjA := Pixel{X: m.X, Y: n.Y}
	if sim.hasNode(adjA) && sim.Value(adjA) != nVal {
		pn := Corner{X4: pixnode.X4, Y4: pixnode.Y4 - offY4}
		mpn := Corner{X4: pixnode.X4, Y4: pixnode.Y4 - offY4/2}
		npn := Corner{X4: pixnode.X4 + offX4/4, Y4: pixnode.Y4 - offY4/4}
		sim.removeCorner(adjA, pixnode)
		sim.addCorner(adjA, npn)
		sim.addCorner(n, npn)
		deform(pg, pixnode, pn, mpn, npn)
	}

	adjB := Pixel{X: n.X, Y: m.Y}
	if sim.hasNode(adjB) && sim.Value(adjB) != nVal {
		pn := Corner{X4: pixnode.X4 - offX4, Y4: pixnode.Y4}
		mpn := Corner{X4: pixnode.X4 - offX4/2, Y4: pixnode.Y4}
		npn := Corner{X4: pixnode.X4 - offX4/4, Y4: pixnode.Y4 + offY4/4}
		sim.removeCorner(adjB, pixnode)
		sim.addCorner(adjB, npn)
		sim.addCorner(n, npn)
		deform(pg, pixnode, pn, mpn, npn)
	}
}

func deform(pg *PixelGraph, pixnode, pn, mpn, npn Corner) {
	if pg.hasNode(mpn) {
		pg.removeEdge(mpn, pixnode)
	} else {
		pg.removeEdge(pn, pixnode)
		pg.addEdge(pn, mpn)
	}
	pg.addEdge(mpn, npn)
	pg.addEdge(npn, pixnode)
}
