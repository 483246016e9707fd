package vectorize

// Path is an ordered, closed loop of lattice corners bounding one side of
// a shape, together with its fitted and smoothed closed B-splines. Two
// shapes that share a boundary share the same *Path instance.
type Path struct {
	Corners []Corner
	Spline  *ClosedBSpline
	Smooth  *ClosedBSpline
}

// pathKey canonicalizes a corner loop for the path cache: two shapes
// tracing the same physical boundary always discover the identical corner
// sequence, since makePath always starts at the loop's lexicographically
// smallest corner and always takes the same deterministic steps from
// there, so the full sequence (not just its length) is the cache key.
type pathKey string

func keyOf(corners []Corner) pathKey {
	buf := make([]byte, 0, len(corners)*16)
	for _, c := range corners {
		buf = appendInt(buf, c.X4)
		buf = append(buf, ',')
		buf = appendInt(buf, c.Y4)
		buf = append(buf, ';')
	}
	return pathKey(buf)
}

func appendInt(buf []byte, n int) []byte {
	if n < 0 {
		buf = append(buf, '-')
		n = -n
	}
	if n == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// buildOutlineGraph implements the first half of stage 6: start from the
// deformed pixel-cell lattice and drop every edge that is interior to a
// shape, i.e. shared by the corner sets of two similarity-adjacent pixels.
func buildOutlineGraph(sim *SimilarityGraph, pg *PixelGraph) *PixelGraph {
	outline := newPixelGraph()
	for _, c := range pg.Nodes() {
		outline.addNode(c)
		for _, nb := range pg.Neighbors(c) {
			outline.addEdge(c, nb)
		}
	}

	for _, p := range sim.Nodes() {
		pCorners := sim.Corners(p)
		for _, nb := range sim.Neighbors(p) {
			nbCorners := sim.Corners(nb)
			var shared []Corner
			for c := range pCorners {
				if nbCorners[c] {
					shared = append(shared, c)
				}
			}
			if len(shared) == 2 && outline.hasEdge(shared[0], shared[1]) {
				outline.removeEdge(shared[0], shared[1])
			}
		}
	}

	var isolated []Corner
	for _, c := range outline.Nodes() {
		if outline.Degree(c) == 0 {
			isolated = append(isolated, c)
		}
	}
	for _, c := range isolated {
		outline.removeNode(c)
	}

	return outline
}

// buildShapeOutlines implements the second half of stage 6: for each
// shape, find the connected components of the outline graph induced on
// its corner set, classify the component containing the shape's smallest
// corner as the outside boundary and any others as holes, and build (or
// reuse from cache) each component's Path.
func buildShapeOutlines(outline *PixelGraph, shapes []*Shape, cache map[pathKey]*Path, refs map[*Path]int) {
	for _, shape := range shapes {
		var induced []Corner
		for c := range shape.Corners {
			if outline.hasNode(c) {
				induced = append(induced, c)
			}
		}
		if len(induced) == 0 {
			continue
		}

		subgraphMin := induced[0]
		for _, c := range induced[1:] {
			subgraphMin = minCorner(subgraphMin, c)
		}

		visited := make(map[Corner]bool)
		for _, start := range induced {
			if visited[start] {
				continue
			}
			comp := componentOf(outline, start, shape.Corners, visited)
			compMin := comp[0]
			for _, c := range comp[1:] {
				compMin = minCorner(compMin, c)
			}

			path := getOrBuildPath(outline, comp, shape.Corners, cache)
			refs[path]++

			if compMin == subgraphMin {
				shape.outside = path
			} else {
				shape.inside = append(shape.inside, path)
			}
		}
	}
}

func componentOf(outline *PixelGraph, start Corner, allowed map[Corner]bool, visited map[Corner]bool) []Corner {
	queue := []Corner{start}
	visited[start] = true
	var comp []Corner
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		comp = append(comp, c)
		for _, nb := range outline.Neighbors(c) {
			if !allowed[nb] || visited[nb] {
				continue
			}
			visited[nb] = true
			queue = append(queue, nb)
		}
	}
	return comp
}

func getOrBuildPath(outline *PixelGraph, comp []Corner, allowed map[Corner]bool, cache map[pathKey]*Path) *Path {
	corners := makePath(outline, comp, allowed)
	k := keyOf(corners)
	if p, ok := cache[k]; ok {
		return p
	}
	p := &Path{Corners: corners}
	p.Spline = fitClosedBSpline(corners)
	cache[k] = p
	return p
}

// makePath orders a connected component's corners into a single closed
// loop: start at the lexicographically smallest corner, take the first
// step toward the neighbor with the least slope, then walk the remaining
// neighbors greedily, allowing up to 3 stalled steps (the traversal
// revisiting its current tail without progress) before giving up.
func makePath(outline *PixelGraph, comp []Corner, allowed map[Corner]bool) []Corner {
	remaining := make(map[Corner]bool, len(comp))
	for _, c := range comp {
		remaining[c] = true
	}

	start := comp[0]
	for _, c := range comp[1:] {
		start = minCorner(start, c)
	}

	path := []Corner{start}
	delete(remaining, start)

	neighbors := neighborsWithin(outline, start, allowed)
	if len(neighbors) > 0 {
		best := neighbors[0]
		bestSlope := slope(start, best)
		for _, nb := range neighbors[1:] {
			if s := slope(start, nb); s < bestSlope {
				best, bestSlope = nb, s
			}
		}
		path = append(path, best)
		delete(remaining, best)
	}

	stalls := 0
	for len(remaining) > 0 && stalls < 3 {
		tail := path[len(path)-1]
		advanced := false
		for _, nb := range neighborsWithin(outline, tail, allowed) {
			if remaining[nb] {
				path = append(path, nb)
				delete(remaining, nb)
				advanced = true
				break
			}
		}
		if !advanced {
			stalls++
		} else {
			stalls = 0
		}
	}

	return path
}

func neighborsWithin(outline *PixelGraph, c Corner, allowed map[Corner]bool) []Corner {
	var out []Corner
	for _, nb := range outline.Neighbors(c) {
		if allowed[nb] {
			out = append(out, nb)
		}
	}
	return out
}
