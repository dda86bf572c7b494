package layout

import (
	"container/heap"
	"sort"

	"github.com/mark/flowc/pkg/ir"
)

// routeDir is one of the four grid-walk directions, ordered N<E<S<W
// for deterministic A* tie-breaks (spec.md §4.6).
type routeDir int

const (
	dirN routeDir = iota
	dirE
	dirS
	dirW
)

var dirDelta = [4][2]int{
	dirN: {0, -1},
	dirE: {1, 0},
	dirS: {0, 1},
	dirW: {-1, 0},
}

const (
	turnPenalty       = 2.0
	occupancyWeight   = 1.0
	decayFactor       = 0.7
	freshMarkWeight   = 3.0
	astarBudgetPerDim = 4000 // bounded expansion budget (cells)
)

// routeEdges routes every edge's orthogonal path on the shared
// occupancy grid, in priority order, per spec.md §4.6.
func routeEdges(d *ir.Diagram, rr rankResult, cfg ir.LayoutConfig) ([]*ir.RoutedEdge, []ir.Warning) {
	grid := newOccupancyGrid(d, cfg)
	order := routingPriorityOrder(d, rr)

	routed := make([]*ir.RoutedEdge, len(d.Edges))
	var warnings []ir.Warning

	for _, ei := range order {
		e := d.Edges[ei]
		if e.StartPort == nil || e.EndPort == nil {
			continue
		}
		src := d.Nodes[e.StartPort.NodeIndex]
		dst := d.Nodes[e.EndPort.NodeIndex]
		half := cfg.NodeSpacing / 2

		startPt := e.StartPort.point(src)
		endPt := e.EndPort.point(dst)

		clearedSrc := grid.tempClear(src.Position.X, src.Position.Y, src.Right(), src.Bottom(), half)
		clearedDst := grid.tempClear(dst.Position.X, dst.Position.Y, dst.Right(), dst.Bottom(), half)

		path, forced := findPath(grid, startPt, endPt, e.StartPort.Side, e.EndPort.Side)
		if path == nil {
			path, forced = heuristicPath(grid, startPt, endPt, e.StartPort.Side)
		}

		grid.restore(clearedSrc)
		grid.restore(clearedDst)

		path = simplifyPath(path)
		grid.decay(decayFactor)
		grid.markPath(path, freshMarkWeight)

		re := &ir.RoutedEdge{
			EdgeIndex:      ei,
			Segments:       toSegments(path),
			StartPort:      *e.StartPort,
			EndPort:        *e.EndPort,
			LabelAnchor:    -1,
			ForcedCrossing: forced,
		}
		routed[ei] = re
		e.Points = path
		e.ForcedCrossing = forced
		if forced {
			warnings = append(warnings, ir.Warning{
				Kind:    ir.WarningForcedCrossing,
				Message: "no obstacle-free path found within routing budget",
				EdgeID:  e.ID,
			})
		}
	}

	return routed, warnings
}

// routingPriorityOrder orders edges longest-first, back-edges first,
// then declaration order, per spec.md §4.6.
func routingPriorityOrder(d *ir.Diagram, rr rankResult) []int {
	idx := make([]int, len(d.Edges))
	for i := range idx {
		idx[i] = i
	}
	length := func(i int) float64 {
		u, v := rr.EffSource[i], rr.EffTarget[i]
		if u < 0 || v < 0 {
			return 0
		}
		rdiff := rr.Rank[v] - rr.Rank[u]
		if rdiff < 0 {
			rdiff = -rdiff
		}
		return float64(rdiff)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := idx[a], idx[b]
		if rr.Reversed[ea] != rr.Reversed[eb] {
			return rr.Reversed[ea] // back-edges first
		}
		la, lb := length(ea), length(eb)
		if la != lb {
			return la > lb // longer edges first
		}
		return d.Edges[ea].DeclIndex < d.Edges[eb].DeclIndex
	})
	return idx
}

type pqItem struct {
	g, f  float64
	c, r  int
	dir   routeDir
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	if pq[i].g != pq[j].g {
		return pq[i].g > pq[j].g // prefer deeper (spec: tie-break by depth)
	}
	return pq[i].dir < pq[j].dir
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// findPath runs an orthogonal A* from start to end, entering/exiting
// perpendicular to the port sides. Returns nil if no path is found
// within the expansion budget.
func findPath(g *occupancyGrid, start, end ir.Point, startSide, endSide ir.Side) ([]ir.Point, bool) {
	sc, sr := g.cellOf(start.X, start.Y)
	ec, er := g.cellOf(end.X, end.Y)

	type key = struct {
		c, r int
	}
	cameFrom := make(map[key]key)
	gScore := make(map[key]float64)
	startKey := key{sc, sr}
	gScore[startKey] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{g: 0, f: heuristic(sc, sr, ec, er), c: sc, r: sr, dir: sideOutDir(startSide)})

	budget := g.cols*g.rows/4 + astarBudgetPerDim
	expansions := 0

	visited := make(map[key]bool)

	for pq.Len() > 0 && expansions < budget {
		item := heap.Pop(pq).(*pqItem)
		k := key{item.c, item.r}
		if visited[k] {
			continue
		}
		visited[k] = true
		expansions++

		if k == (key{ec, er}) {
			return reconstructPath(g, cameFrom, startKey, k, start, end), false
		}

		for d := dirN; d <= dirW; d++ {
			nc := item.c + dirDelta[d][0]
			nr := item.r + dirDelta[d][1]
			if nc < 0 || nc >= g.cols || nr < 0 || nr >= g.rows {
				continue
			}
			ni := g.idx(nc, nr)
			if g.blocked[ni] {
				continue
			}
			cost := 1.0 + g.occupied[ni]*occupancyWeight
			if d != item.dir {
				cost += turnPenalty
			}
			ng := item.g + cost
			nk := key{nc, nr}
			if existing, ok := gScore[nk]; !ok || ng < existing {
				gScore[nk] = ng
				cameFrom[nk] = k
				heap.Push(pq, &pqItem{g: ng, f: ng + heuristic(nc, nr, ec, er), c: nc, r: nr, dir: d})
			}
		}
	}

	return nil, true
}

func sideOutDir(s ir.Side) routeDir {
	switch s {
	case ir.SideN:
		return dirN
	case ir.SideS:
		return dirS
	case ir.SideE:
		return dirE
	default:
		return dirW
	}
}

func heuristic(c, r, ec, er int) float64 {
	dx := c - ec
	if dx < 0 {
		dx = -dx
	}
	dy := r - er
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

func reconstructPath(g *occupancyGrid, cameFrom map[struct{ c, r int }]struct{ c, r int }, start, end struct{ c, r int }, startPt, endPt ir.Point) []ir.Point {
	type key = struct{ c, r int }
	var cellsRev []key
	cur := end
	for {
		cellsRev = append(cellsRev, cur)
		if cur == start {
			break
		}
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	pts := make([]ir.Point, 0, len(cellsRev)+2)
	pts = append(pts, startPt)
	for i := len(cellsRev) - 1; i >= 0; i-- {
		pts = append(pts, g.pointOf(cellsRev[i].c, cellsRev[i].r))
	}
	pts = append(pts, endPt)
	return pts
}

// simplifyPath collapses collinear points (spec.md §4.6 post-smooth).
func simplifyPath(pts []ir.Point) []ir.Point {
	if len(pts) < 3 {
		return pts
	}
	out := []ir.Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		a, b, c := out[len(out)-1], pts[i], pts[i+1]
		if collinear(a, b, c) {
			continue
		}
		out = append(out, b)
	}
	out = append(out, pts[len(pts)-1])
	return out
}

func collinear(a, b, c ir.Point) bool {
	sameX := a.X == b.X && b.X == c.X
	sameY := a.Y == b.Y && b.Y == c.Y
	return sameX || sameY
}

func toSegments(pts []ir.Point) []ir.Segment {
	segs := make([]ir.Segment, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, ir.Segment{From: pts[i], To: pts[i+1]})
	}
	return segs
}

// heuristicPath tries the L-, S-, then C-shape fallback candidates in
// order when A* fails within budget, returning the first one that
// clears every obstacle (spec.md §4.6 step 2). If all three collide,
// it returns the L-shape flagged as a forced crossing.
func heuristicPath(g *occupancyGrid, start, end ir.Point, startSide ir.Side) ([]ir.Point, bool) {
	l := lShapePath(start, end, startSide)
	if pathObstacleFree(g, l) {
		return l, false
	}
	if s := sShapePath(start, end, startSide); pathObstacleFree(g, s) {
		return s, false
	}
	if c := cShapePath(g, start, end, startSide); pathObstacleFree(g, c) {
		return c, false
	}
	return l, true
}

// lShapePath bends once, at the corner implied by the two endpoints.
func lShapePath(start, end ir.Point, startSide ir.Side) []ir.Point {
	mid := ir.Point{X: end.X, Y: start.Y}
	if startSide == ir.SideN || startSide == ir.SideS {
		mid = ir.Point{X: start.X, Y: end.Y}
	}
	return []ir.Point{start, mid, end}
}

// sShapePath bends twice, jogging halfway between the endpoints along
// the axis the start port exits on.
func sShapePath(start, end ir.Point, startSide ir.Side) []ir.Point {
	if startSide == ir.SideN || startSide == ir.SideS {
		midY := (start.Y + end.Y) / 2
		return []ir.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
	}
	midX := (start.X + end.X) / 2
	return []ir.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
}

// cShapePath bends twice via a detour that extends outward past the
// start point, useful when the direct L/S candidates cross an obstacle
// sitting between the two endpoints.
func cShapePath(g *occupancyGrid, start, end ir.Point, startSide ir.Side) []ir.Point {
	offset := g.cell * 4
	if startSide == ir.SideN || startSide == ir.SideS {
		sign := 1.0
		if startSide == ir.SideN {
			sign = -1.0
		}
		detourY := start.Y + sign*offset
		return []ir.Point{start, {X: start.X, Y: detourY}, {X: end.X, Y: detourY}, end}
	}
	sign := 1.0
	if startSide == ir.SideW {
		sign = -1.0
	}
	detourX := start.X + sign*offset
	return []ir.Point{start, {X: detourX, Y: start.Y}, {X: detourX, Y: end.Y}, end}
}

func pathObstacleFree(g *occupancyGrid, pts []ir.Point) bool {
	for i := 0; i+1 < len(pts); i++ {
		if !segmentObstacleFree(g, pts[i], pts[i+1]) {
			return false
		}
	}
	return true
}

func segmentObstacleFree(g *occupancyGrid, a, b ir.Point) bool {
	c0, r0 := g.cellOf(a.X, a.Y)
	c1, r1 := g.cellOf(b.X, b.Y)
	lo, hi := r0, r1
	if c0 == c1 {
		if lo > hi {
			lo, hi = hi, lo
		}
		for r := lo; r <= hi; r++ {
			if g.blocked[g.idx(c0, r)] {
				return false
			}
		}
		return true
	}
	lo, hi = c0, c1
	if lo > hi {
		lo, hi = hi, lo
	}
	for c := lo; c <= hi; c++ {
		if g.blocked[g.idx(c, r0)] {
			return false
		}
	}
	return true
}
