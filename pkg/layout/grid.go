package layout

import (
	"math"

	"github.com/mark/flowc/pkg/ir"
)

// occupancyGrid is the router's shared obstacle/cost grid covering the
// diagram's bounding box (spec.md §4.6). Cell size is derived from node
// spacing alone (see cellSizeFor); port offsets are not aligned to
// cell boundaries.
type occupancyGrid struct {
	originX, originY float64
	cell             float64
	cols, rows       int

	blocked  []bool    // obstacle cells: non-endpoint node/subgraph-border interiors
	occupied []float64 // decaying occupancy cost, incremented per routed edge
}

const defaultCellSize = 10.0

func newOccupancyGrid(d *ir.Diagram, cfg ir.LayoutConfig) *occupancyGrid {
	minX, minY, maxX, maxY := GetDiagramBounds(d)
	margin := cfg.NodeSpacing
	minX -= margin
	minY -= margin
	maxX += margin
	maxY += margin

	cell := cellSizeFor(cfg)
	cols := int(math.Ceil((maxX-minX)/cell)) + 1
	rows := int(math.Ceil((maxY-minY)/cell)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g := &occupancyGrid{
		originX: minX, originY: minY, cell: cell,
		cols: cols, rows: rows,
		blocked:  make([]bool, cols*rows),
		occupied: make([]float64, cols*rows),
	}
	g.stampObstacles(d, cfg)
	return g
}

// cellSizeFor returns a quarter of the node spacing as the grid cell
// size, or defaultCellSize when that quarter is under 4px. The port
// padding pitch is not taken into account.
func cellSizeFor(cfg ir.LayoutConfig) float64 {
	c := cfg.NodeSpacing / 4
	if c < 4 {
		c = defaultCellSize
	}
	return c
}

func (g *occupancyGrid) idx(c, r int) int { return r*g.cols + c }

func (g *occupancyGrid) cellOf(x, y float64) (int, int) {
	c := int((x - g.originX) / g.cell)
	r := int((y - g.originY) / g.cell)
	return clampInt(c, 0, g.cols-1), clampInt(r, 0, g.rows-1)
}

func (g *occupancyGrid) pointOf(c, r int) ir.Point {
	return ir.Point{X: g.originX + (float64(c)+0.5)*g.cell, Y: g.originY + (float64(r)+0.5)*g.cell}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stampObstacles marks node rectangles (expanded by half node spacing)
// and subgraph border cells as blocked. Subgraph interiors are left
// open, per spec.md §4.6 ("the interior of a non-endpoint subgraph is
// not blocked, only its border cells").
func (g *occupancyGrid) stampObstacles(d *ir.Diagram, cfg ir.LayoutConfig) {
	half := cfg.NodeSpacing / 2
	for _, n := range d.Nodes {
		if n.Position == nil {
			continue
		}
		g.blockRect(n.Position.X-half, n.Position.Y-half, n.Right()+half, n.Bottom()+half)
	}
	for _, s := range d.Subgraphs {
		if s.Position == nil {
			continue
		}
		g.blockBorder(s.Position.X, s.Position.Y, s.Right(), s.Bottom())
	}
}

func (g *occupancyGrid) blockRect(x0, y0, x1, y1 float64) {
	c0, r0 := g.cellOf(x0, y0)
	c1, r1 := g.cellOf(x1, y1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.blocked[g.idx(c, r)] = true
		}
	}
}

func (g *occupancyGrid) blockBorder(x0, y0, x1, y1 float64) {
	c0, r0 := g.cellOf(x0, y0)
	c1, r1 := g.cellOf(x1, y1)
	for c := c0; c <= c1; c++ {
		g.blocked[g.idx(c, r0)] = true
		g.blocked[g.idx(c, r1)] = true
	}
	for r := r0; r <= r1; r++ {
		g.blocked[g.idx(c0, r)] = true
		g.blocked[g.idx(c1, r)] = true
	}
}

// tempClear temporarily clears a node's obstacle cells so its own
// endpoint port can be reached/left; restore puts them back.
func (g *occupancyGrid) tempClear(x0, y0, x1, y1 float64, half float64) []int {
	c0, r0 := g.cellOf(x0-half, y0-half)
	c1, r1 := g.cellOf(x1+half, y1+half)
	var cleared []int
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			i := g.idx(c, r)
			if g.blocked[i] {
				g.blocked[i] = false
				cleared = append(cleared, i)
			}
		}
	}
	return cleared
}

func (g *occupancyGrid) restore(cells []int) {
	for _, i := range cells {
		g.blocked[i] = true
	}
}

// decay ages existing occupancy costs down, so that fresh
// crossings on a later edge cost more than old ones (spec.md §4.6).
func (g *occupancyGrid) decay(factor float64) {
	for i := range g.occupied {
		g.occupied[i] *= factor
	}
}

func (g *occupancyGrid) markPath(pts []ir.Point, weight float64) {
	for i := 0; i+1 < len(pts); i++ {
		g.markSegment(pts[i], pts[i+1], weight)
	}
}

func (g *occupancyGrid) markSegment(a, b ir.Point, weight float64) {
	c0, r0 := g.cellOf(a.X, a.Y)
	c1, r1 := g.cellOf(b.X, b.Y)
	if c0 == c1 {
		lo, hi := r0, r1
		if lo > hi {
			lo, hi = hi, lo
		}
		for r := lo; r <= hi; r++ {
			g.occupied[g.idx(c0, r)] += weight
		}
		return
	}
	lo, hi := c0, c1
	if lo > hi {
		lo, hi = hi, lo
	}
	for c := lo; c <= hi; c++ {
		g.occupied[g.idx(c, r0)] += weight
	}
}
