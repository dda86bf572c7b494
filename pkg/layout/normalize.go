package layout

import (
	"math"

	"github.com/mark/flowc/pkg/ir"
)

const minSliverArea = 10.0 // spec.md §4.7: slivers <= 10px^2 ignored

// normalize runs the bounded overlap-resolution pass of spec.md §4.7:
// re-checks node-node overlap (fatal if found), places edge labels at
// the best-scoring anchor, and clamps labels to canvas bounds.
func normalize(d *ir.Diagram, routed []*ir.RoutedEdge, cfg ir.LayoutConfig) ([]*ir.EdgeLabel, []ir.Warning, error) {
	if err := checkNodeOverlap(d, cfg); err != nil {
		return nil, nil, err
	}

	minX, minY, maxX, maxY := GetDiagramBounds(d)
	canvasW, canvasH := maxX-minX, maxY-minY

	var labels []*ir.EdgeLabel
	var warnings []ir.Warning

	for _, re := range routed {
		if re == nil {
			continue
		}
		e := d.Edges[re.EdgeIndex]
		if e.Label == "" {
			continue
		}
		label := placeLabel(e, re, canvasW, canvasH, minX, minY)
		labels = append(labels, label)
		re.LabelAnchor = label.Anchor
	}

	return labels, warnings, nil
}

// checkNodeOverlap re-verifies the hard invariant that no two node
// rectangles (expanded by half node spacing) overlap; this should not
// occur given the coordinate assigner's spacing guarantees, but is
// re-checked here as the invariant's final gate.
func checkNodeOverlap(d *ir.Diagram, cfg ir.LayoutConfig) error {
	half := cfg.NodeSpacing / 2
	for i := 0; i < len(d.Nodes); i++ {
		a := d.Nodes[i]
		if a.Position == nil {
			continue
		}
		for j := i + 1; j < len(d.Nodes); j++ {
			b := d.Nodes[j]
			if b.Position == nil {
				continue
			}
			if rectOverlapExpanded(a, b, half) {
				return newError(InvariantViolation, "normalizer", "node overlap between %s and %s", a.ID, b.ID)
			}
		}
	}
	return nil
}

func rectOverlapExpanded(a, b *ir.Node, half float64) bool {
	ax0, ay0, ax1, ay1 := a.Position.X-half, a.Position.Y-half, a.Right()+half, a.Bottom()+half
	bx0, by0, bx1, by1 := b.Position.X-half, b.Position.Y-half, b.Right()+half, b.Bottom()+half
	return ax0 < bx1 && bx0 < ax1 && ay0 < by1 && by0 < ay1
}

// placeLabel evaluates the candidate anchor set (longest-segment
// midpoint, 0.25/0.5/0.75 path fractions, near-endpoint anchors) and
// picks the lowest-overlap, best-clearance anchor, per spec.md §4.7.
func placeLabel(e *ir.Edge, re *ir.RoutedEdge, canvasW, canvasH, originX, originY float64) *ir.EdgeLabel {
	pts := re.Points()
	if len(pts) < 2 {
		return &ir.EdgeLabel{EdgeIndex: re.EdgeIndex, Anchor: 0}
	}

	fontSize := e.Style.FontSize
	if fontSize == 0 {
		fontSize = defaultFontSize
	}
	tm := ApproxTextMetrics{}
	lw, lh := tm.MeasureString(e.Label, fontSize)

	candidates := labelAnchorCandidates(pts)

	best := candidates[0]
	bestScore := math.Inf(1)
	for _, cand := range candidates {
		rect := ir.EdgeLabel{X: cand.pt.X - lw/2, Y: cand.pt.Y - lh/2, Width: lw, Height: lh, Anchor: cand.anchor}
		score := labelClearanceScore(rect, pts)
		inBounds := rect.X >= originX && rect.Y >= originY && rect.Right() <= originX+canvasW && rect.Bottom() <= originY+canvasH
		if !inBounds {
			score += 1000 // strongly prefer in-bounds anchors
		}
		if score < bestScore {
			bestScore = score
			best = cand
		}
	}

	rect := &ir.EdgeLabel{
		EdgeIndex: re.EdgeIndex,
		X:         clamp(best.pt.X-lw/2, originX, originX+canvasW-lw),
		Y:         clamp(best.pt.Y-lh/2, originY, originY+canvasH-lh),
		Width:     lw,
		Height:    lh,
		Anchor:    best.anchor,
	}
	return rect
}

type labelCandidate struct {
	pt     ir.Point
	anchor int
}

func labelAnchorCandidates(pts []ir.Point) []labelCandidate {
	var out []labelCandidate

	longest, longestIdx := 0.0, 0
	for i := 0; i+1 < len(pts); i++ {
		l := dist(pts[i], pts[i+1])
		if l > longest {
			longest = l
			longestIdx = i
		}
	}
	out = append(out, labelCandidate{midpoint(pts[longestIdx], pts[longestIdx+1]), longestIdx})

	for _, frac := range []float64{0.25, 0.5, 0.75} {
		pt, seg := pointAtFraction(pts, frac)
		out = append(out, labelCandidate{pt, seg})
	}

	out = append(out, labelCandidate{pts[min(1, len(pts)-1)], 0})
	out = append(out, labelCandidate{pts[max(0, len(pts)-2)], len(pts) - 2})

	return out
}

func dist(a, b ir.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func midpoint(a, b ir.Point) ir.Point {
	return ir.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func pointAtFraction(pts []ir.Point, frac float64) (ir.Point, int) {
	total := 0.0
	for i := 0; i+1 < len(pts); i++ {
		total += dist(pts[i], pts[i+1])
	}
	target := total * frac
	acc := 0.0
	for i := 0; i+1 < len(pts); i++ {
		segLen := dist(pts[i], pts[i+1])
		if acc+segLen >= target || i == len(pts)-2 {
			t := 0.0
			if segLen > 0 {
				t = (target - acc) / segLen
			}
			return ir.Point{X: pts[i].X + t*(pts[i+1].X-pts[i].X), Y: pts[i].Y + t*(pts[i+1].Y-pts[i].Y)}, i
		}
		acc += segLen
	}
	return pts[0], 0
}

// labelClearanceScore penalizes a candidate for overlapping the path
// itself and for straying from the target 1-6px clearance band.
func labelClearanceScore(rect ir.EdgeLabel, pts []ir.Point) float64 {
	minClearance := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		c := segmentDistanceToRect(pts[i], pts[i+1], rect)
		if c < minClearance {
			minClearance = c
		}
	}
	if minClearance < 1 {
		return (1 - minClearance) * 100 // overlap/too-close, heavily penalized
	}
	if minClearance > 6 {
		return minClearance - 6
	}
	return 0
}

// segmentDistanceToRect is the gap between an axis-aligned segment and
// the rectangle's edges; 0 when they touch or overlap.
func segmentDistanceToRect(a, b ir.Point, rect ir.EdgeLabel) float64 {
	sx0, sx1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	sy0, sy1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	dx := math.Max(0, math.Max(sx0-rect.Right(), rect.X-sx1))
	dy := math.Max(0, math.Max(sy0-rect.Bottom(), rect.Y-sy1))
	return math.Hypot(dx, dy)
}

func pointToSegmentDistance(p, a, b ir.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	proj := ir.Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return dist(p, proj)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
