package layout

import "github.com/mark/flowc/pkg/ir"

// Score computes the weighted readability objective from the diagram's
// configured Weights (the defaults when they are all zero):
//
//	score = Crossing*crossings + EdgeLength*totalLength + Bend*bends +
//	        ForcedCrossing*forcedCrossings + LabelOverlap*labelOverlaps +
//	        3*meanDisplacement (only when prev is non-nil)
//
// Side congestion, overlapping segments and canvas area are not scored.
// It is reported for benchmarking, never enforced as a hard constraint.
func Score(laid *ir.LaidOutDiagram, prev *ir.LaidOutDiagram) ir.ReadabilityScore {
	d := laid.Diagram

	var totalLen float64
	var bends int
	for _, re := range laid.RoutedEdges {
		if re == nil {
			continue
		}
		pts := re.Points()
		for i := 0; i+1 < len(pts); i++ {
			totalLen += dist(pts[i], pts[i+1])
		}
		if len(pts) > 2 {
			bends += len(pts) - 2
		}
	}

	crossings := countSegmentCrossings(laid.RoutedEdges)
	forced := 0
	for _, re := range laid.RoutedEdges {
		if re != nil && re.ForcedCrossing {
			forced++
		}
	}
	labelOverlaps := countLabelOverlaps(laid.Labels)

	weights := d.Config.Weights
	if weights == (ir.ReadabilityWeights{}) {
		weights = ir.DefaultLayoutConfig().Weights
	}

	total := weights.Crossing*float64(crossings) +
		weights.EdgeLength*totalLen +
		weights.Bend*float64(bends) +
		weights.ForcedCrossing*float64(forced) +
		weights.LabelOverlap*float64(labelOverlaps)

	if prev != nil {
		report := Diff(prev, laid)
		total += 3 * report.MeanDisplacement
	}

	return ir.ReadabilityScore{
		Total:           total,
		Crossings:       crossings,
		BendCount:       bends,
		TotalEdgeLen:    totalLen,
		ForcedCrossings: forced,
		LabelOverlaps:   labelOverlaps,
	}
}

// countSegmentCrossings counts pairwise intersections between the
// orthogonal segments of distinct routed edges.
func countSegmentCrossings(routed []*ir.RoutedEdge) int {
	count := 0
	for i := 0; i < len(routed); i++ {
		if routed[i] == nil {
			continue
		}
		for j := i + 1; j < len(routed); j++ {
			if routed[j] == nil {
				continue
			}
			for _, sa := range routed[i].Segments {
				for _, sb := range routed[j].Segments {
					if segmentsCross(sa, sb) {
						count++
					}
				}
			}
		}
	}
	return count
}

func segmentsCross(a, b ir.Segment) bool {
	if a.Horizontal() == b.Horizontal() {
		return false // parallel segments overlapping isn't a "crossing"
	}
	var h, v ir.Segment
	if a.Horizontal() {
		h, v = a, b
	} else {
		h, v = b, a
	}
	hx0, hx1 := minF(h.From.X, h.To.X), maxF(h.From.X, h.To.X)
	vy0, vy1 := minF(v.From.Y, v.To.Y), maxF(v.From.Y, v.To.Y)
	return v.From.X > hx0 && v.From.X < hx1 && h.From.Y > vy0 && h.From.Y < vy1
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func countLabelOverlaps(labels []*ir.EdgeLabel) int {
	count := 0
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			if labelsOverlapArea(labels[i], labels[j]) > minSliverArea {
				count++
			}
		}
	}
	return count
}

func labelsOverlapArea(a, b *ir.EdgeLabel) float64 {
	ox := minF(a.Right(), b.Right()) - maxF(a.X, b.X)
	oy := minF(a.Bottom(), b.Bottom()) - maxF(a.Y, b.Y)
	if ox <= 0 || oy <= 0 {
		return 0
	}
	return ox * oy
}
