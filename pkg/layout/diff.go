package layout

import (
	"math"

	"github.com/mark/flowc/pkg/ir"
)

// Diff computes per-node Euclidean displacement between two layout
// runs of the same diagram (spec.md §6), used when a prior layout is
// supplied as a stability hint.
func Diff(prev, curr *ir.LaidOutDiagram) ir.DisplacementReport {
	report := ir.DisplacementReport{ByNodeID: make(map[string]float64)}
	if prev == nil || curr == nil {
		return report
	}

	prevPos := make(map[string]ir.Point, len(prev.Diagram.Nodes))
	for _, n := range prev.Diagram.Nodes {
		if n.Position != nil {
			prevPos[n.ID] = ir.Point{X: n.Position.X, Y: n.Position.Y}
		}
	}

	var sum float64
	var count int
	for _, n := range curr.Diagram.Nodes {
		if n.Position == nil {
			continue
		}
		p0, ok := prevPos[n.ID]
		if !ok {
			continue
		}
		d := math.Hypot(n.Position.X-p0.X, n.Position.Y-p0.Y)
		report.ByNodeID[n.ID] = d
		sum += d
		count++
		if d > report.MaxDisplacement {
			report.MaxDisplacement = d
		}
	}
	if count > 0 {
		report.MeanDisplacement = sum / float64(count)
	}
	return report
}
