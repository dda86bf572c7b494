package layout

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/mark/flowc/pkg/ir"
)

// genDAG builds a random connected diagram: n nodes, each i>0 gets one
// edge from a random earlier node (a spanning DAG), plus a handful of
// extra edges between random node pairs, which may point backward and
// close cycles, so ranks, cycle breaking and ordering have real work
// to do.
func genDAG(t *rapid.T) *ir.Diagram {
	n := rapid.IntRange(2, 25).Draw(t, "nodeCount")

	d := &ir.Diagram{Config: ir.DefaultLayoutConfig()}
	for i := 0; i < n; i++ {
		d.Nodes = append(d.Nodes, &ir.Node{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("Node %d", i)})
	}

	declIdx := 0
	for i := 1; i < n; i++ {
		from := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("edgeFrom_%d", i))
		d.Edges = append(d.Edges, &ir.Edge{
			ID: fmt.Sprintf("e%d", declIdx), Source: fmt.Sprintf("n%d", from), Target: fmt.Sprintf("n%d", i),
			Direction: ir.DirectionForward,
		})
		declIdx++
	}

	extra := rapid.IntRange(0, n).Draw(t, "extraEdgeCount")
	for k := 0; k < extra; k++ {
		if n < 2 {
			break
		}
		a := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("extraA_%d", k))
		b := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("extraB_%d", k))
		if a == b {
			continue
		}
		d.Edges = append(d.Edges, &ir.Edge{
			ID: fmt.Sprintf("x%d", k), Source: fmt.Sprintf("n%d", a), Target: fmt.Sprintf("n%d", b),
			Direction: ir.DirectionForward,
		})
	}

	return d
}

// TestProperty_NoNodeOverlap is universal invariant 1 of spec.md §8:
// no two node rectangles (expanded by half node spacing) overlap.
func TestProperty_NoNodeOverlap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDAG(t)
		laid, err := Run(d, Options{LayoutConfig: d.Config})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		half := d.Config.NodeSpacing / 2
		for i := 0; i < len(laid.Diagram.Nodes); i++ {
			for j := i + 1; j < len(laid.Diagram.Nodes); j++ {
				if rectOverlapExpanded(laid.Diagram.Nodes[i], laid.Diagram.Nodes[j], half) {
					t.Fatalf("nodes %s and %s overlap", laid.Diagram.Nodes[i].ID, laid.Diagram.Nodes[j].ID)
				}
			}
		}
	})
}

// TestProperty_PortsOnBoundary checks universal invariant 3 at the
// port level: every assigned port's offset lies within the length of
// its side, so the port sits on its node's boundary. The routed path
// points themselves are not compared against the ports here.
func TestProperty_PortsOnBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDAG(t)
		_, err := Run(d, Options{LayoutConfig: d.Config})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		for _, e := range d.Edges {
			if e.StartPort == nil || e.EndPort == nil {
				continue
			}
			checkPortOnBoundary(t, d, e.StartPort)
			checkPortOnBoundary(t, d, e.EndPort)
		}
	})
}

func checkPortOnBoundary(t *rapid.T, d *ir.Diagram, p *ir.Port) {
	n := d.Nodes[p.NodeIndex]
	switch p.Side {
	case ir.SideN, ir.SideS:
		if p.Offset < 0 || p.Offset > n.Width {
			t.Fatalf("port offset %v out of bounds for side %v on node width %v", p.Offset, p.Side, n.Width)
		}
	case ir.SideE, ir.SideW:
		if p.Offset < 0 || p.Offset > n.Height {
			t.Fatalf("port offset %v out of bounds for side %v on node height %v", p.Offset, p.Side, n.Height)
		}
	}
}

// TestProperty_Deterministic is universal invariant 5: identical input
// and config produce bit-identical output.
func TestProperty_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d1 := genDAG(t)
		d2 := cloneDiagramForTest(d1)

		laid1, err := Run(d1, Options{LayoutConfig: d1.Config})
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		laid2, err := Run(d2, Options{LayoutConfig: d2.Config})
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		if laid1.Width != laid2.Width || laid1.Height != laid2.Height {
			t.Fatalf("bounding box differs across identical runs")
		}
		for i := range d1.Nodes {
			if *d1.Nodes[i].Position != *d2.Nodes[i].Position {
				t.Fatalf("node %d position differs across identical runs", i)
			}
		}
	})
}

func cloneDiagramForTest(d *ir.Diagram) *ir.Diagram {
	out := &ir.Diagram{Config: d.Config}
	for _, n := range d.Nodes {
		cp := *n
		cp.Position = nil
		out.Nodes = append(out.Nodes, &cp)
	}
	for _, e := range d.Edges {
		cp := *e
		cp.Points = nil
		cp.StartPort, cp.EndPort = nil, nil
		out.Edges = append(out.Edges, &cp)
	}
	return out
}
