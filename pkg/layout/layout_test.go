package layout

import (
	"testing"

	"github.com/mark/flowc/pkg/ir"
)

func simpleDiagram() *ir.Diagram {
	return &ir.Diagram{
		ID: "test",
		Nodes: []*ir.Node{
			{ID: "a", Label: "Server", Shape: ir.ShapeRectangle},
			{ID: "b", Label: "Database", Shape: ir.ShapeRectangle},
		},
		Edges: []*ir.Edge{
			{ID: "e1", Source: "a", Target: "b", Direction: ir.DirectionForward, Label: "SQL"},
		},
		Config: ir.DefaultLayoutConfig(),
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.NodeSpacing != 40 {
		t.Errorf("expected default NodeSpacing 40, got %v", opts.NodeSpacing)
	}
	if opts.OrderPasses != 4 {
		t.Errorf("expected default OrderPasses 4, got %v", opts.OrderPasses)
	}
}

func TestRun_Simple(t *testing.T) {
	d := simpleDiagram()
	laid, err := Run(d, Options{LayoutConfig: d.Config})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, n := range d.Nodes {
		if n.Position == nil {
			t.Errorf("node %s has no position", n.ID)
		}
		if n.Width <= 0 || n.Height <= 0 {
			t.Errorf("node %s has non-positive size: %v x %v", n.ID, n.Width, n.Height)
		}
	}

	if len(laid.RoutedEdges) != 1 || laid.RoutedEdges[0] == nil {
		t.Fatalf("expected 1 routed edge, got %v", laid.RoutedEdges)
	}
	pts := laid.RoutedEdges[0].Points()
	if len(pts) < 2 {
		t.Errorf("expected at least 2 points in routed edge, got %d", len(pts))
	}
}

func TestRun_NodesDoNotOverlap(t *testing.T) {
	d := &ir.Diagram{
		Nodes: []*ir.Node{
			{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
		},
		Edges: []*ir.Edge{
			{ID: "e1", Source: "a", Target: "b", Direction: ir.DirectionForward},
			{ID: "e2", Source: "a", Target: "c", Direction: ir.DirectionForward},
			{ID: "e3", Source: "b", Target: "d", Direction: ir.DirectionForward},
			{ID: "e4", Source: "c", Target: "d", Direction: ir.DirectionForward},
		},
		Config: ir.DefaultLayoutConfig(),
	}
	if _, err := Run(d, Options{LayoutConfig: d.Config}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	half := d.Config.NodeSpacing / 2
	for i := 0; i < len(d.Nodes); i++ {
		for j := i + 1; j < len(d.Nodes); j++ {
			if rectOverlapExpanded(d.Nodes[i], d.Nodes[j], half) {
				t.Errorf("nodes %s and %s overlap", d.Nodes[i].ID, d.Nodes[j].ID)
			}
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	d1 := simpleDiagram()
	d2 := simpleDiagram()

	laid1, err := Run(d1, Options{LayoutConfig: d1.Config})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	laid2, err := Run(d2, Options{LayoutConfig: d2.Config})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range d1.Nodes {
		if *d1.Nodes[i].Position != *d2.Nodes[i].Position {
			t.Errorf("node %d position differs across runs: %+v vs %+v", i, d1.Nodes[i].Position, d2.Nodes[i].Position)
		}
	}
	if laid1.Width != laid2.Width || laid1.Height != laid2.Height {
		t.Errorf("bounding box differs across runs")
	}
}

func TestRun_CycleReversesEdge(t *testing.T) {
	d := &ir.Diagram{
		Nodes: []*ir.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []*ir.Edge{
			{ID: "e1", Source: "a", Target: "b", Direction: ir.DirectionForward},
			{ID: "e2", Source: "b", Target: "c", Direction: ir.DirectionForward},
			{ID: "e3", Source: "c", Target: "a", Direction: ir.DirectionForward}, // closes the cycle
		},
		Config: ir.DefaultLayoutConfig(),
	}
	if _, err := Run(d, Options{LayoutConfig: d.Config}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !d.Edges[2].Reversed {
		t.Errorf("expected the cycle-closing edge to be marked reversed")
	}
	if d.Edges[2].Source != "c" || d.Edges[2].Target != "a" {
		t.Errorf("reversed edge must keep its original Source/Target for arrow rendering")
	}
}

func TestRun_InvalidInput(t *testing.T) {
	d := &ir.Diagram{
		Nodes: []*ir.Node{{ID: "a"}},
		Edges: []*ir.Edge{{ID: "e1", Source: "a", Target: "missing"}},
	}
	_, err := Run(d, Options{})
	if err == nil {
		t.Fatal("expected an error for a dangling edge reference")
	}
	var lerr *Error
	if !asError(err, &lerr) {
		t.Fatalf("expected *layout.Error, got %T", err)
	}
	if lerr.Kind != InvalidInput {
		t.Errorf("expected InvalidInput, got %v", lerr.Kind)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

func TestScore_Basic(t *testing.T) {
	d := simpleDiagram()
	laid, err := Run(d, Options{LayoutConfig: d.Config})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	score := Score(laid, nil)
	if score.TotalEdgeLen <= 0 {
		t.Errorf("expected positive total edge length, got %v", score.TotalEdgeLen)
	}
}

func TestDiff_Basic(t *testing.T) {
	d := simpleDiagram()
	laid, err := Run(d, Options{LayoutConfig: d.Config})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	report := Diff(laid, laid)
	if report.MaxDisplacement != 0 {
		t.Errorf("diffing a layout against itself should be zero displacement, got %v", report.MaxDisplacement)
	}
}
