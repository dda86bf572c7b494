package parser

import (
	"testing"

	"github.com/mark/flowc/pkg/ir"
)

func TestNewFlowchartParser(t *testing.T) {
	p := NewFlowchartParser()
	if p == nil {
		t.Fatal("NewFlowchartParser returned nil")
	}
}

func TestParse_BareNodes(t *testing.T) {
	p := NewFlowchartParser()
	source := "flowchart TD\nserver\ndatabase\n"
	d, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Config.Direction != ir.DirectionTD {
		t.Errorf("expected direction TD, got %v", d.Config.Direction)
	}
	if len(d.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(d.Nodes))
	}
	for _, n := range d.Nodes {
		if n.Label != n.ID {
			t.Errorf("bare node %s should default label to its id, got %q", n.ID, n.Label)
		}
		if n.Shape != ir.ShapeRectangle {
			t.Errorf("bare node %s should default to rectangle, got %v", n.ID, n.Shape)
		}
	}
}

func TestParse_ShapeHints(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantLabel string
		wantShape ir.ShapeType
	}{
		{"rectangle", "a[Load Balancer]", "Load Balancer", ir.ShapeRectangle},
		{"round", "a(Start)", "Start", ir.ShapeRound},
		{"circle", "a((Origin))", "Origin", ir.ShapeCircle},
		{"diamond", "a{Is Valid?}", "Is Valid?", ir.ShapeDiamond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewFlowchartParser().Parse(tt.source)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(d.Nodes) != 1 {
				t.Fatalf("expected 1 node, got %d", len(d.Nodes))
			}
			n := d.Nodes[0]
			if n.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", n.Label, tt.wantLabel)
			}
			if n.Shape != tt.wantShape {
				t.Errorf("shape = %v, want %v", n.Shape, tt.wantShape)
			}
		})
	}
}

func TestParse_Edges(t *testing.T) {
	tests := []struct {
		name          string
		source        string
		wantDirection ir.Direction
		wantLineStyle ir.EdgeLineStyle
	}{
		{"solid arrow", "A --> B", ir.DirectionForward, ir.EdgeLineSolid},
		{"dotted arrow", "A -.-> B", ir.DirectionForward, ir.EdgeLineDotted},
		{"thick arrow", "A ==> B", ir.DirectionForward, ir.EdgeLineThick},
		{"plain line", "A --- B", ir.DirectionNone, ir.EdgeLineSolid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewFlowchartParser().Parse(tt.source)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(d.Edges) != 1 {
				t.Fatalf("expected 1 edge, got %d", len(d.Edges))
			}
			e := d.Edges[0]
			if e.Source != "A" || e.Target != "B" {
				t.Errorf("edge endpoints = %s -> %s, want A -> B", e.Source, e.Target)
			}
			if e.Direction != tt.wantDirection {
				t.Errorf("direction = %v, want %v", e.Direction, tt.wantDirection)
			}
			if e.LineStyle != tt.wantLineStyle {
				t.Errorf("line style = %v, want %v", e.LineStyle, tt.wantLineStyle)
			}
		})
	}
}

func TestParse_EdgeLabel(t *testing.T) {
	d, err := NewFlowchartParser().Parse("A -->|on success| B")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(d.Edges))
	}
	if got := d.Edges[0].Label; got != "on success" {
		t.Errorf("edge label = %q, want %q", got, "on success")
	}
}

func TestParse_ChainedEdges(t *testing.T) {
	d, err := NewFlowchartParser().Parse("A --> B --> C")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(d.Nodes))
	}
	if len(d.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(d.Edges))
	}
	if d.Edges[0].Source != "A" || d.Edges[0].Target != "B" {
		t.Errorf("first hop = %s -> %s, want A -> B", d.Edges[0].Source, d.Edges[0].Target)
	}
	if d.Edges[1].Source != "B" || d.Edges[1].Target != "C" {
		t.Errorf("second hop = %s -> %s, want B -> C", d.Edges[1].Source, d.Edges[1].Target)
	}
}

func TestParse_LabelRefinesEarlierBareNode(t *testing.T) {
	d, err := NewFlowchartParser().Parse("A --> B\nA[Entry Point]\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var a *ir.Node
	for _, n := range d.Nodes {
		if n.ID == "A" {
			a = n
		}
	}
	if a == nil {
		t.Fatal("node A not found")
	}
	if a.Label != "Entry Point" {
		t.Errorf("label = %q, want %q", a.Label, "Entry Point")
	}
	if a.Shape != ir.ShapeRectangle {
		t.Errorf("shape = %v, want rectangle", a.Shape)
	}
}

func TestParse_Subgraph(t *testing.T) {
	source := `flowchart LR
subgraph cluster1
  direction TD
  A --> B
end
C --> A
`
	d, err := NewFlowchartParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Subgraphs) != 1 {
		t.Fatalf("expected 1 subgraph, got %d", len(d.Subgraphs))
	}
	sg := d.Subgraphs[0]
	if sg.ID != "cluster1" {
		t.Errorf("subgraph id = %q, want %q", sg.ID, "cluster1")
	}
	if sg.Direction != ir.DirectionTD {
		t.Errorf("subgraph direction = %v, want TD", sg.Direction)
	}
	if len(sg.ChildNodes) != 2 {
		t.Fatalf("expected 2 child nodes in subgraph, got %d", len(sg.ChildNodes))
	}
	for _, idx := range sg.ChildNodes {
		n := d.Nodes[idx]
		if n.Container != "cluster1" {
			t.Errorf("node %s container = %q, want cluster1", n.ID, n.Container)
		}
	}

	// C is declared at top level, outside the subgraph.
	var c *ir.Node
	for _, n := range d.Nodes {
		if n.ID == "C" {
			c = n
		}
	}
	if c == nil {
		t.Fatal("node C not found")
	}
	if c.Container != "" {
		t.Errorf("node C container = %q, want top-level", c.Container)
	}
}

func TestParse_NestedSubgraphs(t *testing.T) {
	source := `subgraph outer
  subgraph inner
    A --> B
  end
end
`
	d, err := NewFlowchartParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Subgraphs) != 2 {
		t.Fatalf("expected 2 subgraphs, got %d", len(d.Subgraphs))
	}
	outer, inner := d.Subgraphs[0], d.Subgraphs[1]
	if inner.Parent != outer.ID {
		t.Errorf("inner.Parent = %q, want %q", inner.Parent, outer.ID)
	}
	if len(outer.ChildSubgraphs) != 1 || d.Subgraphs[outer.ChildSubgraphs[0]] != inner {
		t.Errorf("outer.ChildSubgraphs = %v, want it to reference inner", outer.ChildSubgraphs)
	}
}

func TestParse_UnterminatedSubgraphErrors(t *testing.T) {
	_, err := NewFlowchartParser().Parse("subgraph cluster1\nA --> B\n")
	if err == nil {
		t.Fatal("expected an error for a missing 'end'")
	}
}

func TestParse_CommentsAreIgnored(t *testing.T) {
	d, err := NewFlowchartParser().Parse("%% a top-level comment\nA --> B\n%% trailing\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(d.Edges))
	}
}
