package ir

import "testing"

func TestDiagram_GetNode(t *testing.T) {
	diagram := &Diagram{
		Nodes: []*Node{
			{ID: "node1", Label: "Node 1"},
			{ID: "node2", Label: "Node 2"},
		},
	}

	tests := []struct {
		name   string
		id     string
		expect bool
	}{
		{"existing node", "node1", true},
		{"another existing node", "node2", true},
		{"non-existent node", "node3", false},
		{"empty id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := diagram.GetNode(tt.id)
			if (node != nil) != tt.expect {
				t.Errorf("GetNode(%q) = %v, expected found=%v", tt.id, node, tt.expect)
			}
		})
	}
}

func TestDiagram_GetRootNodes(t *testing.T) {
	diagram := &Diagram{
		Nodes: []*Node{
			{ID: "root1"},
			{ID: "root2"},
			{ID: "child", Container: "sub"},
		},
		Subgraphs: []*Subgraph{
			{ID: "sub"},
		},
	}

	roots := diagram.GetRootNodes()
	if len(roots) != 2 {
		t.Errorf("expected 2 root nodes, got %d", len(roots))
	}
}

func TestDiagram_Finalize(t *testing.T) {
	d := &Diagram{
		Nodes: []*Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []*Edge{{ID: "e1", Source: "a", Target: "b"}},
	}
	d.Finalize()

	for i, n := range d.Nodes {
		if n.Index != i || n.DeclIndex != i {
			t.Errorf("node %d: Index=%d DeclIndex=%d, expected both %d", i, n.Index, n.DeclIndex, i)
		}
	}
	if d.NodeIndex("c") != 2 {
		t.Errorf("NodeIndex(c) = %d, expected 2", d.NodeIndex("c"))
	}
	if d.NodeIndex("missing") != -1 {
		t.Errorf("NodeIndex(missing) = %d, expected -1", d.NodeIndex("missing"))
	}
}

func TestDiagram_EffectiveDirection(t *testing.T) {
	d := &Diagram{
		Config: LayoutConfig{Direction: DirectionTD},
		Subgraphs: []*Subgraph{
			{ID: "outer", Direction: DirectionLR},
			{ID: "inner", Parent: "outer", Direction: DirectionInherit},
		},
	}

	if got := d.EffectiveDirection(d.GetSubgraph("inner")); got != DirectionLR {
		t.Errorf("EffectiveDirection(inner) = %q, expected %q", got, DirectionLR)
	}
	if got := d.EffectiveDirection(d.GetSubgraph("outer")); got != DirectionLR {
		t.Errorf("EffectiveDirection(outer) = %q, expected %q", got, DirectionLR)
	}
}

func TestNode_IsContainer(t *testing.T) {
	tests := []struct {
		name   string
		shape  ShapeType
		expect bool
	}{
		{"container shape", ShapeContainer, true},
		{"rectangle shape", ShapeRectangle, false},
		{"circle shape", ShapeCircle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &Node{Shape: tt.shape}
			if node.IsContainer() != tt.expect {
				t.Errorf("IsContainer() = %v, expected %v", node.IsContainer(), tt.expect)
			}
		})
	}
}

func TestNode_Bounds(t *testing.T) {
	n := &Node{Width: 100, Height: 40, Position: &Position{X: 10, Y: 20}}
	if n.Right() != 110 {
		t.Errorf("Right() = %v, expected 110", n.Right())
	}
	if n.Bottom() != 60 {
		t.Errorf("Bottom() = %v, expected 60", n.Bottom())
	}
	if n.CenterX() != 60 {
		t.Errorf("CenterX() = %v, expected 60", n.CenterX())
	}
	if n.CenterY() != 40 {
		t.Errorf("CenterY() = %v, expected 40", n.CenterY())
	}
}

func TestEdge_IsBidirectional(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		expect    bool
	}{
		{"bidirectional", DirectionBoth, true},
		{"forward only", DirectionForward, false},
		{"backward only", DirectionBackward, false},
		{"no direction", DirectionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge := &Edge{Direction: tt.direction}
			if edge.IsBidirectional() != tt.expect {
				t.Errorf("IsBidirectional() = %v, expected %v", edge.IsBidirectional(), tt.expect)
			}
		})
	}
}

func TestEdge_HasArrowhead(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		expect    bool
	}{
		{"forward", DirectionForward, true},
		{"both", DirectionBoth, true},
		{"backward", DirectionBackward, false},
		{"none", DirectionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge := &Edge{Direction: tt.direction}
			if edge.HasArrowhead() != tt.expect {
				t.Errorf("HasArrowhead() = %v, expected %v", edge.HasArrowhead(), tt.expect)
			}
		})
	}
}

func TestStyle_Merge(t *testing.T) {
	base := Style{
		Fill:        "#ff0000",
		Stroke:      "#000000",
		StrokeWidth: 1,
		Bold:        true,
	}

	override := Style{
		Fill:     "#00ff00",
		FontSize: 14,
	}

	result := base.Merge(override)

	if result.Fill != "#00ff00" {
		t.Errorf("expected fill to be overridden to #00ff00, got %s", result.Fill)
	}
	if result.Stroke != "#000000" {
		t.Errorf("expected stroke to remain #000000, got %s", result.Stroke)
	}
	if result.FontSize != 14 {
		t.Errorf("expected font size to be 14, got %d", result.FontSize)
	}
	if !result.Bold {
		t.Errorf("expected bold to remain true")
	}
}

func TestDiagram_Validate(t *testing.T) {
	tests := []struct {
		name      string
		diagram   *Diagram
		expectErr bool
		errCount  int
	}{
		{
			name: "valid diagram",
			diagram: &Diagram{
				ID: "test",
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle},
					{ID: "b", Shape: ShapeCircle},
				},
				Edges: []*Edge{
					{ID: "e1", Source: "a", Target: "b", Direction: DirectionForward},
				},
			},
			expectErr: false,
		},
		{
			name: "valid diagram with subgraph",
			diagram: &Diagram{
				ID: "test",
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle, Container: "sub"},
				},
				Subgraphs: []*Subgraph{
					{ID: "sub", ChildNodes: []int{0}},
				},
			},
			expectErr: false,
		},
		{
			name: "duplicate node IDs",
			diagram: &Diagram{
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle},
					{ID: "a", Shape: ShapeCircle},
				},
			},
			expectErr: true,
			errCount:  1,
		},
		{
			name: "edge references non-existent node",
			diagram: &Diagram{
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle},
				},
				Edges: []*Edge{
					{ID: "e1", Source: "a", Target: "nonexistent", Direction: DirectionForward},
				},
			},
			expectErr: true,
			errCount:  1,
		},
		{
			name: "invalid container reference",
			diagram: &Diagram{
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle, Container: "nonexistent"},
				},
			},
			expectErr: true,
			errCount:  1,
		},
		{
			name: "subgraph containment cycle",
			diagram: &Diagram{
				Subgraphs: []*Subgraph{
					{ID: "x", Parent: "y"},
					{ID: "y", Parent: "x"},
				},
			},
			expectErr: true,
			errCount:  2, // cycle reported once per subgraph walked
		},
		{
			name: "invalid opacity",
			diagram: &Diagram{
				Nodes: []*Node{
					{ID: "a", Shape: ShapeRectangle, Style: Style{Opacity: 1.5}},
				},
			},
			expectErr: true,
			errCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := tt.diagram.Validate()
			if tt.expectErr && len(errors) == 0 {
				t.Error("expected validation errors but got none")
			}
			if !tt.expectErr && len(errors) > 0 {
				t.Errorf("expected no errors but got: %v", errors)
			}
			if tt.errCount > 0 && len(errors) != tt.errCount {
				t.Errorf("expected %d errors but got %d: %v", tt.errCount, len(errors), errors)
			}
		})
	}
}
