package parser

import (
	"testing"

	"github.com/mark/flowc/pkg/ir"
	"github.com/mark/flowc/pkg/layout"
)

// flowchartSources exercises the constructs SPEC_FULL.md §6.1 commits
// this parser to (the id(label) round shape is covered only by the
// unit tests), end to end through layout.Run, so a break in either
// package surfaces here rather than only in an isolated unit test.
var flowchartSources = []struct {
	name   string
	source string
}{
	{
		name: "linear chain",
		source: `flowchart TD
A[Start] --> B[Process] --> C[End]
`,
	},
	{
		name: "branch with labels",
		source: `flowchart LR
Request --> Validate{Valid?}
Validate -->|yes| Handle[Handle Request]
Validate -->|no| Reject((Reject))
`,
	},
	{
		name: "subgraph with its own direction",
		source: `flowchart TD
subgraph api
  direction LR
  Router --> Controller
end
Client --> Router
Controller --> Database[Database]
`,
	},
	{
		name: "nested subgraphs",
		source: `flowchart TD
subgraph region
  subgraph az1
    Node1 --> Node2
  end
  subgraph az2
    Node3 --> Node4
  end
end
`,
	},
	{
		name: "mixed line styles",
		source: `flowchart TD
A --> B
B -.-> C
C ==> D
D --- A
`,
	},
}

func TestParseAndLayout_EndToEnd(t *testing.T) {
	p := NewFlowchartParser()
	for _, tt := range flowchartSources {
		t.Run(tt.name, func(t *testing.T) {
			d, err := p.Parse(tt.source)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(d.Nodes) == 0 {
				t.Fatal("expected at least one node")
			}

			laid, err := layout.Run(d, layout.Options{LayoutConfig: ir.DefaultLayoutConfig()})
			if err != nil {
				t.Fatalf("layout.Run failed: %v", err)
			}
			for _, n := range d.Nodes {
				if n.Position == nil {
					t.Errorf("node %s was not positioned", n.ID)
				}
			}
			if len(laid.RoutedEdges) != len(d.Edges) {
				t.Errorf("expected %d routed edges, got %d", len(d.Edges), len(laid.RoutedEdges))
			}
		})
	}
}

func TestParse_DeterministicAcrossRuns(t *testing.T) {
	source := flowchartSources[1].source
	p := NewFlowchartParser()

	d1, err := p.Parse(source)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	d2, err := p.Parse(source)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if len(d1.Nodes) != len(d2.Nodes) || len(d1.Edges) != len(d2.Edges) {
		t.Fatalf("parsing identical source twice produced different node/edge counts")
	}
	for i := range d1.Nodes {
		if d1.Nodes[i].ID != d2.Nodes[i].ID || d1.Nodes[i].DeclIndex != d2.Nodes[i].DeclIndex {
			t.Errorf("node %d differs across identical parses: %+v vs %+v", i, d1.Nodes[i], d2.Nodes[i])
		}
	}
}
