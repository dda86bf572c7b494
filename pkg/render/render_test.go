package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mark/flowc/pkg/ir"
	"github.com/mark/flowc/pkg/layout"
	"github.com/mark/flowc/pkg/parser"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Format != FormatSVG {
		t.Errorf("expected default format SVG, got %s", opts.Format)
	}
	if opts.Theme != "default" {
		t.Errorf("expected default theme name 'default', got %q", opts.Theme)
	}
	if opts.Padding != 40 {
		t.Errorf("expected default padding 40, got %d", opts.Padding)
	}
}

func TestNewSVGRenderer(t *testing.T) {
	r := NewSVGRenderer()
	if r == nil {
		t.Fatal("NewSVGRenderer returned nil")
	}
	if r.Options.Format != FormatSVG {
		t.Errorf("expected SVG format, got %s", r.Options.Format)
	}
}

func laidOutDiagram(t *testing.T, source string) *ir.LaidOutDiagram {
	t.Helper()
	d, err := parser.NewFlowchartParser().Parse(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	laid, err := layout.Run(d, layout.Options{LayoutConfig: ir.DefaultLayoutConfig()})
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	return laid
}

func TestRenderToBytes_ProducesValidSVGEnvelope(t *testing.T) {
	laid := laidOutDiagram(t, "A[Start] --> B{Check} --> C[End]")
	r := NewSVGRenderer()
	out, err := r.RenderToBytes(context.Background(), laid)
	if err != nil {
		t.Fatalf("RenderToBytes failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<svg") {
		t.Error("output does not contain an <svg> tag")
	}
	if !strings.Contains(s, "</svg>") {
		t.Error("output is not a closed SVG document")
	}
}

func TestRenderToBytes_NodeLabelsPresent(t *testing.T) {
	laid := laidOutDiagram(t, "A[Load Balancer] --> B[Database]")
	r := NewSVGRenderer()
	out, err := r.RenderToBytes(context.Background(), laid)
	if err != nil {
		t.Fatalf("RenderToBytes failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{"Load Balancer", "Database"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain label %q", want)
		}
	}
}

func TestRender_WritesToWriter(t *testing.T) {
	laid := laidOutDiagram(t, "A --> B")
	r := NewSVGRenderer()
	var buf bytes.Buffer
	if err := r.Render(context.Background(), laid, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Render wrote no bytes")
	}
}

func TestRender_NilDiagramErrors(t *testing.T) {
	r := NewSVGRenderer()
	if _, err := r.RenderToBytes(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil diagram")
	}
}

func TestRender_UnknownThemeFallsBackToDefault(t *testing.T) {
	laid := laidOutDiagram(t, "A --> B")
	r := NewSVGRendererWithOptions(Options{Theme: "does-not-exist", Padding: 40})
	out, err := r.RenderToBytes(context.Background(), laid)
	if err != nil {
		t.Fatalf("RenderToBytes failed: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty output even with an unknown theme name")
	}
}

func TestRender_AllShapesDrawWithoutError(t *testing.T) {
	laid := laidOutDiagram(t, `A[Rect] --> B(Round)
B --> C((Circle))
C --> D{Diamond}`)
	r := NewSVGRenderer()
	if _, err := r.RenderToBytes(context.Background(), laid); err != nil {
		t.Fatalf("RenderToBytes failed: %v", err)
	}
}

func TestRender_SubgraphBoxAndLabelDrawn(t *testing.T) {
	laid := laidOutDiagram(t, `flowchart TD
subgraph cluster1
  A --> B
end
`)
	r := NewSVGRenderer()
	out, err := r.RenderToBytes(context.Background(), laid)
	if err != nil {
		t.Fatalf("RenderToBytes failed: %v", err)
	}
	if !strings.Contains(string(out), "cluster1") {
		t.Error("expected the subgraph label to appear in the SVG output")
	}
}

func TestThemes_AllResolve(t *testing.T) {
	for name, th := range Themes {
		if th.NodeFill == "" || th.EdgeStroke == "" {
			t.Errorf("theme %q has an unset core color", name)
		}
	}
}
