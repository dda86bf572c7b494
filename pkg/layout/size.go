package layout

import (
	"math"
	"strings"

	"github.com/mark/flowc/pkg/ir"
)

// TextMetrics measures rendered text, injected so the core never opens
// a font file itself (spec.md §4.1, §4.8).
type TextMetrics interface {
	MeasureString(s string, fontSize int) (width, height float64)
}

// ApproxTextMetrics is the fastText fallback: a fixed average-advance-
// width table rather than real glyph metrics.
type ApproxTextMetrics struct{}

// avgAdvanceRatio is the average glyph advance width as a fraction of
// font size, calibrated against common UI fonts.
const avgAdvanceRatio = 0.56

func (ApproxTextMetrics) MeasureString(s string, fontSize int) (float64, float64) {
	lines := strings.Split(s, "\n")
	maxLen := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxLen {
			maxLen = n
		}
	}
	width := float64(maxLen) * float64(fontSize) * avgAdvanceRatio
	height := float64(len(lines)) * float64(fontSize) * 1.3
	return width, height
}

const (
	defaultFontSize  = 14
	minNodeWidth     = 40
	minNodeHeight    = 30
	subgraphTitlePad = 8
)

// shapePadding returns the extra width/height a shape needs beyond its
// label's bounding box, per spec.md §4.1 ("shape-specific padding").
func shapePadding(shape ir.ShapeType) (w, h float64) {
	switch shape {
	case ir.ShapeDiamond:
		// A diamond gets a fixed 40x30px of padding around the label
		// box; the size is not scaled with the label, so a long label
		// can extend past the diamond's inscribed rectangle.
		return 40, 30
	case ir.ShapeHexagon:
		return 36, 20
	case ir.ShapeCircle, ir.ShapeOval:
		return 30, 20
	case ir.ShapeSubroutine:
		return 28, 20
	case ir.ShapeRectangle, ir.ShapeRound, ir.ShapeContainer:
		return 24, 16
	default:
		return 24, 16
	}
}

// resolveSizes computes Width/Height for every node and Subgraph
// title band, per spec.md §4.1. Unknown shapes fall back to rectangle
// padding and append a warning.
func resolveSizes(d *ir.Diagram, cfg ir.LayoutConfig, tm TextMetrics) []ir.Warning {
	var warnings []ir.Warning

	known := map[ir.ShapeType]bool{
		ir.ShapeRectangle: true, ir.ShapeRound: true, ir.ShapeCircle: true,
		ir.ShapeOval: true, ir.ShapeDiamond: true, ir.ShapeHexagon: true,
		ir.ShapeSubroutine: true, ir.ShapeContainer: true,
	}

	for _, n := range d.Nodes {
		shape := n.Shape
		if shape == "" {
			shape = ir.ShapeRectangle
		}
		if !known[shape] {
			warnings = append(warnings, ir.Warning{
				Kind:    ir.WarningUnknownShape,
				Message: "unknown shape " + string(shape) + ", falling back to rectangle",
				NodeID:  n.ID,
			})
			shape = ir.ShapeRectangle
		}

		fontSize := n.Style.FontSize
		if fontSize == 0 {
			fontSize = defaultFontSize
		}
		lw, lh := tm.MeasureString(n.Label, fontSize)
		pw, ph := shapePadding(shape)

		n.Width = math.Max(minNodeWidth, math.Ceil(lw+pw))
		n.Height = math.Max(minNodeHeight, math.Ceil(lh+ph))
	}

	for _, s := range d.Subgraphs {
		fontSize := s.Style.FontSize
		if fontSize == 0 {
			fontSize = defaultFontSize
		}
		_, lh := tm.MeasureString(s.Label, fontSize)
		s.TitleHeight = math.Ceil(lh) + subgraphTitlePad*2
	}

	return warnings
}
