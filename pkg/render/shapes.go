package render

import (
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/mark/flowc/pkg/ir"
)

// drawNodeShape renders a node's boundary as the SVG primitive that
// matches its ir.ShapeType, the way the teacher's shapeToD2 picked a D2
// shape keyword per ir.ShapeType — here each case draws the outline
// directly instead of naming it for a downstream renderer.
func drawNodeShape(canvas *svg.SVG, n *ir.Node, style string) {
	x, y := int(n.Position.X), int(n.Position.Y)
	w, h := int(n.Width), int(n.Height)

	switch n.Shape {
	case ir.ShapeCircle:
		r := w / 2
		if h/2 < r {
			r = h / 2
		}
		canvas.Circle(x+w/2, y+h/2, r, style)
	case ir.ShapeOval:
		canvas.Ellipse(x+w/2, y+h/2, w/2, h/2, style)
	case ir.ShapeRound:
		radius := h / 2
		canvas.Roundrect(x, y, w, h, radius, radius, style)
	case ir.ShapeDiamond:
		xs := []int{x + w/2, x + w, x + w/2, x}
		ys := []int{y, y + h/2, y + h, y + h/2}
		canvas.Polygon(xs, ys, style)
	case ir.ShapeHexagon:
		xs, ys := hexagonPoints(x, y, w, h)
		canvas.Polygon(xs, ys, style)
	case ir.ShapeSubroutine:
		drawSubroutine(canvas, x, y, w, h, style)
	default: // ir.ShapeRectangle and anything the size resolver didn't recognize
		canvas.Rect(x, y, w, h, style)
	}
}

// hexagonPoints returns a flat-topped hexagon inscribed in the node's
// bounding box, notch width fixed at 20% of the box on each side.
func hexagonPoints(x, y, w, h int) ([]int, []int) {
	notch := int(math.Round(float64(w) * 0.2))
	xs := []int{x + notch, x + w - notch, x + w, x + w - notch, x + notch, x}
	ys := []int{y, y, y + h/2, y + h, y + h, y + h/2}
	return xs, ys
}

// drawSubroutine draws a rectangle with two vertical inset lines near
// each edge, the conventional "predefined process" flowchart symbol.
func drawSubroutine(canvas *svg.SVG, x, y, w, h int, style string) {
	canvas.Rect(x, y, w, h, style)
	inset := w / 10
	if inset < 4 {
		inset = 4
	}
	lineStyle := "stroke:inherit;fill:none"
	canvas.Line(x+inset, y, x+inset, y+h, lineStyle)
	canvas.Line(x+w-inset, y, x+w-inset, y+h, lineStyle)
}

// subgraphStyleString renders the subgraph body rectangle's style.
func subgraphStyleString(s ir.Style, th Theme) string {
	fill := th.SubgraphFill
	if s.Fill != "" {
		fill = s.Fill
	}
	stroke := th.SubgraphStroke
	if s.Stroke != "" {
		stroke = s.Stroke
	}
	dash := ""
	if s.StrokeDash > 0 {
		dash = fmt.Sprintf(";stroke-dasharray:%d,%d", s.StrokeDash, s.StrokeDash)
	}
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5%s", fill, stroke, dash)
}

// nodeStyleString renders a node's style attribute string for svgo,
// mirroring the teacher's writeStyle field set (fill/stroke/stroke-
// width/opacity/dash) but emitted as one inline SVG style instead of a
// D2 style block.
func nodeStyleString(s ir.Style) string {
	str := fmt.Sprintf("fill:%s;stroke:%s", s.Fill, s.Stroke)
	if s.StrokeWidth > 0 {
		str += fmt.Sprintf(";stroke-width:%d", s.StrokeWidth)
	} else {
		str += ";stroke-width:1.5"
	}
	if s.StrokeDash > 0 {
		str += fmt.Sprintf(";stroke-dasharray:%d,%d", s.StrokeDash, s.StrokeDash)
	}
	if s.Opacity > 0 {
		str += fmt.Sprintf(";opacity:%.2f", s.Opacity)
	}
	return str
}

func edgeStyleString(s ir.Style, lineStyle ir.EdgeLineStyle) string {
	width := 1.5
	if s.StrokeWidth > 0 {
		width = float64(s.StrokeWidth)
	}
	switch lineStyle {
	case ir.EdgeLineThick:
		width *= 2.5
	}
	str := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f", s.Stroke, width)
	switch lineStyle {
	case ir.EdgeLineDotted:
		str += ";stroke-dasharray:4,4"
	}
	if s.Opacity > 0 {
		str += fmt.Sprintf(";opacity:%.2f", s.Opacity)
	}
	return str
}

func textStyleString(s ir.Style, anchor string) string {
	weight := ""
	if s.Bold {
		weight = ";font-weight:bold"
	}
	style := ""
	if s.Italic {
		style = ";font-style:italic"
	}
	decoration := ""
	if s.Underline {
		decoration = ";text-decoration:underline"
	}
	return fmt.Sprintf("text-anchor:%s;font-size:%dpx;font-family:%s;fill:%s%s%s%s",
		anchor, s.FontSize, s.Font, s.FontColor, weight, style, decoration)
}
