package render

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/mark/flowc/pkg/ir"
)

// renderSVG draws a laid-out diagram to an SVG document, grounded on
// dshills-dungo's pkg/export/svg.go: a bytes.Buffer-backed svg.SVG,
// background first, edges before nodes so nodes sit on top, then
// labels, the same back-to-front ordering.
func renderSVG(laid *ir.LaidOutDiagram, opts Options) ([]byte, error) {
	th, ok := Themes[opts.Theme]
	if !ok {
		th = DefaultTheme()
	}

	pad := opts.Padding
	width := int(laid.Width) + 2*pad
	height := int(laid.Height) + 2*pad
	if width <= 0 {
		width = 2 * pad
	}
	if height <= 0 {
		height = 2 * pad
	}

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Title(laid.Diagram.ID)

	background := "#ffffff"
	if th.Name == "dark" {
		background = th.SubgraphFill
	}
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", background))

	// svgo draws in document order with no z-index; group translation
	// keeps every coordinate in diagram space and only offsets once.
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", pad, pad))

	drawSubgraphs(canvas, laid.Diagram, th)
	drawEdges(canvas, laid, th)
	drawNodes(canvas, laid.Diagram, th)
	drawEdgeLabels(canvas, laid, th)

	canvas.Gend()
	canvas.End()
	return buf.Bytes(), nil
}

func drawSubgraphs(canvas *svg.SVG, d *ir.Diagram, th Theme) {
	for _, s := range d.Subgraphs {
		if s.Position == nil {
			continue
		}
		x, y := int(s.Position.X), int(s.Position.Y)
		w, h := int(s.Width), int(s.Height)
		canvas.Rect(x, y, w, h, subgraphStyleString(s.Style, th))

		if s.Label != "" {
			titleY := y + int(s.TitleHeight) - 6
			if titleY < y+12 {
				titleY = y + 12
			}
			canvas.Text(x+8, titleY, s.Label, textStyleString(ir.Style{
				FontColor: th.LabelFill, Font: th.FontFamily, FontSize: th.FontSize,
				Bold: true,
			}, "start"))
		}
	}
}

func drawNodes(canvas *svg.SVG, d *ir.Diagram, th Theme) {
	for _, n := range d.Nodes {
		if n.Position == nil {
			continue
		}
		style := resolveNodeStyle(n.Style, th)
		drawNodeShape(canvas, n, nodeStyleString(style))

		if n.Label == "" {
			continue
		}
		textStyle := resolveNodeStyle(n.Style, th)
		canvas.Text(int(n.CenterX()), int(n.CenterY())+textStyle.FontSize/3, n.Label,
			textStyleString(textStyle, "middle"))
	}
}

func drawEdges(canvas *svg.SVG, laid *ir.LaidOutDiagram, th Theme) {
	for _, re := range laid.RoutedEdges {
		if re == nil {
			continue
		}
		e := laid.Diagram.Edges[re.EdgeIndex]
		style := resolveEdgeStyle(e.Style, th)
		styleStr := edgeStyleString(style, e.LineStyle)

		pts := re.Points()
		for i := 0; i+1 < len(pts); i++ {
			canvas.Line(int(pts[i].X), int(pts[i].Y), int(pts[i+1].X), int(pts[i+1].Y), styleStr)
		}

		if e.HasArrowhead() && len(pts) >= 2 {
			drawArrowhead(canvas, pts[len(pts)-2], pts[len(pts)-1], style.Stroke)
		}
		if e.HasArrowtail() && len(pts) >= 2 {
			drawArrowhead(canvas, pts[1], pts[0], style.Stroke)
		}
	}
}

// drawArrowhead draws a small filled triangle at `to`, oriented along
// the from->to direction, the same fixed-angle construction as
// dshills-dungo's drawArrow (pkg/export/svg.go), generalized from a
// midpoint marker to an endpoint arrowhead.
func drawArrowhead(canvas *svg.SVG, from, to ir.Point, color string) {
	const size = 8.0
	const spread = 0.45 // radians off the shaft direction

	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	leftX := to.X - size*(ux*math.Cos(spread)-uy*math.Sin(spread))
	leftY := to.Y - size*(uy*math.Cos(spread)+ux*math.Sin(spread))
	rightX := to.X - size*(ux*math.Cos(-spread)-uy*math.Sin(-spread))
	rightY := to.Y - size*(uy*math.Cos(-spread)+ux*math.Sin(-spread))

	xs := []int{int(to.X), int(leftX), int(rightX)}
	ys := []int{int(to.Y), int(leftY), int(rightY)}
	canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:none", color))
}

func drawEdgeLabels(canvas *svg.SVG, laid *ir.LaidOutDiagram, th Theme) {
	for _, l := range laid.Labels {
		if l == nil {
			continue
		}
		e := laid.Diagram.Edges[l.EdgeIndex]
		style := resolveEdgeStyle(e.Style, th)
		canvas.Rect(int(l.X), int(l.Y), int(l.Width), int(l.Height),
			fmt.Sprintf("fill:%s;opacity:0.85;stroke:none", backgroundFor(th)))
		canvas.Text(int(l.X+l.Width/2), int(l.Y+l.Height*0.7), e.Label,
			textStyleString(style, "middle"))
	}
}

func backgroundFor(th Theme) string {
	if th.Name == "dark" {
		return th.SubgraphFill
	}
	return "#ffffff"
}
