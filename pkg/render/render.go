// Package render draws a laid-out diagram to SVG. The teacher wrapped
// D2's own SVG/PNG/PDF renderers; this repo produces its own native
// geometry, so PNG/PDF (which required a headless browser purely to
// rasterize SVG, see DESIGN.md) are dropped and only SVG remains.
package render

import (
	"context"
	"fmt"
	"io"

	"github.com/mark/flowc/pkg/ir"
)

// Format represents the output format for rendering. Only SVG is
// supported natively (spec.md §1: fast enough without a browser).
type Format string

const FormatSVG Format = "svg"

// Options configures the rendering behavior.
type Options struct {
	Format Format

	// Theme selects a named palette from the Themes table; an unknown
	// name falls back to DefaultTheme.
	Theme string

	// Padding around the diagram in pixels.
	Padding int
}

// DefaultOptions returns sensible default rendering options.
func DefaultOptions() Options {
	return Options{
		Format:  FormatSVG,
		Theme:   "default",
		Padding: 40,
	}
}

// Renderer is the interface for diagram renderers.
type Renderer interface {
	Render(ctx context.Context, laid *ir.LaidOutDiagram, w io.Writer) error
	RenderToBytes(ctx context.Context, laid *ir.LaidOutDiagram) ([]byte, error)
}

// SVGRenderer renders a laid-out diagram to SVG using svgo.
type SVGRenderer struct {
	Options Options
}

// NewSVGRenderer creates a new SVG renderer with default options.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{Options: DefaultOptions()}
}

// NewSVGRendererWithOptions creates a new SVG renderer with custom options.
func NewSVGRendererWithOptions(opts Options) *SVGRenderer {
	opts.Format = FormatSVG
	return &SVGRenderer{Options: opts}
}

// Render renders the diagram to the provided writer.
func (r *SVGRenderer) Render(ctx context.Context, laid *ir.LaidOutDiagram, w io.Writer) error {
	b, err := r.RenderToBytes(ctx, laid)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// RenderToBytes renders the diagram and returns SVG as bytes.
func (r *SVGRenderer) RenderToBytes(ctx context.Context, laid *ir.LaidOutDiagram) ([]byte, error) {
	if laid == nil {
		return nil, fmt.Errorf("render: laid-out diagram is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return renderSVG(laid, r.Options)
}
