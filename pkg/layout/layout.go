// Package layout implements the flowchart layout and orthogonal edge
// routing engine: size resolution, rank assignment, crossing-
// minimization ordering, coordinate assignment, port assignment,
// obstacle-aware routing, and normalization, over a typed ir.Diagram.
package layout

import (
	"github.com/mark/flowc/pkg/ir"
)

// Options configures a single Layout call. It embeds ir.LayoutConfig
// (the tunables the core reads) plus a text-metrics provider and a
// prior layout.
type Options struct {
	ir.LayoutConfig

	// TextMetrics supplies label measurement; when nil, Run uses
	// ApproxTextMetrics regardless of LayoutConfig.FastText.
	TextMetrics TextMetrics

	// Prior holds a previous layout. Run does not read it: positions are
	// not biased toward it. Score takes the previous layout as its own
	// argument for the displacement term.
	Prior *ir.LaidOutDiagram
}

// DefaultOptions returns the layout core's default tuning.
func DefaultOptions() Options {
	return Options{LayoutConfig: ir.DefaultLayoutConfig()}
}

// Layout is the interface surrounding collaborators (parser front-ends,
// renderer back-end) call to turn a typed graph into absolute
// coordinates and routed edges.
type Layout interface {
	Apply(d *ir.Diagram, opts Options) (*ir.LaidOutDiagram, error)
}

// Engine is the native seven-stage layout core (spec.md §2, §4).
type Engine struct{}

// NewEngine returns the native layout engine.
func NewEngine() *Engine { return &Engine{} }

// Apply runs the full seven-stage pipeline and returns a total
// LaidOutDiagram. It fails with InvalidInput when the diagram does not
// validate, and with InvariantViolation when the normalizer finds a
// hard invariant broken.
func (e *Engine) Apply(d *ir.Diagram, opts Options) (*ir.LaidOutDiagram, error) {
	return Run(d, opts)
}

// Run executes the pipeline directly, without going through the Layout
// interface; this is what pkg/server and cmd/flowc call.
func Run(d *ir.Diagram, opts Options) (*ir.LaidOutDiagram, error) {
	if d == nil {
		return nil, newError(InvalidInput, "layout", "diagram is nil")
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, wrapError(InvalidInput, "layout", errs[0], "diagram failed validation (%d error(s))", len(errs))
	}

	d.Finalize()

	cfg := opts.LayoutConfig
	if cfg.NodeSpacing == 0 && cfg.RankSpacing == 0 {
		cfg = ir.DefaultLayoutConfig()
	}

	tm := opts.TextMetrics
	if tm == nil {
		tm = ApproxTextMetrics{}
	}
	tm = newCachedTextMetrics(tm)

	var warnings []ir.Warning

	// 4.1 Size resolver
	warnings = append(warnings, resolveSizes(d, cfg, tm)...)

	// 4.2 Rank assigner
	rr := assignRanks(d)

	// 4.3 Orderer
	or := assignOrder(d, rr, cfg)

	// 4.4 Coordinate assigner
	assignCoordinates(d, rr, or, cfg)

	// 4.5 Port assigner
	assignPorts(d, rr, cfg)

	// 4.6 Router
	routed, routeWarnings := routeEdges(d, rr, cfg)
	warnings = append(warnings, routeWarnings...)

	// 4.7 Normalizer
	labels, normWarnings, err := normalize(d, routed, cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, normWarnings...)

	minX, minY, maxX, maxY := GetDiagramBounds(d)

	laid := &ir.LaidOutDiagram{
		Diagram:     d,
		RoutedEdges: routed,
		Labels:      labels,
		Width:       maxX - minX,
		Height:      maxY - minY,
		Warnings:    warnings,
	}
	return laid, nil
}

// GetDiagramBounds calculates the bounding box of the entire diagram,
// covering nodes and top-level subgraphs.
func GetDiagramBounds(d *ir.Diagram) (minX, minY, maxX, maxY float64) {
	if len(d.Nodes) == 0 {
		return 0, 0, 0, 0
	}

	minX, minY = 1e9, 1e9
	maxX, maxY = -1e9, -1e9

	for _, node := range d.Nodes {
		if node.Position == nil {
			continue
		}
		if node.Position.X < minX {
			minX = node.Position.X
		}
		if node.Position.Y < minY {
			minY = node.Position.Y
		}
		if r := node.Right(); r > maxX {
			maxX = r
		}
		if b := node.Bottom(); b > maxY {
			maxY = b
		}
	}
	for _, s := range d.RootSubgraphs() {
		if s.Position == nil {
			continue
		}
		if s.Position.X < minX {
			minX = s.Position.X
		}
		if s.Position.Y < minY {
			minY = s.Position.Y
		}
		if r := s.Right(); r > maxX {
			maxX = r
		}
		if b := s.Bottom(); b > maxY {
			maxY = b
		}
	}

	return minX, minY, maxX, maxY
}
