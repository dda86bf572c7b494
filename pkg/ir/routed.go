package ir

// Segment is one axis-aligned leg of a routed edge's polyline.
// Segments alternate horizontal/vertical; the first segment exits the
// start port perpendicular to its side, the last enters the end port
// perpendicular to its side.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Horizontal reports whether this segment runs along the x axis.
func (s Segment) Horizontal() bool {
	return s.From.Y == s.To.Y
}

// RoutedEdge is the router's published output for one edge: its final
// orthogonal path plus the ports it connects. Only the router writes
// this type; once published, later stages (the normalizer excepted)
// treat it as read-only.
type RoutedEdge struct {
	EdgeIndex int       `json:"edge_index"`
	Segments  []Segment `json:"segments"`
	StartPort Port      `json:"start_port"`
	EndPort   Port      `json:"end_port"`

	// LabelAnchor is the index of the segment the edge's label is
	// anchored to, or -1 if the edge carries no label.
	LabelAnchor int `json:"label_anchor"`

	// ForcedCrossing mirrors Edge.ForcedCrossing: true if no
	// obstacle-free path existed within the router's search budget.
	ForcedCrossing bool `json:"forced_crossing,omitempty"`
}

// Points flattens the segment chain into a polyline, collapsing the
// shared endpoint between consecutive segments.
func (r *RoutedEdge) Points() []Point {
	if len(r.Segments) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(r.Segments)+1)
	pts = append(pts, r.Segments[0].From)
	for _, seg := range r.Segments {
		pts = append(pts, seg.To)
	}
	return pts
}

// EdgeLabel is the owning edge's label placement: a rectangle that
// must lie within the canvas, chosen by scoring candidate anchors
// against path overlap, distance-to-path, and a clearance band.
type EdgeLabel struct {
	EdgeIndex int     `json:"edge_index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	// Anchor is the index of the segment the label was anchored to.
	Anchor int `json:"anchor"`
}

// Right returns the label rectangle's right boundary.
func (l *EdgeLabel) Right() float64 { return l.X + l.Width }

// Bottom returns the label rectangle's bottom boundary.
func (l *EdgeLabel) Bottom() float64 { return l.Y + l.Height }

// ReadabilityScore is the weighted-sum output of layout.Score, used for
// benchmarks and quality harnesses (spec.md §4.7/§6).
type ReadabilityScore struct {
	Total float64 `json:"total"`

	Crossings       int     `json:"crossings"`
	BendCount       int     `json:"bend_count"`
	TotalEdgeLen    float64 `json:"total_edge_length"`
	ForcedCrossings int     `json:"forced_crossings"`
	LabelOverlaps   int     `json:"label_overlaps"`
}

// DisplacementReport captures per-node Euclidean displacement between
// two layout runs, used when a prior layout is supplied as a stability
// hint (layout.Diff, spec.md §6).
type DisplacementReport struct {
	// ByNodeID maps node id to displacement in pixels. A node present
	// in curr but absent from prev is omitted.
	ByNodeID map[string]float64 `json:"by_node_id"`

	MaxDisplacement  float64 `json:"max_displacement"`
	MeanDisplacement float64 `json:"mean_displacement"`
}

// LaidOutDiagram is the layout core's total output: the input diagram
// with Position/Width/Height populated on every node and subgraph, plus
// the router's published RoutedEdge and EdgeLabel sets and any
// non-fatal warnings collected along the way.
type LaidOutDiagram struct {
	Diagram *Diagram `json:"diagram"`

	RoutedEdges []*RoutedEdge `json:"routed_edges"`
	Labels      []*EdgeLabel  `json:"labels"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// WarningKind classifies a non-fatal layout warning.
type WarningKind string

const (
	WarningForcedCrossing  WarningKind = "forced_crossing"
	WarningUnknownShape    WarningKind = "unknown_shape"
	WarningSubgraphOverlap WarningKind = "subgraph_overlap_resolved"
)

// Warning is a recoverable condition surfaced alongside a successful
// layout, distinct from the fatal Error type (pkg/layout/errors.go).
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`

	// NodeID/EdgeID identify the offending entity, when applicable.
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}
