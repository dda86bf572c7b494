package ir

// Edge represents a connection between two nodes.
type Edge struct {
	// Identity
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`

	// Connection
	Source    string    `json:"source"` // source node id
	Target    string    `json:"target"` // target node id
	Direction Direction `json:"direction"`

	// Visual
	Style           Style          `json:"style,omitempty"`
	LineStyle       EdgeLineStyle  `json:"line_style,omitempty"`
	StartDecoration EdgeDecoration `json:"start_decoration,omitempty"`
	EndDecoration   EdgeDecoration `json:"end_decoration,omitempty"`

	// Layout (populated by the port assigner and router)
	Points    []Point    `json:"points,omitempty"` // final orthogonal polyline
	StartPort *Port      `json:"start_port,omitempty"`
	EndPort   *Port      `json:"end_port,omitempty"`
	LabelBox  *EdgeLabel `json:"label_box,omitempty"`

	// Reversed is true if this edge's source/target were swapped for
	// ranking/ordering/routing purposes by the rank assigner because it
	// closed a cycle (spec.md §4.2). Arrow rendering must still honor
	// the original Direction/Source/Target, not this swapped pair.
	Reversed bool `json:"reversed,omitempty"`

	// ForcedCrossing is set by the router when no obstacle-free path
	// could be found within budget (spec.md §4.6, §7).
	ForcedCrossing bool `json:"forced_crossing,omitempty"`

	// Index is the dense index of this edge within Diagram.Edges.
	Index int `json:"-"`

	// DeclIndex is the order in which the edge was declared in source;
	// the spec's "declaration index" used as a total, stable tie-break.
	DeclIndex int `json:"-"`
}

// Point represents a coordinate along an edge path.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsBidirectional returns true if the edge has arrows in both directions.
func (e *Edge) IsBidirectional() bool {
	return e.Direction == DirectionBoth
}

// HasArrowhead returns true if the edge has an arrowhead at the target.
func (e *Edge) HasArrowhead() bool {
	return e.Direction == DirectionForward || e.Direction == DirectionBoth
}

// HasArrowtail returns true if the edge has an arrowhead at the source.
func (e *Edge) HasArrowtail() bool {
	return e.Direction == DirectionBackward || e.Direction == DirectionBoth
}
