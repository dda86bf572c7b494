package ir

import "github.com/google/uuid"

// Diagram represents a complete diagram: its nodes, edges, subgraph
// tree, and layout configuration.
type Diagram struct {
	ID string `json:"id"`

	Nodes     []*Node     `json:"nodes"`
	Edges     []*Edge     `json:"edges"`
	Subgraphs []*Subgraph `json:"subgraphs,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	Config LayoutConfig `json:"config,omitempty"`
}

// NewDiagram returns an empty diagram with a generated ID and default
// layout configuration, the way the teacher left Diagram.ID as a
// placeholder for callers that don't name one explicitly.
func NewDiagram() *Diagram {
	return &Diagram{
		ID:     uuid.NewString(),
		Config: DefaultLayoutConfig(),
	}
}

// Finalize assigns dense Index/DeclIndex values to every node, edge,
// and subgraph in declaration order. It must run once, after parsing
// and before any layout stage, so that every later stage can address
// entities by integer index instead of by ID.
func (d *Diagram) Finalize() {
	for i, n := range d.Nodes {
		n.Index = i
		n.DeclIndex = i
	}
	for i, e := range d.Edges {
		e.Index = i
		e.DeclIndex = i
	}
	for i, s := range d.Subgraphs {
		s.Index = i
		s.DeclIndex = i
	}
}

// GetNode returns a node by ID, or nil if not found.
func (d *Diagram) GetNode(id string) *Node {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// GetEdge returns an edge by ID, or nil if not found.
func (d *Diagram) GetEdge(id string) *Edge {
	for _, edge := range d.Edges {
		if edge.ID == id {
			return edge
		}
	}
	return nil
}

// GetSubgraph returns a subgraph by ID, or nil if not found.
func (d *Diagram) GetSubgraph(id string) *Subgraph {
	for _, s := range d.Subgraphs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// NodeIndex returns the dense index of the node with the given ID, or
// -1 if not found. Requires Finalize to have run.
func (d *Diagram) NodeIndex(id string) int {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n.Index
		}
	}
	return -1
}

// GetNodesByContainer returns all nodes directly within a subgraph.
func (d *Diagram) GetNodesByContainer(containerID string) []*Node {
	var nodes []*Node
	for _, node := range d.Nodes {
		if node.Container == containerID {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// GetEdgesByNode returns all edges connected to a specific node.
func (d *Diagram) GetEdgesByNode(nodeID string) []*Edge {
	var edges []*Edge
	for _, edge := range d.Edges {
		if edge.Source == nodeID || edge.Target == nodeID {
			edges = append(edges, edge)
		}
	}
	return edges
}

// GetRootNodes returns all top-level nodes (nodes without a container).
func (d *Diagram) GetRootNodes() []*Node {
	var nodes []*Node
	for _, node := range d.Nodes {
		if node.Container == "" {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// RootSubgraphs returns all top-level subgraphs.
func (d *Diagram) RootSubgraphs() []*Subgraph {
	var out []*Subgraph
	for _, s := range d.Subgraphs {
		if s.IsTopLevel() {
			out = append(out, s)
		}
	}
	return out
}

// EffectiveDirection resolves a subgraph's flow direction, walking up
// to the diagram's primary direction when the subgraph (or an
// ancestor) inherits.
func (d *Diagram) EffectiveDirection(s *Subgraph) FlowDirection {
	for s != nil {
		if s.Direction != DirectionInherit {
			return s.Direction
		}
		if s.Parent == "" {
			break
		}
		s = d.GetSubgraph(s.Parent)
	}
	if d.Config.Direction == DirectionInherit {
		return DirectionTD
	}
	return d.Config.Direction
}
