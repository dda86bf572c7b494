package ir

// Port is the point on a node's boundary where one edge endpoint
// attaches: a side plus an offset along that side. The port assigner
// spreads the ports sharing a side evenly along it; offsets are not
// snapped to the routing grid, and two ports on the same side are not
// guaranteed distinct offsets.
type Port struct {
	NodeIndex int     `json:"node_index"` // owning node's dense index
	Side      Side    `json:"side"`
	Offset    float64 `json:"offset"` // distance along Side from its start corner

	// EdgeIndex is the dense index of the edge this port belongs to.
	EdgeIndex int `json:"edge_index"`
}

// point resolves the port to an absolute canvas coordinate given the
// owning node's current geometry.
func (p *Port) point(n *Node) Point {
	x0, y0 := n.Position.X, n.Position.Y
	switch p.Side {
	case SideN:
		return Point{X: x0 + p.Offset, Y: y0}
	case SideS:
		return Point{X: x0 + p.Offset, Y: y0 + n.Height}
	case SideW:
		return Point{X: x0, Y: y0 + p.Offset}
	case SideE:
		return Point{X: x0 + n.Width, Y: y0 + p.Offset}
	default:
		return Point{X: x0, Y: y0}
	}
}
