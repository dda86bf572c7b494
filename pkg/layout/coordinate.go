package layout

import (
	"math"
	"sort"

	"github.com/mark/flowc/pkg/ir"
)

// assignCoordinates computes absolute (x, y) for every node and
// subgraph, per spec.md §4.4.
func assignCoordinates(d *ir.Diagram, rr rankResult, or orderResult, cfg ir.LayoutConfig) {
	horizontal := cfg.Direction == ir.DirectionLR || cfg.Direction == ir.DirectionRL

	// Layer thickness is measured along the primary axis: for a
	// horizontal flow (LR/RL) the primary axis is X, so the gap between
	// successive layers must come from each layer's widest node, not its
	// tallest, mirroring the within-layer increment below.
	layerHeight := make([]float64, len(or.Order))
	for li, layer := range or.Order {
		maxH := 0.0
		for _, idx := range layer {
			dim := d.Nodes[idx].Height
			if horizontal {
				dim = d.Nodes[idx].Width
			}
			if dim > maxH {
				maxH = dim
			}
		}
		layerHeight[li] = maxH
	}

	layerY := make([]float64, len(or.Order))
	y := 0.0
	for li := range or.Order {
		layerY[li] = y
		y += layerHeight[li] + cfg.RankSpacing
	}

	for li, layer := range or.Order {
		x := 0.0
		for _, idx := range layer {
			n := d.Nodes[idx]
			if horizontal {
				n.Position = &ir.Position{X: layerY[li], Y: x, Source: ir.PositionSourceLayoutEngine}
			} else {
				n.Position = &ir.Position{X: x, Y: layerY[li], Source: ir.PositionSourceLayoutEngine}
			}
			if horizontal {
				x += n.Height + cfg.NodeSpacing
			} else {
				x += n.Width + cfg.NodeSpacing
			}
		}
	}

	chainWrap(d, cfg)

	if cfg.Direction == ir.DirectionBT || cfg.Direction == ir.DirectionRL {
		mirrorDirection(d, cfg.Direction)
	}

	resolveSubgraphBounds(d, cfg)
	packComponents(d, cfg)
}

// mirrorDirection flips the canvas for BT (bottom-up) and RL
// (right-left) so "primary direction" always grows from a fixed origin
// with positive ranks, then mirrors for the requested reading order.
func mirrorDirection(d *ir.Diagram, dir ir.FlowDirection) {
	maxX, maxY := 0.0, 0.0
	for _, n := range d.Nodes {
		if n.Position == nil {
			continue
		}
		if r := n.Right(); r > maxX {
			maxX = r
		}
		if b := n.Bottom(); b > maxY {
			maxY = b
		}
	}
	for _, n := range d.Nodes {
		if n.Position == nil {
			continue
		}
		if dir == ir.DirectionBT {
			n.Position.Y = maxY - n.Position.Y - n.Height
		}
		if dir == ir.DirectionRL {
			n.Position.X = maxX - n.Position.X - n.Width
		}
	}
}

const subgraphPadding = 20

// resolveSubgraphBounds computes each subgraph's bounding rectangle
// from its members, innermost first, expanding by padding and shifting
// siblings that would otherwise overlap.
func resolveSubgraphBounds(d *ir.Diagram, cfg ir.LayoutConfig) {
	// process subgraphs deepest-first so a parent's bounds include
	// already-resolved child subgraph bounds
	order := topoSubgraphOrder(d)
	for _, sg := range order {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		has := false
		for _, ni := range sg.ChildNodes {
			n := d.Nodes[ni]
			if n.Position == nil {
				continue
			}
			has = true
			minX = math.Min(minX, n.Position.X)
			minY = math.Min(minY, n.Position.Y)
			maxX = math.Max(maxX, n.Right())
			maxY = math.Max(maxY, n.Bottom())
		}
		for _, ci := range sg.ChildSubgraphs {
			child := d.Subgraphs[ci]
			if child.Position == nil {
				continue
			}
			has = true
			minX = math.Min(minX, child.Position.X)
			minY = math.Min(minY, child.Position.Y)
			maxX = math.Max(maxX, child.Right())
			maxY = math.Max(maxY, child.Bottom())
		}
		if !has {
			continue
		}
		sg.Position = &ir.Position{X: minX - subgraphPadding, Y: minY - subgraphPadding - sg.TitleHeight, Source: ir.PositionSourceLayoutEngine}
		sg.Width = (maxX - minX) + 2*subgraphPadding
		sg.Height = (maxY - minY) + 2*subgraphPadding + sg.TitleHeight
	}

	resolveSiblingOverlaps(d, cfg)
}

// topoSubgraphOrder returns subgraphs ordered children-before-parents.
func topoSubgraphOrder(d *ir.Diagram) []*ir.Subgraph {
	depth := make([]int, len(d.Subgraphs))
	var depthOf func(i int) int
	depthOf = func(i int) int {
		s := d.Subgraphs[i]
		if s.Parent == "" {
			return 0
		}
		p := d.GetSubgraph(s.Parent)
		if p == nil {
			return 0
		}
		return 1 + depthOf(p.Index)
	}
	for i := range d.Subgraphs {
		depth[i] = depthOf(i)
	}
	out := append([]*ir.Subgraph(nil), d.Subgraphs...)
	// stable sort by descending depth (deepest first)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && depth[out[j].Index] > depth[out[j-1].Index]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// resolveSiblingOverlaps shifts a later-declared sibling subgraph
// rightward (or downward for horizontal primary direction) when its
// box would overlap an earlier sibling's.
func resolveSiblingOverlaps(d *ir.Diagram, cfg ir.LayoutConfig) {
	siblings := make(map[string][]*ir.Subgraph)
	for _, sg := range d.Subgraphs {
		siblings[sg.Parent] = append(siblings[sg.Parent], sg)
	}
	horizontal := cfg.Direction == ir.DirectionLR || cfg.Direction == ir.DirectionRL
	for _, group := range siblings {
		for i := 1; i < len(group); i++ {
			a, b := group[i-1], group[i]
			if a.Position == nil || b.Position == nil {
				continue
			}
			if !rectsOverlap(a, b) {
				continue
			}
			if horizontal {
				shift := a.Bottom() + subgraphPadding - b.Position.Y
				shiftSubgraphTree(d, b, 0, shift)
			} else {
				shift := a.Right() + subgraphPadding - b.Position.X
				shiftSubgraphTree(d, b, shift, 0)
			}
		}
	}
}

func rectsOverlap(a, b *ir.Subgraph) bool {
	return a.Position.X < b.Right() && b.Position.X < a.Right() &&
		a.Position.Y < b.Bottom() && b.Position.Y < a.Bottom()
}

// shiftSubgraphTree translates a subgraph and every descendant node and
// subgraph by (dx, dy).
func shiftSubgraphTree(d *ir.Diagram, sg *ir.Subgraph, dx, dy float64) {
	if sg.Position != nil {
		sg.Position.X += dx
		sg.Position.Y += dy
	}
	for _, ni := range sg.ChildNodes {
		n := d.Nodes[ni]
		if n.Position != nil {
			n.Position.X += dx
			n.Position.Y += dy
		}
	}
	for _, ci := range sg.ChildSubgraphs {
		shiftSubgraphTree(d, d.Subgraphs[ci], dx, dy)
	}
}

// chainWrap re-flows a single dominant top-level chain into multiple
// rows when its straight-line aspect ratio exceeds cfg.ChainWrapAspect
// (spec.md §4.4, seed scenario §8-6). Detection is conservative: it
// only triggers when every node has at most one upstream and one
// downstream neighbor (a pure chain) and none belong to a subgraph.
func chainWrap(d *ir.Diagram, cfg ir.LayoutConfig) {
	threshold := cfg.ChainWrapAspect
	if threshold <= 0 {
		threshold = 8
	}

	minX, minY, maxX, maxY := GetDiagramBounds(d)
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return
	}
	aspect := w / h
	if aspect < threshold && aspect > 1/threshold {
		return
	}

	chain := pureChainOrder(d)
	if chain == nil {
		return // not a single dominant top-level chain, leave layout as-is
	}

	rowSize := bestChainRowSize(chain, cfg)
	layoutChainRows(chain, rowSize, cfg)
}

// pureChainOrder returns every node in sequential chain order when the
// diagram is a single simple path covering all nodes (each node has at
// most one upstream and one downstream neighbor, all top-level). It
// returns nil for anything else: branches, merges, cycles, or a diagram
// with more than one component.
func pureChainOrder(d *ir.Diagram) []*ir.Node {
	if len(d.Nodes) < 2 {
		return nil
	}

	indeg := make(map[string]int, len(d.Nodes))
	outdeg := make(map[string]int, len(d.Nodes))
	next := make(map[string]string, len(d.Nodes))
	for _, e := range d.Edges {
		outdeg[e.Source]++
		indeg[e.Target]++
		next[e.Source] = e.Target
	}

	var start *ir.Node
	for _, n := range d.Nodes {
		if n.Container != "" {
			return nil // only top-level chains are wrapped
		}
		if indeg[n.ID] > 1 || outdeg[n.ID] > 1 {
			return nil // branch or merge, not a pure chain
		}
		if indeg[n.ID] == 0 {
			if start != nil {
				return nil // more than one source node
			}
			start = n
		}
	}
	if start == nil {
		return nil // every node has an incoming edge: cyclic
	}

	chain := make([]*ir.Node, 0, len(d.Nodes))
	seen := make(map[string]bool, len(d.Nodes))
	for cur := start; cur != nil; {
		if seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true
		chain = append(chain, cur)
		nextID, ok := next[cur.ID]
		if !ok {
			break
		}
		cur = d.GetNode(nextID)
	}
	if len(chain) != len(d.Nodes) {
		return nil // disconnected extras: not a single dominant chain
	}
	return chain
}

// bestChainRowSize searches row sizes 1..len(chain) for the one whose
// resulting grid bounding box has an aspect ratio closest to 1:1,
// landing well inside cfg.ChainWrapAspect for anything but pathologically
// skewed node sizes.
func bestChainRowSize(chain []*ir.Node, cfg ir.LayoutConfig) int {
	best := 1
	bestScore := math.Inf(1)
	for rowSize := 1; rowSize <= len(chain); rowSize++ {
		w, h := simulateChainGrid(chain, rowSize, cfg)
		if w <= 0 || h <= 0 {
			continue
		}
		score := math.Abs(math.Log(w / h))
		if score < bestScore {
			bestScore = score
			best = rowSize
		}
	}
	return best
}

// simulateChainGrid computes the bounding box a chain would occupy if
// laid out rowSize nodes per row, without mutating any node.
func simulateChainGrid(chain []*ir.Node, rowSize int, cfg ir.LayoutConfig) (width, height float64) {
	n := len(chain)
	rowY, maxX := 0.0, 0.0
	for start := 0; start < n; start += rowSize {
		end := start + rowSize
		if end > n {
			end = n
		}
		x, maxH := 0.0, 0.0
		for _, nd := range chain[start:end] {
			if right := x + nd.Width; right > maxX {
				maxX = right
			}
			if nd.Height > maxH {
				maxH = nd.Height
			}
			x += nd.Width + cfg.NodeSpacing
		}
		rowY += maxH + cfg.RankSpacing
	}
	return maxX, rowY - cfg.RankSpacing
}

// layoutChainRows assigns absolute positions to chain, rowSize nodes
// per row; every row runs left to right from x=0 and rows stack top to
// bottom.
func layoutChainRows(chain []*ir.Node, rowSize int, cfg ir.LayoutConfig) {
	n := len(chain)
	rowY := 0.0
	for start := 0; start < n; start += rowSize {
		end := start + rowSize
		if end > n {
			end = n
		}
		row := chain[start:end]
		maxH := 0.0
		for _, nd := range row {
			if nd.Height > maxH {
				maxH = nd.Height
			}
		}
		x := 0.0
		for _, nd := range row {
			nd.Position = &ir.Position{X: x, Y: rowY, Source: ir.PositionSourceLayoutEngine}
			x += nd.Width + cfg.NodeSpacing
		}
		rowY += maxH + cfg.RankSpacing
	}
}

// topLevelEntity is either a top-level subgraph (with its full member
// tree) or a top-level node, the unit packComponents positions.
type topLevelEntity struct {
	subgraph               *ir.Subgraph
	node                   *ir.Node
	nodeIndices            []int
	minX, minY, maxX, maxY float64
	declOrder              int
}

// packComponents separates disconnected components of the diagram by
// cfg.ComponentGap (spec.md §8: "each component is laid out
// independently and packed into the canvas with componentGap ≥
// nodeSpacing"). Earlier stages rank/order/place every component from
// the same coordinate origin, so disconnected components otherwise
// overlap; this pass only translates whole components apart, it never
// touches their internal layout.
func packComponents(d *ir.Diagram, cfg ir.LayoutConfig) {
	entities := buildTopLevelEntities(d)
	if len(entities) <= 1 {
		return
	}

	nodeEntity := make(map[int]int, len(d.Nodes))
	for i, e := range entities {
		for _, ni := range e.nodeIndices {
			nodeEntity[ni] = i
		}
	}

	uf := newUnionFind(len(entities))
	for _, e := range d.Edges {
		u, ok1 := nodeEntity[d.NodeIndex(e.Source)]
		v, ok2 := nodeEntity[d.NodeIndex(e.Target)]
		if ok1 && ok2 {
			uf.union(u, v)
		}
	}

	groups := make(map[int][]int)
	for i := range entities {
		r := uf.find(i)
		groups[r] = append(groups[r], i)
	}
	if len(groups) <= 1 {
		return
	}

	type component struct {
		entityIdx              []int
		minX, minY, maxX, maxY float64
		order                  int
	}
	comps := make([]*component, 0, len(groups))
	for _, idxs := range groups {
		c := &component{entityIdx: idxs, minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1), order: math.MaxInt32}
		for _, ei := range idxs {
			e := entities[ei]
			c.minX = math.Min(c.minX, e.minX)
			c.minY = math.Min(c.minY, e.minY)
			c.maxX = math.Max(c.maxX, e.maxX)
			c.maxY = math.Max(c.maxY, e.maxY)
			if e.declOrder < c.order {
				c.order = e.declOrder
			}
		}
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].order < comps[j].order })

	gap := cfg.ComponentGap
	if gap < cfg.NodeSpacing {
		gap = cfg.NodeSpacing
	}

	cursor := comps[0].minX
	for _, c := range comps {
		shift := cursor - c.minX
		if shift != 0 {
			for _, ei := range c.entityIdx {
				translateEntity(d, entities[ei], shift, 0)
			}
		}
		cursor += (c.maxX - c.minX) + gap
	}
}

// buildTopLevelEntities collects the diagram's top-level subgraphs and
// top-level (non-subgraph-member) nodes as packable units.
func buildTopLevelEntities(d *ir.Diagram) []*topLevelEntity {
	var out []*topLevelEntity
	for _, sg := range d.Subgraphs {
		if sg.Parent != "" || sg.Position == nil {
			continue
		}
		members := subgraphMemberNodes(d, sg)
		e := &topLevelEntity{
			subgraph:    sg,
			nodeIndices: members,
			minX:        sg.Position.X,
			minY:        sg.Position.Y,
			maxX:        sg.Right(),
			maxY:        sg.Bottom(),
			declOrder:   math.MaxInt32,
		}
		for _, ni := range members {
			if d.Nodes[ni].DeclIndex < e.declOrder {
				e.declOrder = d.Nodes[ni].DeclIndex
			}
		}
		out = append(out, e)
	}
	for i, n := range d.Nodes {
		if n.Container != "" || n.Position == nil {
			continue
		}
		out = append(out, &topLevelEntity{
			node:        n,
			nodeIndices: []int{i},
			minX:        n.Position.X,
			minY:        n.Position.Y,
			maxX:        n.Right(),
			maxY:        n.Bottom(),
			declOrder:   n.DeclIndex,
		})
	}
	return out
}

// translateEntity shifts an entity's root (and, for a subgraph, its
// full descendant tree) by (dx, dy).
func translateEntity(d *ir.Diagram, e *topLevelEntity, dx, dy float64) {
	if e.subgraph != nil {
		shiftSubgraphTree(d, e.subgraph, dx, dy)
		return
	}
	if e.node != nil && e.node.Position != nil {
		e.node.Position.X += dx
		e.node.Position.Y += dy
	}
}

// unionFind is a small disjoint-set structure used to group top-level
// entities into connected components.
type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
