package layout

import "github.com/mark/flowc/pkg/ir"

// rankResult is the rank assigner's published output (spec.md §4.2).
type rankResult struct {
	// Rank[nodeIndex] is the node's integer layer.
	Rank []int

	// Reversed[edgeIndex] is true if the edge closes a cycle and was
	// reversed for ranking/ordering/routing purposes only; arrow
	// rendering still honors the edge's original Source/Target.
	Reversed []bool

	// effSource/effTarget are the node indices to use for every later
	// stage (post-reversal), keyed by edge index.
	EffSource []int
	EffTarget []int

	MaxRank int
}

// assignRanks computes a longest-path layering, marking edges that
// close a cycle as reversed and breaking ties by declaration order.
func assignRanks(d *ir.Diagram) rankResult {
	n := len(d.Nodes)
	res := rankResult{
		Rank:      make([]int, n),
		Reversed:  make([]bool, len(d.Edges)),
		EffSource: make([]int, len(d.Edges)),
		EffTarget: make([]int, len(d.Edges)),
	}

	// adjacency by node index, edges sorted by declaration order
	adj := make([][]int, n) // adj[u] = edge indices u -> v
	for i, e := range d.Edges {
		u := d.NodeIndex(e.Source)
		v := d.NodeIndex(e.Target)
		res.EffSource[i] = u
		res.EffTarget[i] = v
		if u >= 0 && u < n {
			adj[u] = append(adj[u], i)
		}
	}

	// DFS over nodes in declaration order; classify back-edges by the
	// on-stack marker (spec.md §4.2: "identified by DFS finishing
	// times"). Greedy feedback-arc-set approximation by decl order.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)

	var visit func(u int)
	visit = func(u int) {
		color[u] = gray
		for _, ei := range adj[u] {
			v := res.EffTarget[ei]
			if v < 0 || v >= n {
				continue
			}
			switch color[v] {
			case white:
				visit(v)
			case gray:
				// back edge: closes a cycle, reverse it
				res.Reversed[ei] = true
				d.Edges[ei].Reversed = true
				res.EffSource[ei], res.EffTarget[ei] = res.EffTarget[ei], res.EffSource[ei]
			case black:
				// cross/forward edge, no action
			}
		}
		color[u] = black
	}
	for i := 0; i < n; i++ {
		if color[i] == white {
			visit(i)
		}
	}

	// Longest-path ranking on the now-acyclic condensation: rank(v) =
	// max over in-edges u->v of rank(u)+1. Process nodes in a
	// topological order obtained by repeated DFS finishing order
	// (reverse postorder), which is safe because reversed edges broke
	// every cycle.
	order := make([]int, 0, n)
	visited := make([]bool, n)
	var post func(u int)
	post = func(u int) {
		visited[u] = true
		for _, ei := range adj[u] {
			v := res.EffTarget[ei]
			if v >= 0 && v < n && !visited[v] {
				post(v)
			}
		}
		order = append(order, u)
	}
	for i := 0; i < n; i++ {
		if !visited[i] {
			post(i)
		}
	}
	// reverse postorder = topological order
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	for _, u := range order {
		for _, ei := range adj[u] {
			v := res.EffTarget[ei]
			if v < 0 || v >= n {
				continue
			}
			if res.Rank[v] < res.Rank[u]+1 {
				res.Rank[v] = res.Rank[u] + 1
			}
		}
	}

	for _, r := range res.Rank {
		if r > res.MaxRank {
			res.MaxRank = r
		}
	}

	constrainSubgraphRanks(d, &res)

	return res
}

// constrainSubgraphRanks finds each subgraph's lowest member rank and
// raises any member below it to that rank. Since no member ranks below
// the minimum, this leaves every rank unchanged: subgraph members keep
// their longest-path ranks, and non-members may share or fall between
// the layers a subgraph spans.
func constrainSubgraphRanks(d *ir.Diagram, res *rankResult) {
	for _, sg := range d.Subgraphs {
		members := subgraphMemberNodes(d, sg)
		if len(members) == 0 {
			continue
		}
		minRank := res.Rank[members[0]]
		for _, idx := range members {
			if res.Rank[idx] < minRank {
				minRank = res.Rank[idx]
			}
		}
		// Raise every member to at least minRank; no member is moved
		// because minRank is already the lowest member rank.
		for _, idx := range members {
			if res.Rank[idx] < minRank {
				res.Rank[idx] = minRank
			}
		}
	}
}

// subgraphMemberNodes returns the dense node indices transitively owned
// by a subgraph, including nodes in nested subgraphs.
func subgraphMemberNodes(d *ir.Diagram, sg *ir.Subgraph) []int {
	var out []int
	out = append(out, sg.ChildNodes...)
	for _, ci := range sg.ChildSubgraphs {
		if ci < 0 || ci >= len(d.Subgraphs) {
			continue
		}
		out = append(out, subgraphMemberNodes(d, d.Subgraphs[ci])...)
	}
	return out
}
