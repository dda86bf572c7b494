package layout

import (
	"sort"

	"github.com/mark/flowc/pkg/ir"
)

// orderResult is the orderer's published output (spec.md §4.3):
// Order[rank] is the list of node indices in that layer, left to right.
type orderResult struct {
	Order [][]int
}

// neighborSets builds, per node index, the indices of its upstream and
// downstream neighbors via the rank-effective (post-reversal) edges.
func neighborSets(d *ir.Diagram, rr rankResult) (up, down [][]int) {
	n := len(d.Nodes)
	up = make([][]int, n)
	down = make([][]int, n)
	for i := range d.Edges {
		u, v := rr.EffSource[i], rr.EffTarget[i]
		if u < 0 || u >= n || v < 0 || v >= n {
			continue
		}
		down[u] = append(down[u], v)
		up[v] = append(up[v], u)
	}
	return up, down
}

// subgraphOf maps a node index to its owning subgraph id chain (the
// immediate parent), used for the orderer's intra-parent cohesion bias.
func subgraphOf(d *ir.Diagram) []string {
	owner := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		owner[i] = n.Container
	}
	return owner
}

// assignOrder runs orderPasses forward/backward barycenter sweeps and
// returns the best layering seen, by counted crossings (spec.md §4.3).
func assignOrder(d *ir.Diagram, rr rankResult, cfg ir.LayoutConfig) orderResult {
	n := len(d.Nodes)
	up, down := neighborSets(d, rr)
	owner := subgraphOf(d)

	layers := make([][]int, rr.MaxRank+1)
	for i := 0; i < n; i++ {
		r := rr.Rank[i]
		layers[r] = append(layers[r], i)
	}
	// initial order: declaration order within each layer
	for _, layer := range layers {
		sort.Slice(layer, func(a, b int) bool { return d.Nodes[layer[a]].DeclIndex < d.Nodes[layer[b]].DeclIndex })
	}

	passes := cfg.OrderPasses
	if passes < 1 {
		passes = 1
	}

	pos := make([]int, n) // current position of a node within its layer
	updatePos := func() {
		for _, layer := range layers {
			for p, idx := range layer {
				pos[idx] = p
			}
		}
	}
	updatePos()

	best := cloneLayers(layers)
	bestCrossings := countCrossings(best, rr, down, pos)

	medianSweep := func(layer []int, neighbors [][]int, layerIdx int) {
		type keyed struct {
			idx    int
			median float64
			hasMed bool
		}
		ks := make([]keyed, len(layer))
		for i, idx := range layer {
			nbs := neighbors[idx]
			if len(nbs) == 0 {
				ks[i] = keyed{idx: idx, hasMed: false}
				continue
			}
			ps := make([]int, len(nbs))
			for j, nb := range nbs {
				ps[j] = pos[nb]
			}
			sort.Ints(ps)
			m := len(ps) / 2
			var med float64
			if len(ps)%2 == 1 {
				med = float64(ps[m])
			} else if len(ps) == 2 {
				med = float64(ps[0]+ps[1]) / 2
			} else {
				left := ps[m-1] - ps[0]
				right := ps[len(ps)-1] - ps[m]
				if left+right == 0 {
					med = float64(ps[m-1]+ps[m]) / 2
				} else {
					med = (float64(ps[m-1])*float64(right) + float64(ps[m])*float64(left)) / float64(left+right)
				}
			}
			ks[i] = keyed{idx: idx, median: med, hasMed: true}
		}

		sort.SliceStable(ks, func(a, b int) bool {
			ka, kb := ks[a], ks[b]
			// Subgraph cohesion: same-parent nodes sort adjacent via a
			// large bias, before falling back to median/decl/id order.
			sameParentA := owner[ka.idx]
			sameParentB := owner[kb.idx]
			if sameParentA != sameParentB {
				if sameParentA == "" {
					return false
				}
				if sameParentB == "" {
					return true
				}
				if sameParentA != sameParentB {
					return sameParentA < sameParentB
				}
			}
			if ka.hasMed && kb.hasMed && ka.median != kb.median {
				return ka.median < kb.median
			}
			if ka.hasMed != kb.hasMed {
				return ka.hasMed
			}
			da, db := d.Nodes[ka.idx].DeclIndex, d.Nodes[kb.idx].DeclIndex
			if da != db {
				return da < db
			}
			return d.Nodes[ka.idx].ID < d.Nodes[kb.idx].ID
		})

		for i, k := range ks {
			layer[i] = k.idx
		}
		_ = layerIdx
	}

	for pass := 0; pass < passes; pass++ {
		if pass%2 == 0 {
			for li := 1; li < len(layers); li++ {
				medianSweep(layers[li], up, li)
				updatePos()
			}
		} else {
			for li := len(layers) - 2; li >= 0; li-- {
				medianSweep(layers[li], down, li)
				updatePos()
			}
		}

		crossings := countCrossings(layers, rr, down, pos)
		if crossings < bestCrossings {
			bestCrossings = crossings
			best = cloneLayers(layers)
		}
	}

	return orderResult{Order: best}
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, l := range layers {
		out[i] = append([]int(nil), l...)
	}
	return out
}

// countCrossings does a classic two-layer crossing count between every
// adjacent pair of layers, accumulated across the whole diagram.
func countCrossings(layers [][]int, rr rankResult, down [][]int, pos []int) int {
	total := 0
	for li := 0; li+1 < len(layers); li++ {
		total += crossingsBetween(layers[li], down, pos)
	}
	return total
}

// crossingsBetween counts crossings of edges from layer `upper`
// (already positioned) to the layer below, using node positions in pos.
func crossingsBetween(upper []int, down [][]int, pos []int) int {
	var edges []int // target positions for each (upper-node, edge) in upper-declaration order
	for _, u := range upper {
		tgts := append([]int(nil), down[u]...)
		sort.Ints(tgts)
		for _, v := range tgts {
			edges = append(edges, pos[v])
		}
	}
	return countInversions(edges)
}

// countInversions counts pairs (i<j) with edges[i] > edges[j] via
// merge sort, the merge-accumulate crossing count of spec.md §4.3.
func countInversions(a []int) int {
	if len(a) < 2 {
		return 0
	}
	buf := make([]int, len(a))
	var sortCount func(lo, hi int) int
	sortCount = func(lo, hi int) int {
		if hi-lo < 2 {
			return 0
		}
		mid := (lo + hi) / 2
		cnt := sortCount(lo, mid) + sortCount(mid, hi)
		i, j, k := lo, mid, lo
		for i < mid && j < hi {
			if a[i] <= a[j] {
				buf[k] = a[i]
				i++
			} else {
				buf[k] = a[j]
				j++
				cnt += mid - i
			}
			k++
		}
		for i < mid {
			buf[k] = a[i]
			i++
			k++
		}
		for j < hi {
			buf[k] = a[j]
			j++
			k++
		}
		copy(a[lo:hi], buf[lo:hi])
		return cnt
	}
	return sortCount(0, len(a))
}
