package layout

import (
	"math"
	"sort"

	"github.com/mark/flowc/pkg/ir"
)

// assignPorts assigns a Side + offset to each edge endpoint (spec.md
// §4.5). Ported from D2's own orthogonal grid router port-assignment
// pass (determineSides/distributePortsOnSides/sortPortsByNeighborAngle/
// distributeAlongSide/alignNearlyAlignedPorts/selfLoopSides), adapted
// from *d2graph.Object/geo.Point to this repo's ir.Node/ir.Point.
func assignPorts(d *ir.Diagram, rr rankResult, cfg ir.LayoutConfig) {
	sideCount := make(map[nodeSideKey]int)

	type edgePort struct {
		side    ir.Side
		nodeIdx int
	}
	startSides := make([]edgePort, len(d.Edges))
	endSides := make([]edgePort, len(d.Edges))

	for i, e := range d.Edges {
		u, v := rr.EffSource[i], rr.EffTarget[i]
		if u < 0 || v < 0 {
			continue
		}
		if u == v {
			s1, s2 := selfLoopSides(u, sideCount)
			startSides[i] = edgePort{s1, u}
			endSides[i] = edgePort{s2, u}
			sideCount[nodeSideKey{u, s1}]++
			sideCount[nodeSideKey{u, s2}]++
			continue
		}
		srcSide, dstSide := determineSides(d.Nodes[u], d.Nodes[v])
		startSides[i] = edgePort{srcSide, u}
		endSides[i] = edgePort{dstSide, v}
		sideCount[nodeSideKey{u, srcSide}]++
		sideCount[nodeSideKey{v, dstSide}]++
	}

	type portRef struct {
		edgeIdx int
		isStart bool
	}
	bySide := make(map[nodeSideKey][]portRef)
	for i := range d.Edges {
		if startSides[i].nodeIdx == 0 && endSides[i].nodeIdx == 0 && rr.EffSource[i] < 0 {
			continue
		}
		bySide[nodeSideKey{startSides[i].nodeIdx, startSides[i].side}] = append(
			bySide[nodeSideKey{startSides[i].nodeIdx, startSides[i].side}], portRef{i, true})
		bySide[nodeSideKey{endSides[i].nodeIdx, endSides[i].side}] = append(
			bySide[nodeSideKey{endSides[i].nodeIdx, endSides[i].side}], portRef{i, false})
	}

	neighborCenter := func(ei int, isStart bool) (float64, float64) {
		other := endSides[ei].nodeIdx
		if !isStart {
			other = startSides[ei].nodeIdx
		}
		n := d.Nodes[other]
		return n.CenterX(), n.CenterY()
	}

	keys := make([]nodeSideKey, 0, len(bySide))
	for k := range bySide {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].nodeIdx != keys[b].nodeIdx {
			return keys[a].nodeIdx < keys[b].nodeIdx
		}
		return keys[a].side < keys[b].side
	})

	for _, key := range keys {
		refs := bySide[key]
		sort.SliceStable(refs, func(a, b int) bool {
			cxa, cya := neighborCenter(refs[a].edgeIdx, refs[a].isStart)
			cxb, cyb := neighborCenter(refs[b].edgeIdx, refs[b].isStart)
			switch key.side {
			case ir.SideN, ir.SideS:
				if cxa != cxb {
					return cxa < cxb
				}
			case ir.SideE, ir.SideW:
				if cya != cyb {
					return cya < cyb
				}
			}
			return d.Edges[refs[a].edgeIdx].DeclIndex < d.Edges[refs[b].edgeIdx].DeclIndex
		})

		n := d.Nodes[key.nodeIdx]
		padRatio := cfg.PortPadRatio
		if padRatio <= 0 {
			padRatio = 0.1
		}
		sideLen := n.Width
		if key.side == ir.SideE || key.side == ir.SideW {
			sideLen = n.Height
		}
		pad := clamp(padRatio*sideLen, cfg.PortPadMin, cfg.PortPadMax)

		count := len(refs)
		for i, ref := range refs {
			t := (float64(i) + 1) / (float64(count) + 1)
			offset := pad + t*(sideLen-2*pad)
			if sideLen-2*pad < 0 {
				offset = sideLen / 2
			}
			p := &ir.Port{NodeIndex: key.nodeIdx, Side: key.side, Offset: offset, EdgeIndex: ref.edgeIdx}
			if ref.isStart {
				d.Edges[ref.edgeIdx].StartPort = p
			} else {
				d.Edges[ref.edgeIdx].EndPort = p
			}
		}
	}

	alignNearlyAlignedPorts(d)
}

func clamp(v, lo, hi float64) float64 {
	if hi > 0 && v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

type nodeSideKey struct {
	nodeIdx int
	side    ir.Side
}

// determineSides picks the dominant-angle side pair for a normal edge,
// with Z-shape avoidance (prefer an L-shape bend over a Z).
func determineSides(src, dst *ir.Node) (ir.Side, ir.Side) {
	dx := dst.CenterX() - src.CenterX()
	dy := dst.CenterY() - src.CenterY()
	absDx, absDy := math.Abs(dx), math.Abs(dy)

	var srcSide, dstSide ir.Side
	switch {
	case absDx > absDy:
		if dx > 0 {
			srcSide, dstSide = ir.SideE, ir.SideW
		} else {
			srcSide, dstSide = ir.SideW, ir.SideE
		}
		if absDy > absDx*0.25 {
			if dy > 0 {
				dstSide = ir.SideN
			} else {
				dstSide = ir.SideS
			}
		}
	case absDy > absDx:
		if dy > 0 {
			srcSide, dstSide = ir.SideS, ir.SideN
		} else {
			srcSide, dstSide = ir.SideN, ir.SideS
		}
		if absDx > absDy*0.25 {
			if dx > 0 {
				dstSide = ir.SideW
			} else {
				dstSide = ir.SideE
			}
		}
	default:
		if dx > 0 {
			srcSide = ir.SideE
		} else {
			srcSide = ir.SideW
		}
		if dy > 0 {
			dstSide = ir.SideN
		} else {
			dstSide = ir.SideS
		}
	}
	return srcSide, dstSide
}

// selfLoopSides picks the least-populated side as primary and its
// clockwise neighbor as the secondary side for a self-loop.
func selfLoopSides(nodeIdx int, sideCount map[nodeSideKey]int) (ir.Side, ir.Side) {
	sides := []ir.Side{ir.SideN, ir.SideE, ir.SideS, ir.SideW}
	best := ir.SideE
	bestCount := math.MaxInt
	for _, s := range sides {
		if c := sideCount[nodeSideKey{nodeIdx, s}]; c < bestCount {
			bestCount = c
			best = s
		}
	}
	next := map[ir.Side]ir.Side{ir.SideN: ir.SideE, ir.SideE: ir.SideS, ir.SideS: ir.SideW, ir.SideW: ir.SideN}
	return best, next[best]
}

// alignNearlyAlignedPorts snaps the two ports of a vertical or
// horizontal edge to a shared coordinate when the connected boxes
// overlap on the perpendicular axis, avoiding a diagonal jog.
func alignNearlyAlignedPorts(d *ir.Diagram) {
	for _, e := range d.Edges {
		if e.StartPort == nil || e.EndPort == nil {
			continue
		}
		src := d.Nodes[e.StartPort.NodeIndex]
		dst := d.Nodes[e.EndPort.NodeIndex]

		vertical := (e.StartPort.Side == ir.SideS && e.EndPort.Side == ir.SideN) ||
			(e.StartPort.Side == ir.SideN && e.EndPort.Side == ir.SideS)
		if vertical {
			overlapLeft := math.Max(src.Position.X, dst.Position.X)
			overlapRight := math.Min(src.Right(), dst.Right())
			if overlapRight > overlapLeft {
				targetX := (overlapLeft + overlapRight) / 2
				if within(targetX, src.Position.X, src.Width) && within(targetX, dst.Position.X, dst.Width) {
					e.StartPort.Offset = targetX - src.Position.X
					e.EndPort.Offset = targetX - dst.Position.X
				}
			}
		}

		horizontal := (e.StartPort.Side == ir.SideE && e.EndPort.Side == ir.SideW) ||
			(e.StartPort.Side == ir.SideW && e.EndPort.Side == ir.SideE)
		if horizontal {
			overlapTop := math.Max(src.Position.Y, dst.Position.Y)
			overlapBottom := math.Min(src.Bottom(), dst.Bottom())
			if overlapBottom > overlapTop {
				targetY := (overlapTop + overlapBottom) / 2
				if within(targetY, src.Position.Y, src.Height) && within(targetY, dst.Position.Y, dst.Height) {
					e.StartPort.Offset = targetY - src.Position.Y
					e.EndPort.Offset = targetY - dst.Position.Y
				}
			}
		}
	}
}

func within(v, base, length float64) bool {
	min := base + length*0.1
	max := base + length*0.9
	return v >= min && v <= max
}
