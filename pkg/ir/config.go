package ir

// LayoutConfig holds every tunable the layout core reads (spec.md §3,
// §6, §9). All spacing/padding fields must be positive; ratios lie in
// [0, 1]. Exposed as data rather than hard-coded constants per spec.md
// §9's open question on readability weight tuning.
type LayoutConfig struct {
	// Direction is the diagram's primary flow direction.
	Direction FlowDirection `json:"direction"`

	// SubgraphDirections maps subgraph ids to a direction. The layout
	// core does not read this map; the parser records a subgraph's own
	// direction line on Subgraph.Direction instead.
	SubgraphDirections map[string]FlowDirection `json:"subgraph_directions,omitempty"`

	NodeSpacing float64 `json:"node_spacing"` // min gap between sibling node rectangles
	RankSpacing float64 `json:"rank_spacing"` // gap between successive layers

	OrderPasses int `json:"order_passes"` // forward/backward sweeps in the orderer, default 4

	PortPadRatio float64 `json:"port_pad_ratio"` // fraction of side length kept clear at each end
	PortPadMin   float64 `json:"port_pad_min"`
	PortPadMax   float64 `json:"port_pad_max"`
	PortSideBias float64 `json:"port_side_bias"` // not read by the port assigner

	// FastText is not read by the layout core: labels are measured with
	// layout.Options.TextMetrics when set and with the approximate
	// character-width metric otherwise, whatever this flag says.
	FastText bool `json:"fast_text"`

	// ComponentGap is the spacing inserted between disconnected
	// components placed side by side.
	ComponentGap float64 `json:"component_gap"`

	// ChainWrapAspect is the width/height (or its reciprocal) threshold
	// beyond which a single dominant chain is wrapped into multiple rows.
	ChainWrapAspect float64 `json:"chain_wrap_aspect"`

	Weights ReadabilityWeights `json:"weights"`
}

// ReadabilityWeights are the coefficients layout.Score combines into
// ReadabilityScore.Total (spec.md §4.7).
type ReadabilityWeights struct {
	Crossing       float64 `json:"crossing"`
	Bend           float64 `json:"bend"`
	EdgeLength     float64 `json:"edge_length"`
	ForcedCrossing float64 `json:"forced_crossing"`
	LabelOverlap   float64 `json:"label_overlap"`
}

// DefaultLayoutConfig returns the layout core's default tuning.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Direction:       DirectionTD,
		NodeSpacing:     40,
		RankSpacing:     60,
		OrderPasses:     4,
		PortPadRatio:    0.1,
		PortPadMin:      4,
		PortPadMax:      20,
		PortSideBias:    1.5,
		FastText:        false,
		ComponentGap:    80,
		ChainWrapAspect: 8,
		Weights: ReadabilityWeights{
			Crossing:       10,
			Bend:           1,
			EdgeLength:     0.01,
			ForcedCrossing: 50,
			LabelOverlap:   5,
		},
	}
}
