package render

import "github.com/mark/flowc/pkg/ir"

// Theme is a named palette applied as a style overlay wherever a node
// or edge leaves a visual property unset, the same role the teacher's
// C4Classes D2 class block played (pkg/render/c4theme.go), generalized
// from "class applied inside D2 source" to "struct consulted directly
// while resolving ir.Style".
type Theme struct {
	Name string

	NodeFill   string
	NodeStroke string
	NodeFont   string

	// SubgraphFill/SubgraphStroke style the subgraph's body rectangle
	// and title band.
	SubgraphFill   string
	SubgraphStroke string

	EdgeStroke string
	LabelFill  string // edge/subgraph label text color

	FontFamily string
	FontSize   int
}

// DefaultTheme is a light palette: white node fill, dark navy stroke
// and text, a legible sans-serif default.
func DefaultTheme() Theme {
	return Theme{
		Name:           "default",
		NodeFill:       "#ffffff",
		NodeStroke:     "#1a1a2e",
		NodeFont:       "#1a1a2e",
		SubgraphFill:   "#f7fafc",
		SubgraphStroke: "#a0aec0",
		EdgeStroke:     "#4a5568",
		LabelFill:      "#2d3748",
		FontFamily:     "sans-serif",
		FontSize:       14,
	}
}

// C4Theme keeps the teacher's Structurizr color scheme
// (pkg/render/c4theme.go's c4-container shade) as a selectable theme
// instead of a D2 class block.
func C4Theme() Theme {
	return Theme{
		Name:           "c4",
		NodeFill:       "#438dd5",
		NodeStroke:     "#2e6295",
		NodeFont:       "#ffffff",
		SubgraphFill:   "#e8f1fb",
		SubgraphStroke: "#1168bd",
		EdgeStroke:     "#707070",
		LabelFill:      "#1a1a2e",
		FontFamily:     "sans-serif",
		FontSize:       14,
	}
}

// DarkTheme offers a dark background palette, grounded on dshills-
// dungo's SVG export default canvas color (pkg/export/svg.go's
// "#1a1a2e" background and "#e2e8f0" label fill).
func DarkTheme() Theme {
	return Theme{
		Name:           "dark",
		NodeFill:       "#2d3748",
		NodeStroke:     "#718096",
		NodeFont:       "#e2e8f0",
		SubgraphFill:   "#1a202c",
		SubgraphStroke: "#4a5568",
		EdgeStroke:     "#a0aec0",
		LabelFill:      "#e2e8f0",
		FontFamily:     "sans-serif",
		FontSize:       14,
	}
}

// Themes maps the CLI's -t/--theme flag to a built-in Theme.
var Themes = map[string]Theme{
	"default": DefaultTheme(),
	"c4":      C4Theme(),
	"dark":    DarkTheme(),
}

// resolveNodeStyle overlays the theme onto whichever fields the node's
// own ir.Style left unset (spec.md's Style.Merge cascade, applied from
// the theme instead of from a parent container).
func resolveNodeStyle(s ir.Style, th Theme) ir.Style {
	resolved := ir.Style{
		Fill:      th.NodeFill,
		Stroke:    th.NodeStroke,
		FontColor: th.NodeFont,
		Font:      th.FontFamily,
		FontSize:  th.FontSize,
	}
	return resolved.Merge(s)
}

func resolveEdgeStyle(s ir.Style, th Theme) ir.Style {
	resolved := ir.Style{
		Stroke:    th.EdgeStroke,
		FontColor: th.LabelFill,
		Font:      th.FontFamily,
		FontSize:  th.FontSize - 2,
	}
	return resolved.Merge(s)
}
