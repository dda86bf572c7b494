package cmd

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mark/flowc/pkg/ir"
	"github.com/mark/flowc/pkg/render"
)

// projectConfig mirrors a flowc.toml file sitting next to the diagram
// source, the same struct-tagged toml.Unmarshal pattern matzehuels-
// stacktower uses for Cargo.toml (pkg/deps/rust/cargo.go), generalized
// from a dependency manifest to this tool's own settings file. Flags
// passed on the command line always win; the file only supplies a
// value when a flag is left at its default.
type projectConfig struct {
	Theme   string           `toml:"theme"`
	Padding int              `toml:"padding"`
	Layout  layoutFileConfig `toml:"layout"`
}

type layoutFileConfig struct {
	NodeSpacing float64 `toml:"node_spacing"`
	RankSpacing float64 `toml:"rank_spacing"`
	OrderPasses int     `toml:"order_passes"`
}

// loadProjectConfig reads flowc.toml from dir if present. A missing
// file is not an error; it yields a zero-value config that changes
// nothing.
func loadProjectConfig(dir string) (*projectConfig, error) {
	path := filepath.Join(dir, "flowc.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &projectConfig{}, nil
		}
		return nil, err
	}

	var cfg projectConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyToRenderOptions overlays file-configured defaults onto opts,
// but only for fields the caller left at the flag defaults.
func (c *projectConfig) applyToRenderOptions(opts *render.Options) {
	if c == nil {
		return
	}
	if opts.Theme == "default" && c.Theme != "" {
		opts.Theme = c.Theme
	}
	if opts.Padding == 40 && c.Padding != 0 {
		opts.Padding = c.Padding
	}
}

func (c *projectConfig) applyToLayoutConfig(lc *ir.LayoutConfig) {
	if c == nil {
		return
	}
	if c.Layout.NodeSpacing != 0 {
		lc.NodeSpacing = c.Layout.NodeSpacing
	}
	if c.Layout.RankSpacing != 0 {
		lc.RankSpacing = c.Layout.RankSpacing
	}
	if c.Layout.OrderPasses != 0 {
		lc.OrderPasses = c.Layout.OrderPasses
	}
}
