package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mark/flowc/pkg/layout"
	"github.com/mark/flowc/pkg/parser"
	"github.com/mark/flowc/pkg/render"
)

var (
	outputFile string
	themeName  string
	padding    int
	watchMode  bool
)

var renderCmd = &cobra.Command{
	Use:   "render <input.mmd>",
	Short: "Render a flowchart diagram to SVG",
	Long: `Render a flowchart diagram file to SVG, running the parser, the
layout/routing engine, and the SVG emitter.

The output filename is derived from the input filename if not specified.
For example, 'diagram.mmd' will produce 'diagram.svg' by default.

Examples:
  # Render to SVG
  flowc render diagram.mmd

  # Specify output file
  flowc render diagram.mmd -o output.svg

  # Use a named theme (default, dark, c4)
  flowc render diagram.mmd --theme dark

  # Watch mode: auto-regenerate on file changes
  flowc render diagram.mmd --watch
  flowc render diagram.mmd -w -o output.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: input name with .svg extension)")
	renderCmd.Flags().StringVarP(&themeName, "theme", "t", "default", "Theme name: default, dark, c4")
	renderCmd.Flags().IntVarP(&padding, "padding", "p", 40, "Padding around diagram in pixels")
	renderCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch input file for changes and auto-regenerate")
}

// renderConfig holds the resolved configuration for rendering.
type renderConfig struct {
	inputFile string
	outPath   string
	opts      render.Options
	fileCfg   *projectConfig
}

// resolveRenderConfig determines the output path and render options
// from flags, the input file, and flowc.toml if present (see config.go).
func resolveRenderConfig(inputFile string) (*renderConfig, error) {
	outPath := outputFile
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
		outPath = base + "." + string(render.FormatSVG)
	}

	fileCfg, err := loadProjectConfig(filepath.Dir(inputFile))
	if err != nil {
		return nil, err
	}

	opts := render.DefaultOptions()
	opts.Theme = themeName
	opts.Padding = padding
	fileCfg.applyToRenderOptions(&opts)

	return &renderConfig{
		inputFile: inputFile,
		outPath:   outPath,
		opts:      opts,
		fileCfg:   fileCfg,
	}, nil
}

// doRender performs a single parse -> layout -> render pass. The
// diagram's own Config (its "flowchart LR"-style direction header) is
// the layout base; flowc.toml only overrides spacing knobs on top of
// it, never the direction the source itself declared.
func doRender(cfg *renderConfig) error {
	content, err := os.ReadFile(cfg.inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	d, err := parser.NewFlowchartParser().Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	layoutOpts := layout.Options{LayoutConfig: d.Config}
	cfg.fileCfg.applyToLayoutConfig(&layoutOpts.LayoutConfig)

	laid, err := layout.Run(d, layoutOpts)
	if err != nil {
		return fmt.Errorf("layout failed: %w", err)
	}
	for _, w := range laid.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}

	ctx := context.Background()
	output, err := render.NewSVGRendererWithOptions(cfg.opts).RenderToBytes(ctx, laid)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	if err := os.WriteFile(cfg.outPath, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	cfg, err := resolveRenderConfig(inputFile)
	if err != nil {
		return err
	}

	if !watchMode {
		if err := doRender(cfg); err != nil {
			return err
		}
		fmt.Printf("Rendered %s → %s\n", cfg.inputFile, cfg.outPath)
		return nil
	}

	return runWatchMode(cfg)
}

// runWatchMode watches the input file and re-renders on changes.
func runWatchMode(cfg *renderConfig) error {
	absPath, err := filepath.Abs(cfg.inputFile)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", cfg.inputFile)
	if err := doRender(cfg); err != nil {
		fmt.Printf("[%s] Error: %v\n", formatTime(), err)
	} else {
		fmt.Printf("[%s] Rendered %s → %s\n", formatTime(), cfg.inputFile, cfg.outPath)
	}

	var debounceTimer *time.Timer
	const debounceDelay = 100 * time.Millisecond

	baseName := filepath.Base(absPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := doRender(cfg); err != nil {
					fmt.Printf("[%s] Error: %v\n", formatTime(), err)
				} else {
					fmt.Printf("[%s] Rendered %s → %s\n", formatTime(), cfg.inputFile, cfg.outPath)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("[%s] Watch error: %v\n", formatTime(), err)

		case <-sigChan:
			fmt.Printf("\nStopping watch mode.\n")
			return nil
		}
	}
}

// formatTime returns a formatted timestamp for watch mode output.
func formatTime() string {
	return time.Now().Format("15:04:05")
}
