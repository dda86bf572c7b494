// Package cmd provides the CLI commands for flowc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildDate = "2026-07-30"
	GitCommit = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "flowc",
	Short: "flowc - render Mermaid-style flowchart diagrams to SVG",
	Long: `flowc is a command-line tool for rendering flowchart diagram source
to SVG, using its own orthogonal-routing layout engine instead of a
browser or an external layout server.

Examples:
  # Render a flowchart to SVG
  flowc render diagram.mmd -o diagram.svg

  # Render with a named theme
  flowc render diagram.mmd -o diagram.svg --theme dark

  # Validate a flowchart file
  flowc validate diagram.mmd

  # Watch mode: auto-regenerate on file changes
  flowc render diagram.mmd -w -o diagram.svg

  # Start the live-preview editor
  flowc serve diagram.mmd`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
