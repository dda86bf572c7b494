package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark/flowc/pkg/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input.mmd>",
	Short: "Validate a flowchart diagram file",
	Long: `Validate a flowchart diagram file for syntax errors and structural issues.

This command parses the input file, runs the graph invariant checks
(dangling edges, cyclic subgraph containment, out-of-range indices),
and reports any errors found. It does not produce any output files.

Examples:
  # Validate a single file
  flowc validate diagram.mmd

  # Validate and show details on success
  flowc validate diagram.mmd -v`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var verbose bool

func init() {
	validateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output on success")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	content, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	p := parser.NewFlowchartParser()
	diagram, err := p.Parse(string(content))
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	validationErrors := diagram.Validate()
	if len(validationErrors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation errors in %s:\n", inputFile)
		for _, err := range validationErrors {
			fmt.Fprintf(os.Stderr, "  - %s\n", err)
		}
		return fmt.Errorf("found %d validation error(s)", len(validationErrors))
	}

	if verbose {
		fmt.Printf("✓ %s is valid\n", inputFile)
		fmt.Printf("  Nodes: %d\n", len(diagram.Nodes))
		fmt.Printf("  Edges: %d\n", len(diagram.Edges))
		fmt.Printf("  Subgraphs: %d\n", len(diagram.Subgraphs))
	} else {
		fmt.Printf("✓ %s is valid (%d nodes, %d edges, %d subgraphs)\n",
			inputFile, len(diagram.Nodes), len(diagram.Edges), len(diagram.Subgraphs))
	}

	return nil
}
