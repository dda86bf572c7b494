package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark/flowc/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file.mmd]",
	Short: "Start the live-preview editor web server",
	Long: `Start a local web server that provides a browser-based diagram editor.

The editor provides:
  - Split-pane interface with a source editor and live SVG preview
  - Re-render on every keystroke over a WebSocket connection
  - File save (Ctrl+S)
  - External file change detection

Examples:
  # Start server with a flowchart file
  flowc serve diagram.mmd

  # Start on a specific port
  flowc serve diagram.mmd --port 3000

  # Start without a file (empty editor)
  flowc serve`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	var filePath string
	if len(args) > 0 {
		filePath = args[0]
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", filePath)
		}
	}

	srv, err := server.New(server.Options{
		Port:     servePort,
		FilePath: filePath,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	url := fmt.Sprintf("http://localhost:%d", servePort)
	fmt.Printf("Starting flowc editor server...\n")
	fmt.Printf("  URL: %s\n", url)
	if filePath != "" {
		fmt.Printf("  File: %s\n", filePath)
	}
	fmt.Printf("\nPress Ctrl+C to stop\n\n")

	return srv.Start(ctx)
}
