package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// newTestRootCmd resets the package-level flag vars and wires a fresh
// root command, the same isolation trick the teacher's cmd_test.go used
// to avoid cross-test flag bleed from cobra's global command tree.
func newTestRootCmd() *cobra.Command {
	outputFile = ""
	themeName = "default"
	padding = 40
	watchMode = false
	verbose = false

	testRoot := &cobra.Command{
		Use:           "flowc",
		Short:         "render Mermaid-style flowchart diagrams to SVG",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	testRoot.AddCommand(renderCmd)
	testRoot.AddCommand(validateCmd)
	testRoot.AddCommand(versionCmd)

	return testRoot
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestDefaultOptions(t *testing.T) {
	if themeName != "default" {
		t.Errorf("default theme should be 'default', got %s", themeName)
	}
	if padding != 40 {
		t.Errorf("default padding should be 40, got %d", padding)
	}
}

func TestRenderCommand_RequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render"})
	if err := cmd.Execute(); err == nil {
		t.Error("render command should require input file")
	}
}

func TestRenderCommand_FileNotFound(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", "nonexistent-file.mmd"})
	err := cmd.Execute()
	if err == nil {
		t.Error("render command should fail for non-existent file")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("expected 'failed to read' error, got: %v", err)
	}
}

func TestRenderCommand_SVGOutput(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "test.mmd")
	outputFilePath := filepath.Join(tmpDir, "output.svg")

	os.WriteFile(inputFile, []byte("server --> database"), 0644)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", inputFile, "-o", outputFilePath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render command failed: %v", err)
	}

	if _, err := os.Stat(outputFilePath); os.IsNotExist(err) {
		t.Fatal("output file was not created")
	}

	content, _ := os.ReadFile(outputFilePath)
	if !strings.Contains(string(content), "<svg") {
		t.Error("output should contain SVG markup")
	}
}

func TestRenderCommand_WithTheme(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "test.mmd")
	outputFilePath := filepath.Join(tmpDir, "themed.svg")

	os.WriteFile(inputFile, []byte("x --> y"), 0644)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"render", inputFile, "-o", outputFilePath, "-t", "dark"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render with theme failed: %v", err)
	}

	if _, err := os.Stat(outputFilePath); os.IsNotExist(err) {
		t.Error("themed output file was not created")
	}
}

func TestValidateCommand_RequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate"})
	if err := cmd.Execute(); err == nil {
		t.Error("validate command should require input file")
	}
}

func TestValidateCommand_FileNotFound(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", "nonexistent.mmd"})
	if err := cmd.Execute(); err == nil {
		t.Error("validate command should fail for non-existent file")
	}
}

func TestValidateCommand_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "valid.mmd")

	os.WriteFile(inputFile, []byte("server --> database\ndatabase --> cache"), 0644)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", inputFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate should succeed for valid file: %v", err)
	}
}

func TestValidateCommand_UnterminatedSubgraphErrors(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "invalid.mmd")

	os.WriteFile(inputFile, []byte("subgraph cluster\nA --> B\n"), 0644)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", inputFile})
	if err := cmd.Execute(); err == nil {
		t.Error("validate should fail for an unterminated subgraph")
	}
}

func TestResolveRenderConfig_DefaultOutput(t *testing.T) {
	outputFile = ""
	themeName = "default"
	padding = 40

	cfg, err := resolveRenderConfig("diagram.mmd")
	if err != nil {
		t.Fatalf("resolveRenderConfig failed: %v", err)
	}
	if cfg.outPath != "diagram.svg" {
		t.Errorf("expected output path 'diagram.svg', got '%s'", cfg.outPath)
	}
}

func TestResolveRenderConfig_ExplicitOutput(t *testing.T) {
	outputFile = "out.svg"
	themeName = "default"
	padding = 40

	cfg, err := resolveRenderConfig("diagram.mmd")
	if err != nil {
		t.Fatalf("resolveRenderConfig failed: %v", err)
	}
	if cfg.outPath != "out.svg" {
		t.Errorf("expected output path 'out.svg', got '%s'", cfg.outPath)
	}
}

func TestDoRender_SVG(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "test.mmd")
	outputPath := filepath.Join(tmpDir, "test.svg")

	os.WriteFile(inputFile, []byte("a --> b"), 0644)

	outputFile = outputPath
	themeName = "default"
	padding = 40

	cfg, err := resolveRenderConfig(inputFile)
	if err != nil {
		t.Fatalf("resolveRenderConfig failed: %v", err)
	}

	if err := doRender(cfg); err != nil {
		t.Fatalf("doRender failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(content), "<svg") {
		t.Error("output should contain SVG markup")
	}
}

func TestDoRender_FileNotFound(t *testing.T) {
	cfg := &renderConfig{
		inputFile: "nonexistent.mmd",
		outPath:   "output.svg",
	}

	err := doRender(cfg)
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("expected 'failed to read' error, got: %v", err)
	}
}

func TestFormatTime(t *testing.T) {
	ts := formatTime()
	if len(ts) != 8 {
		t.Errorf("expected timestamp length 8, got %d (%s)", len(ts), ts)
	}
	if _, err := time.Parse("15:04:05", ts); err != nil {
		t.Errorf("formatTime returned invalid time format: %v", err)
	}
}

func TestWatchFlag_Recognized(t *testing.T) {
	flag := renderCmd.Flags().Lookup("watch")
	if flag == nil {
		t.Fatal("watch flag not found")
	}
	if flag.Shorthand != "w" {
		t.Errorf("expected shorthand 'w', got '%s'", flag.Shorthand)
	}
}

func TestLoadProjectConfig_MissingFileIsNotError(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := loadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("missing flowc.toml should not error: %v", err)
	}
	if cfg.Theme != "" || cfg.Padding != 0 {
		t.Error("expected a zero-value config when flowc.toml is absent")
	}
}

func TestLoadProjectConfig_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "flowc.toml"), []byte(`
theme = "dark"
padding = 80

[layout]
node_spacing = 50.0
`), 0644)

	cfg, err := loadProjectConfig(tmpDir)
	if err != nil {
		t.Fatalf("loadProjectConfig failed: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Errorf("expected theme 'dark', got %q", cfg.Theme)
	}
	if cfg.Padding != 80 {
		t.Errorf("expected padding 80, got %d", cfg.Padding)
	}
	if cfg.Layout.NodeSpacing != 50.0 {
		t.Errorf("expected node_spacing 50.0, got %v", cfg.Layout.NodeSpacing)
	}
}
