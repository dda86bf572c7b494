package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark/flowc/pkg/layout"
	"github.com/mark/flowc/pkg/parser"
	"github.com/mark/flowc/pkg/render"
)

// RenderRequest is the request body for POST /api/render.
type RenderRequest struct {
	Source  string         `json:"source"`
	Options *RenderOptions `json:"options,omitempty"`
}

// RenderOptions configures rendering.
type RenderOptions struct {
	Theme   string `json:"theme"`
	Padding int    `json:"padding"`
}

// RenderResponse is the response body for POST /api/render.
type RenderResponse struct {
	SVG      string   `json:"svg,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// FileResponse is the response body for GET /api/file.
type FileResponse struct {
	Source   string `json:"source"`
	FilePath string `json:"filePath"`
}

// handleRender handles POST /api/render requests.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RenderResponse{Error: "Invalid request body"})
		return
	}

	svg, warnings, err := s.renderFlowchart(r.Context(), req.Source, req.Options)
	if err != nil {
		writeJSON(w, http.StatusOK, RenderResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{SVG: string(svg), Warnings: warnings})
}

// handleFile handles GET and PUT /api/file requests.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFileGet(w, r)
	case http.MethodPut:
		s.handleFilePut(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFileGet returns the current file content.
func (s *Server) handleFileGet(w http.ResponseWriter, r *http.Request) {
	if s.FilePath == "" {
		writeJSON(w, http.StatusOK, FileResponse{Source: "", FilePath: ""})
		return
	}

	writeJSON(w, http.StatusOK, FileResponse{
		Source:   s.GetFileContent(),
		FilePath: s.FilePath,
	})
}

// handleFilePut saves content to the file.
func (s *Server) handleFilePut(w http.ResponseWriter, r *http.Request) {
	if s.FilePath == "" {
		http.Error(w, "No file opened", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Update cached content first (prevents file watcher from triggering)
	s.SetFileContent(req.Source)

	if err := os.WriteFile(s.FilePath, []byte(req.Source), 0644); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type     string   `json:"type"`
	Source   string   `json:"source,omitempty"`
	SVG      string   `json:"svg,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Format   string   `json:"format,omitempty"`   // export: svg is the only supported value
	Data     string   `json:"data,omitempty"`     // export: base64-encoded content
	Filename string   `json:"filename,omitempty"` // export: suggested filename
}

// handleWebSocket handles WebSocket connections.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	if s.FilePath != "" {
		conn.WriteJSON(WSMessage{
			Type:   "file-changed",
			Source: s.GetFileContent(),
		})
	}

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "render":
			svg, warnings, err := s.renderFlowchart(r.Context(), msg.Source, nil)
			if err != nil {
				conn.WriteJSON(WSMessage{Type: "error", Error: err.Error()})
			} else {
				conn.WriteJSON(WSMessage{Type: "rendered", SVG: string(svg), Warnings: warnings})
			}

		case "save":
			if s.FilePath == "" {
				conn.WriteJSON(WSMessage{Type: "error", Error: "No file opened"})
				continue
			}

			s.SetFileContent(msg.Source)

			if err := os.WriteFile(s.FilePath, []byte(msg.Source), 0644); err != nil {
				conn.WriteJSON(WSMessage{Type: "error", Error: "Failed to save file"})
			} else {
				conn.WriteJSON(WSMessage{Type: "saved"})
			}

		case "export":
			svgBytes, warnings, err := s.renderFlowchart(r.Context(), msg.Source, nil)
			if err != nil {
				conn.WriteJSON(WSMessage{Type: "error", Error: err.Error()})
				continue
			}

			filename := exportFilename(s.FilePath)
			conn.WriteJSON(WSMessage{
				Type:     "exported",
				Format:   string(render.FormatSVG),
				Data:     base64.StdEncoding.EncodeToString(svgBytes),
				Filename: filename,
				Warnings: warnings,
			})
		}
	}
}

// renderFlowchart parses, lays out, and renders diagram source to SVG,
// collecting layout warnings (spec.md §8's ForcedCrossing policy: warn,
// never fail) so the editor can surface them without blocking preview.
func (s *Server) renderFlowchart(ctx context.Context, source string, opts *RenderOptions) ([]byte, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	d, err := parser.NewFlowchartParser().Parse(source)
	if err != nil {
		return nil, nil, err
	}

	laid, err := layout.Run(d, layout.Options{LayoutConfig: d.Config})
	if err != nil {
		return nil, nil, err
	}

	renderOpts := render.DefaultOptions()
	if opts != nil {
		if opts.Theme != "" {
			renderOpts.Theme = opts.Theme
		}
		if opts.Padding != 0 {
			renderOpts.Padding = opts.Padding
		}
	}

	svgBytes, err := render.NewSVGRendererWithOptions(renderOpts).RenderToBytes(ctx, laid)
	if err != nil {
		return nil, nil, err
	}

	warnings := make([]string, 0, len(laid.Warnings))
	for _, w := range laid.Warnings {
		warnings = append(warnings, w.Message)
	}
	return svgBytes, warnings, nil
}

func exportFilename(filePath string) string {
	if filePath == "" {
		return "diagram.svg"
	}
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".svg"
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
