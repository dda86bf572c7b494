package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Metadata stores stability-hint offsets for diagram nodes, persisted in
// a .flowmeta file next to the source file and cleared when the source
// hash changes. The offsets are stored only: renderFlowchart does not
// pass them to layout.Run, so a re-render does not move nodes toward
// them. The teacher's Vertices/RoutingMode/LabelPositions fields existed
// to support hand-edited JointJS routes, dropped along with JointJS
// rendering (see DESIGN.md).
type Metadata struct {
	Version    int                   `json:"version"`
	Positions  map[string]NodeOffset `json:"positions"`
	SourceHash string                `json:"sourceHash"`
}

// NodeOffset is a stability-hint displacement from the node's previous
// auto-layout position, keyed by node ID.
type NodeOffset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// NewMetadata creates a new empty metadata structure.
func NewMetadata() *Metadata {
	return &Metadata{
		Version:   1,
		Positions: make(map[string]NodeOffset),
	}
}

// MetadataPath returns the .flowmeta path for a given source file path.
func MetadataPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + ".flowmeta"
}

// LoadMetadata loads metadata from the .flowmeta file.
// Returns empty metadata if the file doesn't exist.
func LoadMetadata(sourcePath string) (*Metadata, error) {
	metaPath := MetadataPath(sourcePath)

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMetadata(), nil
		}
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	if meta.Positions == nil {
		meta.Positions = make(map[string]NodeOffset)
	}

	return &meta, nil
}

// SaveMetadata saves metadata to the .flowmeta file.
func SaveMetadata(sourcePath string, meta *Metadata) error {
	metaPath := MetadataPath(sourcePath)

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(metaPath, data, 0644)
}

// HashSource computes a content hash of the diagram source.
func HashSource(source string) string {
	hash := sha256.Sum256([]byte(source))
	return hex.EncodeToString(hash[:8]) // first 8 bytes is enough to detect drift
}

// ValidateAndClean clears stored positions if source has changed since
// they were recorded. Returns true if positions were cleared.
func (m *Metadata) ValidateAndClean(currentSource string) bool {
	currentHash := HashSource(currentSource)

	if m.SourceHash != currentHash {
		m.Positions = make(map[string]NodeOffset)
		m.SourceHash = currentHash
		return true
	}

	return false
}

// SetPosition updates or adds a stability-hint offset for a node.
func (m *Metadata) SetPosition(nodeID string, dx, dy float64) {
	m.Positions[nodeID] = NodeOffset{DX: dx, DY: dy}
}

// GetPosition returns the stability-hint offset for a node.
// Returns zero offset if not found.
func (m *Metadata) GetPosition(nodeID string) NodeOffset {
	if offset, ok := m.Positions[nodeID]; ok {
		return offset
	}
	return NodeOffset{}
}

// ClearPosition removes the stability-hint offset for a node.
func (m *Metadata) ClearPosition(nodeID string) {
	delete(m.Positions, nodeID)
}

// HasPositions returns true if there are any stability hints recorded.
func (m *Metadata) HasPositions() bool {
	return len(m.Positions) > 0
}
