package ir

import "fmt"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the diagram for structural and semantic errors.
func (d *Diagram) Validate() []error {
	var errors []error

	nodeIDs := make(map[string]bool)
	for _, node := range d.Nodes {
		if node.ID == "" {
			errors = append(errors, ValidationError{Field: "node.ID", Message: "node ID cannot be empty"})
			continue
		}
		if nodeIDs[node.ID] {
			errors = append(errors, ValidationError{Field: "node.ID", Message: fmt.Sprintf("duplicate node ID: %s", node.ID)})
		}
		nodeIDs[node.ID] = true
	}

	edgeIDs := make(map[string]bool)
	for _, edge := range d.Edges {
		if edge.ID == "" {
			errors = append(errors, ValidationError{Field: "edge.ID", Message: "edge ID cannot be empty"})
			continue
		}
		if edgeIDs[edge.ID] {
			errors = append(errors, ValidationError{Field: "edge.ID", Message: fmt.Sprintf("duplicate edge ID: %s", edge.ID)})
		}
		edgeIDs[edge.ID] = true
	}

	subgraphIDs := make(map[string]bool)
	for _, s := range d.Subgraphs {
		if s.ID == "" {
			errors = append(errors, ValidationError{Field: "subgraph.ID", Message: "subgraph ID cannot be empty"})
			continue
		}
		if subgraphIDs[s.ID] {
			errors = append(errors, ValidationError{Field: "subgraph.ID", Message: fmt.Sprintf("duplicate subgraph ID: %s", s.ID)})
		}
		subgraphIDs[s.ID] = true
	}

	for _, edge := range d.Edges {
		if edge.Source == "" {
			errors = append(errors, ValidationError{Field: "edge.Source", Message: fmt.Sprintf("edge %s has empty source", edge.ID)})
		} else if !nodeIDs[edge.Source] {
			errors = append(errors, ValidationError{Field: "edge.Source", Message: fmt.Sprintf("edge %s references non-existent source node: %s", edge.ID, edge.Source)})
		}

		if edge.Target == "" {
			errors = append(errors, ValidationError{Field: "edge.Target", Message: fmt.Sprintf("edge %s has empty target", edge.ID)})
		} else if !nodeIDs[edge.Target] {
			errors = append(errors, ValidationError{Field: "edge.Target", Message: fmt.Sprintf("edge %s references non-existent target node: %s", edge.ID, edge.Target)})
		}
	}

	// Container references resolve to subgraphs, not nodes.
	for _, node := range d.Nodes {
		if node.Container != "" && !subgraphIDs[node.Container] {
			errors = append(errors, ValidationError{Field: "node.Container", Message: fmt.Sprintf("node %s references non-existent container: %s", node.ID, node.Container)})
		}
	}

	errors = append(errors, d.validateSubgraphs(subgraphIDs, nodeIDs)...)

	for _, node := range d.Nodes {
		errors = append(errors, validateStyle(node.Style, fmt.Sprintf("node %s", node.ID))...)
	}
	for _, edge := range d.Edges {
		errors = append(errors, validateStyle(edge.Style, fmt.Sprintf("edge %s", edge.ID))...)
	}

	return errors
}

// validateSubgraphs checks parent references, child index bounds, and
// that the containment relation is acyclic (spec.md §3's Subgraph
// invariant: "forms a tree ... containment is acyclic").
func (d *Diagram) validateSubgraphs(subgraphIDs, nodeIDs map[string]bool) []error {
	var errors []error

	for _, s := range d.Subgraphs {
		if s.Parent != "" && !subgraphIDs[s.Parent] {
			errors = append(errors, ValidationError{Field: "subgraph.Parent", Message: fmt.Sprintf("subgraph %s references non-existent parent: %s", s.ID, s.Parent)})
		}
		for _, ci := range s.ChildNodes {
			if ci < 0 || ci >= len(d.Nodes) {
				errors = append(errors, ValidationError{Field: "subgraph.ChildNodes", Message: fmt.Sprintf("subgraph %s has out-of-range child node index %d", s.ID, ci)})
			}
		}
		for _, ci := range s.ChildSubgraphs {
			if ci < 0 || ci >= len(d.Subgraphs) {
				errors = append(errors, ValidationError{Field: "subgraph.ChildSubgraphs", Message: fmt.Sprintf("subgraph %s has out-of-range child subgraph index %d", s.ID, ci)})
			}
		}
	}

	// Cycle check: walk each subgraph's parent chain; a cycle means we
	// revisit a node before reaching the root.
	for _, s := range d.Subgraphs {
		visited := map[string]bool{s.ID: true}
		cur := s
		for cur.Parent != "" {
			parent := d.GetSubgraph(cur.Parent)
			if parent == nil {
				break // already reported above
			}
			if visited[parent.ID] {
				errors = append(errors, ValidationError{Field: "subgraph.Parent", Message: fmt.Sprintf("subgraph containment cycle involving %s", s.ID)})
				break
			}
			visited[parent.ID] = true
			cur = parent
		}
	}

	return errors
}

// validateStyle checks style values are within valid ranges.
func validateStyle(style Style, context string) []error {
	var errors []error

	if style.Opacity < 0.0 || style.Opacity > 1.0 {
		if style.Opacity != 0 { // 0 means unset
			errors = append(errors, ValidationError{Field: context + ".style.Opacity", Message: fmt.Sprintf("opacity must be between 0.0 and 1.0, got %f", style.Opacity)})
		}
	}
	if style.FontSize < 0 {
		errors = append(errors, ValidationError{Field: context + ".style.FontSize", Message: "font size cannot be negative"})
	}
	if style.StrokeWidth < 0 {
		errors = append(errors, ValidationError{Field: context + ".style.StrokeWidth", Message: "stroke width cannot be negative"})
	}

	return errors
}
