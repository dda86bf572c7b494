// Package parser implements a small tokenizer and recursive-descent
// parser for a Mermaid-flowchart-like diagram source subset, producing
// a typed ir.Diagram ready for layout.Run.
package parser

import (
	"fmt"

	"github.com/mark/flowc/pkg/ir"
)

// Parser is the interface for diagram front-ends. A DSL-specific
// implementation converts source text to the typed IR the layout core
// consumes.
type Parser interface {
	Parse(source string) (*ir.Diagram, error)
}

// FlowchartParser parses the flowchart source subset described in
// SPEC_FULL.md §6.1.
type FlowchartParser struct{}

// NewFlowchartParser returns a parser with no configurable options;
// the grammar is fixed.
func NewFlowchartParser() *FlowchartParser {
	return &FlowchartParser{}
}

// ParseError reports a lexical or grammatical problem at a specific
// source position, in the teacher's plain sentinel-error style.
type ParseError struct {
	Line, Col int
	Message   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: line %d:%d: %s", e.Line, e.Col, e.Message)
}

type subgraphFrame struct {
	index int // dense index into diagram.Subgraphs
}

type parser struct {
	lex *lexer
	tok Token // current lookahead
	d   *ir.Diagram

	nodeIndex map[string]int // node id -> index into d.Nodes
	stack     []subgraphFrame
}

// Parse tokenizes and parses source, returning a populated but
// unfinalized ir.Diagram; layout.Run calls Diagram.Finalize itself.
func (p *FlowchartParser) Parse(source string) (*ir.Diagram, error) {
	ps := &parser{
		lex:       newLexer(source),
		d:         &ir.Diagram{ID: "diagram", Metadata: map[string]string{}},
		nodeIndex: map[string]int{},
	}
	ps.d.Config = ir.DefaultLayoutConfig()
	ps.advance()
	if err := ps.parseDiagram(); err != nil {
		return nil, err
	}
	return ps.d, nil
}

// ParseFile parses source read from a named file; filename is only
// used for error messages in collaborators that wrap this call, the
// grammar itself has no file-relative semantics.
func (p *FlowchartParser) ParseFile(source, filename string) (*ir.Diagram, error) {
	d, err := p.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return d, nil
}

func (ps *parser) advance() { ps.tok = ps.lex.next() }

func (ps *parser) errf(format string, args ...interface{}) error {
	return &ParseError{Line: ps.tok.Line, Col: ps.tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (ps *parser) skipNewlines() {
	for ps.tok.Type == Newline {
		ps.advance()
	}
}

func (ps *parser) parseDiagram() error {
	ps.skipNewlines()
	if ps.tok.Type == KwFlowchart || ps.tok.Type == KwGraph {
		ps.advance()
		if ps.tok.Type == ID {
			ps.d.Config.Direction = parseFlowDirection(ps.tok.Literal)
			ps.advance()
		}
		if ps.tok.Type != Newline && ps.tok.Type != EOF {
			return ps.errf("expected newline after diagram header, got %q", ps.tok.String())
		}
		ps.skipNewlines()
	}

	for ps.tok.Type != EOF {
		if err := ps.parseStatement(); err != nil {
			return err
		}
		ps.skipNewlines()
	}
	return nil
}

func (ps *parser) currentContainer() string {
	if len(ps.stack) == 0 {
		return ""
	}
	top := ps.stack[len(ps.stack)-1]
	return ps.d.Subgraphs[top.index].ID
}

func (ps *parser) parseStatement() error {
	switch ps.tok.Type {
	case KwSubgraph:
		return ps.parseSubgraph()
	case KwEnd:
		return ps.errf("unexpected 'end' with no matching 'subgraph'")
	case KwDirection:
		return ps.parseDirectionLine()
	case ID:
		return ps.parseEdgeOrNodeStatement()
	default:
		return ps.errf("unexpected token %q", ps.tok.String())
	}
}

func (ps *parser) parseDirectionLine() error {
	ps.advance() // 'direction'
	if ps.tok.Type != ID {
		return ps.errf("expected a direction after 'direction', got %q", ps.tok.String())
	}
	dir := parseFlowDirection(ps.tok.Literal)
	ps.advance()
	if len(ps.stack) == 0 {
		ps.d.Config.Direction = dir
	} else {
		top := ps.stack[len(ps.stack)-1]
		ps.d.Subgraphs[top.index].Direction = dir
	}
	return nil
}

func (ps *parser) parseSubgraph() error {
	// ps.tok is KwSubgraph; the lexer cursor already sits right after
	// the keyword, so the rest of the line can be read raw.
	title := ps.lex.readRawLine()
	id, label := title, title
	if id == "" {
		id = fmt.Sprintf("subgraph%d", len(ps.d.Subgraphs))
		label = ""
	}
	ps.advance() // prime lookahead past the raw line we just consumed

	sg := &ir.Subgraph{ID: id, Label: label, Parent: ps.currentContainer()}
	idx := len(ps.d.Subgraphs)
	ps.d.Subgraphs = append(ps.d.Subgraphs, sg)
	if len(ps.stack) > 0 {
		parent := ps.d.Subgraphs[ps.stack[len(ps.stack)-1].index]
		parent.ChildSubgraphs = append(parent.ChildSubgraphs, idx)
	}

	ps.stack = append(ps.stack, subgraphFrame{index: idx})
	ps.skipNewlines()
	for ps.tok.Type != KwEnd {
		if ps.tok.Type == EOF {
			return ps.errf("unterminated subgraph %q: missing 'end'", id)
		}
		if err := ps.parseStatement(); err != nil {
			return err
		}
		ps.skipNewlines()
	}
	ps.advance() // 'end'
	ps.stack = ps.stack[:len(ps.stack)-1]
	return nil
}

// parseEdgeOrNodeStatement parses one line that is either a bare node
// declaration (`A[Label]`) or a chain of one or more edges
// (`A --> B --> C`, each hop independently labeled).
func (ps *parser) parseEdgeOrNodeStatement() error {
	first, err := ps.parseNodeRef()
	if err != nil {
		return err
	}

	if !ps.tok.Type.IsArrow() {
		return nil // bare node declaration/update, already recorded
	}

	left := first
	for ps.tok.Type.IsArrow() {
		marker := ps.tok
		ps.advance()

		label := ""
		if ps.tok.Type == Pipe {
			// The lexer cursor already sits right after the opening
			// '|'; read the label raw up to the closing one.
			label = ps.lex.readRawUntil("|")
			ps.advance() // reprime lookahead after the raw scan
		}

		right, err := ps.parseNodeRef()
		if err != nil {
			return err
		}

		ps.addEdge(left, right, marker, label)
		left = right
	}
	return nil
}

func (ps *parser) addEdge(sourceIdx, targetIdx int, marker Token, label string) {
	direction, lineStyle := edgeStyleFor(marker.Type)
	e := &ir.Edge{
		ID:        fmt.Sprintf("e%d", len(ps.d.Edges)),
		Label:     label,
		Source:    ps.d.Nodes[sourceIdx].ID,
		Target:    ps.d.Nodes[targetIdx].ID,
		Direction: direction,
		LineStyle: lineStyle,
	}
	ps.d.Edges = append(ps.d.Edges, e)
}

// parseNodeRef parses `id`, optionally followed by a shape-hinted
// label, and returns the node's index into d.Nodes. A second
// occurrence of an id with a label refines the node declared by an
// earlier bare reference (spec.md §6.1 node declaration semantics).
func (ps *parser) parseNodeRef() (int, error) {
	if ps.tok.Type != ID {
		return 0, ps.errf("expected a node id, got %q", ps.tok.String())
	}
	id := ps.tok.Literal
	ps.advance()

	label, shape, hasLabel := ps.parseShapeHint()

	idx, exists := ps.nodeIndex[id]
	if !exists {
		n := &ir.Node{ID: id, Label: id, Shape: ir.ShapeRectangle, Container: ps.currentContainer()}
		idx = len(ps.d.Nodes)
		ps.d.Nodes = append(ps.d.Nodes, n)
		ps.nodeIndex[id] = idx
		if len(ps.stack) > 0 {
			parent := ps.d.Subgraphs[ps.stack[len(ps.stack)-1].index]
			parent.ChildNodes = append(parent.ChildNodes, idx)
		}
	}
	if hasLabel {
		ps.d.Nodes[idx].Label = label
		ps.d.Nodes[idx].Shape = shape
	}
	return idx, nil
}

// parseShapeHint recognizes `[label]`, `(label)`, `((label))`, and
// `{label}` immediately after a node id, mapping the bracket pair to a
// ShapeType (spec.md §6.1). It assumes ps.tok is already one of these
// opening delimiters, with the lexer cursor sitting right after it, so
// each case reads the label raw rather than re-tokenizing it.
func (ps *parser) parseShapeHint() (label string, shape ir.ShapeType, ok bool) {
	switch ps.tok.Type {
	case LeftBracket:
		label = ps.lex.readRawUntil("]")
		ps.advance()
		return label, ir.ShapeRectangle, true
	case DoubleLParen:
		label = ps.lex.readRawUntil("))")
		ps.advance()
		return label, ir.ShapeCircle, true
	case LeftParen:
		label = ps.lex.readRawUntil(")")
		ps.advance()
		return label, ir.ShapeRound, true
	case LeftBrace:
		label = ps.lex.readRawUntil("}")
		ps.advance()
		return label, ir.ShapeDiamond, true
	default:
		return "", "", false
	}
}

func (k Kind) IsArrow() bool {
	switch k {
	case ArrowSolid, ArrowDotted, ArrowThick, LineSolid:
		return true
	default:
		return false
	}
}

func edgeStyleFor(k Kind) (ir.Direction, ir.EdgeLineStyle) {
	switch k {
	case ArrowSolid:
		return ir.DirectionForward, ir.EdgeLineSolid
	case ArrowDotted:
		return ir.DirectionForward, ir.EdgeLineDotted
	case ArrowThick:
		return ir.DirectionForward, ir.EdgeLineThick
	case LineSolid:
		return ir.DirectionNone, ir.EdgeLineSolid
	default:
		return ir.DirectionNone, ir.EdgeLineSolid
	}
}

func parseFlowDirection(s string) ir.FlowDirection {
	switch s {
	case "TD", "TB":
		return ir.DirectionTD
	case "BT":
		return ir.DirectionBT
	case "LR":
		return ir.DirectionLR
	case "RL":
		return ir.DirectionRL
	default:
		return ir.DirectionTD
	}
}
