package layout

import "fmt"

// Kind classifies a fatal layout error.
type Kind string

const (
	// InvalidInput means the graph itself is malformed (dangling edge,
	// cyclic subgraph tree, etc.) — the parser should have caught most
	// of these, but the core re-validates rather than trust callers.
	InvalidInput Kind = "invalid_input"

	// Unsupported means the graph is well-formed but asks for a
	// shape/direction combination the core cannot lay out.
	Unsupported Kind = "unsupported"

	// InvariantViolation means a hard geometric invariant (spec.md §3)
	// could not be re-established even after the normalizer's pass.
	InvariantViolation Kind = "invariant_violation"
)

// Error is the core's single error type. Kind lets callers distinguish
// a caller mistake (InvalidInput) from an engine limitation
// (Unsupported) from a bug (InvariantViolation) without string
// matching.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout: %s: %s: %s: %v", e.Stage, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("layout: %s: %s: %s", e.Stage, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, stage, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, stage string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...), Err: err}
}
