package parser

import "strings"

// lexer scans flowchart source into a flat token stream. It has no
// knowledge of grammar beyond arrow and bracket recognition.
type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newLexer(source string) *lexer {
	return &lexer{src: []rune(source), pos: 0, line: 1, col: 1}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipSpaceAndComments consumes horizontal whitespace and `%%` line
// comments, but stops at a newline: callers that care about statement
// boundaries need to see it as a token.
func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
		case r == '%' && l.peekAt(1) == '%':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIDStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isIDRune(r rune) bool {
	return isIDStart(r) || r == '-' || r == '.'
}

// next returns the next token, or a Token{Type: EOF} at end of input.
func (l *lexer) next() Token {
	l.skipSpaceAndComments()
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: line, Col: col}
	}

	r := l.peek()
	switch {
	case r == '\n':
		for l.pos < len(l.src) && (l.peek() == '\n' || l.peek() == '\r' || l.peek() == ' ' || l.peek() == '\t') {
			l.advance()
		}
		return Token{Type: Newline, Literal: "\\n", Line: line, Col: col}
	case r == '[':
		l.advance()
		return Token{Type: LeftBracket, Literal: "[", Line: line, Col: col}
	case r == ']':
		l.advance()
		return Token{Type: RightBracket, Literal: "]", Line: line, Col: col}
	case r == '{':
		l.advance()
		return Token{Type: LeftBrace, Literal: "{", Line: line, Col: col}
	case r == '}':
		l.advance()
		return Token{Type: RightBrace, Literal: "}", Line: line, Col: col}
	case r == '|':
		l.advance()
		return Token{Type: Pipe, Literal: "|", Line: line, Col: col}
	case r == '(':
		if l.peekAt(1) == '(' {
			l.advance()
			l.advance()
			return Token{Type: DoubleLParen, Literal: "((", Line: line, Col: col}
		}
		l.advance()
		return Token{Type: LeftParen, Literal: "(", Line: line, Col: col}
	case r == ')':
		if l.peekAt(1) == ')' {
			l.advance()
			l.advance()
			return Token{Type: DoubleRParen, Literal: "))", Line: line, Col: col}
		}
		l.advance()
		return Token{Type: RightParen, Literal: ")", Line: line, Col: col}
	case r == '"':
		return l.lexString(line, col)
	case r == '-' || r == '=' || r == '.':
		if t, ok := l.lexArrow(line, col); ok {
			return t
		}
		l.advance()
		return Token{Type: ERROR, Literal: string(r), Line: line, Col: col}
	case isIDStart(r):
		return l.lexIdentifier(line, col)
	default:
		l.advance()
		return Token{Type: ERROR, Literal: string(r), Line: line, Col: col}
	}
}

func (l *lexer) lexString(line, col int) Token {
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) && l.peek() != '"' {
		sb.WriteRune(l.advance())
	}
	if l.pos < len(l.src) {
		l.advance() // closing quote
	}
	return Token{Type: String, Literal: sb.String(), Line: line, Col: col}
}

func (l *lexer) lexIdentifier(line, col int) Token {
	var sb strings.Builder
	for l.pos < len(l.src) && isIDRune(l.peek()) {
		sb.WriteRune(l.advance())
	}
	lit := sb.String()
	return Token{Type: lookupKeyword(lit), Literal: lit, Line: line, Col: col}
}

// lexArrow recognizes the four edge markers: ---, -->, -.->, ==>.
// Recognition is greedy left-to-right over the literal marker text;
// anything not matching one of the four falls through to ERROR.
func (l *lexer) lexArrow(line, col int) (Token, bool) {
	rest := string(l.src[l.pos:])
	for _, spec := range arrowSpecs {
		if strings.HasPrefix(rest, spec.text) {
			for range spec.text {
				l.advance()
			}
			return Token{Type: spec.kind, Literal: spec.text, Line: line, Col: col}, true
		}
	}
	return Token{}, false
}

type arrowSpec struct {
	text string
	kind Kind
}

// Longest markers first so e.g. "-.->" is not mistaken for a partial "---".
var arrowSpecs = []arrowSpec{
	{"-.->", ArrowDotted},
	{"-->", ArrowSolid},
	{"==>", ArrowThick},
	{"---", LineSolid},
}

// readRawUntil consumes runes up to and including the next occurrence
// of close, returning the trimmed content before it. Node and edge
// labels can contain spaces and punctuation the tokenizer otherwise
// splits on, so the parser drops to this raw mode right after
// consuming a label's opening delimiter.
func (l *lexer) readRawUntil(close string) string {
	var sb strings.Builder
	closeRunes := []rune(close)
	for l.pos < len(l.src) {
		if l.matchesAt(closeRunes) {
			for range closeRunes {
				l.advance()
			}
			return strings.TrimSpace(sb.String())
		}
		sb.WriteRune(l.advance())
	}
	return strings.TrimSpace(sb.String())
}

func (l *lexer) matchesAt(want []rune) bool {
	if l.pos+len(want) > len(l.src) {
		return false
	}
	for i, r := range want {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

// readRawLine consumes runes up to (not including) the next newline or
// EOF, returning the trimmed content. Used for subgraph titles, which
// are free text rather than a bracketed label.
func (l *lexer) readRawLine() string {
	var sb strings.Builder
	for l.pos < len(l.src) && l.peek() != '\n' {
		sb.WriteRune(l.advance())
	}
	return strings.TrimSpace(sb.String())
}
