package lang

import (
	"log/slog"
	"strconv"
)

// TokenKind classifies a [Token].
type TokenKind int

const (
	TokenEOF        TokenKind = iota // end of input
	TokenKeyword                     // keyword
	TokenIdentifier                  // identifier
	TokenNumber                      // number
	TokenString                      // string
	TokenOperator                    // operator
	TokenDelimiter                   // delimiter
)

// String returns the human-readable token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenDelimiter:
		return "delimiter"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

// Position is a location in source text. Line and Column are 1-based,
// Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether the position refers to a source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// Token is a single lexical unit. Text holds the decoded value for strings
// and the source spelling for everything else.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Is reports whether t has the given kind and text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// String describes the token for error messages.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.String()
	case TokenString:
		return "string " + strconv.Quote(t.Text)
	default:
		return t.Kind.String() + " " + strconv.Quote(t.Text)
	}
}

// Keywords is the fixed keyword set.
var Keywords = []string{
	"let", "const", "function", "learn", "meta", "symbol", "knowledge_graph",
	"if", "else", "while", "for", "return",
	"true", "false", "null", "undefined",
}

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keywords))
	for _, k := range Keywords {
		m[k] = struct{}{}
	}

	return m
}()

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, ok := keywordSet[s]

	return ok
}

// RangeOperator is the plus-minus operator that builds ranged values.
const RangeOperator = "±"

// twoCharOperators are matched before single-character operators.
var twoCharOperators = map[string]struct{}{
	"==": {}, "!=": {}, "<=": {}, ">=": {}, "&&": {}, "||": {}, "->": {},
}

func isOperatorChar(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '?', '±', '&', '|':
		return true
	}

	return false
}

func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', '{', '}', '[', ']', ';', ',', '.', ':':
		return true
	}

	return false
}
