package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize converts source text into a token sequence terminated by a
// [TokenEOF] token.
func Tokenize(ctx context.Context, source string, opts ...Option) ([]Token, error) {
	o := makeOptions(opts...)

	lx := newLexer(source)

	tokens, err := lx.tokenize()
	if err != nil {
		o.logger.TraceContext(ctx, "tokenize failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "tokenize complete",
		slog.Int("source_bytes", len(source)),
		slog.Int("token_count", len(tokens)),
	)

	return tokens, nil
}

// lexer holds the scanner state.
type lexer struct {
	input  []byte
	pos    int
	line   int
	col    int
	tokens []Token
}

func newLexer(source string) *lexer {
	return &lexer{
		input: []byte(source),
		line:  1,
		col:   1,
	}
}

func (lx *lexer) tokenize() ([]Token, error) {
	for {
		lx.skipWhitespaceAndComments()

		if lx.eof() {
			lx.tokens = append(lx.tokens, Token{Kind: TokenEOF, Pos: lx.position()})

			return lx.tokens, nil
		}

		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		lx.tokens = append(lx.tokens, tok)
	}
}

// next scans one token starting at the current (non-space) rune.
func (lx *lexer) next() (Token, error) {
	pos := lx.position()
	ch := lx.peek()

	switch {
	case ch == '"' || ch == '\'':
		return lx.scanString(pos, ch)

	case isDigit(ch):
		return lx.scanNumber(pos), nil

	case isIdentifierStart(ch):
		return lx.scanWord(pos), nil

	case isOperatorChar(ch):
		return lx.scanOperator(pos)

	case isDelimiter(ch):
		lx.advance()

		return Token{Kind: TokenDelimiter, Text: string(ch), Pos: pos}, nil
	}

	return Token{}, ErrUnexpectedChar.At(pos).Errorf("%q", ch)
}

func (lx *lexer) scanString(pos Position, quote rune) (Token, error) {
	lx.advance() // skip opening quote

	var b strings.Builder

	for !lx.eof() {
		ch := lx.peek()

		if ch == quote {
			lx.advance() // skip closing quote

			return Token{Kind: TokenString, Text: b.String(), Pos: pos}, nil
		}

		if ch == '\\' {
			lx.advance() // skip backslash

			if lx.eof() {
				break
			}

			b.WriteRune(unescape(lx.peek()))
			lx.advance()

			continue
		}

		b.WriteRune(ch)
		lx.advance()
	}

	return Token{}, ErrUnterminatedString.At(pos)
}

// unescape maps the character following a backslash to its value. Unknown
// escapes yield the character itself.
func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}

func (lx *lexer) scanNumber(pos Position) Token {
	start := lx.pos

	for !lx.eof() && isDigit(lx.peek()) {
		lx.advance()
	}

	// A single fractional part, only when a digit follows the dot.
	if lx.peek() == '.' {
		if r, _ := utf8.DecodeRune(lx.input[min(lx.pos+1, len(lx.input)):]); isDigit(r) {
			lx.advance()

			for !lx.eof() && isDigit(lx.peek()) {
				lx.advance()
			}
		}
	}

	return Token{Kind: TokenNumber, Text: string(lx.input[start:lx.pos]), Pos: pos}
}

func (lx *lexer) scanWord(pos Position) Token {
	start := lx.pos

	for !lx.eof() && isIdentifierContinue(lx.peek()) {
		lx.advance()
	}

	word := string(lx.input[start:lx.pos])

	kind := TokenIdentifier
	if IsKeyword(word) {
		kind = TokenKeyword
	}

	return Token{Kind: kind, Text: word, Pos: pos}
}

func (lx *lexer) scanOperator(pos Position) (Token, error) {
	if two := lx.peekN(2); len(two) == 2 {
		if _, ok := twoCharOperators[two]; ok {
			lx.advance()
			lx.advance()

			return Token{Kind: TokenOperator, Text: two, Pos: pos}, nil
		}
	}

	ch := lx.peek()
	if ch == '&' || ch == '|' {
		return Token{}, ErrUnexpectedChar.At(pos).Errorf("%q", ch)
	}

	lx.advance()

	return Token{Kind: TokenOperator, Text: string(ch), Pos: pos}, nil
}

// Helper methods

func (lx *lexer) peek() rune {
	if lx.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(lx.input[lx.pos:])

	return r
}

func (lx *lexer) peekN(n int) string {
	if lx.pos+n > len(lx.input) {
		return string(lx.input[lx.pos:])
	}

	return string(lx.input[lx.pos : lx.pos+n])
}

func (lx *lexer) advance() {
	if lx.eof() {
		return
	}

	r, size := utf8.DecodeRune(lx.input[lx.pos:])

	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.input)
}

func (lx *lexer) position() Position {
	return Position{
		Offset: lx.pos,
		Line:   lx.line,
		Column: lx.col,
	}
}

func (lx *lexer) skipWhitespaceAndComments() {
	for {
		for !lx.eof() && unicode.IsSpace(lx.peek()) {
			lx.advance()
		}

		switch lx.peekN(2) {
		case "//":
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}

		case "/*":
			lx.advance() // skip '/'
			lx.advance() // skip '*'

			for !lx.eof() && lx.peekN(2) != "*/" {
				lx.advance()
			}

			lx.advance() // skip '*'
			lx.advance() // skip '/'

		default:
			return
		}
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
