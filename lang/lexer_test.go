package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "declaration",
			input: `let x = 10;`,
			want: []Token{
				{Kind: TokenKeyword, Text: "let"},
				{Kind: TokenIdentifier, Text: "x"},
				{Kind: TokenOperator, Text: "="},
				{Kind: TokenNumber, Text: "10"},
				{Kind: TokenDelimiter, Text: ";"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "two-character operators win",
			input: `a == b != c <= d >= e && f || g -> h`,
			want: []Token{
				{Kind: TokenIdentifier, Text: "a"},
				{Kind: TokenOperator, Text: "=="},
				{Kind: TokenIdentifier, Text: "b"},
				{Kind: TokenOperator, Text: "!="},
				{Kind: TokenIdentifier, Text: "c"},
				{Kind: TokenOperator, Text: "<="},
				{Kind: TokenIdentifier, Text: "d"},
				{Kind: TokenOperator, Text: ">="},
				{Kind: TokenIdentifier, Text: "e"},
				{Kind: TokenOperator, Text: "&&"},
				{Kind: TokenIdentifier, Text: "f"},
				{Kind: TokenOperator, Text: "||"},
				{Kind: TokenIdentifier, Text: "g"},
				{Kind: TokenOperator, Text: "->"},
				{Kind: TokenIdentifier, Text: "h"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "range operator",
			input: `5 ± 0.5`,
			want: []Token{
				{Kind: TokenNumber, Text: "5"},
				{Kind: TokenOperator, Text: "±"},
				{Kind: TokenNumber, Text: "0.5"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "dot without digit ends number",
			input: `1.length`,
			want: []Token{
				{Kind: TokenNumber, Text: "1"},
				{Kind: TokenDelimiter, Text: "."},
				{Kind: TokenIdentifier, Text: "length"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "contextual words are identifiers",
			input: `prob confident`,
			want: []Token{
				{Kind: TokenIdentifier, Text: "prob"},
				{Kind: TokenIdentifier, Text: "confident"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "comments skipped",
			input: "// line\nx /* block\nspans */ y",
			want: []Token{
				{Kind: TokenIdentifier, Text: "x"},
				{Kind: TokenIdentifier, Text: "y"},
				{Kind: TokenEOF},
			},
		},
		{
			name:  "unterminated block comment consumes input",
			input: "x /* never closed",
			want: []Token{
				{Kind: TokenIdentifier, Text: "x"},
				{Kind: TokenEOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Tokenize(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.want), len(got), got)
			}

			for i, want := range tt.want {
				if got[i].Kind != want.Kind || got[i].Text != want.Text {
					t.Errorf("token %d: expected %v, got %v", i, want, got[i])
				}
			}
		})
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"a\rb"`, "a\rb"},
		{`"a\\b"`, `a\b`},
		{`"say \"hi\""`, `say "hi"`},
		{`'it\'s'`, `it's`},
		{`"\q"`, "q"},
		{"\"multi\nline\"", "multi\nline"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := Tokenize(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got[0].Kind != TokenString {
				t.Fatalf("expected string token, got %v", got[0])
			}

			if got[0].Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got[0].Text)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	src := "let a = 1;\n/* one\ntwo */ let b = \"x\ny\";\nb"

	got, err := Tokenize(t.Context(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		text         string
		line, column int
	}{
		{"let", 1, 1},
		{"a", 1, 5},
		{";", 1, 10},
		{"b", 3, 12},
		{"x\ny", 3, 16},
	}

	for _, tt := range tests {
		found := false

		for _, tok := range got {
			if tok.Text == tt.text {
				found = true

				if tok.Pos.Line != tt.line || tok.Pos.Column != tt.column {
					t.Errorf("%q: expected %d:%d, got %d:%d",
						tt.text, tt.line, tt.column, tok.Pos.Line, tok.Pos.Column)
				}

				break
			}
		}

		if !found {
			t.Errorf("token %q not found", tt.text)
		}
	}

	last := got[len(got)-2]
	if last.Text != "b" || last.Pos.Line != 5 || last.Pos.Column != 1 {
		t.Errorf("expected final b at 5:1, got %v at %v", last, last.Pos)
	}
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		target error
		line   int
		column int
	}{
		{"unexpected character", "let x = @;", ErrUnexpectedChar, 1, 9},
		{"lone ampersand", "a & b", ErrUnexpectedChar, 1, 3},
		{"lone pipe", "a | b", ErrUnexpectedChar, 1, 3},
		{"unterminated string", "let s = \"abc", ErrUnterminatedString, 1, 9},
		{"unterminated escape", `"abc\`, ErrUnterminatedString, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize(t.Context(), tt.input)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if le.Kind() != KindLex {
				t.Errorf("expected kind %v, got %v", KindLex, le.Kind())
			}

			if pos := le.Position(); pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("expected %d:%d, got %d:%d", tt.line, tt.column, pos.Line, pos.Column)
			}

			if !strings.HasPrefix(err.Error(), "lex error at line") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	src := strings.Repeat("let x: prob(0.8) = 10 ± 2; symbol s = x * 2;\n", 100)

	for b.Loop() {
		if _, err := Tokenize(b.Context(), src); err != nil {
			b.Fatal(err)
		}
	}
}
