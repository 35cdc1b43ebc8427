package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/mial/lang"
)

func TestFmt_Native(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		indent int
		want   string
	}{
		{"declaration", "let   x=1", 2, "let x = 1;\n"},
		{"function", "function f(){return 1}", 2, "function f() {\n  return 1;\n}\n"},
		{"one line", "function f(){return 1}", 0, "function f() { return 1; }\n"},
		{"grouping", "(1+2)*3", 2, "(1 + 2) * 3;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out, _ := testStreams(t.Context(), tt.input)

			f := &Native{ProgramArg: ProgramArg{Program: stdinSource}, Indent: tt.indent}
			if err := f.Run(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}

func TestFmt_NativeIdempotent(t *testing.T) {
	t.Parallel()

	source := "let x: prob(0.7) = 2 ± 0.5;\nmeta confidence(x) > 0.5 ? { conclude(x); }\n"

	format := func(src string) string {
		ctx, out, _ := testStreams(t.Context(), src)

		if err := (&Native{ProgramArg: ProgramArg{Program: stdinSource}, Indent: 2}).Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		return out.String()
	}

	once := format(source)
	if twice := format(once); once != twice {
		t.Errorf("expected formatting to be stable:\n%s\n---\n%s", once, twice)
	}
}

func TestFmt_ParseError(t *testing.T) {
	t.Parallel()

	ctx, _, _ := testStreams(t.Context(), "let = ;")

	err := (&Native{ProgramArg: ProgramArg{Program: stdinSource}}).Run(ctx)

	var le *lang.Error
	if !errors.As(err, &le) || le.Kind() != lang.KindParse {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestFmt_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "prog.mial"), "symbol s = a+1")
	ctx, out, _ := testStreams(t.Context(), "")

	if err := (&AST{ProgramArg: ProgramArg{Program: path}}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Program", "SymbolDefinition"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected tree containing %q, got:\n%s", want, out.String())
		}
	}
}

func TestFmt_JSON(t *testing.T) {
	t.Parallel()

	ctx, out, _ := testStreams(t.Context(), "let x = 1;")

	if err := (&JSON{ProgramArg: ProgramArg{Program: stdinSource}, Indent: 2}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}

	if got["type"] != "Program" {
		t.Errorf("expected type Program, got %v", got["type"])
	}
}

func TestFmt_YAML(t *testing.T) {
	t.Parallel()

	ctx, out, _ := testStreams(t.Context(), "let x = 1;")

	if err := (&YAML{ProgramArg: ProgramArg{Program: stdinSource}, Indent: 2}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"type: Program", "type: VariableDeclaration", "name: x"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected YAML containing %q, got:\n%s", want, out.String())
		}
	}
}
