package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Derived(t *testing.T) {
	t.Parallel()

	pos := Position{Offset: 4, Line: 1, Column: 5}
	err := ErrUndefinedVariable.Errorf("%s", "x").At(pos).With(slog.String("name", "x"))

	if !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected derived error to match its sentinel")
	}

	if errors.Is(err, ErrNotCallable) {
		t.Errorf("expected no match against an unrelated sentinel")
	}

	want := "runtime error at line 1, column 5: undefined variable: x"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	if err.Message() != "undefined variable: x" {
		t.Errorf("expected message without prefix, got %q", err.Message())
	}

	if ErrUndefinedVariable.Position().IsValid() {
		t.Error("expected sentinel left unlocated")
	}
}

func TestError_WrapForeign(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := fmt.Errorf("context: %w", ErrReadInput.Wrap(cause))

	if !errors.Is(err, cause) || !errors.Is(err, ErrReadInput) {
		t.Errorf("expected both cause and sentinel reachable, got %v", err)
	}

	if le := WrapError(err); !errors.Is(le, ErrReadInput) {
		t.Errorf("expected WrapError to find the language error, got %v", le)
	}

	if le := WrapError(cause); le.Kind() != KindUnknown || le.Unwrap() != cause {
		t.Errorf("expected plain wrapper, got %v", le)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	src := "let a = 1;\nlet b = ;\n"

	_, err := Parse(t.Context(), src)
	if err == nil {
		t.Fatal("expected error")
	}

	got := FormatError(err, src)
	lines := strings.Split(got, "\n")

	if len(lines) < 3 {
		t.Fatalf("expected message, source and caret lines, got %q", got)
	}

	if lines[1] != "  2 | let b = ;" {
		t.Errorf("expected source line, got %q", lines[1])
	}

	if want := strings.Repeat(" ", 6+8) + "^"; lines[2] != want {
		t.Errorf("expected caret %q, got %q", want, lines[2])
	}

	plain := errors.New("plain")
	if FormatError(plain, src) != "plain" {
		t.Errorf("expected unlocated error unchanged, got %q", FormatError(plain, src))
	}
}
