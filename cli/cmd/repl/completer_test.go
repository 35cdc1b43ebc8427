package repl

import (
	"io"
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/mial/lang"
)

func newTestSession() *Session {
	return NewSession(func(stdout, stderr io.Writer) *lang.Interpreter {
		return lang.NewInterpreter(
			lang.WithOutput(stdout, stderr),
			lang.WithOracle(lang.NewRandomOracle(1)),
		)
	})
}

func TestWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"member", "Math.sq", 7, "sq", 5, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"after_plus_minus", "5 ± ra", 7, "ra", 5, 7},
		{"after_comparison", "a > fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "seek_more", 9, "seek_more", 0, 9},
		{"empty_after_dot", "console.", 8, "", 8, 8},
		{"cursor_past_end", "abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "foo + bar.baz.", 14, "bar.baz"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "x = a.b.", 8, "a.b"},
		{"partial_word", "x = Math.", 9, "Math"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	if _, _, err := s.Eval(t.Context(), "let answer = 42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top := candidates(s, "")
	for _, want := range []string{"answer", "Math", "confidence", "let", "knowledge_graph"} {
		if !slices.Contains(top, want) {
			t.Errorf("expected top-level candidate %q in %v", want, top)
		}
	}

	if !slices.IsSorted(top) {
		t.Errorf("expected sorted candidates, got %v", top)
	}

	members := candidates(s, "Math")
	for _, want := range []string{"sqrt", "pow", "PI"} {
		if !slices.Contains(members, want) {
			t.Errorf("expected Math member %q in %v", want, members)
		}
	}

	if got := candidates(s, "answer"); got != nil {
		t.Errorf("expected no members of a number, got %v", got)
	}

	if got := candidates(s, "missing"); got != nil {
		t.Errorf("expected no members of an undefined name, got %v", got)
	}

	if got := candidates(nil, ""); got != nil {
		t.Errorf("expected no candidates without a session, got %v", got)
	}
}

func TestCallable(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	if _, _, err := s.Eval(t.Context(), "function twice(x) { return x * 2 } let n = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"twice", true},
		{"Math.sqrt", true},
		{"validate", true},
		{"Math.PI", false},
		{"n", false},
		{"nope", false},
	}

	for _, tt := range tests {
		if got := callable(s, tt.path); got != tt.want {
			t.Errorf("callable(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestQualify(t *testing.T) {
	t.Parallel()

	if got := qualify("", "x"); got != "x" {
		t.Errorf("expected x, got %q", got)
	}

	if got := qualify("Math", "pow"); got != "Math.pow" {
		t.Errorf("expected Math.pow, got %q", got)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	matches := fuzzy.Find("co", []string{"confidence", "conclude", "combine", "console"})
	if len(matches) == 0 {
		t.Fatal("expected fuzzy matches")
	}

	if got := renderCandidateBar(nil, 0, false, 80, nil); got != "" {
		t.Errorf("expected empty bar without matches, got %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 0, nil); got != "" {
		t.Errorf("expected empty bar without width, got %q", got)
	}

	if got := renderCandidateBar(matches, 0, true, 200, nil); got == "" {
		t.Error("expected a rendered bar")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value lang.Value
		want  string
	}{
		{"function", &lang.Function{Name: "add", Params: []string{"a", "b"}}, "add(a, b)"},
		{"builtin", &lang.Builtin{Name: "combine"}, "combine(a, b, operator)"},
		{"unknown_builtin", &lang.Builtin{Name: "other"}, "other()"},
		{"number", lang.Number(3), "number 3"},
		{"long", lang.String("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"), "string abcdefghijklmnopqrstuvwxyzabcd..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := preview(tt.value); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
