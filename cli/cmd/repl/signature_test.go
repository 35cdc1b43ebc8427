package repl

import (
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "greeting", 8, "", 0, false},
		{"first arg empty", "add(", 4, "add", 0, true},
		{"first arg", "add(1", 5, "add", 0, true},
		{"second arg empty", "add(1,", 6, "add", 1, true},
		{"second arg", "add(1, 2", 8, "add", 1, true},
		{"member callee", "Math.pow(2, ", 12, "Math.pow", 1, true},
		{"closed call", "add(1, 2)", 9, "", 0, false},
		{"nested inner", "add(mul(1, ", 11, "mul", 1, true},
		{"nested outer after inner", "add(mul(1, 2), ", 15, "add", 1, true},
		{"comma in list", "f([1, 2], ", 10, "f", 1, true},
		{"inside list", "f([1, ", 6, "", 0, false},
		{"comma in string", `combine("a,b", `, 15, "combine", 1, true},
		{"grouping paren", "(1 + ", 5, "", 0, false},
		{"keyword paren", "if (x", 5, "", 0, false},
		{"cursor mid input", "add(1, 2)", 5, "add", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := detectFunctionCall(tt.input, tt.cursor)
			if got.inCall != tt.wantInCall {
				t.Fatalf("expected inCall %v, got %v", tt.wantInCall, got.inCall)
			}

			if !got.inCall {
				return
			}

			if got.name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, got.name)
			}

			if got.argIndex != tt.wantIndex {
				t.Errorf("expected arg index %d, got %d", tt.wantIndex, got.argIndex)
			}
		})
	}
}

func TestSignatureFor(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	if _, _, err := s.Eval(t.Context(), "function area(w, h) { return w * h; } let n = 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"area", "area(w, h)", []string{"w", "h"}},
		{"Math.pow", "Math.pow(base, exponent)", []string{"base", "exponent"}},
		{"combine", "combine(a, b, operator)", []string{"a", "b", "operator"}},
		{"console.log", "console.log(...values)", []string{"...values"}},
		{"n", "", nil},
		{"missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sig, params := signatureFor(s, tt.name)
			if sig != tt.wantSig {
				t.Errorf("expected signature %q, got %q", tt.wantSig, sig)
			}

			if strings.Join(params, ",") != strings.Join(tt.wantParams, ",") {
				t.Errorf("expected params %v, got %v", tt.wantParams, params)
			}
		})
	}
}

func TestBuiltinSignaturesCoverGlobals(t *testing.T) {
	t.Parallel()

	s := newTestSession()

	for _, name := range s.Names() {
		if !callable(s, name) {
			continue
		}

		if _, ok := builtinSignatures[name]; !ok {
			t.Errorf("expected a signature for built-in %q", name)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	t.Parallel()

	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}

	tests := []struct {
		name     string
		sig      string
		params   []string
		argIndex int
	}{
		{"no params", "Math.random()", nil, 0},
		{"first", "Math.pow(base, exponent)", []string{"base", "exponent"}, 0},
		{"variadic", "Math.max(...values)", []string{"...values"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := renderSignatureHint(tt.sig, tt.params, tt.argIndex)
			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("expected %q in hint %q", p, got)
				}
			}

			if !strings.Contains(got, tt.sig[:strings.Index(tt.sig, "(")]) {
				t.Errorf("expected callee in hint %q", got)
			}
		})
	}
}
