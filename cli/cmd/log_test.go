package cmd

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLog_Run(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "executions.yaml")
	l := OpenExecLog(path)

	for _, out := range []string{"first", "second", "third"} {
		if err := l.Append(t.Context(), Execution{Time: time.Now(), Output: out}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, out, _ := testStreams(t.Context(), "")

	if err := (&Log{Limit: 2, Output: outputText, Path: path}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}

	if !strings.HasSuffix(lines[0], "=> third") || !strings.HasSuffix(lines[1], "=> second") {
		t.Errorf("expected newest first, got %q", lines)
	}

	ctx, out, _ = testStreams(t.Context(), "")

	if err := (&Log{Output: outputJSON, Path: path}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []Execution
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(entries) != 3 {
		t.Errorf("expected every entry, got %d", len(entries))
	}
}

func TestLog_Clear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "executions.yaml")
	if err := OpenExecLog(path).Append(t.Context(), Execution{Output: "x"}); err != nil {
		t.Fatal(err)
	}

	ctx, _, _ := testStreams(t.Context(), "")

	if err := (&Log{Clear: true, Path: path}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := OpenExecLog(path).Load(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 0 {
		t.Errorf("expected cleared log, got %d entries", len(entries))
	}
}
