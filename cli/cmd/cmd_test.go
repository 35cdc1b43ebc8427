package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testStreams returns a context whose commands read stdin and write to the
// returned buffers.
func testStreams(ctx context.Context, stdin string) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	ctx = WithStreams(ctx, Streams{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	})

	return ctx, &out, &errOut
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestResolvePrograms_Stdin(t *testing.T) {
	t.Parallel()

	ctx, _, _ := testStreams(t.Context(), "let x = 1;")

	progs, err := resolvePrograms(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(progs) != 1 || progs[0].Name != stdinSource || progs[0].Source != "let x = 1;" {
		t.Errorf("expected a single stdin program, got %+v", progs)
	}
}

func TestResolvePrograms_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeFile(t, filepath.Join(dir, "first.mial"), "1;")
	second := writeFile(t, filepath.Join(dir, "second.mial"), "2;")

	ctx, _, _ := testStreams(t.Context(), "3;")

	progs, err := resolvePrograms(ctx, []string{"-", first, second, "-"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"1;", "2;", "3;"}
	if len(progs) != len(want) {
		t.Fatalf("expected %d programs, got %d", len(want), len(progs))
	}

	for i, w := range want {
		if progs[i].Source != w {
			t.Errorf("program %d: expected %q, got %q", i, w, progs[i].Source)
		}
	}

	if progs[2].Path != stdinSource {
		t.Errorf("expected stdin last, got %q", progs[2].Path)
	}
}

func TestResolvePrograms_Dedup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "prog.mial"), "1;")

	link := filepath.Join(dir, "link.mial")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	progs, err := resolvePrograms(t.Context(), []string{path, link, filepath.Join(dir, ".", "prog.mial")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(progs) != 1 {
		t.Errorf("expected duplicates read once, got %d programs", len(progs))
	}
}

func TestResolvePrograms_SearchPath(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	lib := t.TempDir()
	writeFile(t, filepath.Join(lib, "greet.mial"), `"hi";`)
	writeFile(t, filepath.Join(lib, "sub", "nested.mial"), "2;")

	ctx := WithSearchPath(t.Context(), []string{empty, lib})

	for _, name := range []string{"greet", "greet.mial", "sub/nested"} {
		progs, err := resolvePrograms(ctx, []string{name})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)

			continue
		}

		if progs[0].Name != name || filepath.Dir(progs[0].Path) == "." {
			t.Errorf("%s: unexpected program %+v", name, progs[0])
		}
	}
}

func TestResolvePrograms_NotFound(t *testing.T) {
	t.Parallel()

	ctx := WithSearchPath(t.Context(), []string{t.TempDir()})

	_, err := resolvePrograms(ctx, []string{"missing"})
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("expected ErrProgramNotFound, got %v", err)
	}

	// Directories are not programs.
	_, err = resolvePrograms(ctx, []string{t.TempDir()})
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("expected ErrProgramNotFound for a directory, got %v", err)
	}
}

func TestStreamsFrom_Defaults(t *testing.T) {
	t.Parallel()

	s := streamsFrom(t.Context())
	if s.In != os.Stdin || s.Out != os.Stdout || s.Err != os.Stderr {
		t.Error("expected process streams by default")
	}

	var buf bytes.Buffer

	s = streamsFrom(WithStreams(t.Context(), Streams{Out: &buf}))
	if s.Out != &buf || s.In != os.Stdin {
		t.Error("expected nil streams to keep their default")
	}
}

func TestVarFrom_NoKongContext(t *testing.T) {
	t.Parallel()

	if got := varFrom(t.Context(), ConfigIdentifier, "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}

	if kongContextFrom(t.Context()) != nil {
		t.Error("expected no kong context")
	}
}
