package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/mial/cli/cmd"
	"github.com/ardnew/mial/pkg"
)

func TestRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	lib := t.TempDir()
	if err := os.WriteFile(filepath.Join(lib, "double.mial"), []byte("21 * 2;"), 0o600); err != nil {
		t.Fatalf("write program: %v", err)
	}

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "default command reads stdin",
			stdin: "let x = 2; x * 3;",
			args:  []string{"--no-record"},
			want:  "6\n",
		},
		{
			name: "program on include path",
			args: []string{"run", "--no-record", "-I", lib, "double"},
			want: "42\n",
		},
		{
			name: "check",
			args: []string{"check", filepath.Join(lib, "double.mial")},
			want: "ok",
		},
		{
			name: "info",
			args: []string{"info", "--output=json"},
			want: `"name": "` + pkg.Name + `"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer

			ctx := cmd.WithStreams(t.Context(), cmd.Streams{
				In:  strings.NewReader(tt.stdin),
				Out: &out,
				Err: &errOut,
			})

			exit := func(code int) { t.Fatalf("unexpected exit %d: %s", code, errOut.String()) }

			if err := Run(ctx, exit, tt.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected output containing %q, got %q", tt.want, out.String())
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")

	if err := os.WriteFile(file, []byte("MIAL_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("MIAL_TEST_DOTENV", "")
	os.Unsetenv("MIAL_TEST_DOTENV")

	if err := loadDotenv(filepath.Join(dir, "missing"), file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("MIAL_TEST_DOTENV"); got != "loaded" {
		t.Errorf("expected %q, got %q", "loaded", got)
	}
}
