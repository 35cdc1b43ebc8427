package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type resolverTestCLI struct {
	LogLevel string   `default:"info"`
	Pretty   bool     `default:"true" negatable:""`
	Count    int      `default:"1"`
	Ratio    float64  `default:"0.5"`
	Include  []string `sep:","`
}

func parseWith(
	t *testing.T,
	loader kong.ConfigurationLoader,
	name, content string,
	args ...string,
) resolverTestCLI {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var cli resolverTestCLI

	parser, err := kong.New(&cli,
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Configuration(loader, path),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}

	return cli
}

func TestLoadMIAL(t *testing.T) {
	t.Parallel()

	const program = `
let log_level = "debug";
let pretty = false;
let count = 3;
let ratio = 0.25 * 2 + 0.1;
let include = ["a", "b"];
function helper(x) { return x; }
console.log("ignored");
`

	tests := []struct {
		name string
		args []string
		want resolverTestCLI
	}{
		{
			name: "config values",
			want: resolverTestCLI{
				LogLevel: "debug",
				Count:    3,
				Ratio:    0.6,
				Include:  []string{"a", "b"},
			},
		},
		{
			name: "flags override config",
			args: []string{"--log-level=warn", "--count=7", "--pretty"},
			want: resolverTestCLI{
				LogLevel: "warn",
				Pretty:   true,
				Count:    7,
				Ratio:    0.6,
				Include:  []string{"a", "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseWith(t, loadMIAL(t.Context()), "config.mial", program, tt.args...)

			if got.LogLevel != tt.want.LogLevel {
				t.Errorf("expected log level %q, got %q", tt.want.LogLevel, got.LogLevel)
			}

			if got.Pretty != tt.want.Pretty {
				t.Errorf("expected pretty %v, got %v", tt.want.Pretty, got.Pretty)
			}

			if got.Count != tt.want.Count {
				t.Errorf("expected count %d, got %d", tt.want.Count, got.Count)
			}

			if diff := got.Ratio - tt.want.Ratio; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected ratio %v, got %v", tt.want.Ratio, got.Ratio)
			}

			if !slices.Equal(got.Include, tt.want.Include) {
				t.Errorf("expected include %v, got %v", tt.want.Include, got.Include)
			}
		})
	}
}

func TestLoadMIAL_InvalidProgram(t *testing.T) {
	t.Parallel()

	for name, program := range map[string]string{
		"parse error":   "let = ;",
		"runtime error": `let log_level = "debug"; missing();`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := parseWith(t, loadMIAL(t.Context()), "config.mial", program)

			if got.LogLevel != "info" {
				t.Errorf("expected default log level, got %q", got.LogLevel)
			}

			if got.Count != 1 {
				t.Errorf("expected default count, got %d", got.Count)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	const doc = `
log:
  level: debug
pretty: false
count: 4
ratio: 0.75
include:
  - x
  - y
`

	got := parseWith(t, loadYAML, "config.yaml", doc)

	if got.LogLevel != "debug" {
		t.Errorf("expected nested key to set log level, got %q", got.LogLevel)
	}

	if got.Pretty {
		t.Error("expected pretty to be false")
	}

	if got.Count != 4 {
		t.Errorf("expected count 4, got %d", got.Count)
	}

	if got.Ratio != 0.75 {
		t.Errorf("expected ratio 0.75, got %v", got.Ratio)
	}

	if !slices.Equal(got.Include, []string{"x", "y"}) {
		t.Errorf("expected include [x y], got %v", got.Include)
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := loadYAML(strings.NewReader("a: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfigSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value any
		want  config
	}{
		{"string", "log_format", "text", config{"log-format": "text"}},
		{"bool", "pretty", true, config{"pretty": true}},
		{"float", "ratio", 1.5, config{"ratio": "1.5"}},
		{"int", "count", 2, config{"count": "2"}},
		{"uint64", "count", uint64(9), config{"count": "9"}},
		{"nil", "unset", nil, config{}},
		{"unsupported", "fn", struct{}{}, config{}},
		{
			"nested",
			"neo4j",
			map[string]any{"uri": "bolt://db", "auth": map[string]any{"user": "u"}},
			config{"neo4j-uri": "bolt://db", "neo4j-auth-user": "u"},
		},
		{
			"list",
			"include",
			[]any{"a", 1.0, map[string]any{}},
			config{"include": []any{"a", "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := config{}
			got.set(tt.key, tt.value)

			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}

			for k, w := range tt.want {
				g, ok := got[k]
				if !ok {
					t.Errorf("expected key %q, got %v", k, got)

					continue
				}

				if wl, ok := w.([]any); ok {
					if !slices.Equal(wl, g.([]any)) {
						t.Errorf("expected %q = %v, got %v", k, w, g)
					}

					continue
				}

				if g != w {
					t.Errorf("expected %q = %v, got %v", k, w, g)
				}
			}
		})
	}
}
