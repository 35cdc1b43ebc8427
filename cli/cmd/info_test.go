package cmd

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/pkg"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	li := Describe()

	if li.Name != pkg.Name || li.Version != pkg.Version() || li.Extension != pkg.Extension {
		t.Errorf("unexpected identity %+v", li)
	}

	for _, b := range lang.Builtins {
		if !slices.Contains(li.Builtins, b) {
			t.Errorf("expected built-in %q, got %v", b, li.Builtins)
		}
	}

	if len(li.Classifications) != len(lang.Classifications) {
		t.Errorf("expected %d classifications, got %v", len(lang.Classifications), li.Classifications)
	}
}

func TestInfo_Run(t *testing.T) {
	t.Parallel()

	ctx, out, _ := testStreams(t.Context(), "")

	if err := (&Info{Output: outputText}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out.String(), pkg.Name+" "+pkg.Version()) {
		t.Errorf("expected name and version first, got %q", out.String())
	}

	ctx, out, _ = testStreams(t.Context(), "")

	if err := (&Info{Output: outputJSON}).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got LanguageInfo
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got.Name != pkg.Name || !slices.Equal(got.Keywords, lang.Keywords) {
		t.Errorf("unexpected info %+v", got)
	}
}
