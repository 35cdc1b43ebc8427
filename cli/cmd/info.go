package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/pkg"
)

// Info prints a description of the language.
type Info struct {
	Output string `default:"text" enum:"text,yaml,json" help:"Output format." short:"o"`
}

// LanguageInfo describes the language and its built-in library.
type LanguageInfo struct {
	Name            string   `json:"name"            yaml:"name"`
	Description     string   `json:"description"     yaml:"description"`
	Version         string   `json:"version"         yaml:"version"`
	Extension       string   `json:"extension"       yaml:"extension"`
	Keywords        []string `json:"keywords"        yaml:"keywords"`
	Builtins        []string `json:"builtins"        yaml:"builtins"`
	Classifications []string `json:"classifications" yaml:"classifications"`
}

// Describe returns the language description.
func Describe() LanguageInfo {
	classes := make([]string, len(lang.Classifications))
	for i, c := range lang.Classifications {
		classes[i] = string(c)
	}

	return LanguageInfo{
		Name:            pkg.Name,
		Description:     pkg.Description,
		Version:         pkg.Version(),
		Extension:       pkg.Extension,
		Keywords:        lang.Keywords,
		Builtins:        lang.NewInterpreter().Global().Names(),
		Classifications: classes,
	}
}

func (li LanguageInfo) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s: %s\n", li.Name, li.Version, li.Description)
	fmt.Fprintf(&b, "extension:       %s\n", li.Extension)
	fmt.Fprintf(&b, "keywords:        %s\n", strings.Join(li.Keywords, " "))
	fmt.Fprintf(&b, "builtins:        %s\n", strings.Join(li.Builtins, " "))
	fmt.Fprintf(&b, "classifications: %s", strings.Join(li.Classifications, " "))

	return b.String()
}

// Run executes the info command.
func (i *Info) Run(ctx context.Context) error {
	li := Describe()

	return render(ctx, streamsFrom(ctx).Out, i.Output, li, li.String())
}
