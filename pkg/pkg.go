//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the mial module embedded at build time.
// It is printed by the info command.
//
//go:embed VERSION
var version string

// Version returns the embedded version without surrounding whitespace.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text, default config paths
	// and environment variable prefixes.
	Name = "mial"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Meta-Intelligent Artificial Language interpreter"
	// Extension is the file extension of MIAL programs.
	Extension = ".mial"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
