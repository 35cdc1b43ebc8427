package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode for created directories.
const DirMode os.FileMode = 0o700

// Prefix returns the base prefix string used to construct the path to the
// configuration directory and the prefix for environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//   - "*.test" (go test binaries): replaced with [Name]
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return prefixOf(id)
	},
)

func prefixOf(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".test") {
		return Name // go test binary
	}

	id := strings.TrimSuffix(base, filepath.Ext(base))

	for rex, rep := range map[*regexp.Regexp]string{
		regexp.MustCompile(`^__debug_bin\d*$`): Name, // default output from dlv
		regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
	} {
		id = rex.ReplaceAllString(id, rep)
	}

	if id == "" {
		return Name
	}

	return id
}

// EnvPrefix returns the prefix of environment variables read by the
// command, such as "MIAL_".
func EnvPrefix() string {
	return strings.ToUpper(strings.ReplaceAll(Prefix(), "-", "_")) + "_"
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the cache directory path used for transient files such
// as the execution log and REPL history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

func userDir(lookup func() (string, error), fallback string) string {
	dir, err := lookup()
	if err != nil {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// MkdirAll creates the configuration and cache directories.
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}
