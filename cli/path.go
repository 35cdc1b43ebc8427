package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/mial/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// pathEnv names the environment variable holding the program search path.
var pathEnv = pkg.EnvPrefix() + "PATH"

// configPath returns the path formed by joining the configuration directory
// with the given elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cachePath returns the path formed by joining the cache directory with the
// given elements.
func cachePath(elem ...string) string {
	return filepath.Join(append([]string{pkg.CacheDir()}, elem...)...)
}

// searchPath returns the directories searched for programs named on the
// command line. Directories given with --include come first, followed by
// those in the search path environment variable. Entries that are not
// directories are removed.
func searchPath(include []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(filepath.SplitList(os.Getenv(pathEnv))...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(include...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(list)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
