package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	searchPathKey struct{}
	streamsKey    struct{}

	// Streams are the standard streams used by commands.
	Streams struct {
		In  io.Reader
		Out io.Writer
		Err io.Writer
	}
)

// WithSearchPath returns a new context.Context carrying the directories
// searched for programs named without a path.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// WithStreams returns a new context.Context whose commands read and write the
// given streams instead of the process's. Nil streams keep the default.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// Program is a resolved program and its source text.
type Program struct {
	// Name is the program as named on the command line.
	Name string
	// Path is the file the program was read from, or "-" for stdin.
	Path string
	// Source is the program text.
	Source string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// resolvePrograms locates and reads each named program.
//
// A name is tried as a path first, then as "<dir>/<name>" and
// "<dir>/<name>.mial" for each directory of the search path. Programs that
// resolve to the same file are read once. All occurrences of "-" are replaced
// with a single stdin program placed last. No names means stdin.
func resolvePrograms(ctx context.Context, names []string) ([]Program, error) {
	if len(names) == 0 {
		names = []string{stdinSource}
	}

	var (
		progs    = make([]Program, 0, len(names))
		seen     = make(map[fileKey]struct{})
		hasStdin bool
	)

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := locate(name, searchPathFrom(ctx))
		if err != nil {
			return nil, err
		}

		if key, ok := statKey(path); ok {
			if _, dup := seen[key]; dup {
				log.DebugContext(ctx, "skip duplicate program",
					slog.String("program", name),
					slog.String("path", path),
				)

				continue
			}

			seen[key] = struct{}{}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ErrReadProgram.Wrap(err).With(slog.String("path", path))
		}

		progs = append(progs, Program{Name: name, Path: path, Source: string(data)})
	}

	if hasStdin {
		data, err := io.ReadAll(streamsFrom(ctx).In)
		if err != nil {
			return nil, ErrReadProgram.Wrap(err).With(slog.String("path", stdinSource))
		}

		progs = append(progs, Program{Name: stdinSource, Path: stdinSource, Source: string(data)})
	}

	return progs, nil
}

// locate returns the file a program name refers to.
func locate(name string, dirs []string) (string, error) {
	candidates := []string{name, name + pkg.Extension}

	if !filepath.IsAbs(name) {
		for _, dir := range dirs {
			candidates = append(candidates,
				filepath.Join(dir, name),
				filepath.Join(dir, name+pkg.Extension),
			)
		}
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", ErrProgramNotFound.With(
		slog.String("program", name),
		slog.Any("search_path", dirs),
	)
}

// statKey returns the identity of the file at path after resolving symlinks.
func statKey(path string) (fileKey, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// varFrom returns a kong variable, or def when no kong context is available.
func varFrom(ctx context.Context, name, def string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok {
			return v
		}
	}

	return def
}
