package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/mial/pkg"
)

// MaxExecutions is the number of entries the execution log retains.
const MaxExecutions = 50

// Execution records one run of the run command.
type Execution struct {
	Time     time.Time     `json:"time"              yaml:"time"`
	Programs []string      `json:"programs"          yaml:"programs"`
	Output   string        `json:"output,omitempty"  yaml:"output,omitempty"`
	Error    string        `json:"error,omitempty"   yaml:"error,omitempty"`
	Duration time.Duration `json:"duration"          yaml:"duration"`
	Events   int           `json:"events,omitempty"  yaml:"events,omitempty"`
}

// ExecLog is a YAML file holding the most recent executions, oldest first.
type ExecLog struct {
	path string
}

// OpenExecLog returns the execution log stored at path. The file is created
// on first append.
func OpenExecLog(path string) *ExecLog {
	return &ExecLog{path: path}
}

// Path returns the location of the log file.
func (l *ExecLog) Path() string { return l.path }

// Load reads all entries. A missing file holds no entries.
func (l *ExecLog) Load(ctx context.Context) ([]Execution, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	var entries []Execution
	if err := yaml.UnmarshalContext(ctx, data, &entries); err != nil {
		return nil, ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	return entries, nil
}

// Append adds e to the log and drops the oldest entries beyond
// [MaxExecutions].
func (l *ExecLog) Append(ctx context.Context, e Execution) error {
	entries, err := l.Load(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, e)
	if n := len(entries) - MaxExecutions; n > 0 {
		entries = entries[n:]
	}

	return l.write(ctx, entries)
}

// Recent returns at most limit entries, newest first. A non-positive limit
// returns every entry.
func (l *ExecLog) Recent(ctx context.Context, limit int) ([]Execution, error) {
	entries, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}

	recent := make([]Execution, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(recent) == limit {
			break
		}

		recent = append(recent, entries[i])
	}

	return recent, nil
}

// Clear removes every entry.
func (l *ExecLog) Clear() error {
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	return nil
}

// write replaces the log file with entries through a temporary file so a
// failed write never truncates the log.
func (l *ExecLog) write(ctx context.Context, entries []Execution) error {
	data, err := yaml.MarshalContext(ctx, entries)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*")
	if err != nil {
		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	if err := tmp.Close(); err != nil {
		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return ErrExecutionLog.Wrap(err).With(slog.String("path", l.path))
	}

	return nil
}
