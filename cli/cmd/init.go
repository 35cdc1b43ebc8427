package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errors.New("no command-line context"))
	}

	confPath := varFrom(ctx, ConfigIdentifier, "")
	if confPath == "" {
		return ErrWriteConfig.Wrap(errors.New("configuration path undefined"))
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = WriteConfig(ctx, file, configEntries(ktx))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// ConfigEntry is one flag binding in a configuration file.
type ConfigEntry struct {
	Name  string
	Value any
}

// WriteConfig writes entries as MIAL let bindings, one per flag. Flag names
// use underscores so they are valid identifiers.
func WriteConfig(ctx context.Context, w io.Writer, entries []ConfigEntry) error {
	b := lang.NewBuilder()

	body := make([]lang.Node, 0, len(entries))
	for _, e := range entries {
		body = append(body, b.Let(strings.ReplaceAll(e.Name, "-", "_"), b.Literal(e.Value)))
	}

	return lang.Format(ctx, w, b.Program(body...), defaultConfigIndent)
}

// configEntries returns the current values of the persistent flags. Help,
// profiling and secret flags are left out, as are flags without a value.
func configEntries(ktx *kong.Context) []ConfigEntry {
	prefixIgnore := []string{"help", profile.Tag}

	var entries []ConfigEntry

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || strings.Contains(flag.Name, "password") ||
			slices.ContainsFunc(prefixIgnore, func(s string) bool {
				return strings.HasPrefix(flag.Name, s)
			}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			entries = append(entries, ConfigEntry{Name: flag.Name, Value: v})
		}
	}

	return entries
}

// configValue converts a flag value to a value [lang.Builder.Literal]
// accepts, reporting false for empty values.
func configValue(val any) (any, bool) {
	if val == nil {
		return nil, false
	}

	if v, ok := val.([]string); ok {
		return v, len(v) > 0
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0

	case reflect.Bool:
		return rv.Bool(), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true

	case reflect.Float32, reflect.Float64:
		return rv.Float(), true

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil, false
		}
	}

	return fmt.Sprint(val), true
}
