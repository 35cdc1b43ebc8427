package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
)

// loadMIAL returns a [kong.ConfigurationLoader] for configuration files
// written as MIAL programs.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadMIAL(ctx), "/path/to/config.mial")
//
// The program is evaluated in a fresh interpreter with its output discarded,
// and each global it declares becomes a configuration value:
//   - Flag names with hyphens (e.g., "log-level") use underscores in the
//     program (e.g., "log_level")
//   - Numbers, strings, and booleans map to flag values directly
//   - Lists map to repeated flag values
//   - Annotated values map to their underlying value
//   - Functions and other values are ignored
//
// Example configuration program:
//
//	let log_level = "debug";
//	let log_pretty = false;
//	let include = ["./lib", "/usr/share/mial"];
//
// Command-line flags override configuration values. A program that fails to
// evaluate is logged and ignored.
func loadMIAL(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		source, err := readAll(r)
		if err != nil {
			return nil, err
		}

		in := lang.NewInterpreter(
			lang.WithLogger(log.Default()),
			lang.WithOutput(io.Discard, io.Discard),
		)

		if _, err := in.Run(ctx, source); err != nil {
			log.WarnContext(ctx, "ignoring configuration program",
				slog.Any("error", lang.WrapError(err)),
			)

			return config{}, nil
		}

		conf := config{}
		global := in.Global()

		for _, name := range global.Local() {
			if slices.Contains(lang.Builtins, name) {
				continue
			}

			v, err := global.Get(name)
			if err != nil {
				continue
			}

			switch raw := lang.Raw(v).(type) {
			case lang.Number, lang.String, lang.Bool, *lang.List:
				conf.set(name, lang.Native(raw))
			}
		}

		return conf, nil
	}
}

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
// Keys of nested mappings are joined with hyphens, so that
//
//	log:
//	  level: debug
//
// sets --log-level.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	source, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return nil, fmt.Errorf("parse YAML configuration: %w", err)
	}

	conf := config{}

	for name, v := range doc {
		conf.set(name, v)
	}

	return conf, nil
}

func readAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", fmt.Errorf("read configuration: %w", err)
	}

	return string(data), nil
}

// config implements [kong.Resolver] with values keyed by flag name.
type config map[string]any

// set stores v under the flag name for key. Maps are flattened into one entry
// per field.
func (c config) set(key string, v any) {
	key = strings.ReplaceAll(key, "_", "-")

	switch v := v.(type) {
	case nil:
		// unset

	case map[string]any:
		for k, f := range v {
			c.set(key+"-"+k, f)
		}

	case []any:
		list := make([]any, 0, len(v))
		for _, e := range v {
			if s, ok := scalar(e); ok {
				list = append(list, s)
			}
		}

		c[key] = list

	default:
		if s, ok := scalar(v); ok {
			c[key] = s
		}
	}
}

// scalar converts v to a value kong can decode. Numbers become strings.
func scalar(v any) (any, bool) {
	switch v := v.(type) {
	case string, bool:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	}

	return nil, false
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
