package log

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

type levelName struct {
	level Level
	name  string
}

// levels names every defined level, lowest first.
var levels = []levelName{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levels {
			if !yield(l.name) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, case-insensitively. Names other than
// "trace" may be followed by a signed offset as accepted by
// [slog.Level.UnmarshalText], such as "info+2". Unknown names parse as
// [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// String returns the lowercase name of the level. Levels between the named
// ones render as an offset from the nearest lower named level, as in
// "info+2".
func (l Level) String() string {
	i := slices.IndexFunc(levels, func(e levelName) bool { return e.level == l })
	if i >= 0 {
		return levels[i].name
	}

	if l < LevelDebug {
		n := int(l - LevelTrace)
		if n > 0 {
			return "trace+" + strconv.Itoa(n)
		}

		return "trace" + strconv.Itoa(n)
	}

	return strings.ToLower(slog.Level(l).String())
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

// Formats returns an iterator over all defined log formats.
func Formats() iter.Seq[string] {
	return slices.Values([]string{FormatJSON.String(), FormatText.String()})
}

// ParseFormat parses a format name, ignoring case and surrounding space.
// Unknown names parse as [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	}

	return DefaultFormat
}

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return "format(" + strconv.Itoa(int(f)) + ")"
}

// FormatTime formats a record timestamp. An empty result omits the
// timestamp.
type FormatTime func(time.Time) string

// Defaults of a new [Logger].
const (
	DefaultTimeLayout = time.RFC3339
	DefaultCaller     = false
	DefaultPretty     = true
)

// config holds the configuration options for a Logger.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option applies a configuration option to config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// makeConfig returns the default configuration for w overridden by opts.
func makeConfig(w io.Writer, opts ...Option) config {
	return apply(WithDefaults(w)(config{}), opts...)
}

// handlers constructs the slog handler for each format, plain and pretty.
var handlers = map[bool]map[Format]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	false: {
		FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
		FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
	},
	true: {
		FormatJSON: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return newPrettyJSONHandler(w, o) },
		FormatText: func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return newPrettyTextHandler(w, o) },
	},
}

// handler returns the slog.Handler for c overridden by opts. Unknown formats
// discard every record.
func (c config) handler(opts ...Option) slog.Handler {
	c = apply(c, opts...)

	newHandler, ok := handlers[c.pretty][c.format]
	if !ok {
		return slog.DiscardHandler
	}

	return newHandler(c.output, &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	})
}

// replaceAttr applies the time layout and renders levels by their own names,
// so that trace records show "TRACE" rather than "DEBUG-4".
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok && c.formatTime != nil {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// WithDefaults returns an option that resets every setting to its default
// and writes to w.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		return WithOutput(w)(config{
			formatTime: makeFormatTimeFunc(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		})
	}
}

// WithOutput returns an option that writes log messages to w, or discards
// them if w is nil.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel returns an option that discards messages below level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat returns an option that sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout returns an option that sets the timestamp layout.
//
// Named layouts from the [time] package match case-insensitively, ignoring
// punctuation ("RFC3339", "rfc-3339-nano"), along with the short names "ms",
// "us" and "ns". Any other layout is passed verbatim to [time.Time.Format].
// An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller returns an option that adds the calling source location to
// each message.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty returns an option that enables colorized output: unquoted
// text with gray keys, or indented JSON.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

// namedLayouts maps normalized layout names to their layouts.
var namedLayouts = func() map[string]string {
	m := map[string]string{
		"rfc3339":     time.RFC3339,
		"rfc3339nano": time.RFC3339Nano,
		"ansic":       time.ANSIC,
		"unixdate":    time.UnixDate,
		"rubydate":    time.RubyDate,
		"rfc822":      time.RFC822,
		"rfc822z":     time.RFC822Z,
		"rfc850":      time.RFC850,
		"kitchen":     time.Kitchen,
		"stamp":       time.Stamp,
		"none":        "",
	}

	for layout, names := range map[string][]string{
		time.StampMilli: {"stampmilli", "milli", "millis", "ms"},
		time.StampMicro: {"stampmicro", "micro", "micros", "us"},
		time.StampNano:  {"stampnano", "nano", "nanos", "ns"},
	} {
		for _, name := range names {
			m[name] = layout
		}
	}

	return m
}()

func makeFormatTimeFunc(layout string) FormatTime {
	// Normalize for lookup only; custom layouts are used verbatim.
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if key == "" {
		return func(time.Time) string { return "" }
	}

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
