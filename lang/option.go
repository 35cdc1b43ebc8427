package lang

import (
	"io"

	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/tracker"
)

// Option configures the lexer, parser, validator and [Interpreter].
// Options that do not apply to a stage are ignored by it.
type Option func(*options)

type options struct {
	logger   log.Logger
	tracker  tracker.Tracker
	oracle   Oracle
	stdout   io.Writer
	stderr   io.Writer
	recovery bool
	cache    bool
	maxDepth int
}

// DefaultMaxDepth is the default limit on nested function calls and on
// syntactic nesting while parsing.
var DefaultMaxDepth = 1000

func makeOptions(opts ...Option) options {
	o := options{
		tracker:  tracker.Nop{},
		stdout:   io.Discard,
		stderr:   io.Discard,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.oracle == nil {
		o.oracle = newDefaultOracle()
	}

	return o
}

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracker sets the knowledge tracker notified during evaluation.
// A nil tracker restores the no-op default.
func WithTracker(t tracker.Tracker) Option {
	return func(o *options) {
		if t == nil {
			t = tracker.Nop{}
		}

		o.tracker = t
	}
}

// WithOracle sets the source of simulated reasoning outcomes.
func WithOracle(oracle Oracle) Option {
	return func(o *options) {
		o.oracle = oracle
	}
}

// WithOutput sets the writers used by the console built-in.
// Nil writers discard output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout == nil {
			stdout = io.Discard
		}

		if stderr == nil {
			stderr = io.Discard
		}

		o.stdout, o.stderr = stdout, stderr
	}
}

// WithRecovery makes the parser continue after a statement error and report
// every error it found instead of only the first.
func WithRecovery(enable bool) Option {
	return func(o *options) {
		o.recovery = enable
	}
}

// WithCache enables the source-keyed parse cache for [ParseReader].
func WithCache(enable bool) Option {
	return func(o *options) {
		o.cache = enable
	}
}

// WithMaxDepth limits how deeply function calls may nest before evaluation
// fails with [ErrMaxDepth], and how deeply statements and expressions may nest
// before parsing fails with [ErrMaxNesting]. Non-positive depths restore
// [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}
