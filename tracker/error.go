package tracker

import (
	"log/slog"
	"strings"
)

// Error represents a tracker error with structured logging support.
type Error struct {
	base  *Error
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is matches e against the sentinel it was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && (e == t || e.base == t)
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	d.err = err

	return &d
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	d.attrs = append(append(make([]slog.Attr, 0, len(e.attrs)+len(attrs)), e.attrs...), attrs...)

	return &d
}

var (
	ErrFilterCompile = NewError("compile event filter")
	ErrFilterEval    = NewError("evaluate event filter")
	ErrConnect       = NewError("connect to graph database")
	ErrWrite         = NewError("write to graph database")
)
