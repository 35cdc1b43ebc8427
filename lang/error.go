package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Kind identifies the stage that raised an [Error].
type Kind int

const (
	KindUnknown    Kind = iota // error
	KindLex                    // lex error
	KindParse                  // parse error
	KindValidation             // validation error
	KindRuntime                // runtime error
)

// String returns the human-readable stage name.
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex error"
	case KindParse:
		return "parse error"
	case KindValidation:
		return "validation error"
	case KindRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// Predefined errors (sentinel values).
var (
	ErrUnexpectedChar     = newKindError(KindLex, "unexpected character")
	ErrUnterminatedString = newKindError(KindLex, "unterminated string")

	ErrUnexpectedToken = newKindError(KindParse, "unexpected token")
	ErrExpectedToken   = newKindError(KindParse, "expected token")
	ErrMaxNesting      = newKindError(KindParse, "maximum nesting depth exceeded")

	ErrValidation = newKindError(KindValidation, "invalid node")

	ErrUndefinedVariable       = newKindError(KindRuntime, "undefined variable")
	ErrInvalidAssignmentTarget = newKindError(KindRuntime, "invalid assignment target")
	ErrNotCallable             = newKindError(KindRuntime, "value is not callable")
	ErrUnknownOperator         = newKindError(KindRuntime, "unknown operator")
	ErrConstantAssignment      = newKindError(KindRuntime, "assignment to constant")
	ErrInvalidArgument         = newKindError(KindRuntime, "invalid argument")
	ErrUnknownNode             = newKindError(KindRuntime, "unknown node")
	ErrMaxDepth                = newKindError(KindRuntime, "maximum call depth exceeded")

	ErrReadInput = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel (via [Error.Wrap], [Error.With] or
// [Error.At]) still match that sentinel with [errors.Is].
type Error struct {
	base  *Error
	msg   string
	err   error // Wrapped error (for errors.Unwrap)
	kind  Kind
	pos   Position
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind Kind, msg string) *Error {
	return &Error{msg: msg, kind: kind}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<kind> at line L, column C: <msg>: <err>", where
// each part is omitted when unset.
func (e *Error) Error() string {
	var b strings.Builder

	if e.kind != KindUnknown {
		b.WriteString(e.kind.String())
	}

	if e.pos.IsValid() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString("at " + e.pos.String())
	}

	part := make([]string, 0, 3)
	if b.Len() > 0 {
		part = append(part, b.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is e or the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// Kind returns the stage that raised the error.
func (e *Error) Kind() Kind { return e.kind }

// Position returns the source location of the error, if any.
func (e *Error) Position() Position { return e.pos }

// Message returns the error text without the kind and location prefix.
func (e *Error) Message() string {
	if e.err == nil {
		return e.msg
	}

	if e.msg == "" {
		return e.err.Error()
	}

	return e.msg + ": " + e.err.Error()
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.kind != KindUnknown {
		attrs = append(attrs, slog.String("kind", e.kind.String()))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.Any("position", e.pos))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) derive() *Error {
	d := *e
	if d.base == nil {
		d.base = e
	}

	return &d
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// Errorf wraps a formatted detail message.
func (e *Error) Errorf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(d.attrs, e.attrs)
	copy(d.attrs[len(e.attrs):], attrs)

	return d
}

// At returns a copy of the error located at pos.
func (e *Error) At(pos Position) *Error {
	d := e.derive()
	d.pos = pos

	return d
}

// FormatError renders err with the offending line of source and a caret
// under the error column. Errors without a location render as err.Error().
func FormatError(err error, source string) string {
	var le *Error
	if !errors.As(err, &le) || !le.pos.IsValid() {
		return err.Error()
	}

	var b strings.Builder

	b.WriteString(le.Error())
	b.WriteByte('\n')

	lines := strings.Split(source, "\n")
	if le.pos.Line > len(lines) {
		return b.String()
	}

	num := strconv.Itoa(le.pos.Line)

	b.WriteString("  " + num + " | " + lines[le.pos.Line-1] + "\n")

	// 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if le.pos.Column > 1 {
		padding += strings.Repeat(" ", le.pos.Column-1)
	}

	b.WriteString(padding + "^\n")

	return b.String()
}
