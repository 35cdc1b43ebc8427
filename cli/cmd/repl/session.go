package repl

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/ardnew/mial/lang"
)

// Factory creates the interpreter a [Session] evaluates in. Program output
// must be written to stdout and stderr.
type Factory func(stdout, stderr io.Writer) *lang.Interpreter

// Session is a persistent evaluation scope. Each input is evaluated in the
// same global environment, so declarations carry over between inputs.
//
// A Session is not safe for concurrent use.
type Session struct {
	factory Factory
	in      *lang.Interpreter
	out     *bytes.Buffer
	inputs  []string
}

// NewSession creates a session with a fresh interpreter.
func NewSession(factory Factory) *Session {
	out := new(bytes.Buffer)

	return &Session{
		factory: factory,
		in:      factory(out, out),
		out:     out,
	}
}

// Eval evaluates input and returns its value together with any program
// output it produced. Inputs that evaluate without error become part of the
// session [Session.Source].
func (s *Session) Eval(ctx context.Context, input string) (lang.Value, string, error) {
	defer s.out.Reset()

	v, err := s.in.Run(ctx, input)
	out := s.out.String()

	if err != nil {
		return nil, out, err
	}

	s.inputs = append(s.inputs, strings.TrimSpace(input))

	return v, out, nil
}

// Source returns the accepted inputs as one program.
func (s *Session) Source() string {
	if len(s.inputs) == 0 {
		return ""
	}

	return strings.Join(s.inputs, "\n") + "\n"
}

// Replace evaluates source in a fresh interpreter. On success the new
// interpreter and source replace the session's; on failure the session is
// unchanged.
func (s *Session) Replace(ctx context.Context, source string) (string, error) {
	out := new(bytes.Buffer)
	in := s.factory(out, out)

	if _, err := in.Run(ctx, source); err != nil {
		return out.String(), err
	}

	s.in, s.out = in, out
	s.out.Reset()

	s.inputs = nil
	if src := strings.TrimSpace(source); src != "" {
		s.inputs = []string{src}
	}

	return "", nil
}

// Reset discards every declaration and the parse trees cached by earlier
// inputs.
func (s *Session) Reset(ctx context.Context) error {
	lang.ClearCache()

	_, err := s.Replace(ctx, "")

	return err
}

// Names returns every name bound in the global scope.
func (s *Session) Names() []string {
	return s.in.Global().Names()
}

// Declared returns the names bound by the session's own inputs.
func (s *Session) Declared() []string {
	var names []string

	for _, name := range s.in.Global().Local() {
		if !slices.Contains(lang.Builtins, name) {
			names = append(names, name)
		}
	}

	return names
}

// Lookup resolves a dotted path such as "Math.sqrt" through global names and
// object fields.
func (s *Session) Lookup(path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, err := s.in.Global().Get(segments[0])
	if err != nil {
		return nil, false
	}

	for _, seg := range segments[1:] {
		obj, ok := lang.Raw(v).(*lang.Object)
		if !ok {
			return nil, false
		}

		if obj.Dynamic != nil {
			if dv, ok := obj.Dynamic(seg); ok {
				v = dv

				continue
			}
		}

		if v, ok = obj.Fields[seg]; !ok {
			return nil, false
		}
	}

	return v, true
}
