package tracker

import (
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects recorded events with a boolean expression, for example
//
//	kind == "symbol" && confidence > 0.8
//	name startsWith "adapt" || adaptations >= 3
//
// The expression sees the fields kind, id, name, confidence, uncertainty,
// adaptations and detail of each event.
type Filter struct {
	source  string
	program *vm.Program
}

// filterEnv returns the variables visible to a filter expression. With no
// event it returns type exemplars for compilation.
func filterEnv(e *Event) map[string]any {
	if e == nil {
		return map[string]any{
			"kind":        "",
			"id":          "",
			"name":        "",
			"confidence":  float64(0),
			"uncertainty": float64(0),
			"adaptations": 0,
			"detail":      "",
		}
	}

	return map[string]any{
		"kind":        string(e.Kind),
		"id":          e.ID,
		"name":        e.Name,
		"confidence":  e.Confidence,
		"uncertainty": e.Uncertainty,
		"adaptations": e.Adaptations,
		"detail":      e.Detail,
	}
}

// CompileFilter compiles source into a [Filter]. An empty source matches
// every event.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(filterEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).
			With(slog.String("source", source))
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the filter's source expression.
func (f *Filter) String() string { return f.source }

// Match reports whether e satisfies the filter.
func (f *Filter) Match(e Event) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	out, err := vm.Run(f.program, filterEnv(&e))
	if err != nil {
		return false, ErrFilterEval.Wrap(err).
			With(slog.String("source", f.source), slog.String("event", e.ID))
	}

	ok, _ := out.(bool)

	return ok, nil
}
