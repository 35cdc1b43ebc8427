package lang

import (
	"log/slog"
	"slices"
)

// Environment is one lexical scope: a name-to-value mapping with an optional
// parent. Frames are shared by the call that created them and by every
// closure declared while they were active; the garbage collector keeps them
// alive as long as either holds a reference.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	vars   map[string]Value
	consts map[string]struct{}
	parent *Environment
}

// NewEnvironment creates a scope whose lookups fall back to parent.
// A nil parent creates a root scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		vars:   make(map[string]Value),
		parent: parent,
	}
}

// Child returns a new scope nested in e.
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}

// Parent returns the enclosing scope, or nil for a root scope.
func (e *Environment) Parent() *Environment { return e.parent }

// Define binds name in this scope only, replacing any existing local binding
// (including a constant one).
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = v
	delete(e.consts, name)
}

// DefineConst binds name in this scope and rejects later [Environment.Set].
func (e *Environment) DefineConst(name string, v Value) {
	e.vars[name] = v

	if e.consts == nil {
		e.consts = make(map[string]struct{})
	}

	e.consts[name] = struct{}{}
}

// Get looks name up in this scope, then in each parent in turn.
func (e *Environment) Get(name string) (Value, error) {
	if scope := e.resolve(name); scope != nil {
		return scope.vars[name], nil
	}

	return nil, ErrUndefinedVariable.Errorf("%s", name).
		With(slog.String("name", name))
}

// Set overwrites the nearest existing binding of name. It never creates a
// binding.
func (e *Environment) Set(name string, v Value) error {
	scope := e.resolve(name)
	if scope == nil {
		return ErrUndefinedVariable.Errorf("%s", name).
			With(slog.String("name", name))
	}

	if _, ok := scope.consts[name]; ok {
		return ErrConstantAssignment.Errorf("%s", name).
			With(slog.String("name", name))
	}

	scope.vars[name] = v

	return nil
}

// Has reports whether name is bound in this scope or any parent.
func (e *Environment) Has(name string) bool {
	return e.resolve(name) != nil
}

// Names returns the names bound in this scope and all parents, sorted and
// without duplicates.
func (e *Environment) Names() []string {
	var names []string

	for scope := e; scope != nil; scope = scope.parent {
		for name := range scope.vars {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// Local returns the names bound directly in this scope, sorted.
func (e *Environment) Local() []string {
	return sortedKeys(e.vars)
}

func (e *Environment) resolve(name string) *Environment {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.vars[name]; ok {
			return scope
		}
	}

	return nil
}
