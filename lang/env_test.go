package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestEnvironment_GetSet(t *testing.T) {
	t.Parallel()

	root := NewEnvironment(nil)
	root.Define("a", Number(1))

	child := root.Child()
	child.Define("b", Number(2))

	if v, err := child.Get("a"); err != nil || v != Number(1) {
		t.Errorf("expected a=1 through parent, got %v (%v)", v, err)
	}

	if _, err := root.Get("b"); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected %v, got %v", ErrUndefinedVariable, err)
	}

	if err := child.Set("a", Number(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := root.Get("a"); v != Number(10) {
		t.Errorf("expected set to update parent binding, got %v", v)
	}

	if child.Local()[0] != "b" || len(child.Local()) != 1 {
		t.Errorf("expected only b local to child, got %v", child.Local())
	}
}

func TestEnvironment_SetNeverDefines(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(nil)

	err := env.Set("missing", Number(1))
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected %v, got %v", ErrUndefinedVariable, err)
	}

	if env.Has("missing") {
		t.Error("expected Set to leave name unbound")
	}
}

func TestEnvironment_Shadowing(t *testing.T) {
	t.Parallel()

	root := NewEnvironment(nil)
	root.Define("x", String("outer"))

	inner := root.Child()
	inner.Define("x", String("inner"))

	if v, _ := inner.Get("x"); v != String("inner") {
		t.Errorf("expected inner shadow, got %v", v)
	}

	if v, _ := root.Get("x"); v != String("outer") {
		t.Errorf("expected outer untouched, got %v", v)
	}

	if inner.Parent() != root {
		t.Error("expected parent link")
	}
}

func TestEnvironment_Const(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(nil)
	env.DefineConst("pi", Number(3.14))

	err := env.Child().Set("pi", Number(3))
	if !errors.Is(err, ErrConstantAssignment) {
		t.Fatalf("expected %v, got %v", ErrConstantAssignment, err)
	}

	env.Define("pi", Number(3))

	if err := env.Set("pi", Number(4)); err != nil {
		t.Errorf("expected redefinition to clear const, got %v", err)
	}
}

func TestEnvironment_Names(t *testing.T) {
	t.Parallel()

	root := NewEnvironment(nil)
	root.Define("b", Null{})
	root.Define("a", Null{})

	child := root.Child()
	child.Define("c", Null{})
	child.Define("a", Null{})

	want := []string{"a", "b", "c"}
	if got := child.Names(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
