package lang

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestArithmetic_UncertaintyPropagation(t *testing.T) {
	t.Parallel()

	x := &Annotated{Inner: Number(10), Confidence: 0.8, Uncertainty: 0.2}
	y := &Annotated{Inner: Number(4), Confidence: 0.7, Uncertainty: 0.3}
	z := &Annotated{Inner: Number(1), Confidence: 0.1, Uncertainty: 0.9}

	tests := []struct {
		name  string
		op    string
		a, b  Value
		value Value
		unc   float64
	}{
		{"add annotated", "+", x, y, Number(14), 0.5},
		{"sub annotated", "-", x, y, Number(6), 0.5},
		{"mul annotated", "*", x, y, Number(40), 0.5},
		{"div annotated", "/", x, y, Number(2.5), 0.5},
		{"mod annotated", "%", x, y, Number(2), 0.5},
		{"bare operands", "+", Number(5), Number(3), Number(8), 0},
		{"mixed operands", "*", x, Number(2), Number(20), 0.2},
		{"capped at one", "+", y, z, Number(5), 1},
		{"string concatenation", "+", String("a"), Number(1), String("a1"), 0},
		{"bool coerces", "+", Bool(true), Null{}, Number(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Arithmetic(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Inner != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, got.Inner)
			}

			if !near(got.Uncertainty, tt.unc) {
				t.Errorf("expected uncertainty %v, got %v", tt.unc, got.Uncertainty)
			}

			if !near(got.Confidence, 1-tt.unc) {
				t.Errorf("expected confidence %v, got %v", 1-tt.unc, got.Confidence)
			}

			if got.Class != ClassCombined {
				t.Errorf("expected class %s, got %s", ClassCombined, got.Class)
			}
		})
	}
}

func TestArithmetic_DivisionByZero(t *testing.T) {
	t.Parallel()

	got, err := Arithmetic("/", Number(1), Number(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !math.IsInf(float64(got.Inner.(Number)), 1) {
		t.Errorf("expected +Inf, got %v", got.Inner)
	}

	got, _ = Arithmetic("%", Number(1), Number(0))
	if !math.IsNaN(float64(got.Inner.(Number))) {
		t.Errorf("expected NaN, got %v", got.Inner)
	}
}

func TestArithmetic_UnknownOperator(t *testing.T) {
	t.Parallel()

	if _, err := Arithmetic("^", Number(1), Number(2)); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("expected %v, got %v", ErrUnknownOperator, err)
	}
}

func TestCombine_ProductConfidence(t *testing.T) {
	t.Parallel()

	x := &Annotated{Inner: Number(10), Confidence: 0.8, Uncertainty: 0.2}
	y := &Annotated{Inner: Number(4), Confidence: 0.7, Uncertainty: 0.3}

	got, err := Combine(x, y, "+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Inner != Number(14) {
		t.Errorf("expected 14, got %v", got.Inner)
	}

	if !near(got.Confidence, 0.56) {
		t.Errorf("expected confidence 0.56, got %v", got.Confidence)
	}

	if !near(got.Uncertainty, 0.5) {
		t.Errorf("expected uncertainty 0.5, got %v", got.Uncertainty)
	}

	// The binary-operator path yields a different confidence for the same
	// operands.
	direct, _ := Arithmetic("+", x, y)
	if near(direct.Confidence, got.Confidence) {
		t.Errorf("expected distinct confidences, both %v", got.Confidence)
	}
}

func TestNewRange(t *testing.T) {
	t.Parallel()

	tests := []struct{ x, r float64 }{
		{5, 0.5},
		{0, 0},
		{-3, 100},
		{1e6, 1e-6},
	}

	for _, tt := range tests {
		got := NewRange(tt.x, tt.r)

		if got.Range.Min != tt.x-tt.r || got.Range.Max != tt.x+tt.r {
			t.Errorf("%v ± %v: expected [%v, %v], got [%v, %v]",
				tt.x, tt.r, tt.x-tt.r, tt.x+tt.r, got.Range.Min, got.Range.Max)
		}

		if got.Confidence != RangeConfidence || got.Uncertainty != RangeUncertainty {
			t.Errorf("%v ± %v: expected 0.8/0.2, got %v/%v",
				tt.x, tt.r, got.Confidence, got.Uncertainty)
		}

		if got.Class != ClassUncertainRange {
			t.Errorf("expected class %s, got %s", ClassUncertainRange, got.Class)
		}
	}
}

func TestAnnotate_MergesRanged(t *testing.T) {
	t.Parallel()

	ranged := NewRange(5, 1)
	got := Annotate(ranged, ClassProbabilistic, 0.9, 0.1)

	if got.Inner != Number(5) {
		t.Errorf("expected raw inner 5, got %v", got.Inner)
	}

	if got.Range == nil || got.Range.Min != 4 || got.Range.Max != 6 {
		t.Errorf("expected range kept, got %+v", got.Range)
	}

	if got.Range == ranged.Range {
		t.Error("expected range copied")
	}

	if got.Confidence != 0.9 || got.Class != ClassProbabilistic {
		t.Errorf("expected annotation metadata, got %v", got)
	}
}

func TestUpdateConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		start    float64
		ev       Evidence
		wantConf float64
		wantErr  error
	}{
		{"blend", 0.5, Evidence{Weight: 0.5, Confidence: 1}, 0.75, nil},
		{"zero weight", 0.4, Evidence{Weight: 0, Confidence: 1}, 0.4, nil},
		{"full weight", 0.4, Evidence{Weight: 1, Confidence: 0.9}, 0.9, nil},
		{"clamped high", 0.9, Evidence{Weight: 2, Confidence: 1}, 1, nil},
		{"clamped low", 0.1, Evidence{Weight: 2, Confidence: -1}, 0, nil},
		{"NaN weight", 0.4, Evidence{Weight: math.NaN(), Confidence: 1}, 0.4, ErrInvalidArgument},
		{"NaN evidence", 0.4, Evidence{Weight: 0.5, Confidence: math.NaN()}, 0.4, ErrInvalidArgument},
		{"infinite weight", 0.4, Evidence{Weight: math.Inf(1), Confidence: 1}, 0.4, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := &Annotated{Inner: Number(1), Confidence: tt.start, Uncertainty: 1 - tt.start}

			if err := a.UpdateConfidence(tt.ev); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if !near(a.Confidence, tt.wantConf) {
				t.Errorf("expected confidence %v, got %v", tt.wantConf, a.Confidence)
			}

			if !near(a.Uncertainty, 1-tt.wantConf) {
				t.Errorf("expected uncertainty %v, got %v", 1-tt.wantConf, a.Uncertainty)
			}
		})
	}
}

func TestCompare_RawValues(t *testing.T) {
	t.Parallel()

	low := &Annotated{Inner: Number(3), Confidence: 0.1, Uncertainty: 0.9}

	tests := []struct {
		op   string
		a, b Value
		want Bool
	}{
		{"==", low, Number(3), true},
		{"!=", low, Number(3), false},
		{"<", Number(1), Number(2), true},
		{">=", Number(2), Number(2), true},
		{"<", String("a"), String("b"), true},
		{"==", Number(1), String("1"), false},
		{"==", Null{}, Null{}, true},
		{"<", Number(math.NaN()), Number(1), false},
	}

	for _, tt := range tests {
		got, err := Compare(tt.op, tt.a, tt.b)
		if err != nil {
			t.Fatalf("%v %s %v: unexpected error: %v", tt.a, tt.op, tt.b, err)
		}

		if got != tt.want {
			t.Errorf("%v %s %v: expected %v, got %v", tt.a, tt.op, tt.b, tt.want, got)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null{}, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"nonzero", Number(-1), true},
		{"nan", Number(math.NaN()), false},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"confident annotated", &Annotated{Inner: Bool(false), Confidence: 0.9}, true},
		{"doubtful annotated", &Annotated{Inner: Bool(true), Confidence: 0.5}, false},
		{"symbol", &Symbol{Confidence: SymbolConfidence}, true},
		{"object with confidence", &Object{Fields: map[string]Value{"confidence": Number(0.2)}}, false},
		{"object without confidence", &Object{}, true},
		{"empty list", &List{}, true},
	}

	for _, tt := range tests {
		if got := IsTruthy(tt.v); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    Value
		want string
	}{
		{Number(8), "8"},
		{Number(0.25), "0.25"},
		{Number(math.Inf(-1)), "-Infinity"},
		{String("raw"), "raw"},
		{&List{Elems: []Value{String("a"), Number(1)}}, `["a", 1]`},
		{
			&Annotated{Inner: Number(10), Class: ClassProbabilistic, Confidence: 0.8, Uncertainty: 0.2},
			"10 (probabilistic, confidence 0.80, uncertainty 0.20)",
		},
		{NewRange(5, 0.5), "5 ± 0.5 [4.5, 5.5] (uncertain_range, confidence 0.80, uncertainty 0.20)"},
		{
			&Graph{Name: "g", Relations: []Triple{{Number(1), String("x"), Number(2)}}},
			`knowledge_graph g { 1 -> "x" -> 2 }`,
		},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestMember(t *testing.T) {
	t.Parallel()

	ranged := NewRange(5, 1)
	list := &List{Elems: []Value{Number(1), Number(2)}}

	tests := []struct {
		name string
		got  Value
		want Value
	}{
		{"annotated value", member(ranged, "value"), Number(5)},
		{"annotated min", member(ranged, "min"), Number(4)},
		{"annotated type", member(ranged, "type"), String("uncertain_range")},
		{"missing member", member(ranged, "nope"), Null{}},
		{"list length", member(list, "length"), Number(2)},
		{"string length", member(String("héllo"), "length"), Number(5)},
		{"list index", index(list, Number(1)), Number(2)},
		{"list out of range", index(list, Number(2)), Null{}},
		{"fractional index", index(list, Number(0.5)), Null{}},
		{"string index", index(String("abc"), Number(2)), String("c")},
		{"number member", member(Number(1), "x"), Null{}},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}
