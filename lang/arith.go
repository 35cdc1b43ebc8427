package lang

import (
	"math"
)

// ArithmeticOperators are the operators accepted by [Arithmetic] and
// [Combine].
var ArithmeticOperators = []string{"+", "-", "*", "/", "%"}

// Arithmetic applies a binary arithmetic operator to the raw values of a and
// b. The result is always annotated: uncertainty = min(u1+u2, 1) and
// confidence = 1 - uncertainty.
func Arithmetic(op string, a, b Value) (*Annotated, error) {
	raw, err := applyArithmetic(op, a, b)
	if err != nil {
		return nil, err
	}

	u := math.Min(UncertaintyOf(a)+UncertaintyOf(b), 1)

	return &Annotated{
		Inner:       raw,
		Class:       ClassCombined,
		Confidence:  1 - u,
		Uncertainty: u,
	}, nil
}

// Combine applies op to the raw values of a and b. Unlike [Arithmetic] the
// confidence is the product of the operand confidences:
// uncertainty = min(u1+u2, 1), confidence = max(c1*c2, 0).
func Combine(a, b Value, op string) (*Annotated, error) {
	raw, err := applyArithmetic(op, a, b)
	if err != nil {
		return nil, err
	}

	return &Annotated{
		Inner:       raw,
		Class:       ClassCombined,
		Confidence:  math.Max(ConfidenceOf(a)*ConfidenceOf(b), 0),
		Uncertainty: math.Min(UncertaintyOf(a)+UncertaintyOf(b), 1),
	}, nil
}

func applyArithmetic(op string, a, b Value) (Value, error) {
	x, y := Raw(a), Raw(b)

	if op == "+" {
		_, xs := x.(String)
		_, ys := y.(String)

		if xs || ys {
			return String(x.String() + y.String()), nil
		}
	}

	l, r := toNumber(x), toNumber(y)

	switch op {
	case "+":
		return Number(l + r), nil
	case "-":
		return Number(l - r), nil
	case "*":
		return Number(l * r), nil
	case "/":
		return Number(l / r), nil
	case "%":
		return Number(math.Mod(l, r)), nil
	}

	return nil, ErrUnknownOperator.Errorf("%q", op)
}

// Compare applies a comparison operator to the raw values of a and b.
// Confidence is neither inspected nor propagated.
func Compare(op string, a, b Value) (Bool, error) {
	x, y := Raw(a), Raw(b)

	switch op {
	case "==":
		return Bool(rawEqual(x, y)), nil
	case "!=":
		return Bool(!rawEqual(x, y)), nil
	}

	var c int

	xs, xok := x.(String)
	ys, yok := y.(String)

	if xok && yok {
		switch {
		case xs < ys:
			c = -1
		case xs > ys:
			c = 1
		}
	} else {
		l, r := toNumber(x), toNumber(y)
		if math.IsNaN(l) || math.IsNaN(r) {
			return false, nil
		}

		switch {
		case l < r:
			c = -1
		case l > r:
			c = 1
		}
	}

	switch op {
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	case ">=":
		return c >= 0, nil
	}

	return false, ErrUnknownOperator.Errorf("%q", op)
}

func rawEqual(x, y Value) bool {
	switch x := x.(type) {
	case Null:
		_, ok := y.(Null)

		return ok
	case Number:
		y, ok := y.(Number)

		return ok && x == y
	case String:
		y, ok := y.(String)

		return ok && x == y
	case Bool:
		y, ok := y.(Bool)

		return ok && x == y
	}

	return x == y
}

// toNumber coerces a raw value to a float: true is 1, false and null are 0,
// numeric strings parse, everything else is NaN.
func toNumber(v Value) float64 {
	switch v := v.(type) {
	case Number:
		return float64(v)
	case Bool:
		if v {
			return 1
		}

		return 0
	case Null:
		return 0
	case String:
		return parseNumber(string(v))
	}

	return math.NaN()
}
