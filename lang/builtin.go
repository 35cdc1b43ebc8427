package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

// Builtins lists the names bound in every interpreter's global scope.
var Builtins = []string{
	"confidence", "uncertainty", "validate", "integrate",
	"reason_about", "know", "conclude", "seek", "seek_more_data",
	"combine", "update_confidence",
	"self", "console", "Math",
}

// Fixed metadata of the non-random built-ins.
const (
	IntegrateConfidence = 0.8
	ConcludeConfidence  = 0.9
)

func (in *Interpreter) defineBuiltins() {
	fns := map[string]BuiltinFunc{
		"confidence": func(_ context.Context, args []Value) (Value, error) {
			return Number(ConfidenceOf(arg(args, 0))), nil
		},
		"uncertainty": func(_ context.Context, args []Value) (Value, error) {
			return Number(UncertaintyOf(arg(args, 0))), nil
		},
		"validate":          in.validate,
		"integrate":         in.integrate,
		"reason_about":      in.consult(QueryReason),
		"know":              in.consult(QueryKnow),
		"seek":              in.consult(QuerySeek),
		"seek_more_data":    in.consult(QuerySeekMore),
		"conclude":          conclude,
		"combine":           combine,
		"update_confidence": updateConfidence,
	}

	for name, fn := range fns {
		in.global.Define(name, &Builtin{Name: name, Fn: fn})
	}

	in.global.Define("self", in.selfObject())
	in.global.Define("console", in.consoleObject())
	in.global.Define("Math", in.mathObject())
}

func arg(args []Value, i int) Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}

	return Null{}
}

func (in *Interpreter) validate(ctx context.Context, args []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch v := arg(args, 0).(type) {
	case *Annotated:
		return Bool(v.Confidence > 0.5), nil
	case Number:
		f := float64(v)

		return Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	case String:
		return Bool(v != ""), nil
	case Bool:
		return Bool(true), nil
	case Null:
		return Bool(false), nil
	}

	return Bool(true), nil
}

func (in *Interpreter) integrate(ctx context.Context, args []Value) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := arg(args, 0)

	if a, ok := v.(*Annotated); ok {
		a.Class = ClassIntegrated
		a.Confidence = IntegrateConfidence
		a.Uncertainty = 1 - IntegrateConfidence

		return a, nil
	}

	return Annotate(v, ClassIntegrated, IntegrateConfidence, 1-IntegrateConfidence), nil
}

func (in *Interpreter) consult(kind QueryKind) BuiltinFunc {
	return func(ctx context.Context, args []Value) (Value, error) {
		q := Query{Kind: kind, Subject: arg(args, 0)}

		out, err := in.opts.oracle.Consult(ctx, q)
		if err != nil {
			return nil, err
		}

		in.opts.logger.TraceContext(ctx, "oracle consulted",
			slog.String("query", kind.String()),
			valueAttr("outcome", out),
		)

		return out, nil
	}
}

func conclude(_ context.Context, args []Value) (Value, error) {
	return Annotate(arg(args, 0), ClassConclusion, ConcludeConfidence, 1-ConcludeConfidence), nil
}

func combine(_ context.Context, args []Value) (Value, error) {
	op, ok := Raw(arg(args, 2)).(String)
	if !ok {
		return nil, ErrInvalidArgument.Errorf("combine: operator must be a string")
	}

	if !slices.Contains(ArithmeticOperators, string(op)) {
		return nil, ErrUnknownOperator.
			Errorf("combine: %q is not one of %s", op, strings.Join(ArithmeticOperators, " ")).
			With(slog.String("operator", string(op)))
	}

	return Combine(arg(args, 0), arg(args, 1), string(op))
}

// updateConfidence blends evidence into an annotated value in place. A value
// without metadata is first wrapped with its implied confidence.
func updateConfidence(_ context.Context, args []Value) (Value, error) {
	v := arg(args, 0)

	a, ok := v.(*Annotated)
	if !ok {
		a = Annotate(v, ClassProbabilistic, ConfidenceOf(v), UncertaintyOf(v))
	}

	err := a.UpdateConfidence(Evidence{
		Weight:     toNumber(Raw(arg(args, 1))),
		Confidence: toNumber(Raw(arg(args, 2))),
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (in *Interpreter) selfObject() *Object {
	snapshot := func() *Object {
		return &Object{Fields: map[string]Value{
			"confidence":  Number(in.self.confidence),
			"uncertainty": Number(in.self.uncertainty),
		}}
	}

	return &Object{
		Name: "self",
		Fields: map[string]Value{
			"updateConfidence": &Builtin{
				Name: "updateConfidence",
				Fn: func(_ context.Context, args []Value) (Value, error) {
					c := clamp01(in.self.confidence + toNumber(Raw(arg(args, 0))))
					if math.IsNaN(c) {
						return nil, ErrInvalidArgument.Errorf("updateConfidence: delta is not a number")
					}

					in.self.confidence = c
					in.self.uncertainty = 1 - c

					return Number(c), nil
				},
			},
			"reflect": &Builtin{
				Name: "reflect",
				Fn: func(context.Context, []Value) (Value, error) {
					return snapshot(), nil
				},
			},
		},
		Dynamic: func(name string) (Value, bool) {
			switch name {
			case "confidence":
				return Number(in.self.confidence), true
			case "uncertainty":
				return Number(in.self.uncertainty), true
			}

			return nil, false
		},
	}
}

// SelfConfidence returns the current confidence and uncertainty of the self
// object.
func (in *Interpreter) SelfConfidence() (confidence, uncertainty float64) {
	return in.self.confidence, in.self.uncertainty
}

func (in *Interpreter) consoleObject() *Object {
	printer := func(name string, w io.Writer) *Builtin {
		return &Builtin{
			Name: name,
			Fn: func(_ context.Context, args []Value) (Value, error) {
				parts := make([]string, len(args))
				for i, a := range args {
					parts[i] = a.String()
				}

				_, err := fmt.Fprintln(w, strings.Join(parts, " "))

				return Null{}, err
			},
		}
	}

	return &Object{
		Name: "console",
		Fields: map[string]Value{
			"log":   printer("log", in.opts.stdout),
			"error": printer("error", in.opts.stderr),
		},
	}
}

func (in *Interpreter) mathObject() *Object {
	unary := func(name string, fn func(float64) float64) *Builtin {
		return &Builtin{
			Name: name,
			Fn: func(_ context.Context, args []Value) (Value, error) {
				return Number(fn(toNumber(Raw(arg(args, 0))))), nil
			},
		}
	}

	fold := func(name string, init float64, fn func(a, b float64) float64) *Builtin {
		return &Builtin{
			Name: name,
			Fn: func(_ context.Context, args []Value) (Value, error) {
				acc := init
				for _, a := range args {
					acc = fn(acc, toNumber(Raw(a)))
				}

				return Number(acc), nil
			},
		}
	}

	random := rand.Float64
	if o, ok := in.opts.oracle.(*RandomOracle); ok {
		random = o.Float64
	}

	return &Object{
		Name: "Math",
		Fields: map[string]Value{
			"abs":   unary("abs", math.Abs),
			"floor": unary("floor", math.Floor),
			"ceil":  unary("ceil", math.Ceil),
			"round": unary("round", func(f float64) float64 { return math.Floor(f + 0.5) }),
			"sqrt":  unary("sqrt", math.Sqrt),
			"log":   unary("log", math.Log),
			"exp":   unary("exp", math.Exp),
			"sin":   unary("sin", math.Sin),
			"cos":   unary("cos", math.Cos),
			"pow": &Builtin{
				Name: "pow",
				Fn: func(_ context.Context, args []Value) (Value, error) {
					return Number(math.Pow(
						toNumber(Raw(arg(args, 0))),
						toNumber(Raw(arg(args, 1))),
					)), nil
				},
			},
			"min": fold("min", math.Inf(1), math.Min),
			"max": fold("max", math.Inf(-1), math.Max),
			"random": &Builtin{
				Name: "random",
				Fn: func(context.Context, []Value) (Value, error) {
					return Number(random()), nil
				},
			},
			"PI": Number(math.Pi),
			"E":  Number(math.E),
		},
	}
}
