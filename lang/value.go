package lang

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Value is a runtime value. The set of implementations is closed: the raw
// values [Null], [Number], [String] and [Bool], plus [*Annotated],
// [*Function], [*Builtin], [*Symbol], [*Graph], [*List] and [*Object].
type Value interface {
	// Type returns the name of the value's variant.
	Type() string
	// String renders the value for display.
	String() string

	isValue()
}

// Null is the absent value.
type Null struct{}

// Number is an IEEE-754 double.
type Number float64

// String is a text value.
type String string

// Bool is a boolean value.
type Bool bool

func (Null) Type() string   { return "null" }
func (Number) Type() string { return "number" }
func (String) Type() string { return "string" }
func (Bool) Type() string   { return "boolean" }

func (Null) String() string { return "null" }

func (n Number) String() string {
	f := float64(n)

	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (s String) String() string { return string(s) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }

func (Null) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Bool) isValue()   {}

// Classification names how an [Annotated] value came to carry its
// confidence.
type Classification string

const (
	ClassProbabilistic     Classification = "probabilistic"
	ClassConfident         Classification = "confident"
	ClassUncertain         Classification = "uncertain"
	ClassUncertainRange    Classification = "uncertain_range"
	ClassCombined          Classification = "combined"
	ClassIntegrated        Classification = "integrated"
	ClassKnowledgeCheck    Classification = "knowledge_check"
	ClassConclusion        Classification = "conclusion"
	ClassSoughtInformation Classification = "sought_information"
	ClassAdditionalData    Classification = "additional_data"
)

// Classifications lists every classification in declaration order.
var Classifications = []Classification{
	ClassProbabilistic, ClassConfident, ClassUncertain, ClassUncertainRange,
	ClassCombined, ClassIntegrated, ClassKnowledgeCheck, ClassConclusion,
	ClassSoughtInformation, ClassAdditionalData,
}

// Range is the spread recorded by the "±" operator.
type Range struct {
	Delta float64
	Min   float64
	Max   float64
}

// Annotated pairs a raw value with confidence metadata.
//
// Uncertainty is usually 1-Confidence, but not every constructor keeps that
// relation (see [NewRange]).
type Annotated struct {
	Inner       Value
	Class       Classification
	Confidence  float64
	Uncertainty float64
	Range       *Range
}

// Range construction constants. They do not depend on the range magnitude.
const (
	RangeConfidence  = 0.8
	RangeUncertainty = 0.2
)

// Annotate wraps v with the given metadata. If v is already annotated its
// raw inner value and range are kept and the metadata is replaced.
func Annotate(v Value, class Classification, confidence, uncertainty float64) *Annotated {
	a := &Annotated{
		Inner:       Raw(v),
		Class:       class,
		Confidence:  confidence,
		Uncertainty: uncertainty,
	}

	if prev, ok := v.(*Annotated); ok && prev.Range != nil {
		r := *prev.Range
		a.Range = &r
	}

	return a
}

// NewRange builds "x ± r".
func NewRange(x, r float64) *Annotated {
	return &Annotated{
		Inner:       Number(x),
		Class:       ClassUncertainRange,
		Confidence:  RangeConfidence,
		Uncertainty: RangeUncertainty,
		Range:       &Range{Delta: r, Min: x - r, Max: x + r},
	}
}

func (*Annotated) Type() string { return "annotated" }

func (a *Annotated) String() string {
	var b strings.Builder

	b.WriteString(repr(a.Inner))

	if a.Range != nil {
		b.WriteString(" ± " + Number(a.Range.Delta).String())
		b.WriteString(" [" + Number(a.Range.Min).String() + ", " + Number(a.Range.Max).String() + "]")
	}

	b.WriteString(" (")

	if a.Class != "" {
		b.WriteString(string(a.Class) + ", ")
	}

	b.WriteString("confidence " + strconv.FormatFloat(a.Confidence, 'f', 2, 64))
	b.WriteString(", uncertainty " + strconv.FormatFloat(a.Uncertainty, 'f', 2, 64) + ")")

	return b.String()
}

func (*Annotated) isValue() {}

// Evidence is an observation used by [Annotated.UpdateConfidence].
type Evidence struct {
	Weight     float64
	Confidence float64
}

// UpdateConfidence blends the current confidence with the evidence:
// c' = c*(1-w) + e*w, clamped to [0,1]. Uncertainty becomes 1-c'.
// Evidence that does not blend to a number leaves a unchanged and fails with
// [ErrInvalidArgument].
func (a *Annotated) UpdateConfidence(ev Evidence) error {
	c := clamp01(a.Confidence*(1-ev.Weight) + ev.Confidence*ev.Weight)
	if math.IsNaN(c) {
		return ErrInvalidArgument.
			Errorf("evidence weight %v with confidence %v", ev.Weight, ev.Confidence).
			With(slog.Float64("weight", ev.Weight), slog.Float64("confidence", ev.Confidence))
	}

	a.Confidence = c
	a.Uncertainty = 1 - c

	return nil
}

// Function is a user-defined function or learn function closing over the
// environment it was declared in.
type Function struct {
	Name        string
	Params      []string
	Body        *BlockStatement
	Closure     *Environment
	Learn       bool
	Adaptations int
}

func (f *Function) Type() string {
	if f.Learn {
		return "learn_function"
	}

	return "function"
}

func (f *Function) String() string {
	prefix := "function "
	if f.Learn {
		prefix = "learn function "
	}

	return prefix + f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

func (*Function) isValue() {}

// BuiltinFunc implements a [Builtin].
type BuiltinFunc func(ctx context.Context, args []Value) (Value, error)

// Builtin is a host-implemented function.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func (*Builtin) Type() string     { return "builtin" }
func (b *Builtin) String() string { return "builtin " + b.Name + "()" }
func (*Builtin) isValue()         {}

// SymbolConfidence is the confidence given to every new [Symbol].
const SymbolConfidence = 0.9

// Symbol is a named expression with generated notation.
type Symbol struct {
	Name       string
	Value      Value
	Notation   string
	Confidence float64
}

func (*Symbol) Type() string { return "symbol" }

func (s *Symbol) String() string {
	return "symbol " + s.Name + " = " + s.Notation + " (" + repr(s.Value) + ")"
}

func (*Symbol) isValue() {}

// Triple is one evaluated knowledge-graph relation.
type Triple struct {
	Subject   Value
	Predicate Value
	Object    Value
}

// Graph is a named set of evaluated relations.
type Graph struct {
	Name      string
	Relations []Triple
}

func (*Graph) Type() string { return "graph" }

func (g *Graph) String() string {
	var b strings.Builder

	b.WriteString("knowledge_graph " + g.Name + " {")

	for i, r := range g.Relations {
		if i > 0 {
			b.WriteByte(';')
		}

		b.WriteString(" " + repr(r.Subject) + " -> " + repr(r.Predicate) + " -> " + repr(r.Object))
	}

	if len(g.Relations) > 0 {
		b.WriteByte(' ')
	}

	b.WriteByte('}')

	return b.String()
}

func (*Graph) isValue() {}

// List is an ordered sequence of values.
type List struct {
	Elems []Value
}

func (*List) Type() string { return "list" }

func (l *List) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = repr(e)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (*List) isValue() {}

// Object is a named record of fields. Dynamic, when set, is consulted before
// Fields so that fields can reflect live state.
type Object struct {
	Name    string
	Fields  map[string]Value
	Dynamic func(name string) (Value, bool)
}

func (*Object) Type() string { return "object" }

func (o *Object) String() string {
	keys := sortedKeys(o.Fields)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+repr(o.Fields[k]))
	}

	name := o.Name
	if name != "" {
		name += " "
	}

	return name + "{" + strings.Join(parts, ", ") + "}"
}

func (*Object) isValue() {}

// repr renders v for display inside a container, quoting strings.
func repr(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}

	if v == nil {
		return "null"
	}

	return v.String()
}

// Raw returns the raw value underlying v: the inner value of an annotated
// value, the value of a symbol, or v itself.
func Raw(v Value) Value {
	switch v := v.(type) {
	case *Annotated:
		return Raw(v.Inner)
	case *Symbol:
		return Raw(v.Value)
	case nil:
		return Null{}
	}

	return v
}

// ConfidenceOf returns the confidence carried by v, or 1 when v carries none.
func ConfidenceOf(v Value) float64 {
	switch v := v.(type) {
	case *Annotated:
		return v.Confidence
	case *Symbol:
		return v.Confidence
	}

	return 1
}

// UncertaintyOf returns the uncertainty carried by v, or 0 when v carries
// none.
func UncertaintyOf(v Value) float64 {
	switch v := v.(type) {
	case *Annotated:
		return v.Uncertainty
	case *Symbol:
		return 1 - v.Confidence
	}

	return 0
}

// confidenceField returns the confidence a value exposes, if it exposes one.
func confidenceField(v Value) (float64, bool) {
	switch v := v.(type) {
	case *Annotated:
		return v.Confidence, true
	case *Symbol:
		return v.Confidence, true
	case *Object:
		if c, ok := v.Member("confidence"); ok {
			if n, ok := c.(Number); ok {
				return float64(n), true
			}
		}
	}

	return 0, false
}

// IsTruthy reports whether v counts as true in a condition. Values exposing
// a confidence are true iff their confidence exceeds 0.5.
func IsTruthy(v Value) bool {
	if c, ok := confidenceField(v); ok {
		return c > 0.5
	}

	switch v := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(v)
	case Number:
		return v != 0 && !math.IsNaN(float64(v))
	case String:
		return v != ""
	}

	return true
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
