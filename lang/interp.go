package lang

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/ardnew/mial/tracker"
)

// Result is the outcome of evaluating one node. Returned marks a value
// produced by a return statement that is still unwinding toward the nearest
// call boundary.
type Result struct {
	Value    Value
	Returned bool
}

func normal(v Value) Result { return Result{Value: v} }

// Interpreter evaluates programs against a persistent global scope seeded
// with the built-in library. Successive calls to [Interpreter.Run] share that
// scope, so bindings from one program are visible to the next.
//
// An Interpreter is not safe for concurrent use; run concurrent programs in
// separate interpreters.
type Interpreter struct {
	opts   options
	global *Environment
	self   selfState
	depth  int
}

// selfState is the system-wide confidence exposed as the "self" built-in.
type selfState struct {
	confidence  float64
	uncertainty float64
}

// NewInterpreter creates an interpreter with a fresh global scope.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		opts:   makeOptions(opts...),
		global: NewEnvironment(nil),
		self:   selfState{confidence: 0.5, uncertainty: 0.5},
	}

	in.defineBuiltins()

	return in
}

// Global returns the interpreter's root scope.
func (in *Interpreter) Global() *Environment { return in.global }

// Run parses, validates and evaluates source in the global scope and returns
// the value of the last evaluated statement.
func (in *Interpreter) Run(ctx context.Context, source string) (Value, error) {
	prog, err := in.parse(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := Validate(ctx, prog, in.options()...); err != nil {
		return nil, err
	}

	return in.Exec(ctx, prog)
}

// Exec evaluates an already parsed and validated program in the global scope.
// A top-level return stops the program and yields its value.
func (in *Interpreter) Exec(ctx context.Context, prog *Program) (Value, error) {
	res, err := in.evalStatements(ctx, prog.Body, in.global)
	if err != nil {
		in.opts.logger.DebugContext(ctx, "evaluation failed", slog.Any("error", err))

		return nil, err
	}

	in.opts.logger.TraceContext(ctx, "evaluation complete", valueAttr("result", res.Value))

	return res.Value, nil
}

func (in *Interpreter) parse(ctx context.Context, source string) (*Program, error) {
	if in.opts.cache {
		return ParseCached(ctx, source, in.options()...)
	}

	return Parse(ctx, source, in.options()...)
}

// options returns the settings the parser and validator share with the
// interpreter.
func (in *Interpreter) options() []Option {
	return []Option{
		WithLogger(in.opts.logger),
		WithRecovery(in.opts.recovery),
		WithMaxDepth(in.opts.maxDepth),
	}
}

// Evaluate evaluates n in env.
func (in *Interpreter) Evaluate(ctx context.Context, n Node, env *Environment) (Result, error) {
	switch n := n.(type) {
	case *Program:
		return in.evalStatements(ctx, n.Body, env)

	case *VariableDeclaration:
		return in.evalVariableDeclaration(ctx, n, env)

	case *FunctionDeclaration:
		fn := &Function{Name: n.Name, Params: n.Params, Body: n.Body, Closure: env}
		env.Define(n.Name, fn)

		return normal(fn), nil

	case *LearnFunctionDeclaration:
		fn := &Function{Name: n.Name, Params: n.Params, Body: n.Body, Closure: env, Learn: true}
		env.Define(n.Name, fn)

		in.notify(ctx, "learn function", func(t tracker.Tracker) error {
			return t.AddLearnFunction(ctx, tracker.LearnFunction{
				Name:   n.Name,
				Params: slices.Clone(n.Params),
			})
		})

		return normal(fn), nil

	case *MetaBlock:
		return in.evalMetaBlock(ctx, n, env)

	case *SymbolDefinition:
		return in.evalSymbolDefinition(ctx, n, env)

	case *KnowledgeGraph:
		return in.evalKnowledgeGraph(ctx, n, env)

	case *BlockStatement:
		return in.evalStatements(ctx, n.Body, env.Child())

	case *IfStatement:
		test, err := in.eval(ctx, n.Test, env)
		if err != nil {
			return Result{}, err
		}

		switch {
		case IsTruthy(test):
			return in.Evaluate(ctx, n.Consequent, env)
		case n.Alternate != nil:
			return in.Evaluate(ctx, n.Alternate, env)
		}

		return normal(Null{}), nil

	case *WhileStatement:
		return in.evalLoop(ctx, env, n.Test, nil, n.Body)

	case *ForStatement:
		scope := env.Child()

		if n.Init != nil {
			if _, err := in.Evaluate(ctx, n.Init, scope); err != nil {
				return Result{}, err
			}
		}

		return in.evalLoop(ctx, scope, n.Test, n.Update, n.Body)

	case *ReturnStatement:
		var v Value = Null{}

		if n.Argument != nil {
			var err error
			if v, err = in.eval(ctx, n.Argument, env); err != nil {
				return Result{}, err
			}
		}

		return Result{Value: v, Returned: true}, nil

	case *ExpressionStatement:
		v, err := in.eval(ctx, n.Expr, env)

		return normal(v), err

	case nil:
		return normal(Null{}), nil
	}

	v, err := in.evalExpression(ctx, n, env)

	return normal(v), err
}

// eval evaluates an expression node to its value.
func (in *Interpreter) eval(ctx context.Context, n Node, env *Environment) (Value, error) {
	res, err := in.Evaluate(ctx, n, env)
	if err != nil {
		return nil, err
	}

	return res.Value, nil
}

func (in *Interpreter) evalStatements(
	ctx context.Context,
	body []Node,
	env *Environment,
) (Result, error) {
	last := normal(Null{})

	for _, stmt := range body {
		in.opts.logger.TraceContext(ctx, "evaluate statement",
			slog.String("node", NodeType(stmt)),
			slog.Any("position", stmt.Pos()),
		)

		res, err := in.Evaluate(ctx, stmt, env)
		if err != nil {
			return Result{}, err
		}

		if res.Returned {
			return res, nil
		}

		last = res
	}

	return last, nil
}

func (in *Interpreter) evalLoop(
	ctx context.Context,
	env *Environment,
	test, update, body Node,
) (Result, error) {
	last := normal(Null{})

	for {
		if test != nil {
			v, err := in.eval(ctx, test, env)
			if err != nil {
				return Result{}, err
			}

			if !IsTruthy(v) {
				return last, nil
			}
		}

		res, err := in.Evaluate(ctx, body, env)
		if err != nil {
			return Result{}, err
		}

		if res.Returned {
			return res, nil
		}

		last = res

		if update != nil {
			if _, err := in.eval(ctx, update, env); err != nil {
				return Result{}, err
			}
		}
	}
}

func (in *Interpreter) evalVariableDeclaration(
	ctx context.Context,
	n *VariableDeclaration,
	env *Environment,
) (Result, error) {
	var v Value = Null{}

	if n.Init != nil {
		var err error
		if v, err = in.eval(ctx, n.Init, env); err != nil {
			return Result{}, err
		}
	}

	if ann := n.Annotation; ann != nil && ann.Kind != AnnotationNamed {
		arg, err := in.eval(ctx, ann.Arg, env)
		if err != nil {
			return Result{}, err
		}

		c := clamp01(toNumber(Raw(arg)))
		if math.IsNaN(c) {
			return Result{}, ErrInvalidArgument.At(ann.Pos()).
				Errorf("confidence %s is not a number", repr(Raw(arg)))
		}

		class := ClassProbabilistic
		if ann.Kind == AnnotationConfident {
			class = ClassConfident
		}

		v = Annotate(v, class, c, 1-c)
	}

	if n.Const {
		env.DefineConst(n.Name, v)
	} else {
		env.Define(n.Name, v)
	}

	if n.Annotation != nil {
		entity := tracker.Entity{
			Kind:        tracker.EntityVariable,
			Name:        n.Name,
			Value:       Native(Raw(v)),
			Confidence:  ConfidenceOf(v),
			Uncertainty: UncertaintyOf(v),
		}

		if a, ok := v.(*Annotated); ok {
			entity.Classification = string(a.Class)
		}

		in.notify(ctx, "variable", func(t tracker.Tracker) error {
			return t.AddSymbol(ctx, entity)
		})
	}

	return normal(v), nil
}

// metaThreshold reports whether a meta block guarded by a condition with the
// given metrics runs.
func metaThreshold(confidence, uncertainty float64) bool {
	return confidence > 0.5 || uncertainty < 0.3
}

// metaMetrics reads the confidence and uncertainty a meta block condition
// exposes, defaulting each to 0.5.
func metaMetrics(v Value) (confidence, uncertainty float64) {
	confidence, uncertainty = 0.5, 0.5

	if c, ok := confidenceField(v); ok {
		confidence = c
	}

	switch v := v.(type) {
	case *Annotated:
		uncertainty = v.Uncertainty
	case *Symbol:
		uncertainty = 1 - v.Confidence
	case *Object:
		if u, ok := v.Member("uncertainty"); ok {
			if n, ok := u.(Number); ok {
				uncertainty = float64(n)
			}
		}
	}

	return confidence, uncertainty
}

func (in *Interpreter) evalMetaBlock(
	ctx context.Context,
	n *MetaBlock,
	env *Environment,
) (Result, error) {
	cond, err := in.eval(ctx, n.Condition, env)
	if err != nil {
		return Result{}, err
	}

	c, u := metaMetrics(cond)
	if !metaThreshold(c, u) {
		in.opts.logger.TraceContext(ctx, "meta block skipped",
			slog.Float64("confidence", c),
			slog.Float64("uncertainty", u),
		)

		return normal(Null{}), nil
	}

	res, err := in.Evaluate(ctx, n.Body, env)
	if err != nil {
		return Result{}, err
	}

	activity := tracker.MetaActivity{
		Condition:   Notation(n.Condition),
		Result:      Native(res.Value),
		Confidence:  c,
		Uncertainty: u,
		Reasoning: fmt.Sprintf(
			"executed: confidence %.2f > 0.5 or uncertainty %.2f < 0.3", c, u,
		),
	}

	in.notify(ctx, "meta reasoning", func(t tracker.Tracker) error {
		return t.LogMetaReasoning(ctx, activity)
	})

	return res, nil
}

func (in *Interpreter) evalSymbolDefinition(
	ctx context.Context,
	n *SymbolDefinition,
	env *Environment,
) (Result, error) {
	v, err := in.eval(ctx, n.Expr, env)
	if err != nil {
		return Result{}, err
	}

	sym := &Symbol{
		Name:       n.Name,
		Value:      v,
		Notation:   Notation(n.Expr),
		Confidence: SymbolConfidence,
	}

	env.Define(n.Name, sym)

	in.notify(ctx, "symbol", func(t tracker.Tracker) error {
		return t.AddSymbol(ctx, tracker.Entity{
			Kind:        tracker.EntitySymbol,
			Name:        sym.Name,
			Notation:    sym.Notation,
			Value:       Native(Raw(v)),
			Confidence:  sym.Confidence,
			Uncertainty: 1 - sym.Confidence,
		})
	})

	return normal(sym), nil
}

func (in *Interpreter) evalKnowledgeGraph(
	ctx context.Context,
	n *KnowledgeGraph,
	env *Environment,
) (Result, error) {
	g := &Graph{Name: n.Name, Relations: make([]Triple, 0, len(n.Relations))}
	rels := make([]tracker.Relation, 0, len(n.Relations))

	for _, r := range n.Relations {
		var t [3]Value

		for i, part := range []Node{r.Subject, r.Predicate, r.Object} {
			v, err := in.eval(ctx, part, env)
			if err != nil {
				return Result{}, err
			}

			t[i] = v
		}

		g.Relations = append(g.Relations, Triple{Subject: t[0], Predicate: t[1], Object: t[2]})
		rels = append(rels, tracker.Relation{
			Subject:   Native(t[0]),
			Predicate: Native(t[1]),
			Object:    Native(t[2]),
		})
	}

	env.Define(n.Name, g)

	in.notify(ctx, "knowledge graph", func(t tracker.Tracker) error {
		return t.AddKnowledgeGraph(ctx, tracker.Graph{Name: g.Name, Relations: rels})
	})

	return normal(g), nil
}

func (in *Interpreter) evalExpression(ctx context.Context, n Node, env *Environment) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Identifier:
		v, err := env.Get(n.Name)
		if err != nil {
			return nil, locate(err, n)
		}

		return v, nil

	case *ArrayLiteral:
		elems := make([]Value, 0, len(n.Elements))

		for _, e := range n.Elements {
			v, err := in.eval(ctx, e, env)
			if err != nil {
				return nil, err
			}

			elems = append(elems, v)
		}

		return &List{Elems: elems}, nil

	case *BinaryExpression:
		return in.evalBinary(ctx, n, env)

	case *UnaryExpression:
		return in.evalUnary(ctx, n, env)

	case *LogicalExpression:
		left, err := in.eval(ctx, n.Left, env)
		if err != nil {
			return nil, err
		}

		switch n.Op {
		case "&&":
			if !IsTruthy(left) {
				return left, nil
			}
		case "||":
			if IsTruthy(left) {
				return left, nil
			}
		default:
			return nil, ErrUnknownOperator.At(n.Pos()).Errorf("%s", n.Op)
		}

		return in.eval(ctx, n.Right, env)

	case *AssignmentExpression:
		id, ok := n.Target.(*Identifier)
		if !ok {
			return nil, ErrInvalidAssignmentTarget.At(n.Pos()).
				Errorf("cannot assign to %s", NodeType(n.Target))
		}

		v, err := in.eval(ctx, n.Value, env)
		if err != nil {
			return nil, err
		}

		if err := env.Set(id.Name, v); err != nil {
			return nil, locate(err, id)
		}

		return v, nil

	case *CallExpression:
		return in.evalCall(ctx, n, env)

	case *MemberExpression:
		obj, err := in.eval(ctx, n.Object, env)
		if err != nil {
			return nil, err
		}

		if !n.Computed {
			if id, ok := n.Property.(*Identifier); ok {
				return member(obj, id.Name), nil
			}
		}

		key, err := in.eval(ctx, n.Property, env)
		if err != nil {
			return nil, err
		}

		return index(obj, key), nil
	}

	return nil, ErrUnknownNode.At(n.Pos()).Errorf("%s", NodeType(n))
}

func (in *Interpreter) evalBinary(
	ctx context.Context,
	n *BinaryExpression,
	env *Environment,
) (Value, error) {
	left, err := in.eval(ctx, n.Left, env)
	if err != nil {
		return nil, err
	}

	right, err := in.eval(ctx, n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case RangeOperator:
		return NewRange(toNumber(Raw(left)), toNumber(Raw(right))), nil

	case "+", "-", "*", "/", "%":
		v, err := Arithmetic(n.Op, left, right)
		if err != nil {
			return nil, locate(err, n)
		}

		return v, nil

	case "==", "!=", "<", ">", "<=", ">=":
		v, err := Compare(n.Op, left, right)
		if err != nil {
			return nil, locate(err, n)
		}

		return v, nil
	}

	return nil, ErrUnknownOperator.At(n.Pos()).Errorf("%s", n.Op)
}

func (in *Interpreter) evalUnary(
	ctx context.Context,
	n *UnaryExpression,
	env *Environment,
) (Value, error) {
	v, err := in.eval(ctx, n.Operand, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "!":
		return Bool(!IsTruthy(v)), nil

	case "-":
		neg := Number(-toNumber(Raw(v)))

		a, ok := v.(*Annotated)
		if !ok {
			return neg, nil
		}

		out := *a
		out.Inner = neg

		if a.Range != nil {
			out.Range = &Range{Delta: a.Range.Delta, Min: -a.Range.Max, Max: -a.Range.Min}
		}

		return &out, nil
	}

	return nil, ErrUnknownOperator.At(n.Pos()).Errorf("unary %s", n.Op)
}

func (in *Interpreter) evalCall(
	ctx context.Context,
	n *CallExpression,
	env *Environment,
) (Value, error) {
	callee, err := in.eval(ctx, n.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(n.Args))

	for _, a := range n.Args {
		v, err := in.eval(ctx, a, env)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	switch fn := callee.(type) {
	case *Builtin:
		v, err := fn.Fn(ctx, args)
		if err != nil {
			return nil, locate(err, n)
		}

		if v == nil {
			v = Null{}
		}

		return v, nil

	case *Function:
		v, err := in.callFunction(ctx, fn, args)
		if err != nil {
			return nil, locate(err, n)
		}

		return v, nil
	}

	return nil, ErrNotCallable.At(n.Pos()).
		Errorf("%s is a %s", Notation(n.Callee), callee.Type()).
		With(slog.String("type", callee.Type()))
}

// Call invokes a function value with already evaluated arguments.
func (in *Interpreter) Call(ctx context.Context, fn Value, args ...Value) (Value, error) {
	switch fn := fn.(type) {
	case *Builtin:
		return fn.Fn(ctx, args)
	case *Function:
		return in.callFunction(ctx, fn, args)
	case nil:
		return nil, ErrNotCallable.Errorf("null")
	}

	return nil, ErrNotCallable.Errorf("%s", fn.Type())
}

// callFunction binds parameters by position in a child of the closure scope.
// Missing arguments bind to null; extra arguments are ignored. A function
// whose body does not return yields the value of its last statement.
func (in *Interpreter) callFunction(ctx context.Context, fn *Function, args []Value) (Value, error) {
	if in.depth >= in.opts.maxDepth {
		return nil, ErrMaxDepth.Errorf("calling %s", fn.Name).
			With(slog.String("function", fn.Name)).
			With(slog.Int("depth", in.depth)).
			With(slog.Int("max_depth", in.opts.maxDepth))
	}

	in.depth++
	defer func() { in.depth-- }()

	in.opts.logger.TraceContext(ctx, "call",
		slog.String("function", fn.Name),
		slog.Int("depth", in.depth),
		slog.Int("arg_count", len(args)),
	)

	scope := fn.Closure.Child()

	for i, p := range fn.Params {
		var v Value = Null{}
		if i < len(args) {
			v = args[i]
		}

		scope.Define(p, v)
	}

	var body []Node
	if fn.Body != nil {
		body = fn.Body.Body
	}

	res, err := in.evalStatements(ctx, body, scope)
	if err != nil {
		return nil, err
	}

	if fn.Learn {
		fn.Adaptations++

		activity := tracker.LearningActivity{
			Function:    fn.Name,
			Adaptations: fn.Adaptations,
			Args:        nativeList(args),
			Result:      Native(res.Value),
		}

		in.notify(ctx, "learning", func(t tracker.Tracker) error {
			return t.LogLearning(ctx, activity)
		})
	}

	return res.Value, nil
}

// notify delivers a tracker notification. Failures are logged and otherwise
// ignored.
func (in *Interpreter) notify(ctx context.Context, what string, fn func(tracker.Tracker) error) {
	in.opts.logger.TraceContext(ctx, "tracker notification", slog.String("kind", what))

	if err := fn(in.opts.tracker); err != nil {
		in.opts.logger.WarnContext(ctx, "tracker notification failed",
			slog.String("kind", what),
			slog.Any("error", err),
		)
	}
}

// locate attaches the position of n to a language error that has none.
func locate(err error, n Node) error {
	le := WrapError(err)
	if le.Position().IsValid() || !n.Pos().IsValid() {
		return err
	}

	if le.Kind() == KindUnknown && le.base == nil && le.msg == "" {
		return err
	}

	return le.At(n.Pos())
}

func nativeList(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = Native(v)
	}

	return out
}
