package lang

import (
	"context"
	"log/slog"
)

// Validate checks the structural rules a parsed tree must satisfy before it
// is evaluated. It returns the first violation found in a pre-order walk and
// never modifies the tree.
//
// The rules are:
//   - a prob/confident annotation has an argument, and a numeric literal
//     argument lies in [0,1];
//   - a meta block has a condition and a body;
//   - a learn function has a body;
//   - a symbol definition has a name and an expression;
//   - a knowledge graph has a relation list whose entries are complete.
func Validate(ctx context.Context, root Node, opts ...Option) error {
	o := makeOptions(opts...)

	count := 0

	for n := range Inspect(root) {
		count++

		if err := validateNode(n); err != nil {
			o.logger.TraceContext(ctx, "validation failed", slog.Any("error", err))

			return err
		}
	}

	o.logger.TraceContext(ctx, "validation complete", slog.Int("node_count", count))

	return nil
}

func validateNode(n Node) error {
	switch n := n.(type) {
	case *VariableDeclaration:
		ann := n.Annotation
		if ann == nil || ann.Kind == AnnotationNamed {
			return nil
		}

		if ann.Arg == nil {
			return invalid(n, "annotation", "missing confidence")
		}

		if c, ok := literalNumber(ann.Arg); ok && (c < 0 || c > 1) {
			return invalid(n, "annotation", "confidence "+Number(c).String()+" outside [0,1]")
		}

	case *MetaBlock:
		if n.Condition == nil {
			return invalid(n, "condition", "missing")
		}

		if n.Body == nil {
			return invalid(n, "body", "missing")
		}

	case *LearnFunctionDeclaration:
		if n.Body == nil {
			return invalid(n, "body", "missing update mechanism")
		}

	case *SymbolDefinition:
		if n.Name == "" {
			return invalid(n, "name", "missing")
		}

		if n.Expr == nil {
			return invalid(n, "expression", "missing")
		}

	case *KnowledgeGraph:
		if n.Relations == nil {
			return invalid(n, "relations", "missing")
		}

		for _, r := range n.Relations {
			if r.Subject == nil || r.Predicate == nil || r.Object == nil {
				return invalid(n, "relations", "incomplete relation")
			}
		}
	}

	return nil
}

// literalNumber returns the value of a numeric literal, allowing a leading
// unary minus.
func literalNumber(n Node) (float64, bool) {
	switch n := n.(type) {
	case *Literal:
		if num, ok := n.Value.(Number); ok {
			return float64(num), true
		}
	case *UnaryExpression:
		if n.Op == "-" {
			if f, ok := literalNumber(n.Operand); ok {
				return -f, true
			}
		}
	}

	return 0, false
}

func invalid(n Node, field, problem string) *Error {
	return ErrValidation.At(n.Pos()).
		Errorf("%s.%s: %s", NodeType(n), field, problem).
		With(
			slog.String("node", NodeType(n)),
			slog.String("field", field),
		)
}
