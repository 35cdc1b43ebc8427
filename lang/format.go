package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes n in native MIAL syntax to the writer. A positive indent
// places each statement on its own line indented by that many spaces per
// block level; zero writes everything on a single line.
func Format(_ context.Context, w io.Writer, n Node, indent int) error {
	p := newPrinter(indent)

	var text string

	switch n := n.(type) {
	case *Program:
		lines := make([]string, len(n.Body))
		for i, s := range n.Body {
			lines[i] = p.stmt(s, 0)
		}

		text = strings.Join(lines, p.nl)

	default:
		if isStatement(n) {
			text = p.stmt(n, 0)
		} else {
			text = p.expr(n, precLowest)
		}
	}

	_, err := fmt.Fprintln(w, text)

	return err
}

// FormatTree writes an indented outline of n, one node per line with its
// type, distinguishing attributes and source position.
func FormatTree(_ context.Context, w io.Writer, n Node) error {
	var walk func(n Node, depth int) error

	walk = func(n Node, depth int) error {
		line := strings.Repeat("  ", depth) + NodeType(n)
		if detail := treeDetail(n); detail != "" {
			line += " " + detail
		}

		if pos := n.Pos(); pos.IsValid() {
			line += fmt.Sprintf(" @%d:%d", pos.Line, pos.Column)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		for _, c := range Children(n) {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	if isNil(n) {
		return nil
	}

	return walk(n, 0)
}

func treeDetail(n Node) string {
	switch n := n.(type) {
	case *VariableDeclaration:
		if n.Const {
			return "const " + n.Name
		}

		return n.Name
	case *TypeAnnotation:
		switch n.Kind {
		case AnnotationProb:
			return "prob"
		case AnnotationConfident:
			return "confident"
		}

		return n.Name
	case *FunctionDeclaration:
		return n.Name + "(" + strings.Join(n.Params, ", ") + ")"
	case *LearnFunctionDeclaration:
		return n.Name + "(" + strings.Join(n.Params, ", ") + ")"
	case *SymbolDefinition:
		return n.Name
	case *KnowledgeGraph:
		return n.Name
	case *BinaryExpression:
		return n.Op
	case *LogicalExpression:
		return n.Op
	case *UnaryExpression:
		return n.Op
	case *Identifier:
		return n.Name
	case *Literal:
		return n.Raw
	case *MemberExpression:
		if n.Computed {
			return "[]"
		}
	}

	return ""
}

// FormatJSON writes n as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, n Node, indent int) error {
	return EncodeJSON(w, ToMap(n), indent)
}

// FormatYAML writes n as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, n Node, indent int) error {
	return EncodeYAML(ctx, w, ToMap(n), indent)
}

// EncodeJSON writes v as JSON followed by a newline. A positive indent
// pretty-prints with that many spaces.
func EncodeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// EncodeYAML writes v as YAML. A positive indent selects block style with
// that many spaces; zero selects flow style.
func EncodeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// Notation renders an expression as mathematical notation: binary
// expressions as "left op right" without grouping, literals as written and
// identifiers by name.
func Notation(n Node) string {
	switch n := n.(type) {
	case *BinaryExpression:
		return Notation(n.Left) + " " + n.Op + " " + Notation(n.Right)
	case *Literal:
		return n.Raw
	case *Identifier:
		return n.Name
	case nil:
		return ""
	}

	return newPrinter(0).expr(n, precLowest)
}

// Operator precedence, lowest first.
const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func binaryPrec(op string) int {
	switch op {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=":
		return precEquality
	case "<", ">", "<=", ">=":
		return precRelational
	case "+", "-", RangeOperator:
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	}

	return precLowest
}

type printer struct {
	pad string
	nl  string
}

func newPrinter(indent int) printer {
	if indent <= 0 {
		return printer{nl: " "}
	}

	return printer{pad: strings.Repeat(" ", indent), nl: "\n"}
}

func (p printer) indent(depth int) string {
	return strings.Repeat(p.pad, depth)
}

func isStatement(n Node) bool {
	switch n.(type) {
	case *VariableDeclaration, *FunctionDeclaration, *LearnFunctionDeclaration,
		*MetaBlock, *SymbolDefinition, *KnowledgeGraph, *BlockStatement,
		*IfStatement, *WhileStatement, *ForStatement, *ReturnStatement,
		*ExpressionStatement:
		return true
	}

	return false
}

// stmt renders a statement starting at the current column; nested lines are
// indented relative to depth.
func (p printer) stmt(n Node, depth int) string {
	switch n := n.(type) {
	case *VariableDeclaration:
		return p.declaration(n) + ";"

	case *FunctionDeclaration:
		return "function " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " +
			p.block(n.Body, depth)

	case *LearnFunctionDeclaration:
		return "learn function " + n.Name + "(" + strings.Join(n.Params, ", ") + ") " +
			p.block(n.Body, depth)

	case *MetaBlock:
		return "meta " + p.expr(n.Condition, precLowest) + " ? " + p.block(n.Body, depth)

	case *SymbolDefinition:
		return "symbol " + n.Name + " = " + p.expr(n.Expr, precLowest) + ";"

	case *KnowledgeGraph:
		if len(n.Relations) == 0 {
			return "knowledge_graph " + n.Name + " {}"
		}

		var b strings.Builder

		b.WriteString("knowledge_graph " + n.Name + " {" + p.nl)

		for _, r := range n.Relations {
			b.WriteString(p.indent(depth+1) +
				p.expr(r.Subject, precOr) + " -> " +
				p.expr(r.Predicate, precOr) + " -> " +
				p.expr(r.Object, precOr) + ";" + p.nl)
		}

		b.WriteString(p.indent(depth) + "}")

		return b.String()

	case *BlockStatement:
		return p.block(n, depth)

	case *IfStatement:
		s := "if (" + p.expr(n.Test, precLowest) + ") " + p.stmt(n.Consequent, depth)
		if n.Alternate != nil {
			s += " else " + p.stmt(n.Alternate, depth)
		}

		return s

	case *WhileStatement:
		return "while (" + p.expr(n.Test, precLowest) + ") " + p.stmt(n.Body, depth)

	case *ForStatement:
		var init, test, update string

		if n.Init != nil {
			init = p.clause(n.Init)
		}

		if n.Test != nil {
			test = " " + p.expr(n.Test, precLowest)
		}

		if n.Update != nil {
			update = " " + p.expr(n.Update, precLowest)
		}

		return "for (" + init + ";" + test + ";" + update + ") " + p.stmt(n.Body, depth)

	case *ReturnStatement:
		if n.Argument == nil {
			return "return;"
		}

		return "return " + p.expr(n.Argument, precLowest) + ";"

	case *ExpressionStatement:
		return p.expr(n.Expr, precLowest) + ";"
	}

	return p.expr(n, precLowest) + ";"
}

func (p printer) declaration(n *VariableDeclaration) string {
	s := "let "
	if n.Const {
		s = "const "
	}

	s += n.Name

	if ann := n.Annotation; ann != nil {
		switch ann.Kind {
		case AnnotationProb:
			s += ": prob(" + p.expr(ann.Arg, precLowest) + ")"
		case AnnotationConfident:
			s += ": confident(" + p.expr(ann.Arg, precLowest) + ")"
		default:
			s += ": " + ann.Name
		}
	}

	if n.Init != nil {
		s += " = " + p.expr(n.Init, precLowest)
	}

	return s
}

// clause renders a for-loop initializer without its terminator.
func (p printer) clause(n Node) string {
	switch n := n.(type) {
	case *VariableDeclaration:
		return p.declaration(n)
	case *ExpressionStatement:
		return p.expr(n.Expr, precLowest)
	}

	return p.expr(n, precLowest)
}

func (p printer) block(b *BlockStatement, depth int) string {
	if b == nil || len(b.Body) == 0 {
		return "{}"
	}

	var sb strings.Builder

	sb.WriteString("{" + p.nl)

	for _, s := range b.Body {
		sb.WriteString(p.indent(depth+1) + p.stmt(s, depth+1) + p.nl)
	}

	sb.WriteString(p.indent(depth) + "}")

	return sb.String()
}

// expr renders an expression, parenthesizing it when its precedence is below
// minPrec.
func (p printer) expr(n Node, minPrec int) string {
	var (
		s    string
		prec int
	)

	switch n := n.(type) {
	case *Literal:
		s, prec = n.Raw, precPostfix

	case *Identifier:
		s, prec = n.Name, precPostfix

	case *ArrayLiteral:
		s, prec = "["+p.list(n.Elements)+"]", precPostfix

	case *CallExpression:
		s, prec = p.expr(n.Callee, precPostfix)+"("+p.list(n.Args)+")", precPostfix

	case *MemberExpression:
		obj := p.expr(n.Object, precPostfix)

		if id, ok := n.Property.(*Identifier); ok && !n.Computed {
			s = obj + "." + id.Name
		} else {
			s = obj + "[" + p.expr(n.Property, precLowest) + "]"
		}

		prec = precPostfix

	case *UnaryExpression:
		s, prec = n.Op+p.expr(n.Operand, precUnary), precUnary

	case *BinaryExpression:
		prec = binaryPrec(n.Op)
		s = p.expr(n.Left, prec) + " " + n.Op + " " + p.expr(n.Right, prec+1)

	case *LogicalExpression:
		prec = binaryPrec(n.Op)
		s = p.expr(n.Left, prec) + " " + n.Op + " " + p.expr(n.Right, prec+1)

	case *AssignmentExpression:
		prec = precAssign
		s = p.expr(n.Target, precOr) + " = " + p.expr(n.Value, precAssign)

	case nil:
		return ""

	default:
		return p.stmt(n, 0)
	}

	if prec < minPrec {
		return "(" + s + ")"
	}

	return s
}

func (p printer) list(ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = p.expr(n, precAssign)
	}

	return strings.Join(parts, ", ")
}
