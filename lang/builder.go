package lang

import (
	"fmt"
	"strconv"
)

// Builder constructs syntax trees without parsing source text. Built nodes
// carry no source position.
//
// Example:
//
//	b := lang.NewBuilder()
//	prog := b.Program(
//	    b.Let("port", b.Number(8080)),
//	    b.Let("host", b.String("localhost")),
//	)
type Builder struct{}

// NewBuilder creates a new tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Program creates a [Program] from statements.
func (b *Builder) Program(body ...Node) *Program {
	return &Program{Body: body}
}

// Let creates a "let name = init" declaration.
func (b *Builder) Let(name string, init Node) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Init: init}
}

// Const creates a "const name = init" declaration.
func (b *Builder) Const(name string, init Node) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Const: true, Init: init}
}

// Prob creates a "let name: prob(confidence) = init" declaration.
func (b *Builder) Prob(name string, confidence float64, init Node) *VariableDeclaration {
	return &VariableDeclaration{
		Name:       name,
		Annotation: &TypeAnnotation{Kind: AnnotationProb, Arg: b.Number(confidence)},
		Init:       init,
	}
}

// Symbol creates a "symbol name = expr" definition.
func (b *Builder) Symbol(name string, expr Node) *SymbolDefinition {
	return &SymbolDefinition{Name: name, Expr: expr}
}

// Graph creates a knowledge graph from relations.
func (b *Builder) Graph(name string, relations ...Relation) *KnowledgeGraph {
	if relations == nil {
		relations = []Relation{}
	}

	return &KnowledgeGraph{Name: name, Relations: relations}
}

// Relation creates one knowledge graph relation.
func (b *Builder) Relation(subject, predicate, object Node) Relation {
	return Relation{Subject: subject, Predicate: predicate, Object: object}
}

// Meta creates a meta block.
func (b *Builder) Meta(condition Node, body ...Node) *MetaBlock {
	return &MetaBlock{Condition: condition, Body: b.Block(body...)}
}

// Block creates a braced statement list.
func (b *Builder) Block(body ...Node) *BlockStatement {
	return &BlockStatement{Body: body}
}

// Expr wraps an expression as a statement.
func (b *Builder) Expr(expr Node) *ExpressionStatement {
	return &ExpressionStatement{Expr: expr}
}

// Binary creates a binary expression.
func (b *Builder) Binary(op string, left, right Node) *BinaryExpression {
	return &BinaryExpression{Op: op, Left: left, Right: right}
}

// Call creates a call expression.
func (b *Builder) Call(callee Node, args ...Node) *CallExpression {
	return &CallExpression{Callee: callee, Args: args}
}

// Identifier creates a name reference.
func (b *Builder) Identifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// String creates a string literal.
func (b *Builder) String(s string) *Literal {
	return &Literal{Value: String(s), Raw: strconv.Quote(s)}
}

// Number creates a number literal.
func (b *Builder) Number(f float64) *Literal {
	return &Literal{Value: Number(f), Raw: Number(f).String()}
}

// Bool creates a boolean literal.
func (b *Builder) Bool(v bool) *Literal {
	return &Literal{Value: Bool(v), Raw: strconv.FormatBool(v)}
}

// Null creates a null literal.
func (b *Builder) Null() *Literal {
	return &Literal{Value: Null{}, Raw: "null"}
}

// List creates an array literal.
func (b *Builder) List(elems ...Node) *ArrayLiteral {
	return &ArrayLiteral{Elements: elems}
}

// Literal creates the literal for a plain Go value: string, bool,
// int, int64, uint64, float64, []string, or nil. Other values become their
// quoted fmt representation.
func (b *Builder) Literal(v any) Node {
	switch v := v.(type) {
	case nil:
		return b.Null()
	case string:
		return b.String(v)
	case bool:
		return b.Bool(v)
	case int:
		return b.Number(float64(v))
	case int64:
		return b.Number(float64(v))
	case uint64:
		return b.Number(float64(v))
	case float64:
		return b.Number(v)
	case []string:
		elems := make([]Node, len(v))
		for i, s := range v {
			elems[i] = b.String(s)
		}

		return b.List(elems...)
	}

	return b.String(fmt.Sprint(v))
}
