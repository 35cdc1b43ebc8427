package lang

import "iter"

// Node is an element of the abstract syntax tree. The set of node types is
// closed; nodes are immutable once the parser returns them.
type Node interface {
	Pos() Position
	isNode()
}

type node struct {
	At Position
}

// Pos returns the location of the node's first token.
func (n node) Pos() Position { return n.At }

func (node) isNode() {}

// Program is the root of a parsed source text.
type Program struct {
	node
	Body []Node
}

// AnnotationKind identifies the form of a [TypeAnnotation].
type AnnotationKind int

const (
	AnnotationNamed     AnnotationKind = iota // bare type name
	AnnotationProb                            // prob(confidence)
	AnnotationConfident                       // confident(level)
)

// TypeAnnotation follows the ':' of a variable declaration.
type TypeAnnotation struct {
	node
	Kind AnnotationKind
	Name string
	Arg  Node // confidence or level; nil for AnnotationNamed
}

// VariableDeclaration is "let|const name [: annotation] [= init]".
type VariableDeclaration struct {
	node
	Name       string
	Const      bool
	Annotation *TypeAnnotation
	Init       Node
}

// FunctionDeclaration is "function name(params) { body }".
type FunctionDeclaration struct {
	node
	Name   string
	Params []string
	Body   *BlockStatement
}

// LearnFunctionDeclaration is "learn [function] name(params) { body }".
type LearnFunctionDeclaration struct {
	node
	Name   string
	Params []string
	Body   *BlockStatement
}

// MetaBlock is "meta condition ? { body }".
type MetaBlock struct {
	node
	Condition Node
	Body      *BlockStatement
}

// SymbolDefinition is "symbol name = expr".
type SymbolDefinition struct {
	node
	Name string
	Expr Node
}

// Relation is one "subject -> predicate -> object" line of a knowledge graph.
type Relation struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// KnowledgeGraph is "knowledge_graph name { relations }".
type KnowledgeGraph struct {
	node
	Name      string
	Relations []Relation
}

// BlockStatement is a braced statement list with its own scope.
type BlockStatement struct {
	node
	Body []Node
}

// IfStatement is "if (test) consequent [else alternate]".
type IfStatement struct {
	node
	Test       Node
	Consequent Node
	Alternate  Node
}

// WhileStatement is "while (test) body".
type WhileStatement struct {
	node
	Test Node
	Body Node
}

// ForStatement is "for (init; test; update) body". Any clause may be nil.
type ForStatement struct {
	node
	Init   Node
	Test   Node
	Update Node
	Body   Node
}

// ReturnStatement is "return [argument]".
type ReturnStatement struct {
	node
	Argument Node
}

// ExpressionStatement evaluates an expression for its value.
type ExpressionStatement struct {
	node
	Expr Node
}

// BinaryExpression covers arithmetic, comparison and the range operator.
type BinaryExpression struct {
	node
	Op    string
	Left  Node
	Right Node
}

// UnaryExpression is a prefix "-" or "!".
type UnaryExpression struct {
	node
	Op      string
	Operand Node
}

// LogicalExpression is a short-circuit "&&" or "||".
type LogicalExpression struct {
	node
	Op    string
	Left  Node
	Right Node
}

// AssignmentExpression is "target = value".
type AssignmentExpression struct {
	node
	Target Node
	Value  Node
}

// CallExpression is "callee(args)".
type CallExpression struct {
	node
	Callee Node
	Args   []Node
}

// MemberExpression is "object.property" or "object[property]".
type MemberExpression struct {
	node
	Object   Node
	Property Node
	Computed bool
}

// ArrayLiteral is "[elements]".
type ArrayLiteral struct {
	node
	Elements []Node
}

// Identifier is a name reference.
type Identifier struct {
	node
	Name string
}

// Literal is a number, string, boolean or null constant. Raw is the source
// spelling used when rendering notation.
type Literal struct {
	node
	Value Value
	Raw   string
}

// NodeType returns the variant name of n.
func NodeType(n Node) string {
	switch n.(type) {
	case *Program:
		return "Program"
	case *TypeAnnotation:
		return "TypeAnnotation"
	case *VariableDeclaration:
		return "VariableDeclaration"
	case *FunctionDeclaration:
		return "FunctionDeclaration"
	case *LearnFunctionDeclaration:
		return "LearnFunctionDeclaration"
	case *MetaBlock:
		return "MetaBlock"
	case *SymbolDefinition:
		return "SymbolDefinition"
	case *KnowledgeGraph:
		return "KnowledgeGraph"
	case *BlockStatement:
		return "BlockStatement"
	case *IfStatement:
		return "IfStatement"
	case *WhileStatement:
		return "WhileStatement"
	case *ForStatement:
		return "ForStatement"
	case *ReturnStatement:
		return "ReturnStatement"
	case *ExpressionStatement:
		return "ExpressionStatement"
	case *BinaryExpression:
		return "BinaryExpression"
	case *UnaryExpression:
		return "UnaryExpression"
	case *LogicalExpression:
		return "LogicalExpression"
	case *AssignmentExpression:
		return "AssignmentExpression"
	case *CallExpression:
		return "CallExpression"
	case *MemberExpression:
		return "MemberExpression"
	case *ArrayLiteral:
		return "ArrayLiteral"
	case *Identifier:
		return "Identifier"
	case *Literal:
		return "Literal"
	default:
		return "Unknown"
	}
}

// Children returns the direct child nodes of n in source order, skipping
// absent optional children.
func Children(n Node) []Node {
	var out []Node

	add := func(children ...Node) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Program:
		add(n.Body...)
	case *TypeAnnotation:
		add(n.Arg)
	case *VariableDeclaration:
		if n.Annotation != nil {
			add(n.Annotation)
		}

		add(n.Init)
	case *FunctionDeclaration:
		add(n.Body)
	case *LearnFunctionDeclaration:
		add(n.Body)
	case *MetaBlock:
		add(n.Condition, n.Body)
	case *SymbolDefinition:
		add(n.Expr)
	case *KnowledgeGraph:
		for _, r := range n.Relations {
			add(r.Subject, r.Predicate, r.Object)
		}
	case *BlockStatement:
		add(n.Body...)
	case *IfStatement:
		add(n.Test, n.Consequent, n.Alternate)
	case *WhileStatement:
		add(n.Test, n.Body)
	case *ForStatement:
		add(n.Init, n.Test, n.Update, n.Body)
	case *ReturnStatement:
		add(n.Argument)
	case *ExpressionStatement:
		add(n.Expr)
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *UnaryExpression:
		add(n.Operand)
	case *LogicalExpression:
		add(n.Left, n.Right)
	case *AssignmentExpression:
		add(n.Target, n.Value)
	case *CallExpression:
		add(n.Callee)
		add(n.Args...)
	case *MemberExpression:
		add(n.Object, n.Property)
	case *ArrayLiteral:
		add(n.Elements...)
	}

	return out
}

// Inspect returns a depth-first, pre-order iterator over n and its
// descendants.
func Inspect(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var walk func(Node) bool

		walk = func(n Node) bool {
			if !yield(n) {
				return false
			}

			for _, c := range Children(n) {
				if !walk(c) {
					return false
				}
			}

			return true
		}

		if !isNil(n) {
			walk(n)
		}
	}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}

	switch n := n.(type) {
	case *BlockStatement:
		return n == nil
	case *TypeAnnotation:
		return n == nil
	}

	return false
}
