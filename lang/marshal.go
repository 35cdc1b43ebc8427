package lang

import (
	"math"
)

// Native converts a runtime value to plain Go data suitable for YAML or JSON
// encoding. Non-finite numbers become their display strings.
func Native(v Value) any {
	switch v := v.(type) {
	case nil, Null:
		return nil

	case Number:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}

		return f

	case String:
		return string(v)

	case Bool:
		return bool(v)

	case *Annotated:
		m := map[string]any{
			"value":       Native(v.Inner),
			"confidence":  Native(Number(v.Confidence)),
			"uncertainty": Native(Number(v.Uncertainty)),
		}

		if v.Class != "" {
			m["classification"] = string(v.Class)
		}

		if v.Range != nil {
			m["range"] = map[string]any{
				"delta": Native(Number(v.Range.Delta)),
				"min":   Native(Number(v.Range.Min)),
				"max":   Native(Number(v.Range.Max)),
			}
		}

		return m

	case *Function:
		m := map[string]any{
			"type":   v.Type(),
			"name":   v.Name,
			"params": stringsToAny(v.Params),
		}

		if v.Learn {
			m["adaptations"] = v.Adaptations
		}

		return m

	case *Builtin:
		return map[string]any{"type": v.Type(), "name": v.Name}

	case *Symbol:
		return map[string]any{
			"type":       v.Type(),
			"name":       v.Name,
			"notation":   v.Notation,
			"value":      Native(v.Value),
			"confidence": Native(Number(v.Confidence)),
		}

	case *Graph:
		rels := make([]any, len(v.Relations))
		for i, r := range v.Relations {
			rels[i] = []any{Native(r.Subject), Native(r.Predicate), Native(r.Object)}
		}

		return map[string]any{
			"type":      v.Type(),
			"name":      v.Name,
			"relations": rels,
		}

	case *List:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = Native(e)
		}

		return out

	case *Object:
		m := make(map[string]any, len(v.Fields)+2)
		for k, f := range v.Fields {
			m[k] = Native(f)
		}

		if v.Dynamic != nil {
			for _, k := range []string{"confidence", "uncertainty"} {
				if f, ok := v.Dynamic(k); ok {
					m[k] = Native(f)
				}
			}
		}

		return m
	}

	return v.String()
}

// ToMap converts a syntax tree to nested maps keyed by field name. Every node
// map carries its "type" and source "line" and "column".
func ToMap(n Node) map[string]any {
	if isNil(n) {
		return nil
	}

	m := map[string]any{"type": NodeType(n)}

	if pos := n.Pos(); pos.IsValid() {
		m["line"] = pos.Line
		m["column"] = pos.Column
	}

	switch n := n.(type) {
	case *Program:
		m["body"] = nodesToAny(n.Body)

	case *VariableDeclaration:
		m["name"] = n.Name
		m["const"] = n.Const

		if n.Annotation != nil {
			m["annotation"] = ToMap(n.Annotation)
		}

		putNode(m, "init", n.Init)

	case *TypeAnnotation:
		switch n.Kind {
		case AnnotationProb:
			m["kind"] = "prob"
		case AnnotationConfident:
			m["kind"] = "confident"
		default:
			m["kind"] = "named"
			m["name"] = n.Name
		}

		putNode(m, "argument", n.Arg)

	case *FunctionDeclaration:
		m["name"] = n.Name
		m["params"] = stringsToAny(n.Params)
		putNode(m, "body", n.Body)

	case *LearnFunctionDeclaration:
		m["name"] = n.Name
		m["params"] = stringsToAny(n.Params)
		putNode(m, "body", n.Body)

	case *MetaBlock:
		putNode(m, "condition", n.Condition)
		putNode(m, "body", n.Body)

	case *SymbolDefinition:
		m["name"] = n.Name
		putNode(m, "expression", n.Expr)

	case *KnowledgeGraph:
		m["name"] = n.Name

		rels := make([]any, len(n.Relations))
		for i, r := range n.Relations {
			rel := make(map[string]any, 3)
			putNode(rel, "subject", r.Subject)
			putNode(rel, "predicate", r.Predicate)
			putNode(rel, "object", r.Object)
			rels[i] = rel
		}

		m["relations"] = rels

	case *BlockStatement:
		m["body"] = nodesToAny(n.Body)

	case *IfStatement:
		putNode(m, "test", n.Test)
		putNode(m, "consequent", n.Consequent)
		putNode(m, "alternate", n.Alternate)

	case *WhileStatement:
		putNode(m, "test", n.Test)
		putNode(m, "body", n.Body)

	case *ForStatement:
		putNode(m, "init", n.Init)
		putNode(m, "test", n.Test)
		putNode(m, "update", n.Update)
		putNode(m, "body", n.Body)

	case *ReturnStatement:
		putNode(m, "argument", n.Argument)

	case *ExpressionStatement:
		putNode(m, "expression", n.Expr)

	case *BinaryExpression:
		m["operator"] = n.Op
		putNode(m, "left", n.Left)
		putNode(m, "right", n.Right)

	case *LogicalExpression:
		m["operator"] = n.Op
		putNode(m, "left", n.Left)
		putNode(m, "right", n.Right)

	case *UnaryExpression:
		m["operator"] = n.Op
		putNode(m, "operand", n.Operand)

	case *AssignmentExpression:
		putNode(m, "target", n.Target)
		putNode(m, "value", n.Value)

	case *CallExpression:
		putNode(m, "callee", n.Callee)
		m["arguments"] = nodesToAny(n.Args)

	case *MemberExpression:
		putNode(m, "object", n.Object)
		putNode(m, "property", n.Property)
		m["computed"] = n.Computed

	case *ArrayLiteral:
		m["elements"] = nodesToAny(n.Elements)

	case *Identifier:
		m["name"] = n.Name

	case *Literal:
		m["value"] = Native(n.Value)
		m["raw"] = n.Raw
	}

	return m
}

func putNode(m map[string]any, key string, n Node) {
	if !isNil(n) {
		m[key] = ToMap(n)
	}
}

func nodesToAny(ns []Node) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = ToMap(n)
	}

	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}
