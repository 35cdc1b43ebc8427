// Package lang implements MIAL, a small interpreted language whose values can
// carry a confidence, an uncertainty and a numeric range alongside their raw
// data.
//
// Source text flows through four stages:
//
//   - [Tokenize] turns text into tokens;
//   - [Parse] builds a [Program] by recursive descent;
//   - [Validate] checks structural rules without evaluating anything;
//   - an [Interpreter] evaluates the tree against a global scope seeded with
//     the built-in library.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement* EOF
//	Statement   → VarDecl | FuncDecl | LearnDecl | Meta | Symbol | Graph
//	            | If | While | For | Return | Block | Expr ';'?
//	VarDecl     → ('let' | 'const') Ident (':' Annotation)? ('=' Expr)? ';'?
//	Annotation  → 'prob' '(' Expr ')' | 'confident' '(' Expr ')' | Ident
//	FuncDecl    → 'function' Ident '(' Params? ')' Block
//	LearnDecl   → 'learn' 'function'? Ident '(' Params? ')' Block
//	Meta        → 'meta' Expr '?' Block
//	Symbol      → 'symbol' Ident '=' Expr ';'?
//	Graph       → 'knowledge_graph' Ident '{' (Expr '->' Expr '->' Expr ';'?)* '}'
//	Expr        → Assignment
//	Assignment  → Or ('=' Assignment)?
//	Or          → And ('||' And)*
//	And         → Equality ('&&' Equality)*
//	Equality    → Relational (('==' | '!=') Relational)*
//	Relational  → Additive (('<' | '>' | '<=' | '>=') Additive)*
//	Additive    → Mult (('+' | '-' | '±') Mult)*
//	Mult        → Unary (('*' | '/' | '%') Unary)*
//	Unary       → ('-' | '!') Unary | Postfix
//	Postfix     → Primary ('(' Args? ')' | '[' Expr ']' | '.' Ident)*
//	Primary     → Number | String | 'true' | 'false' | 'null' | 'undefined'
//	            | Ident | '(' Expr ')' | '[' Args? ']'
//
// # Example
//
//	let reading: prob(0.8) = 10;
//	let span = 5 ± 0.5;
//
//	symbol energy = mass * c * c;
//
//	knowledge_graph facts {
//	  "sun" -> "is" -> "star";
//	}
//
//	learn function adapt(x) {
//	  return x * 2;
//	}
//
//	meta reading ? {
//	  conclude("reading is reliable");
//	}
//
// # Uncertainty
//
// Arithmetic on any two values yields an [Annotated] result whose
// uncertainty is the sum of the operand uncertainties (capped at 1) and whose
// confidence is its complement. Comparisons see only raw values and return
// plain booleans. The range operator "x ± r" records min and max with a fixed
// confidence of 0.8.
//
// # Knowledge tracking
//
// Symbols, annotated variables, knowledge graphs, learn functions and
// executed meta blocks are reported to the [tracker.Tracker] given with
// [WithTracker]. Tracking never changes evaluation results.
//
// # Errors
//
// Every failure is an [*Error] with a [Kind] and, where known, a [Position].
// [FormatError] renders one with the offending source line.
package lang
