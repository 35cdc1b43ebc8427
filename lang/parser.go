package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/ardnew/mial/log"
)

// Parse tokenizes and parses source text into a [Program].
//
// Parsing stops at the first error unless [WithRecovery] is enabled, in which
// case every statement-level error is collected and returned joined.
func Parse(ctx context.Context, source string, opts ...Option) (*Program, error) {
	tokens, err := Tokenize(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return ParseTokens(ctx, tokens, opts...)
}

// ParseTokens parses a token sequence produced by [Tokenize].
func ParseTokens(ctx context.Context, tokens []Token, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(slices.Clip(tokens), Token{Kind: TokenEOF})
	}

	p := &parser{
		tokens:   tokens,
		logger:   o.logger,
		recovery: o.recovery,
		maxDepth: o.maxDepth,
	}

	prog, err := p.parseProgram(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(prog.Body)),
	)

	return prog, nil
}

// binaryTiers lists binary operators from lowest to highest precedence.
// Assignment and unary/postfix are handled outside this table.
var binaryTiers = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", ">", "<=", ">="},
	{"+", "-", RangeOperator},
	{"*", "/", "%"},
}

// parser holds the parser state.
type parser struct {
	tokens   []Token
	cur      int
	errs     []error
	synced   error
	logger   log.Logger
	recovery bool
	depth    int
	maxDepth int
}

func (p *parser) parseProgram(ctx context.Context) (*Program, error) {
	prog := &Program{node: node{At: p.peek().Pos}}

	for !p.atEOF() {
		start := p.cur

		stmt, err := p.parseStatement()
		if err != nil {
			p.logger.TraceContext(ctx, "statement error",
				slog.Any("error", err),
				slog.Bool("recovery", p.recovery),
			)

			if !p.recovery {
				return nil, err
			}

			p.errs = append(p.errs, err)

			if p.cur == start {
				p.advance()
			}

			continue
		}

		prog.Body = append(prog.Body, stmt)
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}

	return prog, nil
}

// parseStatement parses one statement. On failure it skips to the next ';'
// or '}' and still returns the error. An error propagating out of a nested
// statement is only synchronized once.
func (p *parser) parseStatement() (Node, error) {
	stmt, err := p.statement()
	if err != nil {
		if err != p.synced {
			p.synchronize()
			p.synced = err
		}

		return nil, err
	}

	return stmt, nil
}

func (p *parser) statement() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.peek()

	if tok.Kind == TokenKeyword {
		switch tok.Text {
		case "let", "const":
			return p.parseVariableDeclaration()
		case "function":
			return p.parseFunctionDeclaration()
		case "learn":
			return p.parseLearnFunctionDeclaration()
		case "meta":
			return p.parseMetaBlock()
		case "symbol":
			return p.parseSymbolDefinition()
		case "knowledge_graph":
			return p.parseKnowledgeGraph()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "return":
			return p.parseReturn()
		}
	}

	if tok.Is(TokenDelimiter, "{") {
		return p.parseBlock()
	}

	return p.parseExpressionStatement()
}

// parseVariableDeclaration parses: ('let'|'const') Name (':' Annotation)?
// ('=' Expression)? ';'?.
func (p *parser) parseVariableDeclaration() (Node, error) {
	kw := p.advance()

	name, err := p.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}

	decl := &VariableDeclaration{
		node:  node{At: kw.Pos},
		Name:  name.Text,
		Const: kw.Text == "const",
	}

	if p.match(TokenDelimiter, ":") {
		decl.Annotation, err = p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
	}

	if p.match(TokenOperator, "=") {
		decl.Init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	p.match(TokenDelimiter, ";")

	return decl, nil
}

// parseTypeAnnotation parses: 'prob' '(' Expression ')' |
// 'confident' '(' Expression ')' | Name.
func (p *parser) parseTypeAnnotation() (*TypeAnnotation, error) {
	name, err := p.expectIdentifier("type annotation")
	if err != nil {
		return nil, err
	}

	ann := &TypeAnnotation{node: node{At: name.Pos}, Name: name.Text}

	switch name.Text {
	case "prob":
		ann.Kind = AnnotationProb
	case "confident":
		ann.Kind = AnnotationConfident
	default:
		return ann, nil
	}

	if _, err := p.expect(TokenDelimiter, "("); err != nil {
		return nil, err
	}

	ann.Arg, err = p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenDelimiter, ")"); err != nil {
		return nil, err
	}

	return ann, nil
}

func (p *parser) parseFunctionDeclaration() (Node, error) {
	kw := p.advance()

	name, params, body, err := p.parseFunctionRest()
	if err != nil {
		return nil, err
	}

	return &FunctionDeclaration{
		node:   node{At: kw.Pos},
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// parseLearnFunctionDeclaration parses: 'learn' 'function'? Name Params Block.
func (p *parser) parseLearnFunctionDeclaration() (Node, error) {
	kw := p.advance()

	p.match(TokenKeyword, "function")

	name, params, body, err := p.parseFunctionRest()
	if err != nil {
		return nil, err
	}

	return &LearnFunctionDeclaration{
		node:   node{At: kw.Pos},
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// parseFunctionRest parses: Name '(' (Name (',' Name)*)? ')' Block.
func (p *parser) parseFunctionRest() (string, []string, *BlockStatement, error) {
	name, err := p.expectIdentifier("function name")
	if err != nil {
		return "", nil, nil, err
	}

	if _, err := p.expect(TokenDelimiter, "("); err != nil {
		return "", nil, nil, err
	}

	params := make([]string, 0)

	if !p.check(TokenDelimiter, ")") {
		for {
			param, err := p.expectIdentifier("parameter name")
			if err != nil {
				return "", nil, nil, err
			}

			params = append(params, param.Text)

			if !p.match(TokenDelimiter, ",") {
				break
			}
		}
	}

	if _, err := p.expect(TokenDelimiter, ")"); err != nil {
		return "", nil, nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return "", nil, nil, err
	}

	return name.Text, params, body, nil
}

// parseMetaBlock parses: 'meta' Expression '?' Block.
func (p *parser) parseMetaBlock() (Node, error) {
	kw := p.advance()

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenOperator, "?"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &MetaBlock{node: node{At: kw.Pos}, Condition: cond, Body: body}, nil
}

// parseSymbolDefinition parses: 'symbol' Name '=' Expression ';'?.
func (p *parser) parseSymbolDefinition() (Node, error) {
	kw := p.advance()

	name, err := p.expectIdentifier("symbol name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenOperator, "="); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.match(TokenDelimiter, ";")

	return &SymbolDefinition{node: node{At: kw.Pos}, Name: name.Text, Expr: expr}, nil
}

// parseKnowledgeGraph parses:
// 'knowledge_graph' Name '{' (Expr '->' Expr '->' Expr ';'?)* '}'.
func (p *parser) parseKnowledgeGraph() (Node, error) {
	kw := p.advance()

	name, err := p.expectIdentifier("knowledge graph name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenDelimiter, "{"); err != nil {
		return nil, err
	}

	graph := &KnowledgeGraph{
		node:      node{At: kw.Pos},
		Name:      name.Text,
		Relations: make([]Relation, 0),
	}

	for !p.check(TokenDelimiter, "}") && !p.atEOF() {
		var triple [3]Node

		for i := range triple {
			if i > 0 {
				if _, err := p.expect(TokenOperator, "->"); err != nil {
					return nil, err
				}
			}

			triple[i], err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}

		graph.Relations = append(graph.Relations, Relation{
			Subject:   triple[0],
			Predicate: triple[1],
			Object:    triple[2],
		})

		p.match(TokenDelimiter, ";")
	}

	if _, err := p.expect(TokenDelimiter, "}"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (p *parser) parseBlock() (*BlockStatement, error) {
	open, err := p.expect(TokenDelimiter, "{")
	if err != nil {
		return nil, err
	}

	block := &BlockStatement{node: node{At: open.Pos}, Body: make([]Node, 0)}

	for !p.check(TokenDelimiter, "}") && !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Body = append(block.Body, stmt)
	}

	if _, err := p.expect(TokenDelimiter, "}"); err != nil {
		return nil, err
	}

	return block, nil
}

// parseCondition parses: '(' Expression ')'.
func (p *parser) parseCondition() (Node, error) {
	if _, err := p.expect(TokenDelimiter, "("); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenDelimiter, ")"); err != nil {
		return nil, err
	}

	return cond, nil
}

func (p *parser) parseIf() (Node, error) {
	kw := p.advance()

	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	cons, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	stmt := &IfStatement{node: node{At: kw.Pos}, Test: test, Consequent: cons}

	if p.match(TokenKeyword, "else") {
		stmt.Alternate, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func (p *parser) parseWhile() (Node, error) {
	kw := p.advance()

	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &WhileStatement{node: node{At: kw.Pos}, Test: test, Body: body}, nil
}

// parseFor parses: 'for' '(' (Declaration | Expression)? ';' Expression? ';'
// Expression? ')' Statement.
func (p *parser) parseFor() (Node, error) {
	kw := p.advance()

	if _, err := p.expect(TokenDelimiter, "("); err != nil {
		return nil, err
	}

	stmt := &ForStatement{node: node{At: kw.Pos}}

	var err error

	switch {
	case p.check(TokenKeyword, "let"), p.check(TokenKeyword, "const"):
		// The declaration consumes its own ';'.
		stmt.Init, err = p.parseVariableDeclaration()
		if err != nil {
			return nil, err
		}

	case p.match(TokenDelimiter, ";"):

	default:
		stmt.Init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenDelimiter, ";"); err != nil {
			return nil, err
		}
	}

	if !p.check(TokenDelimiter, ";") {
		stmt.Test, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenDelimiter, ";"); err != nil {
		return nil, err
	}

	if !p.check(TokenDelimiter, ")") {
		stmt.Update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenDelimiter, ")"); err != nil {
		return nil, err
	}

	stmt.Body, err = p.parseStatement()
	if err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *parser) parseReturn() (Node, error) {
	kw := p.advance()

	stmt := &ReturnStatement{node: node{At: kw.Pos}}

	if !p.check(TokenDelimiter, ";") && !p.check(TokenDelimiter, "}") && !p.atEOF() {
		var err error

		stmt.Argument, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	p.match(TokenDelimiter, ";")

	return stmt, nil
}

func (p *parser) parseExpressionStatement() (Node, error) {
	pos := p.peek().Pos

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.match(TokenDelimiter, ";")

	return &ExpressionStatement{node: node{At: pos}, Expr: expr}, nil
}

// Expressions

func (p *parser) parseExpression() (Node, error) {
	return p.parseAssignment()
}

// parseAssignment parses a right-associative assignment. The target is
// checked at evaluation time.
func (p *parser) parseAssignment() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Is(TokenOperator, "=") {
		p.advance()

		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}

		return &AssignmentExpression{node: node{At: tok.Pos}, Target: left, Value: value}, nil
	}

	return left, nil
}

// parseBinary climbs the precedence table starting at tier.
func (p *parser) parseBinary(tier int) (Node, error) {
	if tier == len(binaryTiers) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(tier + 1)
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != TokenOperator || !slices.Contains(binaryTiers[tier], tok.Text) {
			return left, nil
		}

		p.advance()

		right, err := p.parseBinary(tier + 1)
		if err != nil {
			return nil, err
		}

		if tok.Text == "&&" || tok.Text == "||" {
			left = &LogicalExpression{node: node{At: tok.Pos}, Op: tok.Text, Left: left, Right: right}
		} else {
			left = &BinaryExpression{node: node{At: tok.Pos}, Op: tok.Text, Left: left, Right: right}
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if tok := p.peek(); tok.Is(TokenOperator, "-") || tok.Is(TokenOperator, "!") {
		p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryExpression{node: node{At: tok.Pos}, Op: tok.Text, Operand: operand}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any chain of calls, computed
// members and dotted members.
func (p *parser) parsePostfix() (Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch {
		case tok.Is(TokenDelimiter, "("):
			p.advance()

			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}

			expr = &CallExpression{node: node{At: tok.Pos}, Callee: expr, Args: args}

		case tok.Is(TokenDelimiter, "["):
			p.advance()

			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(TokenDelimiter, "]"); err != nil {
				return nil, err
			}

			expr = &MemberExpression{node: node{At: tok.Pos}, Object: expr, Property: prop, Computed: true}

		case tok.Is(TokenDelimiter, "."):
			p.advance()

			name := p.peek()
			if name.Kind != TokenIdentifier && name.Kind != TokenKeyword {
				return nil, p.mismatch(ErrExpectedToken, "property name")
			}

			p.advance()

			prop := &Identifier{node: node{At: name.Pos}, Name: name.Text}
			expr = &MemberExpression{node: node{At: tok.Pos}, Object: expr, Property: prop}

		default:
			return expr, nil
		}
	}
}

// parseList parses comma-separated expressions up to and including the
// closing delimiter.
func (p *parser) parseList(closing string) ([]Node, error) {
	list := make([]Node, 0)

	if !p.check(TokenDelimiter, closing) {
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			list = append(list, expr)

			if !p.match(TokenDelimiter, ",") {
				break
			}
		}
	}

	if _, err := p.expect(TokenDelimiter, closing); err != nil {
		return nil, err
	}

	return list, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	at := node{At: tok.Pos}

	switch tok.Kind {
	case TokenNumber:
		p.advance()

		// Out-of-range literals round to ±Inf or zero.
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, ErrUnexpectedToken.At(tok.Pos).Wrap(err)
		}

		return &Literal{node: at, Value: Number(f), Raw: tok.Text}, nil

	case TokenString:
		p.advance()

		return &Literal{node: at, Value: String(tok.Text), Raw: strconv.Quote(tok.Text)}, nil

	case TokenIdentifier:
		p.advance()

		return &Identifier{node: at, Name: tok.Text}, nil

	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			p.advance()

			return &Literal{node: at, Value: Bool(tok.Text == "true"), Raw: tok.Text}, nil

		case "null", "undefined":
			p.advance()

			return &Literal{node: at, Value: Null{}, Raw: tok.Text}, nil
		}

	case TokenDelimiter:
		switch tok.Text {
		case "(":
			p.advance()

			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(TokenDelimiter, ")"); err != nil {
				return nil, err
			}

			return expr, nil

		case "[":
			p.advance()

			elems, err := p.parseList("]")
			if err != nil {
				return nil, err
			}

			return &ArrayLiteral{node: at, Elements: elems}, nil
		}
	}

	return nil, p.mismatch(ErrUnexpectedToken, "expression")
}

// Helper methods

func (p *parser) peek() Token {
	return p.tokens[p.cur]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.cur]
	if tok.Kind != TokenEOF {
		p.cur++
	}

	return tok
}

func (p *parser) atEOF() bool {
	return p.peek().Kind == TokenEOF
}

func (p *parser) check(kind TokenKind, text string) bool {
	return p.peek().Is(kind, text)
}

func (p *parser) match(kind TokenKind, text string) bool {
	if p.check(kind, text) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) expect(kind TokenKind, text string) (Token, error) {
	if p.check(kind, text) {
		return p.advance(), nil
	}

	return Token{}, p.mismatch(ErrExpectedToken, strconv.Quote(text))
}

func (p *parser) expectIdentifier(what string) (Token, error) {
	if tok := p.peek(); tok.Kind == TokenIdentifier {
		return p.advance(), nil
	}

	return Token{}, p.mismatch(ErrExpectedToken, what)
}

// enter descends one level of nesting, failing once the configured maximum
// depth is reached. Each successful enter is paired with a leave.
func (p *parser) enter() error {
	if p.depth >= p.maxDepth {
		return ErrMaxNesting.At(p.peek().Pos).
			Errorf("more than %d levels", p.maxDepth).
			With(slog.Int("max_depth", p.maxDepth))
	}

	p.depth++

	return nil
}

func (p *parser) leave() { p.depth-- }

// mismatch reports the current token against what was expected there.
// [ErrExpectedToken] marks a missing required token, [ErrUnexpectedToken] a
// token that cannot start the construct.
func (p *parser) mismatch(sentinel *Error, expected string) *Error {
	tok := p.peek()

	return sentinel.At(tok.Pos).
		Errorf("expected %s, got %s", expected, tok).
		With(slog.String("expected", expected), slog.String("got", tok.Text))
}

// synchronize skips past the next ';' or '}' so that parsing can resume at
// a statement boundary.
func (p *parser) synchronize() {
	for !p.atEOF() {
		tok := p.advance()
		if tok.Is(TokenDelimiter, ";") || tok.Is(TokenDelimiter, "}") {
			return
		}
	}
}
