package parser

import (
	"fmt"
	"platypus/internal/ast"
	"platypus/internal/lexer"
	"platypus/internal/token"
	"strconv"
)

const (
	_           int = iota
	LOWEST          //
	ASSIGN          // = (right associative)
	LOGICAL_OR      // ||
	LOGICAL_AND     // &&
	EQUALS          // == or !=
	COMPARISON      // > or <
	SUM             // +
	PRODUCT         // *
	PREFIX          // -X or !X
	CALL            // myFunction(X) or x.y
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:      ASSIGN,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
	token.PERIOD:      CALL,
	token.LPAREN:      CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// ParseError describes the first malformed construct; parsing stops there.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Parser works over a fully scanned token slice so that it can rewind when
// speculating on lambdas and for-in loops.
type Parser struct {
	tokens []token.Token
	pos    int // index of curToken
	err    *ParseError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		eof := token.Token{Type: token.EOF}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Line, eof.Column, eof.Position = last.Line, last.Column+len(last.Literal), last.Position+len(last.Literal)
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}

	p := &Parser{tokens: tokens}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrLambda)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.NEW, p.parseNewExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)

	p.registerInfix(token.PERIOD, p.parseMemberExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	p.seek(0)

	return p
}

// Parse scans and parses src in one step. Scan failures come back as
// *lexer.ScanError, grammar failures as *ParseError.
func Parse(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) tokenAt(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// seek moves the cursor so that curToken is tokens[i]. Used both for normal
// advancing and for rewinding after a failed speculation.
func (p *Parser) seek(i int) {
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	p.pos = i
	p.curToken = p.tokenAt(i)
	p.peekToken = p.tokenAt(i + 1)
}

func (p *Parser) nextToken() {
	p.seek(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// errorAt records the first error only; everything after it is noise.
func (p *Parser) errorAt(tok token.Token, message string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{
		Message: fmt.Sprintf(message, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.errorAt(p.curToken, message, args...)
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorAt(p.peekToken, "expected next token to be %s, got %s instead", describe(t, ""), describe(p.peekToken.Type, p.peekToken.Literal))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorAt(tok, "unexpected token %s", describe(tok.Type, tok.Literal))
}

func describe(t token.TokenType, literal string) string {
	switch t {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER:
		if literal != "" {
			return fmt.Sprintf("%s %q", t, literal)
		}
		return string(t)
	case token.STRING:
		return "STRING"
	}
	return fmt.Sprintf("'%s'", t)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) failed() bool {
	return p.err != nil
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseDeclaration()
		if p.failed() {
			return nil, p.err
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}

	return program, nil
}

// parseDeclaration handles the positions where functions and classes may
// be declared: program top level, blocks, and function or method bodies.
func (p *Parser) parseDeclaration() ast.Statement {
	switch p.curToken.Type {
	case token.FUNCTION:
		return p.parseFunctionStatement()
	case token.CLASS:
		return p.parseClassStatement()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseStatementList parses declarations until the closing brace; curToken
// is left on the '}'.
func (p *Parser) parseStatementList() []ast.Statement {
	open := p.curToken
	statements := []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, "expected '}' to close '{' opened at line %d, column %d", open.Line, open.Column)
			return nil
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseDeclaration()
		if p.failed() {
			return nil
		}
		statements = append(statements, stmt)
		p.nextToken()
	}

	return statements
}

func (p *Parser) parseBlockStatement() ast.Statement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = p.parseStatementList()
	if p.failed() {
		return nil
	}
	return block
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseFunctionParameters()
	if p.failed() {
		return nil
	}

	// optional return type annotation, recorded but never checked
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.ReturnType = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseStatementList()
	if p.failed() {
		return nil
	}

	return stmt
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return identifiers
}

func (p *Parser) parseClassStatement() ast.Statement {
	stmt := &ast.ClassStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Parent = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		switch p.curToken.Type {
		case token.FUNCTION:
			method := p.parseFunctionStatement()
			if p.failed() {
				return nil
			}
			stmt.Methods = append(stmt.Methods, method)
		case token.IDENT:
			prop := p.parseClassProperty()
			if p.failed() {
				return nil
			}
			stmt.Properties = append(stmt.Properties, prop)
		case token.EOF:
			p.addError("expected '}' after class body")
			return nil
		default:
			p.addError("expected property or method declaration in class body, got %s", describe(p.curToken.Type, p.curToken.Literal))
			return nil
		}
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseClassProperty() *ast.ClassProperty {
	prop := &ast.ClassProperty{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		prop.Value = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
	} else {
		prop.Value = &ast.NullLiteral{Token: token.Token{Type: token.NULL, Literal: "null", Line: p.curToken.Line, Column: p.curToken.Column, Position: p.curToken.Position}}
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return prop
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.EOF) {
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		return stmt
	}

	p.nextToken()

	stmt.ReturnValue = p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	stmt.Condition = p.parseParenthesizedCondition()
	if p.failed() {
		return nil
	}

	p.nextToken()
	stmt.ThenBranch = p.parseStatement()
	if p.failed() {
		return nil
	}

	// the nearest unmatched if takes the else
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.ElseBranch = p.parseStatement()
		if p.failed() {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	stmt.Condition = p.parseParenthesizedCondition()
	if p.failed() {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if p.failed() {
		return nil
	}

	return stmt
}

func (p *Parser) parseParenthesizedCondition() ast.Expression {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return condition
}

func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	// for (x in xs) needs two tokens of lookahead; speculate and rewind
	if p.peekTokenIs(token.IDENT) {
		mark := p.pos
		p.nextToken()
		if p.peekTokenIs(token.IN) {
			return p.parseForEachStatement(forToken)
		}
		p.seek(mark)
	}

	stmt := &ast.ForStatement{Token: forToken}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Init = p.parseSimpleStatement()
		if p.failed() {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		stmt.Increment = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if p.failed() {
		return nil
	}

	return stmt
}

// parseForEachStatement is entered with curToken on the loop variable and
// peekToken on 'in'.
func (p *Parser) parseForEachStatement(forToken token.Token) ast.Statement {
	stmt := &ast.ForEachStatement{Token: forToken}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	p.nextToken() // in
	p.nextToken()

	stmt.Iterable = p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if p.failed() {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := p.parseSimpleStatement()
	if p.failed() {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// parseSimpleStatement parses an expression at statement position. A plain
// `name = value` becomes a VarStatement, the only way bindings are introduced.
func (p *Parser) parseSimpleStatement() ast.Statement {
	first := p.curToken

	exp := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}

	if assign, ok := exp.(*ast.AssignExpression); ok {
		return &ast.VarStatement{Token: assign.Name.Token, Name: assign.Name, Value: assign.Value}
	}

	return &ast.ExpressionStatement{Token: first, Expression: exp}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for !p.failed() && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	if p.failed() {
		return nil
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if p.failed() {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if p.failed() {
		return nil
	}

	return expression
}

// parseAssignExpression accepts a variable or a property read as target;
// the right side binds at LOWEST so chains associate to the right.
func (p *Parser) parseAssignExpression(target ast.Expression) ast.Expression {
	assignToken := p.curToken

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}

	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.AssignExpression{Token: assignToken, Name: t, Value: value}
	case *ast.PropertyExpression:
		return &ast.PropertyAssignExpression{Token: assignToken, Object: t.Object, Property: t.Property, Value: value}
	default:
		p.errorAt(assignToken, "Invalid assignment target")
		return nil
	}
}

// parseGroupedOrLambda speculatively reads `(a, b, ...)` followed by `=>`.
// When that shape is absent the cursor is rewound to just after `(` and the
// content is parsed as an ordinary grouped expression.
func (p *Parser) parseGroupedOrLambda() ast.Expression {
	open := p.curToken
	mark := p.pos

	if params, ok := p.speculateLambdaParameters(); ok {
		lambda := &ast.LambdaExpression{Token: open, Parameters: params}
		p.nextToken() // =>
		p.nextToken()
		lambda.Body = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
		return lambda
	}

	p.seek(mark)
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

// speculateLambdaParameters leaves curToken on ')' and peekToken on '=>'
// when it succeeds. It never records errors.
func (p *Parser) speculateLambdaParameters() ([]*ast.Identifier, bool) {
	params := []*ast.Identifier{}

	if p.peekTokenIs(token.IDENT) {
		for {
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				return nil, false
			}
			params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
			// (a,) => ... keeps the trailing comma
			if p.peekTokenIs(token.RPAREN) {
				break
			}
		}
	}

	if !p.peekTokenIs(token.RPAREN) {
		return nil, false
	}
	p.nextToken()

	return params, p.peekTokenIs(token.ROCKET)
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}

	array.Elements = p.parseExpressionList(token.RBRACKET)
	if p.failed() {
		return nil
	}

	return array
}

// parseExpressionList is entered with curToken on the opening delimiter and
// leaves curToken on end.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	if p.failed() {
		return nil
	}

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
		if p.failed() {
			return nil
		}
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

// parseCallExpression only accepts a bare name as the callee.
func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	callToken := p.curToken

	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.errorAt(callToken, "Invalid function call")
		return nil
	}

	exp := &ast.CallExpression{Token: callToken, Function: ident}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	if p.failed() {
		return nil
	}

	return exp
}

// parseMemberExpression handles `.name`, which is a method call when an
// argument list follows and a property read otherwise.
func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	dot := p.curToken

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		call := &ast.MethodCallExpression{Token: dot, Object: object, Method: name}
		call.Arguments = p.parseExpressionList(token.RPAREN)
		if p.failed() {
			return nil
		}
		return call
	}

	return &ast.PropertyExpression{Token: dot, Object: object, Property: name}
}

func (p *Parser) parseNewExpression() ast.Expression {
	exp := &ast.NewExpression{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Class = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	if p.failed() {
		return nil
	}

	return exp
}

func (p *Parser) parseMatchExpression() ast.Expression {
	expression := &ast.MatchExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	expression.Value = p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for p.peekTokenIs(token.CASE) {
		p.nextToken()
		matchCase := &ast.MatchCase{Token: p.curToken}

		p.nextToken()
		matchCase.Pattern = p.parsePattern()
		if p.failed() {
			return nil
		}

		if !p.expectPeek(token.ROCKET) {
			return nil
		}
		p.nextToken()

		matchCase.Body = p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}

		expression.Cases = append(expression.Cases, matchCase)
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return expression
}

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.curToken

	switch tok.Type {
	case token.NUMBER:
		lit := p.parseNumberLiteral()
		if p.failed() {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: lit}
	case token.STRING:
		return &ast.LiteralPattern{Token: tok, Value: p.parseStringLiteral()}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: tok, Value: p.parseBoolean()}
	case token.NULL:
		return &ast.LiteralPattern{Token: tok, Value: p.parseNull()}
	case token.IDENT:
		if tok.Literal == "_" {
			return &ast.WildcardPattern{Token: tok}
		}
		return &ast.TypePattern{Token: tok, Name: tok.Literal}
	default:
		p.addError("Invalid pattern %s", describe(tok.Type, tok.Literal))
		return nil
	}
}
