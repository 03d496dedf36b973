// Package parser turns one line of heaplab console input into a statement
// tree. It is a Pratt parser: every token type that can start an expression
// has a prefix function and every binary operator has an infix function.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/heaplab/pkg/compiler/ast"
	"github.com/zurustar/heaplab/pkg/compiler/lexer"
	"github.com/zurustar/heaplab/pkg/compiler/token"
	"github.com/zurustar/heaplab/pkg/value"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * /
	PREFIX  // -X, *X, (T)X
	CALL    // f(X)
)

var precedences = map[token.TokenType]int{
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.LPAREN:   CALL,
}

// ParserError is a syntax error with its position in the input.
type ParserError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Parser parses heaplab source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Statement
	infixParseFn  func(ast.Statement) ast.Statement
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []error{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT_LIT, p.parseIntegerLiteral)
	p.registerPrefix(token.DOUBLE_LIT, p.parseDoubleLiteral)
	p.registerPrefix(token.CHAR_LIT, p.parseCharLiteral)
	p.registerPrefix(token.STRING_LIT, p.parseStringLiteral)
	p.registerPrefix(token.MINUS, p.parseNegation)
	p.registerPrefix(token.ASTERISK, p.parseDereference)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrCast)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parser errors.
func (p *Parser) Errors() []error {
	return p.errors
}

// ParseStatement parses exactly one statement, optionally followed by a
// semicolon. Anything after it is an error. An empty input yields a nil
// statement and no errors.
func (p *Parser) ParseStatement() (ast.Statement, []error) {
	if p.curTokenIs(token.EOF) {
		return nil, nil
	}
	if p.curTokenIs(token.SEMICOLON) && p.peekTokenIs(token.EOF) {
		return nil, nil
	}

	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	if !p.peekTokenIs(token.EOF) {
		p.addError(fmt.Sprintf("unexpected %s after end of statement", describe(p.peekToken)), p.peekToken)
		return nil, p.errors
	}

	return stmt, nil
}

func (p *Parser) parseStatement() ast.Statement {
	if token.IsType(p.curToken.Type) {
		decl := p.parseDeclaration()
		if decl == nil {
			return nil
		}
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignment(decl)
		}
		return decl
	}

	left := p.parseExpression(LOWEST)
	if left == nil {
		return nil
	}
	if p.peekTokenIs(token.ASSIGN) {
		switch left.(type) {
		case *ast.Identifier, *ast.Dereference:
			return p.parseAssignment(left)
		default:
			p.addError(fmt.Sprintf("cannot assign to %s", left.String()), p.peekToken)
			return nil
		}
	}
	return left
}

// parseDeclaration parses "T name" or "T* name" starting at the type keyword.
func (p *Parser) parseDeclaration() ast.Statement {
	decl := &ast.Declaration{Token: p.curToken}
	decl.Type = p.parseType()
	if decl.Type == nil {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return decl
}

// parseType parses a type keyword with an optional pointer marker. On return
// curToken is the last token of the type.
func (p *Parser) parseType() *ast.TypeNode {
	tn := &ast.TypeNode{Token: p.curToken}
	name := p.curToken.Literal
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		name += value.PointerMarker
	}
	t, err := value.ParseType(name)
	if err != nil {
		p.addError(err.Error(), tn.Token)
		return nil
	}
	tn.Type = t
	return tn
}

func (p *Parser) parseAssignment(left ast.Statement) ast.Statement {
	p.nextToken() // '='
	stmt := &ast.Assignment{Token: p.curToken, Left: left}

	p.nextToken()
	stmt.Right = p.parseExpression(LOWEST)
	if stmt.Right == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Statement {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Statement {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Statement {
	return p.integerLiteral(p.curToken, false)
}

// integerLiteral parses tok as an int literal, negated when negative is set.
// The sign is applied before range checking so the minimum int64 parses.
func (p *Parser) integerLiteral(tok token.Token, negative bool) ast.Statement {
	// Detect base: 0x/0X for hex, otherwise decimal
	base := 10
	literal := tok.Literal
	if len(literal) > 2 && literal[0] == '0' && (literal[1] == 'x' || literal[1] == 'X') {
		base = 16
		literal = literal[2:]
	}
	if negative {
		literal = "-" + literal
	}

	v, err := strconv.ParseInt(literal, base, 64)
	if err != nil {
		p.addError(fmt.Sprintf("could not parse %q as integer", tok.Literal), tok)
		return nil
	}
	return &ast.Literal{Token: tok, Value: value.Int(v)}
}

func (p *Parser) parseDoubleLiteral() ast.Statement {
	return p.doubleLiteral(p.curToken, false)
}

func (p *Parser) doubleLiteral(tok token.Token, negative bool) ast.Statement {
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError(fmt.Sprintf("could not parse %q as double", tok.Literal), tok)
		return nil
	}
	if negative {
		v = -v
	}
	return &ast.Literal{Token: tok, Value: value.Double(v)}
}

func (p *Parser) parseCharLiteral() ast.Statement {
	c, err := value.StringToChar(p.curToken.Literal)
	if err != nil {
		p.addError(fmt.Sprintf("invalid char literal: %v", err), p.curToken)
		return nil
	}
	return &ast.Literal{Token: p.curToken, Value: value.Char(c)}
}

func (p *Parser) parseStringLiteral() ast.Statement {
	return &ast.Literal{Token: p.curToken, Value: value.String(p.curToken.Literal)}
}

// parseNegation folds "-" into a following numeric literal and otherwise
// rewrites -x as 0 - x.
func (p *Parser) parseNegation() ast.Statement {
	minus := p.curToken
	switch p.peekToken.Type {
	case token.INT_LIT:
		p.nextToken()
		return p.integerLiteral(p.curToken, true)
	case token.DOUBLE_LIT:
		p.nextToken()
		return p.doubleLiteral(p.curToken, true)
	}

	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.Operator{
		Token:    minus,
		Operator: "-",
		Left:     &ast.Literal{Token: minus, Value: value.Int(0)},
		Right:    operand,
	}
}

func (p *Parser) parseDereference() ast.Statement {
	expression := &ast.Dereference{Token: p.curToken}

	p.nextToken()
	expression.Statement = p.parseExpression(PREFIX)
	if expression.Statement == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Statement) ast.Statement {
	expression := &ast.Operator{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseGroupedOrCast handles "(" which starts either a cast "(T)x" or a
// parenthesized expression.
func (p *Parser) parseGroupedOrCast() ast.Statement {
	open := p.curToken
	p.nextToken()

	if token.IsType(p.curToken.Type) {
		cast := &ast.Cast{Token: open}
		cast.Type = p.parseType()
		if cast.Type == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		p.nextToken()
		cast.Statement = p.parseExpression(PREFIX)
		if cast.Statement == nil {
			return nil
		}
		return cast
	}

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return &ast.Parenthesis{Token: open, Statement: exp}
}

func (p *Parser) parseCallExpression(function ast.Statement) ast.Statement {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.addError(fmt.Sprintf("%s is not callable", function.String()), p.curToken)
		return nil
	}
	exp := &ast.FunctionCall{Token: p.curToken, Function: ident}
	exp.Arguments = p.parseArgumentList()
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

// parseArgumentList parses call arguments up to the closing ")". An argument
// that starts with a type keyword is a type argument, as in sizeof(int).
func (p *Parser) parseArgumentList() []ast.Node {
	list := []ast.Node{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return list
	}

	p.nextToken()
	arg := p.parseArgument()
	if arg == nil {
		return nil
	}
	list = append(list, arg)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseArgument()
		if arg == nil {
			return nil
		}
		list = append(list, arg)
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return list
}

func (p *Parser) parseArgument() ast.Node {
	if token.IsType(p.curToken.Type) {
		if tn := p.parseType(); tn != nil {
			return tn
		}
		return nil
	}
	if exp := p.parseExpression(LOWEST); exp != nil {
		return exp
	}
	return nil
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	// Skip comments in both curToken and peekToken
	for p.curToken.Type == token.COMMENT {
		p.curToken = p.peekToken
		p.peekToken = p.l.NextToken()
	}

	for p.peekToken.Type == token.COMMENT {
		p.peekToken = p.l.NextToken()
	}
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

func (p *Parser) peekError(t token.TokenType) {
	p.addError(fmt.Sprintf("expected next token to be %s, got %s instead", t, describe(p.peekToken)), p.peekToken)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.addError(fmt.Sprintf("illegal token %q", tok.Literal), tok)
		return
	}
	p.addError(fmt.Sprintf("unexpected %s", describe(tok)), tok)
}

func (p *Parser) addError(msg string, tok token.Token) {
	p.errors = append(p.errors, &ParserError{Message: msg, Line: tok.Line, Column: tok.Column})
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// describe names a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.ILLEGAL:
		return fmt.Sprintf("illegal token %q", tok.Literal)
	}
	if strings.TrimSpace(tok.Literal) == "" {
		return string(tok.Type)
	}
	return fmt.Sprintf("%q", tok.Literal)
}
