package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/zurustar/heaplab/pkg/compiler/ast"
	"github.com/zurustar/heaplab/pkg/compiler/lexer"
	"github.com/zurustar/heaplab/pkg/value"
)

// tree renders a node with its structure made explicit, so that tests can
// check precedence and node kinds in one string.
func tree(n ast.Node) string {
	switch v := n.(type) {
	case nil:
		return "nil"
	case *ast.Literal:
		return v.Value.Kind().String() + ":" + v.Value.String()
	case *ast.Identifier:
		return v.Value
	case *ast.TypeNode:
		return "type:" + string(v.Type)
	case *ast.Operator:
		return "(" + v.Operator + " " + tree(v.Left) + " " + tree(v.Right) + ")"
	case *ast.Cast:
		return "(cast " + tree(v.Type) + " " + tree(v.Statement) + ")"
	case *ast.Parenthesis:
		return "(paren " + tree(v.Statement) + ")"
	case *ast.Declaration:
		return "(decl " + tree(v.Type) + " " + tree(v.Name) + ")"
	case *ast.Assignment:
		return "(= " + tree(v.Left) + " " + tree(v.Right) + ")"
	case *ast.Dereference:
		return "(deref " + tree(v.Statement) + ")"
	case *ast.FunctionCall:
		parts := []string{"call", tree(v.Function)}
		for _, a := range v.Arguments {
			parts = append(parts, tree(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "?"
}

func parse(t *testing.T, input string) ast.Statement {
	t.Helper()
	p := New(lexer.New(input))
	stmt, errs := p.ParseStatement()
	checkParserErrors(t, errs)
	return stmt
}

func checkParserErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errs))
	for _, msg := range errs {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "int:42"},
		{"0x1f", "int:31"},
		{"2.5", "double:2.5"},
		{"'a'", "char:'a'"},
		{`"hi"`, `string:"hi"`},
		{"x", "x"},
		{"1 + 2 * 3", "(+ int:1 (* int:2 int:3))"},
		{"1 - 2 - 3", "(- (- int:1 int:2) int:3)"},
		{"8 / 4 / 2", "(/ (/ int:8 int:4) int:2)"},
		{"(1 + 2) * 3", "(* (paren (+ int:1 int:2)) int:3)"},
		{"-5", "int:-5"},
		{"-2.5", "double:-2.5"},
		{"-9223372036854775808", "int:-9223372036854775808"},
		{"-x", "(- int:0 x)"},
		{"-(1 + 2)", "(- int:0 (paren (+ int:1 int:2)))"},
		{"3 - -1", "(- int:3 int:-1)"},
		{"int x", "(decl type:int x)"},
		{"char* p", "(decl type:char* p)"},
		{"int x = 5", "(= (decl type:int x) int:5)"},
		{"x = y + 1", "(= x (+ y int:1))"},
		{"*p = 'a'", "(= (deref p) char:'a')"},
		{"*(p + 1) = 3", "(= (deref (paren (+ p int:1))) int:3)"},
		{"*p + 1", "(+ (deref p) int:1)"},
		{"(char)65", "(cast type:char int:65)"},
		{"(int*)malloc(4)", "(cast type:int* (call malloc int:4))"},
		{"(char)x + 1", "(+ (cast type:char x) int:1)"},
		{"sizeof(int)", "(call sizeof type:int)"},
		{"sizeof(char*)", "(call sizeof type:char*)"},
		{"clear()", "(call clear)"},
		{"f(1, x, int)", "(call f int:1 x type:int)"},
		{"int* p = (int*)malloc(sizeof(int) * 2);", "(= (decl type:int* p) (cast type:int* (call malloc (* (call sizeof type:int) int:2))))"},
		{"x = 1; // done", "(= x int:1)"},
		{"/* lead */ x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt := parse(t, tt.input)
			be.Equal(t, tree(stmt), tt.want)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", ";", "// only a comment"} {
		stmt, errs := New(lexer.New(input)).ParseStatement()
		be.Equal(t, len(errs), 0)
		be.True(t, stmt == nil)
	}
}

func TestCharLiteralValue(t *testing.T) {
	stmt := parse(t, `'\xff'`)
	lit, ok := stmt.(*ast.Literal)
	be.True(t, ok)
	c, ok := lit.Value.AsChar()
	be.True(t, ok)
	be.Equal(t, c, byte(0xff))
	be.Equal(t, lit.Value.Kind(), value.KindChar)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"1 +", "unexpected end of input"},
		{"1 2", "unexpected \"2\" after end of statement"},
		{"x = 1; y = 2", "after end of statement"},
		{"(1 + 2", "expected next token to be )"},
		{"int", "expected next token to be IDENT"},
		{"1 = 2", "cannot assign to 1"},
		{"(x + 1) = 2", "cannot assign to (x + 1)"},
		{"5(1)", "5 is not callable"},
		{"''", "invalid char literal"},
		{"'ab'", "invalid char literal"},
		{"99999999999999999999", "could not parse"},
		{"x @ y", "after end of statement"},
		{"@", "illegal token"},
		{"f(1,", "unexpected end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt, errs := New(lexer.New(tt.input)).ParseStatement()
			be.True(t, stmt == nil)
			be.True(t, len(errs) > 0)
			be.True(t, strings.Contains(errs[0].Error(), tt.message))
		})
	}
}

func TestParserErrorPosition(t *testing.T) {
	_, errs := New(lexer.New("x = \n  1 +")).ParseStatement()
	be.True(t, len(errs) > 0)

	var pe *ParserError
	be.True(t, errors.As(errs[0], &pe))
	be.Equal(t, pe.Line, 2)
}
