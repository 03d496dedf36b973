// Package ast defines the statement tree that the console parser produces and
// the evaluator consumes. The set of statement nodes is closed: every
// Statement implementation lives in this file.
package ast

import (
	"bytes"
	"strings"

	"github.com/zurustar/heaplab/pkg/compiler/token"
	"github.com/zurustar/heaplab/pkg/value"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

// Literal: 42, 2.5, 'a', "abc"
type Literal struct {
	Token token.Token
	Value value.Literal
}

func (l *Literal) statementNode()       {}
func (l *Literal) TokenLiteral() string { return l.Token.Literal }
func (l *Literal) String() string       { return l.Value.String() }

// Operator: left + right
type Operator struct {
	Token    token.Token // the operator token
	Operator string      // "+", "-", "*" or "/"
	Left     Statement
	Right    Statement
}

func (o *Operator) statementNode()       {}
func (o *Operator) TokenLiteral() string { return o.Token.Literal }
func (o *Operator) String() string {
	var out bytes.Buffer
	out.WriteString(nodeString(o.Left))
	out.WriteString(" " + o.Operator + " ")
	out.WriteString(nodeString(o.Right))
	return out.String()
}

// Cast: (char*)p
type Cast struct {
	Token     token.Token // '('
	Type      *TypeNode
	Statement Statement
}

func (c *Cast) statementNode()       {}
func (c *Cast) TokenLiteral() string { return c.Token.Literal }
func (c *Cast) String() string {
	return "(" + nodeString(c.Type) + ")" + nodeString(c.Statement)
}

// Parenthesis: (expr). Grouping only.
type Parenthesis struct {
	Token     token.Token // '('
	Statement Statement
}

func (p *Parenthesis) statementNode()       {}
func (p *Parenthesis) TokenLiteral() string { return p.Token.Literal }
func (p *Parenthesis) String() string       { return "(" + nodeString(p.Statement) + ")" }

// Declaration: int x, char* p
type Declaration struct {
	Token token.Token // the type keyword
	Type  *TypeNode
	Name  *Identifier
}

func (d *Declaration) statementNode()       {}
func (d *Declaration) TokenLiteral() string { return d.Token.Literal }
func (d *Declaration) String() string {
	return nodeString(d.Type) + " " + nodeString(d.Name)
}

// Identifier
type Identifier struct {
	Token token.Token // token.IDENT
	Value string
}

func (i *Identifier) statementNode()       {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// Assignment: x = 1, *p = 'a', int y = 2
//
// Left is a *Declaration, a *Dereference or an *Identifier.
type Assignment struct {
	Token token.Token // token.ASSIGN
	Left  Statement
	Right Statement
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) String() string {
	return nodeString(a.Left) + " = " + nodeString(a.Right)
}

// FunctionCall: malloc(4), sizeof(int)
//
// Each argument is either a Statement or a *TypeNode.
type FunctionCall struct {
	Token     token.Token // '('
	Function  *Identifier
	Arguments []Node
}

func (fc *FunctionCall) statementNode()       {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) String() string {
	var out bytes.Buffer
	out.WriteString(nodeString(fc.Function))
	out.WriteString("(")
	args := []string{}
	for _, a := range fc.Arguments {
		args = append(args, nodeString(a))
	}
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// Dereference: *p
type Dereference struct {
	Token     token.Token // '*'
	Statement Statement
}

func (d *Dereference) statementNode()       {}
func (d *Dereference) TokenLiteral() string { return d.Token.Literal }
func (d *Dereference) String() string       { return "*" + nodeString(d.Statement) }

// TypeNode names a type. It appears in declarations, casts and as a function
// argument (sizeof(int)); it is not a Statement.
type TypeNode struct {
	Token token.Token
	Type  value.Type
}

func (tn *TypeNode) TokenLiteral() string { return tn.Token.Literal }
func (tn *TypeNode) String() string       { return string(tn.Type) }

// nodeString tolerates nil children so that String can be used on partially
// built trees in error messages.
func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	switch v := n.(type) {
	case *Identifier:
		if v == nil {
			return "<nil>"
		}
	case *TypeNode:
		if v == nil {
			return "<nil>"
		}
	}
	return n.String()
}
