// Package compiler is the front end of the heaplab console: it turns one line
// of input into one statement tree for the evaluator.
//
//   - Parse: lexes and parses a single statement
//   - SplitStatements: splits multi-line script text into statement sources
package compiler

import (
	"fmt"
	"strings"

	"github.com/zurustar/heaplab/pkg/compiler/ast"
	"github.com/zurustar/heaplab/pkg/compiler/lexer"
	"github.com/zurustar/heaplab/pkg/compiler/parser"
	"github.com/zurustar/heaplab/pkg/compiler/token"
)

// Parse parses source as exactly one statement. Blank input and input that
// holds only comments yield a nil statement and a nil error.
//
// Errors are *CompileError values: phase "lexer" for illegal characters and
// malformed char or string literals, phase "parser" for everything else.
func Parse(source string) (ast.Statement, error) {
	// Phase 1: Lexical analysis
	if err := scan(source); err != nil {
		return nil, err
	}

	// Phase 2: Syntax analysis
	p := parser.New(lexer.New(source))
	stmt, parseErrs := p.ParseStatement()
	if len(parseErrs) > 0 {
		err := parseErrs[0]
		if pe, ok := err.(*parser.ParserError); ok {
			return nil, NewParserErrorWithContext(pe.Message, pe.Line, pe.Column, source)
		}
		return nil, err
	}
	return stmt, nil
}

// scan reports the first illegal token in source.
func scan(source string) error {
	l := lexer.New(source)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return nil
		case token.ILLEGAL:
			msg := tok.Literal
			if len(msg) == 1 {
				msg = fmt.Sprintf("illegal character %q", tok.Literal)
			}
			return NewLexerErrorWithContext(msg, tok.Line, tok.Column, source)
		}
	}
}

// SplitStatements splits script text into the source of each statement: one
// statement per line. Lines that are blank or hold only a comment are
// dropped. Each entry keeps its 1-indexed line number for error reporting.
func SplitStatements(source string) []Line {
	var out []Line
	for i, text := range strings.Split(source, "\n") {
		text = strings.TrimRight(text, "\r")
		if isBlank(text) {
			continue
		}
		out = append(out, Line{Number: i + 1, Text: text})
	}
	return out
}

// Line is one statement of a script.
type Line struct {
	Number int
	Text   string
}

func isBlank(text string) bool {
	l := lexer.New(text)
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return true
		case token.COMMENT:
			continue
		default:
			return false
		}
	}
}
