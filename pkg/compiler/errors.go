package compiler

import (
	"fmt"
	"strings"
)

// CompileError is a front-end error with its location in the source.
type CompileError struct {
	// Phase is "lexer" or "parser".
	Phase string

	// Message is the human-readable error description.
	Message string

	// Line and Column are 1-indexed.
	Line   int
	Column int

	// Context holds the source lines around the error with a pointer (^)
	// under the error column. It may be empty.
	Context string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

// NewLexerErrorWithContext creates a CompileError for the lexer phase.
func NewLexerErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "lexer",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// NewParserErrorWithContext creates a CompileError for the parser phase.
func NewParserErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "parser",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// GenerateErrorContext renders up to 2 lines before and after the error line,
// with line numbers and a pointer (^) under the error column.
//
// Example output:
//
//	  1 | int x = 5;
//	> 2 | int z = ;
//	    |         ^
//	  3 | int w = 20;
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		if lineNum != line {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lines[i]))
			continue
		}

		buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lines[i]))
		pointerIndent := 2 + lineNumWidth + 3 // "> " + number + " | "
		if column > 1 {
			pointerIndent += column - 1
		}
		buf.WriteString(strings.Repeat(" ", pointerIndent) + "^\n")
	}

	return buf.String()
}
