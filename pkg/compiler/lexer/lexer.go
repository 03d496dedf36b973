// Package lexer provides lexical analysis for heaplab console input.
package lexer

import (
	"strings"

	"github.com/zurustar/heaplab/pkg/compiler/token"
)

// Lexer tokenizes heaplab source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.newToken(token.ASSIGN, l.ch)
	case '+':
		tok = l.newToken(token.PLUS, l.ch)
	case '-':
		tok = l.newToken(token.MINUS, l.ch)
	case '*':
		tok = l.newToken(token.ASTERISK, l.ch)
	case '/':
		if l.peekChar() == '/' {
			// Single-line comment
			tok.Type = token.COMMENT
			tok.Literal = l.readComment()
			return tok
		} else if l.peekChar() == '*' {
			// Multi-line comment
			tok.Type = token.COMMENT
			tok.Literal = l.readMultiLineComment()
			return tok
		}
		tok = l.newToken(token.SLASH, l.ch)
	case '(':
		tok = l.newToken(token.LPAREN, l.ch)
	case ')':
		tok = l.newToken(token.RPAREN, l.ch)
	case ',':
		tok = l.newToken(token.COMMA, l.ch)
	case ';':
		tok = l.newToken(token.SEMICOLON, l.ch)
	case '"':
		text, ok := l.readQuoted('"')
		tok.Type = token.STRING_LIT
		tok.Literal = text
		if !ok {
			tok.Type = token.ILLEGAL
		}
	case '\'':
		text, ok := l.readQuoted('\'')
		tok.Type = token.CHAR_LIT
		tok.Literal = text
		if !ok {
			tok.Type = token.ILLEGAL
		}
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			return l.readNumber(tok.Line, tok.Column)
		} else {
			tok = l.newToken(token.ILLEGAL, l.ch)
		}
	}

	l.readChar()
	return tok
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer, double, or hexadecimal).
func (l *Lexer) readNumber(line, column int) token.Token {
	position := l.position
	isDouble := false

	// Check for hexadecimal (0x or 0X)
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // consume '0'
		l.readChar() // consume 'x' or 'X'

		for isHexDigit(l.ch) {
			l.readChar()
		}

		literal := l.input[position:l.position]
		return token.Token{Type: token.INT_LIT, Literal: literal, Line: line, Column: column}
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		isDouble = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent: 1e3, 2.5E-2
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '-' || l.peekChar() == '+') {
		isDouble = true
		l.readChar() // consume 'e'
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	literal := l.input[position:l.position]
	if isDouble {
		return token.Token{Type: token.DOUBLE_LIT, Literal: literal, Line: line, Column: column}
	}
	return token.Token{Type: token.INT_LIT, Literal: literal, Line: line, Column: column}
}

// readQuoted reads a char or string literal delimited by quote and decodes
// its escapes. The current char is the opening quote; on return it is the
// closing quote. ok is false for unterminated literals or bad escapes, in
// which case the text is an error description.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return "unterminated literal", false
		case quote:
			return b.String(), true
		case '\\':
			l.readChar()
			r, ok := l.readEscape()
			if !ok {
				return "invalid escape sequence", false
			}
			b.WriteRune(r)
		default:
			b.WriteByte(l.ch)
		}
	}
}

// readEscape decodes the escape whose letter is the current char.
// \xNN yields the rune U+00NN so that it maps back to byte NN as a char.
func (l *Lexer) readEscape() (rune, bool) {
	switch l.ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '\'', '"':
		return rune(l.ch), true
	case 'x':
		if !isHexDigit(l.peekChar()) {
			return 0, false
		}
		var v rune
		for i := 0; i < 2 && isHexDigit(l.peekChar()); i++ {
			l.readChar()
			v = v*16 + rune(hexValue(l.ch))
		}
		return v, true
	}
	return 0, false
}

// readComment reads a single-line comment.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readMultiLineComment reads a multi-line comment /* ... */
func (l *Lexer) readMultiLineComment() string {
	position := l.position
	l.readChar() // consume /
	l.readChar() // consume *

	for {
		if l.ch == 0 {
			break // EOF
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			break
		}
		l.readChar()
	}

	return l.input[position:l.position]
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// isLetter checks if a character is a letter.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if a character is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func hexValue(ch byte) byte {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0'
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}

// GetSource returns the source code as a string
func (l *Lexer) GetSource() string {
	return l.input
}
