package token

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	COMMENT = "COMMENT"

	// Identifiers + Literals
	IDENT      = "IDENT"  // x, malloc
	INT_LIT    = "INT"    // 123, 0xff
	DOUBLE_LIT = "DOUBLE" // 1.5
	CHAR_LIT   = "CHAR"   // 'a'
	STRING_LIT = "STRING" // "abc"

	// Operators and Delimiters
	ASSIGN    = "="
	PLUS      = "+"
	MINUS     = "-"
	ASTERISK  = "*"
	SLASH     = "/"
	COMMA     = ","
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"

	// Type keywords
	VOID   = "VOID"
	INT    = "INT_TYPE"
	CHAR   = "CHAR_TYPE"
	DOUBLE = "DOUBLE_TYPE"
	STRING = "STRING_TYPE"
)

var keywords = map[string]TokenType{
	"void":   VOID,
	"int":    INT,
	"char":   CHAR,
	"double": DOUBLE,
	"string": STRING,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsType reports whether t is a type keyword.
func IsType(t TokenType) bool {
	switch t {
	case VOID, INT, CHAR, DOUBLE, STRING:
		return true
	}
	return false
}
