package value

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// A char is one byte. Strings are Go (UTF-8) strings, and the byte <-> rune
// mapping between the two is ISO-8859-1, so every char value 0-255 has exactly
// one single-character string and back.

// CharToString returns the one-character string for c.
func CharToString(c byte) string {
	return string(charmap.ISO8859_1.DecodeByte(c))
}

// StringToChar returns the char for a one-character string.
func StringToChar(s string) (byte, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("string of length %d is not a single character", utf8.RuneCountInString(s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	b, ok := charmap.ISO8859_1.EncodeRune(r)
	if !ok || r == utf8.RuneError {
		return 0, fmt.Errorf("character %q does not fit in a char", r)
	}
	return b, nil
}

// QuoteChar renders c as a char literal, e.g. 'a' or '\x7f'.
func QuoteChar(c byte) string {
	var b strings.Builder
	b.WriteByte('\'')
	writeEscaped(&b, charmap.ISO8859_1.DecodeByte(c), '\'')
	b.WriteByte('\'')
	return b.String()
}

// QuoteString renders s as a string literal using the lexer's escapes.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		writeEscaped(&b, r, '"')
	}
	b.WriteByte('"')
	return b.String()
}

func writeEscaped(b *strings.Builder, r rune, quote rune) {
	switch r {
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case '\r':
		b.WriteString(`\r`)
	case 0:
		b.WriteString(`\0`)
	case '\\':
		b.WriteString(`\\`)
	case quote:
		b.WriteByte('\\')
		b.WriteRune(r)
	default:
		if r < 0x100 && !unicode.IsPrint(r) {
			fmt.Fprintf(b, `\x%02x`, r)
			return
		}
		b.WriteRune(r)
	}
}
