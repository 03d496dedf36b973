// Package value defines the primitive data of the heaplab language:
// literals and type tags. Runtime values that also carry native functions
// live in package vm.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which payload of a Literal is active.
type Kind int

const (
	KindInt Kind = iota
	KindDouble
	KindChar
	KindString
)

var kindNames = map[Kind]string{
	KindInt:    "int",
	KindDouble: "double",
	KindChar:   "char",
	KindString: "string",
}

// String returns the language name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type returns the type tag that a literal of this kind carries.
func (k Kind) Type() Type {
	return Type(k.String())
}

// Literal is a tagged primitive value. Exactly one payload is meaningful and
// it always matches the kind: the fields are unexported and literals can only
// be built through the constructors below.
type Literal struct {
	kind Kind
	i    int64
	d    float64
	c    byte
	s    string
}

// Int creates an int literal.
func Int(v int64) Literal { return Literal{kind: KindInt, i: v} }

// Double creates a double literal.
func Double(v float64) Literal { return Literal{kind: KindDouble, d: v} }

// Char creates a char literal.
func Char(v byte) Literal { return Literal{kind: KindChar, c: v} }

// String creates a string literal.
func String(v string) Literal { return Literal{kind: KindString, s: v} }

// Kind returns the active payload kind.
func (l Literal) Kind() Kind { return l.kind }

// AsInt returns the int payload. ok is false for any other kind.
func (l Literal) AsInt() (v int64, ok bool) { return l.i, l.kind == KindInt }

// AsDouble returns the double payload. ok is false for any other kind.
func (l Literal) AsDouble() (v float64, ok bool) { return l.d, l.kind == KindDouble }

// AsChar returns the char payload. ok is false for any other kind.
func (l Literal) AsChar() (v byte, ok bool) { return l.c, l.kind == KindChar }

// AsString returns the string payload. ok is false for any other kind.
func (l Literal) AsString() (v string, ok bool) { return l.s, l.kind == KindString }

// Equal reports whether two literals have the same kind and payload.
// Doubles compare with ==, so NaN is never equal to itself.
func (l Literal) Equal(other Literal) bool {
	if l.kind != other.kind {
		return false
	}
	switch l.kind {
	case KindInt:
		return l.i == other.i
	case KindDouble:
		return l.d == other.d
	case KindChar:
		return l.c == other.c
	case KindString:
		return l.s == other.s
	}
	return false
}

// String renders the literal the way it would be written in source.
func (l Literal) String() string {
	switch l.kind {
	case KindInt:
		return strconv.FormatInt(l.i, 10)
	case KindDouble:
		return strconv.FormatFloat(l.d, 'g', -1, 64)
	case KindChar:
		return QuoteChar(l.c)
	case KindString:
		return QuoteString(l.s)
	}
	return "<invalid literal>"
}
