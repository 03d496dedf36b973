package value

import (
	"fmt"
	"strings"
)

// Type is a type tag. Pointer types end in "*".
type Type string

const (
	TypeVoid           Type = "void"
	TypeInt            Type = "int"
	TypeChar           Type = "char"
	TypeDouble         Type = "double"
	TypeString         Type = "string"
	TypeIntPtr         Type = "int*"
	TypeCharPtr        Type = "char*"
	TypeNativeFunction Type = "nativeFunction"
)

// PointerMarker is the suffix that makes a type a pointer type.
const PointerMarker = "*"

var knownTypes = map[Type]bool{
	TypeVoid:           true,
	TypeInt:            true,
	TypeChar:           true,
	TypeDouble:         true,
	TypeString:         true,
	TypeIntPtr:         true,
	TypeCharPtr:        true,
	TypeNativeFunction: true,
}

// ParseType converts a type name such as "int" or "char*" into a Type.
func ParseType(name string) (Type, error) {
	t := Type(strings.ReplaceAll(name, " ", ""))
	if !knownTypes[t] {
		return "", fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Valid reports whether t is one of the language's type tags.
func (t Type) Valid() bool { return knownTypes[t] }

// IsPointer reports whether t ends in the pointer marker.
func (t Type) IsPointer() bool {
	return strings.HasSuffix(string(t), PointerMarker)
}

// Pointee returns the type a pointer refers to, or "" for non-pointers.
func (t Type) Pointee() Type {
	if !t.IsPointer() {
		return ""
	}
	return Type(strings.TrimSuffix(string(t), PointerMarker))
}

// LiteralKind returns the literal kind stored under this type. Pointers hold
// int addresses. ok is false for void and nativeFunction.
func (t Type) LiteralKind() (k Kind, ok bool) {
	switch t {
	case TypeInt, TypeIntPtr, TypeCharPtr:
		return KindInt, true
	case TypeDouble:
		return KindDouble, true
	case TypeChar:
		return KindChar, true
	case TypeString:
		return KindString, true
	}
	return 0, false
}

func (t Type) String() string { return string(t) }
