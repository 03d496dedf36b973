package vm

import (
	"fmt"
	"strings"

	"github.com/zurustar/heaplab/pkg/value"
)

// RuntimeValue pairs a type with its payload: a literal for every storable
// type, a native function for nativeFunction. The fields are unexported so
// that a mismatched pair cannot be built outside the constructors.
type RuntimeValue struct {
	typ value.Type
	lit value.Literal
	fn  *NativeFunction
}

// Void is the result of statements that produce no value.
var Void = RuntimeValue{typ: value.TypeVoid}

// NewValue pairs t with lit. It returns an Internal error when the literal
// kind does not match what t stores (pointers store int addresses).
func NewValue(t value.Type, lit value.Literal) (RuntimeValue, error) {
	kind, ok := t.LiteralKind()
	if !ok {
		return RuntimeValue{}, NewInternalError("Type %s cannot hold a literal.", t)
	}
	if kind != lit.Kind() {
		return RuntimeValue{}, NewInternalError("Type %s cannot hold a %s literal.", t, lit.Kind())
	}
	return RuntimeValue{typ: t, lit: lit}, nil
}

// FromLiteral wraps lit with the type named by its kind.
func FromLiteral(lit value.Literal) RuntimeValue {
	return RuntimeValue{typ: lit.Kind().Type(), lit: lit}
}

// NewFunctionValue wraps a native function definition.
func NewFunctionValue(fn *NativeFunction) RuntimeValue {
	return RuntimeValue{typ: value.TypeNativeFunction, fn: fn}
}

// Type returns the type tag.
func (v RuntimeValue) Type() value.Type { return v.typ }

// IsVoid reports whether v is the void marker.
func (v RuntimeValue) IsVoid() bool { return v.typ == value.TypeVoid }

// Literal returns the literal payload. ok is false for void and native
// functions.
func (v RuntimeValue) Literal() (value.Literal, bool) {
	if v.IsVoid() || v.fn != nil {
		return value.Literal{}, false
	}
	return v.lit, true
}

// Function returns the native function payload, if any.
func (v RuntimeValue) Function() (*NativeFunction, bool) {
	return v.fn, v.fn != nil
}

// Equal reports whether two values have the same type and payload.
func (v RuntimeValue) Equal(other RuntimeValue) bool {
	if v.typ != other.typ {
		return false
	}
	switch {
	case v.IsVoid():
		return true
	case v.fn != nil || other.fn != nil:
		return v.fn == other.fn
	}
	return v.lit.Equal(other.lit)
}

func (v RuntimeValue) String() string {
	switch {
	case v.IsVoid():
		return "void"
	case v.fn != nil:
		return v.fn.String()
	}
	return fmt.Sprintf("(%s)%s", v.typ, v.lit)
}

// Param is one declared parameter of a native function: either a typed
// value parameter or a bare type placeholder that accepts a type argument.
type Param struct {
	Name     string     `yaml:"name,omitempty"`
	Type     value.Type `yaml:"type,omitempty"`
	TypeOnly bool       `yaml:"typeOnly,omitempty"`
}

func (p Param) String() string {
	if p.TypeOnly {
		return "type"
	}
	return fmt.Sprintf("%s %s", p.Type, p.Name)
}

// NativeFunction is the declared signature of a builtin. Its body is found
// through the VM's dispatch table by ID.
type NativeFunction struct {
	ID      Builtin    `yaml:"-"`
	Name    string     `yaml:"name"`
	Params  []Param    `yaml:"params"`
	Returns value.Type `yaml:"returns"`
	Effect  string     `yaml:"effect"`
}

func (f *NativeFunction) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", f.Returns, f.Name, strings.Join(params, ", "))
}

// Argument is one evaluated call argument: a runtime value, or a type when
// the call site passed a type name.
type Argument struct {
	Value  RuntimeValue
	Type   value.Type
	IsType bool
}

// ValueArg wraps an evaluated value as an argument.
func ValueArg(v RuntimeValue) Argument { return Argument{Value: v} }

// TypeArg wraps a type name as an argument.
func TypeArg(t value.Type) Argument { return Argument{Type: t, IsType: true} }

func (a Argument) String() string {
	if a.IsType {
		return "type " + string(a.Type)
	}
	return a.Value.String()
}
