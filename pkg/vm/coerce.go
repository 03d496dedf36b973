package vm

import (
	"math"

	"github.com/zurustar/heaplab/pkg/value"
)

// Coerce converts v to the target type.
//
// Numeric conversions: int to double is exact, double to int truncates
// toward zero, int and char convert through one byte (mod 256, always
// non-negative). char and string convert through a single Latin-1
// character. Pointer types take the int conversion of the value. Void and
// native functions cannot be converted. Coercing to the value's own type
// returns it unchanged.
func Coerce(v RuntimeValue, target value.Type) (RuntimeValue, error) {
	if v.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Type \"void\" cannot be cast to %s.", target)
	}
	if target == value.TypeVoid {
		return RuntimeValue{}, NewRuntimeError("Cannot cast %s to \"void\".", v.Type())
	}
	if v.Type() == target {
		return v, nil
	}
	if !target.Valid() {
		return RuntimeValue{}, NewInternalError("Unknown type %q.", target)
	}

	lit, ok := v.Literal()
	if !ok {
		return RuntimeValue{}, NewCoercionError(v.Type(), target)
	}
	kind, ok := target.LiteralKind()
	if !ok {
		return RuntimeValue{}, NewCoercionError(v.Type(), target)
	}

	// Pointer targets go through int; report the type that was asked for.
	if target.IsPointer() && lit.Kind() == value.KindString {
		return RuntimeValue{}, NewCoercionError(v.Type(), target)
	}

	out, err := coerceLiteral(lit, kind)
	if err != nil {
		return RuntimeValue{}, err
	}
	return NewValue(target, out)
}

// coerceLiteral converts lit to the given kind.
func coerceLiteral(lit value.Literal, kind value.Kind) (value.Literal, error) {
	if lit.Kind() == kind {
		return lit, nil
	}

	switch kind {
	case value.KindInt:
		return toInt(lit)
	case value.KindChar:
		return toChar(lit)
	case value.KindDouble:
		return toDouble(lit)
	case value.KindString:
		return toString(lit)
	}
	return value.Literal{}, NewInternalError("Unexpected literal kind %s.", kind)
}

func toInt(lit value.Literal) (value.Literal, error) {
	switch lit.Kind() {
	case value.KindInt:
		return lit, nil
	case value.KindChar:
		c, _ := lit.AsChar()
		return value.Int(int64(c)), nil
	case value.KindDouble:
		d, _ := lit.AsDouble()
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return value.Literal{}, NewRuntimeError("Cannot coerce %g to int.", d)
		}
		t := math.Trunc(d)
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return value.Literal{}, NewRuntimeError("Double %g is out of int range.", d)
		}
		return value.Int(int64(t)), nil
	}
	return value.Literal{}, NewCoercionError(lit.Kind(), value.KindInt)
}

func toChar(lit value.Literal) (value.Literal, error) {
	switch lit.Kind() {
	case value.KindChar:
		return lit, nil
	case value.KindString:
		s, _ := lit.AsString()
		c, err := value.StringToChar(s)
		if err != nil {
			return value.Literal{}, NewRuntimeError("Cannot coerce string %s to char: %v.", value.QuoteString(s), err)
		}
		return value.Char(c), nil
	case value.KindInt, value.KindDouble:
		i, err := toInt(lit)
		if err != nil {
			return value.Literal{}, err
		}
		n, _ := i.AsInt()
		return value.Char(wrapByte(n)), nil
	}
	return value.Literal{}, NewCoercionError(lit.Kind(), value.KindChar)
}

func toDouble(lit value.Literal) (value.Literal, error) {
	switch lit.Kind() {
	case value.KindDouble:
		return lit, nil
	case value.KindInt:
		n, _ := lit.AsInt()
		return value.Double(float64(n)), nil
	case value.KindChar:
		c, _ := lit.AsChar()
		return value.Double(float64(c)), nil
	}
	return value.Literal{}, NewCoercionError(lit.Kind(), value.KindDouble)
}

func toString(lit value.Literal) (value.Literal, error) {
	switch lit.Kind() {
	case value.KindString:
		return lit, nil
	case value.KindChar:
		c, _ := lit.AsChar()
		return value.String(value.CharToString(c)), nil
	}
	return value.Literal{}, NewCoercionError(lit.Kind(), value.KindString)
}

// wrapByte reduces n to 0-255 the way a byte store does: non-negative values
// store as n mod 256, negative ones as 256 - (|n| mod 256), with 256 itself
// wrapping to 0.
func wrapByte(n int64) byte {
	return byte(((n % 256) + 256) % 256)
}

// LiteralToInt is Coerce specialized to int, for address and size math.
func LiteralToInt(lit value.Literal) (int64, error) {
	out, err := toInt(lit)
	if err != nil {
		return 0, err
	}
	n, _ := out.AsInt()
	return n, nil
}

// LiteralToChar is Coerce specialized to char.
func LiteralToChar(lit value.Literal) (byte, error) {
	out, err := toChar(lit)
	if err != nil {
		return 0, err
	}
	c, _ := out.AsChar()
	return c, nil
}

// LiteralToDouble is Coerce specialized to double.
func LiteralToDouble(lit value.Literal) (float64, error) {
	out, err := toDouble(lit)
	if err != nil {
		return 0, err
	}
	d, _ := out.AsDouble()
	return d, nil
}

// LiteralToString is Coerce specialized to string.
func LiteralToString(lit value.Literal) (string, error) {
	out, err := toString(lit)
	if err != nil {
		return "", err
	}
	s, _ := out.AsString()
	return s, nil
}
