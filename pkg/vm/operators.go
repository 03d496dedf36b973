package vm

import (
	"github.com/zurustar/heaplab/pkg/value"
)

// Operator is a binary arithmetic operator.
type Operator string

const (
	OpPlus     Operator = "+"
	OpMinus    Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// ParseOperator returns the operator named by s.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpPlus, OpMinus, OpMultiply, OpDivide:
		return op, nil
	}
	return "", NewInternalError("Unexpected operator %s.", s)
}

func (op Operator) String() string { return string(op) }

// Apply computes left op right using the promotion ladder:
//
//  1. int and double operands: int math when both are int, otherwise double.
//  2. int and char operands: byte math masked to 0-255 when both are char,
//     otherwise int.
//  3. char and string operands, for + only: string concatenation.
//
// Anything else is a Runtime error.
func Apply(op Operator, left, right value.Literal) (value.Literal, error) {
	lk, rk := left.Kind(), right.Kind()

	if isNumeric(lk) && isNumeric(rk) {
		if lk == value.KindInt && rk == value.KindInt {
			return intOperator(op, left, right)
		}
		l, err := toDouble(left)
		if err != nil {
			return value.Literal{}, err
		}
		r, err := toDouble(right)
		if err != nil {
			return value.Literal{}, err
		}
		return doubleOperator(op, l, r)
	}

	if isIntOrChar(lk) && isIntOrChar(rk) {
		if lk == value.KindChar && rk == value.KindChar {
			return charOperator(op, left, right)
		}
		l, err := toInt(left)
		if err != nil {
			return value.Literal{}, err
		}
		r, err := toInt(right)
		if err != nil {
			return value.Literal{}, err
		}
		return intOperator(op, l, r)
	}

	switch op {
	case OpPlus:
		if isCharOrString(lk) && isCharOrString(rk) {
			l, err := toString(left)
			if err != nil {
				return value.Literal{}, err
			}
			r, err := toString(right)
			if err != nil {
				return value.Literal{}, err
			}
			return stringOperatorPlus(l, r)
		}
	case OpMinus:
		if lk == value.KindString && rk == value.KindString {
			return value.Literal{}, NewRuntimeError("operator-: Invalid type string for operator -")
		}
	}

	return value.Literal{}, NewRuntimeError("operator%s: Cannot coerce %s and %s to the same type.", op, lk, rk)
}

func isNumeric(k value.Kind) bool      { return k == value.KindInt || k == value.KindDouble }
func isIntOrChar(k value.Kind) bool    { return k == value.KindInt || k == value.KindChar }
func isCharOrString(k value.Kind) bool { return k == value.KindChar || k == value.KindString }

func intOperator(op Operator, left, right value.Literal) (value.Literal, error) {
	l, lok := left.AsInt()
	r, rok := right.AsInt()
	if !lok || !rok {
		return value.Literal{}, unexpectedKind(op, left, right)
	}

	switch op {
	case OpPlus:
		return value.Int(l + r), nil
	case OpMinus:
		return value.Int(l - r), nil
	case OpMultiply:
		return value.Int(l * r), nil
	case OpDivide:
		if r == 0 {
			return value.Literal{}, NewDivisionByZeroError(op)
		}
		return value.Int(floorDiv(l, r)), nil
	}
	return value.Literal{}, NewInternalError("Unexpected operator %s.", op)
}

func doubleOperator(op Operator, left, right value.Literal) (value.Literal, error) {
	l, lok := left.AsDouble()
	r, rok := right.AsDouble()
	if !lok || !rok {
		return value.Literal{}, unexpectedKind(op, left, right)
	}

	switch op {
	case OpPlus:
		return value.Double(l + r), nil
	case OpMinus:
		return value.Double(l - r), nil
	case OpMultiply:
		return value.Double(l * r), nil
	case OpDivide:
		if r == 0 {
			return value.Literal{}, NewDivisionByZeroError(op)
		}
		return value.Double(l / r), nil
	}
	return value.Literal{}, NewInternalError("Unexpected operator %s.", op)
}

// charOperator computes in the byte domain; results wrap with & 0xff.
func charOperator(op Operator, left, right value.Literal) (value.Literal, error) {
	lc, lok := left.AsChar()
	rc, rok := right.AsChar()
	if !lok || !rok {
		return value.Literal{}, unexpectedKind(op, left, right)
	}
	l, r := int64(lc), int64(rc)

	switch op {
	case OpPlus:
		return value.Char(byte((l + r) & 0xff)), nil
	case OpMinus:
		return value.Char(byte((l - r) & 0xff)), nil
	case OpMultiply:
		return value.Char(byte((l * r) & 0xff)), nil
	case OpDivide:
		if r == 0 {
			return value.Literal{}, NewDivisionByZeroError(op)
		}
		return value.Char(byte(floorDiv(l, r) & 0xff)), nil
	}
	return value.Literal{}, NewInternalError("Unexpected operator %s.", op)
}

func stringOperatorPlus(left, right value.Literal) (value.Literal, error) {
	l, lok := left.AsString()
	r, rok := right.AsString()
	if !lok || !rok {
		return value.Literal{}, unexpectedKind(OpPlus, left, right)
	}
	return value.String(l + r), nil
}

// floorDiv divides rounding toward negative infinity. r must not be zero.
func floorDiv(l, r int64) int64 {
	q := l / r
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}
	return q
}

func unexpectedKind(op Operator, left, right value.Literal) *Error {
	return NewInternalError("operator%s: Unexpected literal kinds %s and %s.", op, left.Kind(), right.Kind())
}
