// Package vm provides error handling for the heaplab evaluator.
package vm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an evaluation failure.
type ErrorKind string

const (
	// KindRuntime is an invalid operation on well-formed input: undefined
	// identifiers, bad operand combinations, out-of-range addresses,
	// allocator exhaustion.
	KindRuntime ErrorKind = "Runtime"

	// KindType is a call-site or declaration mismatch: wrong arity or
	// argument type, calling a non-function, declaring void.
	KindType ErrorKind = "Type"

	// KindInternal is an invariant violation. It indicates a bug in the
	// evaluator or a malformed tree from the parser.
	KindInternal ErrorKind = "Internal"
)

// Error is the error type returned by every evaluator operation.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// NewRuntimeError creates a Runtime error.
func NewRuntimeError(format string, args ...any) *Error {
	return &Error{Kind: KindRuntime, Message: fmt.Sprintf(format, args...)}
}

// NewTypeError creates a Type error.
func NewTypeError(format string, args ...any) *Error {
	return &Error{Kind: KindType, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError creates an Internal error.
func NewInternalError(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Error helper functions for common errors

// NewUndefinedIdentifierError creates an undefined identifier error.
func NewUndefinedIdentifierError(name string) *Error {
	return NewRuntimeError("Identifier %s is not defined.", name)
}

// NewDivisionByZeroError creates a division by zero error.
func NewDivisionByZeroError(op Operator) *Error {
	return NewRuntimeError("operator%s: Division by zero.", op)
}

// NewAddressOutOfRangeError creates an out-of-range address error.
func NewAddressOutOfRangeError(address int64, length int) *Error {
	return NewRuntimeError("Address %d is outside of the addressable memory range [0, %d).", address, length)
}

// NewOutOfMemoryError creates an allocator exhaustion error.
func NewOutOfMemoryError(size int64, length int) *Error {
	return NewRuntimeError("Out of memory: no free region of %d bytes in a heap of %d bytes.", size, length)
}

// NewCoercionError creates an error for a conversion the coercion matrix
// does not allow.
func NewCoercionError(from, to fmt.Stringer) *Error {
	return NewRuntimeError("Cannot coerce %s to %s.", from, to)
}
