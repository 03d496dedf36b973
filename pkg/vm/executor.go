package vm

import (
	"github.com/zurustar/heaplab/pkg/compiler/ast"
	"github.com/zurustar/heaplab/pkg/value"
)

// Evaluate runs one statement to completion and returns its value, or Void
// for statements that produce none. Every failure is an *Error.
//
// A failed statement may already have changed the scope or the heap; those
// changes are kept.
func (vm *VM) Evaluate(stmt ast.Statement) (RuntimeValue, error) {
	if isNilNode(stmt) {
		return RuntimeValue{}, NewInternalError("Unexpected nil statement node %T.", stmt)
	}

	switch s := stmt.(type) {
	case *ast.Literal:
		return FromLiteral(s.Value), nil
	case *ast.Operator:
		return vm.evaluateOperator(s)
	case *ast.Cast:
		return vm.evaluateCast(s)
	case *ast.Parenthesis:
		return vm.Evaluate(s.Statement)
	case *ast.Declaration:
		return vm.evaluateDeclaration(s)
	case *ast.Identifier:
		return vm.evaluateIdentifier(s)
	case *ast.Assignment:
		return vm.evaluateAssignment(s)
	case *ast.FunctionCall:
		return vm.evaluateFunctionCall(s)
	case *ast.Dereference:
		return vm.evaluateDereference(s)
	}
	return RuntimeValue{}, NewInternalError("Unexpected statement node type %T.", stmt)
}

func (vm *VM) evaluateOperator(s *ast.Operator) (RuntimeValue, error) {
	op, err := ParseOperator(s.Operator)
	if err != nil {
		return RuntimeValue{}, err
	}

	left, err := vm.Evaluate(s.Left)
	if err != nil {
		return RuntimeValue{}, err
	}
	right, err := vm.Evaluate(s.Right)
	if err != nil {
		return RuntimeValue{}, err
	}

	if left.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Left-hand side of operator %s is void.", op)
	}
	if right.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Right-hand side of operator %s is void.", op)
	}

	l, ok := left.Literal()
	if !ok {
		return RuntimeValue{}, NewRuntimeError("Expected left value of operator %s to be a literal, but got %s.", op, left.Type())
	}
	r, ok := right.Literal()
	if !ok {
		return RuntimeValue{}, NewRuntimeError("Expected right value of operator %s to be a literal, but got %s.", op, right.Type())
	}

	result, err := Apply(op, l, r)
	if err != nil {
		return RuntimeValue{}, err
	}
	return FromLiteral(result), nil
}

func (vm *VM) evaluateCast(s *ast.Cast) (RuntimeValue, error) {
	if s.Type == nil {
		return RuntimeValue{}, NewInternalError("Cast without a type.")
	}
	result, err := vm.Evaluate(s.Statement)
	if err != nil {
		return RuntimeValue{}, err
	}
	if result.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Type \"void\" cannot be cast to %s.", s.Type.Type)
	}
	return Coerce(result, s.Type.Type)
}

// evaluateDeclaration binds the name to the type's default value: "" for
// string, 0 converted to the type for everything else.
func (vm *VM) evaluateDeclaration(s *ast.Declaration) (RuntimeValue, error) {
	if s.Type == nil || s.Name == nil {
		return RuntimeValue{}, NewInternalError("Malformed declaration.")
	}
	t := s.Type.Type
	if t == value.TypeVoid {
		return RuntimeValue{}, NewTypeError("Cannot declare variable of type \"void\".")
	}

	var initial RuntimeValue
	if t == value.TypeString {
		initial = FromLiteral(value.String(""))
	} else {
		var err error
		initial, err = Coerce(FromLiteral(value.Int(0)), t)
		if err != nil {
			return RuntimeValue{}, err
		}
	}

	vm.globalScope.Set(s.Name.Value, initial)
	vm.log.Debug("declared", "name", s.Name.Value, "type", t)
	return Void, nil
}

func (vm *VM) evaluateIdentifier(s *ast.Identifier) (RuntimeValue, error) {
	v, ok := vm.globalScope.Get(s.Value)
	if !ok {
		return RuntimeValue{}, NewUndefinedIdentifierError(s.Value)
	}
	return v, nil
}

func (vm *VM) evaluateAssignment(s *ast.Assignment) (RuntimeValue, error) {
	if isNilNode(s.Left) {
		return RuntimeValue{}, NewInternalError("Unexpected nil assignment left-hand side node %T.", s.Left)
	}

	switch left := s.Left.(type) {
	case *ast.Declaration:
		if _, err := vm.evaluateDeclaration(left); err != nil {
			return RuntimeValue{}, err
		}
		return vm.assignIdentifier(left.Name.Value, s.Right)

	case *ast.Dereference:
		return vm.assignDereference(left, s.Right)

	case *ast.Identifier:
		return vm.assignIdentifier(left.Value, s.Right)
	}
	return RuntimeValue{}, NewInternalError("Unexpected assignment left-hand side node type %T.", s.Left)
}

// assignIdentifier converts the right-hand value to the name's current type
// and replaces the binding.
func (vm *VM) assignIdentifier(name string, right ast.Statement) (RuntimeValue, error) {
	v, err := vm.evaluateAssignedValue(right)
	if err != nil {
		return RuntimeValue{}, err
	}

	current, ok := vm.globalScope.Get(name)
	if !ok {
		return RuntimeValue{}, NewUndefinedIdentifierError(name)
	}

	stored, err := Coerce(v, current.Type())
	if err != nil {
		return RuntimeValue{}, err
	}
	vm.globalScope.Set(name, stored)
	vm.log.Debug("assigned", "name", name, "value", stored.String())
	return stored, nil
}

// assignDereference stores the right-hand value, converted to int, in the
// byte the pointer addresses. The address is resolved and checked before the
// right-hand side is evaluated.
func (vm *VM) assignDereference(left *ast.Dereference, right ast.Statement) (RuntimeValue, error) {
	pointer, err := vm.Evaluate(left.Statement)
	if err != nil {
		return RuntimeValue{}, err
	}
	if pointer.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Cannot dereference void value.")
	}
	address, err := vm.resolveAddress(pointer)
	if err != nil {
		return RuntimeValue{}, err
	}
	if err := vm.heap.CheckAddress(address); err != nil {
		return RuntimeValue{}, err
	}

	v, err := vm.evaluateAssignedValue(right)
	if err != nil {
		return RuntimeValue{}, err
	}
	coerced, err := Coerce(v, value.TypeInt)
	if err != nil {
		return RuntimeValue{}, err
	}
	lit, _ := coerced.Literal()
	n, ok := lit.AsInt()
	if !ok {
		return RuntimeValue{}, NewInternalError("Expected coerced value to be of type \"int\", but got %s.", lit.Kind())
	}

	b, err := vm.heap.Store(address, n)
	if err != nil {
		return RuntimeValue{}, err
	}
	vm.log.Debug("heap store", "address", address, "value", n, "byte", b)
	return coerced, nil
}

func (vm *VM) evaluateAssignedValue(right ast.Statement) (RuntimeValue, error) {
	v, err := vm.Evaluate(right)
	if err != nil {
		return RuntimeValue{}, err
	}
	if v.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Cannot assign void to variable.")
	}
	return v, nil
}

func (vm *VM) evaluateFunctionCall(s *ast.FunctionCall) (RuntimeValue, error) {
	if s.Function == nil {
		return RuntimeValue{}, NewInternalError("Function call without a callee.")
	}
	name := s.Function.Value

	callee, err := vm.evaluateIdentifier(s.Function)
	if err != nil {
		return RuntimeValue{}, err
	}
	fn, ok := callee.Function()
	if !ok {
		return RuntimeValue{}, NewTypeError("Identifier %s is not a function.", name)
	}

	args := make([]Argument, 0, len(s.Arguments))
	for _, a := range s.Arguments {
		switch arg := a.(type) {
		case *ast.TypeNode:
			if arg == nil {
				return RuntimeValue{}, NewInternalError("Unexpected nil type argument for function %s.", name)
			}
			args = append(args, TypeArg(arg.Type))
		case ast.Statement:
			v, err := vm.Evaluate(arg)
			if err != nil {
				return RuntimeValue{}, err
			}
			args = append(args, ValueArg(v))
		default:
			return RuntimeValue{}, NewInternalError("Unexpected argument node type %T for function %s.", a, name)
		}
	}

	if err := checkArguments(name, fn, args); err != nil {
		return RuntimeValue{}, err
	}

	body, ok := dispatch[fn.ID]
	if !ok {
		return RuntimeValue{}, NewInternalError("No body for native function %s.", name)
	}
	vm.log.Debug("call", "function", name, "args", len(args))
	return body(vm, args)
}

// checkArguments validates arity and, per index, that type placeholders get
// type arguments and value parameters get values of exactly the declared
// type.
func checkArguments(name string, fn *NativeFunction, args []Argument) error {
	if len(args) != len(fn.Params) {
		plural := "s"
		if len(fn.Params) == 1 {
			plural = ""
		}
		return NewTypeError("Expected %d argument%s for function %s, but got %d.", len(fn.Params), plural, name, len(args))
	}

	for i, param := range fn.Params {
		arg := args[i]
		switch {
		case param.TypeOnly && arg.IsType:
			continue
		case param.TypeOnly:
			return NewTypeError("Expected argument %d to be a type, but got a runtime value.", i)
		case arg.IsType:
			return NewTypeError("Expected argument %d to be a runtime value, but got a type.", i)
		case arg.Value.Type() != param.Type:
			return NewTypeError("%s: Expected argument %d to be of type %s, but got %s.", name, i, param.Type, arg.Value.Type())
		}
	}
	return nil
}

func (vm *VM) evaluateDereference(s *ast.Dereference) (RuntimeValue, error) {
	pointer, err := vm.Evaluate(s.Statement)
	if err != nil {
		return RuntimeValue{}, err
	}
	if pointer.IsVoid() {
		return RuntimeValue{}, NewRuntimeError("Cannot dereference void value.")
	}
	address, err := vm.resolveAddress(pointer)
	if err != nil {
		return RuntimeValue{}, err
	}

	b, err := vm.heap.ReadByteAt(address)
	if err != nil {
		return RuntimeValue{}, err
	}

	switch pointer.Type() {
	case value.TypeIntPtr:
		return FromLiteral(value.Int(int64(b))), nil
	case value.TypeCharPtr:
		c, err := LiteralToChar(value.Int(int64(b)))
		if err != nil {
			return RuntimeValue{}, err
		}
		return FromLiteral(value.Char(c)), nil
	}
	return RuntimeValue{}, NewInternalError("Unexpected pointer type %s.", pointer.Type())
}

// resolveAddress returns the heap address a pointer value holds. The value
// must have a pointer type.
func (vm *VM) resolveAddress(pointer RuntimeValue) (int64, error) {
	t := pointer.Type()
	if t == value.TypeNativeFunction {
		return 0, NewTypeError("Cannot dereference native function.")
	}
	if !t.IsPointer() {
		return 0, NewTypeError("Cannot dereference non-pointer type %s.", t)
	}
	lit, ok := pointer.Literal()
	if !ok {
		return 0, NewInternalError("Expected pointer value to be a literal, but got %s.", t)
	}
	return LiteralToInt(lit)
}

// isNilNode reports whether n is nil or a nil pointer to a node type.
func isNilNode(n ast.Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *ast.Literal:
		return n == nil
	case *ast.Operator:
		return n == nil
	case *ast.Cast:
		return n == nil
	case *ast.Parenthesis:
		return n == nil
	case *ast.Declaration:
		return n == nil
	case *ast.Identifier:
		return n == nil
	case *ast.Assignment:
		return n == nil
	case *ast.FunctionCall:
		return n == nil
	case *ast.Dereference:
		return n == nil
	case *ast.TypeNode:
		return n == nil
	}
	return false
}
