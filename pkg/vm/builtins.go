package vm

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/heaplab/pkg/value"
)

// Builtin identifies a native function.
type Builtin int

const (
	BuiltinMalloc Builtin = iota
	BuiltinClear
	BuiltinSetDisplayBase
	BuiltinSizeof
	BuiltinReset
)

func (b Builtin) String() string {
	if int(b) >= 0 && int(b) < len(registry) {
		return registry[b].Name
	}
	return fmt.Sprintf("Builtin(%d)", int(b))
}

// registry declares every native function. Index equals ID.
var registry = []NativeFunction{
	{
		ID:      BuiltinMalloc,
		Name:    "malloc",
		Params:  []Param{{Name: "size", Type: value.TypeInt}},
		Returns: value.TypeInt,
		Effect:  "reserves size contiguous heap bytes and returns the start address",
	},
	{
		ID:      BuiltinClear,
		Name:    "clear",
		Params:  []Param{},
		Returns: value.TypeVoid,
		Effect:  "clears the console history",
	},
	{
		ID:      BuiltinSetDisplayBase,
		Name:    "setDisplayBase",
		Params:  []Param{{Name: "base", Type: value.TypeInt}},
		Returns: value.TypeVoid,
		Effect:  "sets the display base to 10 or 16",
	},
	{
		ID:      BuiltinSizeof,
		Name:    "sizeof",
		Params:  []Param{{TypeOnly: true}},
		Returns: value.TypeInt,
		Effect:  "returns the byte size of a type: int is 4, others are 1",
	},
	{
		ID:      BuiltinReset,
		Name:    "reset",
		Params:  []Param{},
		Returns: value.TypeVoid,
		Effect:  "zeroes the heap and drops every allocation",
	},
}

// Registry returns a deep copy of the native function declarations in ID
// order.
func Registry() []NativeFunction {
	out := make([]NativeFunction, len(registry))
	for i := range registry {
		out[i] = registry[i].clone()
	}
	return out
}

func (f NativeFunction) clone() NativeFunction {
	f.Params = slices.Clone(f.Params)
	return f
}

// MarshalRegistry renders the native function declarations as YAML.
func MarshalRegistry() ([]byte, error) {
	return yaml.Marshal(Registry())
}

// builtinFunc is the body of a native function. Arguments have already been
// checked against the declaration.
type builtinFunc func(vm *VM, args []Argument) (RuntimeValue, error)

// dispatch maps each builtin to its body.
var dispatch = map[Builtin]builtinFunc{
	BuiltinMalloc:         builtinMalloc,
	BuiltinClear:          builtinClear,
	BuiltinSetDisplayBase: builtinSetDisplayBase,
	BuiltinSizeof:         builtinSizeof,
	BuiltinReset:          builtinReset,
}

// malloc(int size) int
func builtinMalloc(vm *VM, args []Argument) (RuntimeValue, error) {
	if args[0].IsType {
		return RuntimeValue{}, NewRuntimeError("Cannot call malloc with a type")
	}
	size, err := intArg(args[0])
	if err != nil {
		return RuntimeValue{}, err
	}

	address, err := vm.allocator.Malloc(size)
	if err != nil {
		vm.log.Warn("malloc failed", "size", size, "free", vm.allocator.Free(), "error", err)
		return RuntimeValue{}, err
	}
	vm.log.Debug("malloc", "size", size, "address", address)
	return FromLiteral(value.Int(address)), nil
}

// clear() void
func builtinClear(vm *VM, args []Argument) (RuntimeValue, error) {
	vm.mu.RLock()
	hook := vm.clearHook
	vm.mu.RUnlock()
	if hook != nil {
		hook()
	}
	vm.log.Debug("clear")
	return Void, nil
}

// setDisplayBase(int base) void
func builtinSetDisplayBase(vm *VM, args []Argument) (RuntimeValue, error) {
	if args[0].IsType {
		return RuntimeValue{}, NewRuntimeError("Cannot call setDisplayBase with a type")
	}
	base, err := intArg(args[0])
	if err != nil {
		return RuntimeValue{}, err
	}
	if base != 10 && base != 16 {
		return RuntimeValue{}, NewRuntimeError("Invalid base %d. Must be 10 or 16.", base)
	}

	vm.mu.Lock()
	vm.displayBase = int(base)
	vm.mu.Unlock()
	vm.log.Debug("display base changed", "base", base)
	return Void, nil
}

// sizeof(type) int
func builtinSizeof(vm *VM, args []Argument) (RuntimeValue, error) {
	if !args[0].IsType {
		return RuntimeValue{}, NewInternalError("Expected argument 0 to be a type, but got %s.", args[0])
	}
	size, err := SizeOf(args[0].Type)
	if err != nil {
		return RuntimeValue{}, err
	}
	return FromLiteral(value.Int(size)), nil
}

// reset() void
func builtinReset(vm *VM, args []Argument) (RuntimeValue, error) {
	vm.heap.Reset()
	vm.allocator.Reset()
	vm.log.Debug("heap reset", "size", vm.heap.Len())
	return Void, nil
}

// SizeOf returns the byte size of t: 4 for int, 1 for everything else.
// void and string have no size.
func SizeOf(t value.Type) (int64, error) {
	switch t {
	case value.TypeVoid, value.TypeString:
		return 0, NewRuntimeError("Cannot call sizeof on type %q.", t)
	case value.TypeInt:
		return 4, nil
	}
	return 1, nil
}

func intArg(arg Argument) (int64, error) {
	lit, ok := arg.Value.Literal()
	if !ok {
		return 0, NewRuntimeError("Expected an int argument, but got %s.", arg.Value.Type())
	}
	n, ok := lit.AsInt()
	if !ok {
		return 0, NewInternalError("Expected an int literal, but got %s.", lit.Kind())
	}
	return n, nil
}
