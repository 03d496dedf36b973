// Package vm is the heaplab evaluation engine. It owns the global scope, the
// byte heap with its allocator and the display base, and evaluates one
// statement tree at a time:
// - Value model (RuntimeValue, Void, NativeFunction)
// - Coercion matrix (Coerce)
// - Operator dispatch (Apply)
// - Heap and first-fit allocator
// - Native function registry (malloc, clear, setDisplayBase, sizeof, reset)
package vm

import (
	"log/slog"
	"sync"

	"github.com/zurustar/heaplab/pkg/logger"
)

// DefaultDisplayBase is the display base a new VM starts with.
const DefaultDisplayBase = 16

// VM is one independent evaluator instance. All state lives here; two VMs
// never share anything.
type VM struct {
	globalScope *Scope
	heap        *Heap
	allocator   *Allocator

	displayBase int
	clearHook   func()

	mu sync.RWMutex

	// Logger
	log *slog.Logger
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithMemorySize sets the heap length. Values below 1 keep the default.
func WithMemorySize(size int) Option {
	return func(vm *VM) {
		if size > 0 {
			vm.heap = NewHeap(size)
			vm.allocator = NewAllocator(size)
		}
	}
}

// WithDisplayBase sets the initial display base. Only 10 and 16 are
// accepted; anything else keeps the default.
func WithDisplayBase(base int) Option {
	return func(vm *VM) {
		if base == 10 || base == 16 {
			vm.displayBase = base
		}
	}
}

// WithClearHook sets the function the clear() builtin calls.
func WithClearHook(hook func()) Option {
	return func(vm *VM) {
		vm.clearHook = hook
	}
}

// New creates a VM with an empty heap and the native functions installed in
// the global scope.
func New(opts ...Option) *VM {
	vm := &VM{
		globalScope: NewScope(),
		heap:        NewHeap(DefaultMemorySize),
		allocator:   NewAllocator(DefaultMemorySize),
		displayBase: DefaultDisplayBase,
		log:         logger.GetLogger(),
	}

	// Apply options
	for _, opt := range opts {
		opt(vm)
	}

	vm.registerBuiltins()

	return vm
}

// registerBuiltins installs a private copy of every declared native
// function.
func (vm *VM) registerBuiltins() {
	for _, fn := range Registry() {
		vm.globalScope.Set(fn.Name, NewFunctionValue(&fn))
	}
}

// SetClearHook replaces the function the clear() builtin calls.
func (vm *VM) SetClearHook(hook func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.clearHook = hook
}

// DisplayBase returns the current display base, 10 or 16.
func (vm *VM) DisplayBase() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.displayBase
}

// Heap returns the VM's heap.
func (vm *VM) Heap() *Heap {
	return vm.heap
}

// Allocator returns the VM's allocator.
func (vm *VM) Allocator() *Allocator {
	return vm.allocator
}

// GlobalScope returns the global scope.
func (vm *VM) GlobalScope() *Scope {
	return vm.globalScope
}

// Lookup returns the value bound to name.
func (vm *VM) Lookup(name string) (RuntimeValue, bool) {
	return vm.globalScope.Get(name)
}
