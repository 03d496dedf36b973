// Package vm provides scope management for the heaplab evaluator.
package vm

import (
	"sort"
	"sync"
)

// Scope maps identifiers to runtime values. The evaluator keeps exactly one,
// the global scope; there is no nesting and no shadowing. Entries are
// replaced whole on every declaration or assignment.
//
// Evaluation is single-threaded. The lock lets a display goroutine read the
// scope while a statement runs.
type Scope struct {
	variables map[string]RuntimeValue
	mu        sync.RWMutex
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{
		variables: make(map[string]RuntimeValue),
	}
}

// Get retrieves a value by name.
//
// Returns:
//   - RuntimeValue: The stored value
//   - bool: true if the name is defined, false otherwise
func (s *Scope) Get(name string) (RuntimeValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.variables[name]
	return value, ok
}

// Set stores value under name, replacing any previous entry.
func (s *Scope) Set(name string, value RuntimeValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[name] = value
}

// Delete removes a name.
//
// Returns:
//   - bool: true if the name was deleted, false if it didn't exist
func (s *Scope) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variables[name]; ok {
		delete(s.variables, name)
		return true
	}
	return false
}

// Has checks if a name is defined.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Keys returns all names in sorted order.
func (s *Scope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.variables))
	for k := range s.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all names.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables = make(map[string]RuntimeValue)
}

// Size returns the number of names.
func (s *Scope) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.variables)
}
