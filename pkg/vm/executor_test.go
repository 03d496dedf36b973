package vm

import (
	"strings"
	"testing"

	"github.com/zurustar/heaplab/pkg/compiler"
	"github.com/zurustar/heaplab/pkg/compiler/ast"
	"github.com/zurustar/heaplab/pkg/value"
)

// run parses and evaluates each line in order and returns the last result.
func run(t *testing.T, vm *VM, lines ...string) (RuntimeValue, error) {
	t.Helper()
	var result RuntimeValue
	for _, line := range lines {
		stmt, err := compiler.Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		result, err = vm.Evaluate(stmt)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func mustRun(t *testing.T, vm *VM, lines ...string) RuntimeValue {
	t.Helper()
	result, err := run(t, vm, lines...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func expectLiteral(t *testing.T, got RuntimeValue, typ value.Type, want value.Literal) {
	t.Helper()
	if got.Type() != typ {
		t.Fatalf("type = %s, want %s (value %s)", got.Type(), typ, got)
	}
	lit, ok := got.Literal()
	if !ok || !lit.Equal(want) {
		t.Fatalf("literal = %s, want %s", lit, want)
	}
}

func TestEvaluateDeclareAssignRead(t *testing.T) {
	vm := New()

	if got := mustRun(t, vm, "int x"); !got.IsVoid() {
		t.Fatalf("declaration returned %s, want void", got)
	}
	expectLiteral(t, mustRun(t, vm, "x"), value.TypeInt, value.Int(0))

	expectLiteral(t, mustRun(t, vm, "x = 5"), value.TypeInt, value.Int(5))
	expectLiteral(t, mustRun(t, vm, "x"), value.TypeInt, value.Int(5))
}

func TestEvaluateDeclarationDefaults(t *testing.T) {
	tests := []struct {
		decl string
		typ  value.Type
		want value.Literal
	}{
		{"int a", value.TypeInt, value.Int(0)},
		{"double a", value.TypeDouble, value.Double(0)},
		{"char a", value.TypeChar, value.Char(0)},
		{"string a", value.TypeString, value.String("")},
		{"int* a", value.TypeIntPtr, value.Int(0)},
		{"char* a", value.TypeCharPtr, value.Int(0)},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			vm := New()
			mustRun(t, vm, tt.decl)
			expectLiteral(t, mustRun(t, vm, "a"), tt.typ, tt.want)
		})
	}
}

func TestEvaluateDeclareVoid(t *testing.T) {
	_, err := run(t, New(), "void v")
	if !IsKind(err, KindType) {
		t.Fatalf("expected Type error, got %v", err)
	}
}

func TestEvaluateRedeclareOverwrites(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int x = 7", "char x")
	expectLiteral(t, mustRun(t, vm, "x"), value.TypeChar, value.Char(0))
}

func TestEvaluateAssignmentCoercesToStoredType(t *testing.T) {
	vm := New()
	expectLiteral(t, mustRun(t, vm, "int n = 3.9"), value.TypeInt, value.Int(3))
	expectLiteral(t, mustRun(t, vm, "char c = 321"), value.TypeChar, value.Char(65))
	expectLiteral(t, mustRun(t, vm, "double d = 'a'"), value.TypeDouble, value.Double(97))
	expectLiteral(t, mustRun(t, vm, "string s = 'z'"), value.TypeString, value.String("z"))
	expectLiteral(t, mustRun(t, vm, "s = s + \"!\""), value.TypeString, value.String("z!"))

	if _, err := run(t, vm, "n = \"text\""); !IsKind(err, KindRuntime) {
		t.Errorf("assigning a string to an int: %v", err)
	}
	if _, err := run(t, vm, "undefined = 1"); !IsKind(err, KindRuntime) {
		t.Errorf("assigning to an undefined name: %v", err)
	}
	if _, err := run(t, vm, "n = clear()"); !IsKind(err, KindRuntime) {
		t.Errorf("assigning void: %v", err)
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	vm := New()
	tests := []struct {
		src  string
		typ  value.Type
		want value.Literal
	}{
		{"1 + 2 * 3", value.TypeInt, value.Int(7)},
		{"(1 + 2) * 3", value.TypeInt, value.Int(9)},
		{"7 / 2", value.TypeInt, value.Int(3)},
		{"-7 / 2", value.TypeInt, value.Int(-4)},
		{"7 / 2.0", value.TypeDouble, value.Double(3.5)},
		{"'a' + 1", value.TypeInt, value.Int(98)},
		{"(char)250 + (char)10", value.TypeChar, value.Char(4)},
		{"'a' + \"bc\"", value.TypeString, value.String("abc")},
		{"-(2 + 3)", value.TypeInt, value.Int(-5)},
		{"(double)1 / 4", value.TypeDouble, value.Double(0.25)},
		{"(int)2.9", value.TypeInt, value.Int(2)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectLiteral(t, mustRun(t, vm, tt.src), tt.typ, tt.want)
		})
	}
}

func TestEvaluateOperatorFailures(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
	}{
		{`1 + "a"`, KindRuntime},
		{`"a" - "b"`, KindRuntime},
		{"1 / 0", KindRuntime},
		{"1.5 / 0", KindRuntime},
		{"reset() + 1", KindRuntime},
		{"1 + clear()", KindRuntime},
		{"malloc + 1", KindRuntime},
		{"missing * 2", KindRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, New(), tt.src)
			if !IsKind(err, tt.kind) {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestEvaluateCastVoid(t *testing.T) {
	_, err := run(t, New(), "(int)reset()")
	if !IsKind(err, KindRuntime) {
		t.Fatalf("expected Runtime error, got %v", err)
	}
	if !strings.Contains(err.Error(), `Type "void" cannot be cast to int.`) {
		t.Errorf("unexpected message %q", err)
	}
}

func TestEvaluatePointers(t *testing.T) {
	vm := New()

	mustRun(t, vm, "int* p = malloc(4)")
	expectLiteral(t, mustRun(t, vm, "p"), value.TypeIntPtr, value.Int(0))

	expectLiteral(t, mustRun(t, vm, "*p = 300"), value.TypeInt, value.Int(300))
	expectLiteral(t, mustRun(t, vm, "*p"), value.TypeInt, value.Int(44))

	expectLiteral(t, mustRun(t, vm, "*p = -1"), value.TypeInt, value.Int(-1))
	expectLiteral(t, mustRun(t, vm, "*p"), value.TypeInt, value.Int(255))

	expectLiteral(t, mustRun(t, vm, "*p = 'A'"), value.TypeInt, value.Int(65))
	expectLiteral(t, mustRun(t, vm, "*(char*)p"), value.TypeChar, value.Char('A'))

	mustRun(t, vm, "char* s = (char*)malloc(2)")
	expectLiteral(t, mustRun(t, vm, "s"), value.TypeCharPtr, value.Int(4))
	mustRun(t, vm, "*s = 'h'", "*(char*)(s + 1) = 'i'")
	expectLiteral(t, mustRun(t, vm, "*s + *(char*)(s + 1)"), value.TypeChar, value.Char(209))
	expectLiteral(t, mustRun(t, vm, "(string)*s + *(char*)(s + 1)"), value.TypeString, value.String("hi"))

	heap := vm.Heap().Bytes()
	if heap[0] != 65 || heap[4] != 'h' || heap[5] != 'i' {
		t.Errorf("heap = %v", heap[:8])
	}
}

func TestEvaluatePointerArithmeticLosesPointerType(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int* p = malloc(4)")
	if _, err := run(t, vm, "*(p + 1)"); !IsKind(err, KindType) {
		t.Errorf("p + 1 is an int, dereferencing it must be a Type error: %v", err)
	}
	expectLiteral(t, mustRun(t, vm, "*(int*)(p + 1)"), value.TypeInt, value.Int(0))
}

func TestEvaluateDereferenceFailures(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		kind  ErrorKind
	}{
		{"non-pointer", []string{"int x", "*x"}, KindType},
		{"native function", []string{"*malloc"}, KindType},
		{"void", []string{"*reset()"}, KindRuntime},
		{"past the end", []string{"int* p = 256", "*p"}, KindRuntime},
		{"negative", []string{"char* p = -1", "*p"}, KindRuntime},
		{"store past the end", []string{"int* p = 1000", "*p = 1"}, KindRuntime},
		{"store into non-pointer", []string{"double d", "*d = 1"}, KindType},
		{"store void", []string{"int* p", "*p = reset()"}, KindRuntime},
		{"store string", []string{"int* p", `*p = "x"`}, KindRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, New(), tt.lines...)
			if !IsKind(err, tt.kind) {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestEvaluateStoreChecksAddressBeforeRightHandSide(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int* p = 500", "int n = 1")

	_, err := run(t, vm, "*p = malloc(8)")
	if !IsKind(err, KindRuntime) || !strings.Contains(err.Error(), "Address 500") {
		t.Fatalf("expected an address error, got %v", err)
	}
	if len(vm.Allocator().Regions()) != 0 {
		t.Error("right-hand side must not run when the address is invalid")
	}
}

func TestEvaluatePartialSideEffectsAreKept(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int n")

	// malloc runs before the string operand fails.
	if _, err := run(t, vm, `n = malloc(3) + "x"`); !IsKind(err, KindRuntime) {
		t.Fatalf("expected Runtime error, got %v", err)
	}
	if len(vm.Allocator().Regions()) != 1 {
		t.Error("allocation made before the failure must remain")
	}
	expectLiteral(t, mustRun(t, vm, "n"), value.TypeInt, value.Int(0))
}

func TestEvaluateFunctionCalls(t *testing.T) {
	vm := New()

	expectLiteral(t, mustRun(t, vm, "malloc(4)"), value.TypeInt, value.Int(0))
	expectLiteral(t, mustRun(t, vm, "malloc(4)"), value.TypeInt, value.Int(4))
	expectLiteral(t, mustRun(t, vm, "sizeof(int)"), value.TypeInt, value.Int(4))
	expectLiteral(t, mustRun(t, vm, "sizeof(char)"), value.TypeInt, value.Int(1))
	expectLiteral(t, mustRun(t, vm, "sizeof(double)"), value.TypeInt, value.Int(1))
	expectLiteral(t, mustRun(t, vm, "sizeof(int*)"), value.TypeInt, value.Int(1))

	if got := mustRun(t, vm, "setDisplayBase(10)"); !got.IsVoid() {
		t.Errorf("setDisplayBase returned %s", got)
	}
	if vm.DisplayBase() != 10 {
		t.Errorf("DisplayBase() = %d", vm.DisplayBase())
	}
	mustRun(t, vm, "setDisplayBase(16)")
	if vm.DisplayBase() != 16 {
		t.Errorf("DisplayBase() = %d", vm.DisplayBase())
	}
}

func TestEvaluateFunctionCallFailures(t *testing.T) {
	tests := []struct {
		src     string
		kind    ErrorKind
		message string
	}{
		{"sizeof(void)", KindRuntime, `Cannot call sizeof on type "void".`},
		{"sizeof(string)", KindRuntime, `Cannot call sizeof on type "string".`},
		{"setDisplayBase(2)", KindRuntime, "Invalid base 2. Must be 10 or 16."},
		{"malloc(1000)", KindRuntime, "Out of memory"},
		{"malloc(0)", KindRuntime, "Size must be positive"},
		{"malloc()", KindType, "Expected 1 argument for function malloc, but got 0."},
		{"reset(1)", KindType, "Expected 0 arguments for function reset, but got 1."},
		{"malloc(int)", KindType, "Expected argument 0 to be a runtime value, but got a type."},
		{"sizeof(4)", KindType, "Expected argument 0 to be a type, but got a runtime value."},
		{"malloc('a')", KindType, "malloc: Expected argument 0 to be of type int, but got char."},
		{"malloc(4.0)", KindType, "malloc: Expected argument 0 to be of type int, but got double."},
		{"setDisplayBase((char)16)", KindType, "Expected argument 0 to be of type int"},
		{"nothing()", KindRuntime, "Identifier nothing is not defined."},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, New(), tt.src)
			if !IsKind(err, tt.kind) {
				t.Fatalf("expected %s error, got %v", tt.kind, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err, tt.message)
			}
		})
	}
}

func TestEvaluateCallingNonFunction(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int f = 1")
	_, err := run(t, vm, "f()")
	if !IsKind(err, KindType) || !strings.Contains(err.Error(), "Identifier f is not a function.") {
		t.Errorf("got %v", err)
	}
}

func TestEvaluateReset(t *testing.T) {
	vm := New()
	mustRun(t, vm, "char* p = (char*)malloc(8)", "*p = 'x'", "*(char*)(p + 7) = 'y'")

	mustRun(t, vm, "reset()")
	for i, b := range vm.Heap().Bytes() {
		if b != 0 {
			t.Fatalf("heap[%d] = %d after reset", i, b)
		}
	}
	expectLiteral(t, mustRun(t, vm, "malloc(4)"), value.TypeInt, value.Int(0))

	// Variables survive a reset.
	expectLiteral(t, mustRun(t, vm, "p"), value.TypeCharPtr, value.Int(0))
}

func TestEvaluateClearCallsHook(t *testing.T) {
	calls := 0
	vm := New(WithClearHook(func() { calls++ }))
	mustRun(t, vm, "clear()")
	mustRun(t, vm, "clear()")
	if calls != 2 {
		t.Errorf("hook called %d times, want 2", calls)
	}

	// Without a hook clear is a no-op.
	if got := mustRun(t, New(), "clear()"); !got.IsVoid() {
		t.Errorf("clear() returned %s", got)
	}
}

func TestEvaluateMalformedTrees(t *testing.T) {
	vm := New()
	tests := []struct {
		name string
		stmt ast.Statement
	}{
		{"nil statement", nil},
		{"bad operator", &ast.Operator{Operator: "%", Left: &ast.Literal{Value: value.Int(1)}, Right: &ast.Literal{Value: value.Int(1)}}},
		{"literal on the left of assignment", &ast.Assignment{Left: &ast.Literal{Value: value.Int(1)}, Right: &ast.Literal{Value: value.Int(1)}}},
		{"declaration without type", &ast.Declaration{Name: &ast.Identifier{Value: "x"}}},
		{"cast without type", &ast.Cast{Statement: &ast.Literal{Value: value.Int(1)}}},
		{"call without callee", &ast.FunctionCall{}},
		{"nil identifier", (*ast.Identifier)(nil)},
		{"nil operator", (*ast.Operator)(nil)},
		{"nil identifier on the left of assignment", &ast.Assignment{Left: (*ast.Identifier)(nil), Right: &ast.Literal{Value: value.Int(1)}}},
		{"nil declaration on the left of assignment", &ast.Assignment{Left: (*ast.Declaration)(nil), Right: &ast.Literal{Value: value.Int(1)}}},
		{"nil dereference on the left of assignment", &ast.Assignment{Left: (*ast.Dereference)(nil), Right: &ast.Literal{Value: value.Int(1)}}},
		{"nil operand", &ast.Operator{Operator: "+", Left: (*ast.Literal)(nil), Right: &ast.Literal{Value: value.Int(1)}}},
		{"nil type argument", &ast.FunctionCall{Function: &ast.Identifier{Value: "sizeof"}, Arguments: []ast.Node{(*ast.TypeNode)(nil)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := vm.Evaluate(tt.stmt); !IsKind(err, KindInternal) {
				t.Errorf("expected Internal error, got %v", err)
			}
		})
	}
}

func TestEvaluateParenthesisIsTransparent(t *testing.T) {
	vm := New()
	mustRun(t, vm, "int x = 3")
	inner := mustRun(t, vm, "x")
	outer := mustRun(t, vm, "((x))")
	if !inner.Equal(outer) {
		t.Errorf("(x) = %s, x = %s", outer, inner)
	}
}
