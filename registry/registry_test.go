package registry

import "testing"

func TestFunctionRegistryCaseInsensitiveLookup(t *testing.T) {
	r := NewFunctionRegistry(false, true)
	if err := r.Register(FunctionInfo{Name: "SIN", NumberOfParameters: 1, IsIdempotent: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.Has("sin") || !r.Has("Sin") || !r.Has("SIN") {
		t.Fatal("expected case-insensitive lookup to find 'SIN' under any casing")
	}
}

func TestFunctionRegistryCaseSensitiveLookup(t *testing.T) {
	r := NewFunctionRegistry(true, true)
	if err := r.Register(FunctionInfo{Name: "sin", NumberOfParameters: 1, IsIdempotent: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.Has("SIN") {
		t.Fatal("case-sensitive registry should not match differing case")
	}
	if !r.Has("sin") {
		t.Fatal("case-sensitive registry should match exact case")
	}
}

func TestFunctionRegistryGuardedRejectsDuplicate(t *testing.T) {
	r := NewFunctionRegistry(false, true)
	if err := r.Register(FunctionInfo{Name: "sin", NumberOfParameters: 1}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(FunctionInfo{Name: "sin", NumberOfParameters: 1}); err == nil {
		t.Fatal("expected guarded mode to reject re-registration")
	}
}

func TestFunctionRegistryUnguardedAllowsSameArityOverwrite(t *testing.T) {
	r := NewFunctionRegistry(false, false)
	if err := r.Register(FunctionInfo{Name: "f", NumberOfParameters: 2}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(FunctionInfo{Name: "f", NumberOfParameters: 2, IsIdempotent: true}); err != nil {
		t.Fatalf("expected same-arity overwrite to succeed, got: %v", err)
	}
}

func TestFunctionRegistryUnguardedRejectsArityChange(t *testing.T) {
	r := NewFunctionRegistry(false, false)
	if err := r.Register(FunctionInfo{Name: "f", NumberOfParameters: 2}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(FunctionInfo{Name: "f", NumberOfParameters: 3}); err == nil {
		t.Fatal("expected arity-changing overwrite to be rejected")
	}
	if err := r.Register(FunctionInfo{Name: "f", IsDynamicArity: true}); err == nil {
		t.Fatal("expected fixed-to-dynamic arity overwrite to be rejected")
	}
}

func TestFunctionInfoAccepts(t *testing.T) {
	fixed := FunctionInfo{NumberOfParameters: 2}
	if fixed.Accepts(1) || fixed.Accepts(3) {
		t.Fatal("fixed-arity function should only accept its declared parameter count")
	}
	if !fixed.Accepts(2) {
		t.Fatal("fixed-arity function should accept its declared parameter count")
	}

	dynamic := FunctionInfo{IsDynamicArity: true}
	if dynamic.Accepts(0) {
		t.Fatal("dynamic-arity function should require at least one argument")
	}
	if !dynamic.Accepts(1) || !dynamic.Accepts(50) {
		t.Fatal("dynamic-arity function should accept any positive argument count")
	}
}

func TestConstantRegistryCaseInsensitiveLookup(t *testing.T) {
	r := NewConstantRegistry(false, true)
	if err := r.Register(ConstantInfo{Name: "PI", Value: 3.14159}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, ok := r.Lookup("pi")
	if !ok {
		t.Fatal("expected case-insensitive lookup to find 'PI'")
	}
	if got.Value != 3.14159 {
		t.Fatalf("got value %v, want 3.14159", got.Value)
	}
}

func TestConstantRegistryGuardedRejectsDuplicate(t *testing.T) {
	r := NewConstantRegistry(false, true)
	if err := r.Register(ConstantInfo{Name: "pi", Value: 3.14}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(ConstantInfo{Name: "pi", Value: 3.14159}); err == nil {
		t.Fatal("expected guarded mode to reject re-registration")
	}
}

func TestRegistryNamesEnumeratesAll(t *testing.T) {
	r := NewFunctionRegistry(false, true)
	r.Register(FunctionInfo{Name: "sin", NumberOfParameters: 1})
	r.Register(FunctionInfo{Name: "cos", NumberOfParameters: 1})
	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
}

func TestCaseFoldingHandlesNonASCII(t *testing.T) {
	r := NewFunctionRegistry(false, true)
	if err := r.Register(FunctionInfo{Name: "İf", NumberOfParameters: 1}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.Has("İf") {
		t.Fatal("expected non-ASCII identifier to round-trip through case folding")
	}
}
