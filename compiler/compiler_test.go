package compiler

import (
	"strings"
	"testing"

	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/interpreter"
	"github.com/informatter/exprlang/registry"
)

func run(t *testing.T, op ast.Operation, variables map[string]float64, constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) float64 {
	t.Helper()
	bc, err := Compile(op)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := NewVM(bc, variables, constants, functions).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return v
}

func TestCompileAndRunArithmetic(t *testing.T) {
	op := ast.BinaryOp{
		Kind: ast.Addition,
		Left: ast.IntegerConstant{Value: 2},
		Right: ast.BinaryOp{
			Kind:  ast.Multiplication,
			Left:  ast.IntegerConstant{Value: 3},
			Right: ast.IntegerConstant{Value: 4},
		},
	}
	if got := run(t, op, nil, nil, nil); got != 14 {
		t.Fatalf("got %v, want 14", got)
	}
}

func TestCompileAndRunUnaryMinus(t *testing.T) {
	op := ast.UnaryMinus{Arg: ast.IntegerConstant{Value: 5}}
	if got := run(t, op, nil, nil, nil); got != -5 {
		t.Fatalf("got %v, want -5", got)
	}
}

func TestCompileAndRunVariableLookup(t *testing.T) {
	op := ast.BinaryOp{Kind: ast.Addition, Left: ast.Variable{Name: "x"}, Right: ast.Variable{Name: "x"}}
	if got := run(t, op, map[string]float64{"x": 21}, nil, nil); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestCompileAndRunFunctionCall(t *testing.T) {
	funcs := registry.NewFunctionRegistry(false, true)
	funcs.Register(registry.FunctionInfo{
		Name:               "double",
		NumberOfParameters: 1,
		IsIdempotent:       true,
		Callable:           func(args []float64) (float64, error) { return args[0] * 2, nil },
	})
	op := ast.Function{Name: "double", Arguments: []ast.Operation{ast.IntegerConstant{Value: 21}}}
	if got := run(t, op, nil, nil, funcs); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestCompileAndRunFunctionArgumentsEvaluateInOrder(t *testing.T) {
	funcs := registry.NewFunctionRegistry(false, true)
	funcs.Register(registry.FunctionInfo{
		Name:               "sub",
		NumberOfParameters: 2,
		IsIdempotent:       true,
		Callable:           func(args []float64) (float64, error) { return args[0] - args[1], nil },
	})
	op := ast.Function{
		Name: "sub",
		Arguments: []ast.Operation{
			ast.IntegerConstant{Value: 10},
			ast.IntegerConstant{Value: 3},
		},
	}
	if got := run(t, op, nil, nil, funcs); got != 7 {
		t.Fatalf("got %v, want 7 (argument order must be preserved)", got)
	}
}

func TestInterpreterAndCompilerAgree(t *testing.T) {
	funcs := registry.NewFunctionRegistry(false, true)
	funcs.Register(registry.FunctionInfo{
		Name:               "avg",
		IsDynamicArity:     true,
		IsIdempotent:       true,
		Callable: func(args []float64) (float64, error) {
			sum := 0.0
			for _, a := range args {
				sum += a
			}
			return sum / float64(len(args)), nil
		},
	})

	op := ast.BinaryOp{
		Kind: ast.GreaterThan,
		Left: ast.Function{Name: "avg", Arguments: []ast.Operation{
			ast.IntegerConstant{Value: 1}, ast.IntegerConstant{Value: 2}, ast.IntegerConstant{Value: 3},
		}},
		Right: ast.FloatingPointConstant{Value: 1.5},
	}

	compiled := run(t, op, nil, nil, funcs)

	interpreted, err := interpreter.Evaluate(op, nil, nil, funcs)
	if err != nil {
		t.Fatalf("interpreter evaluation failed: %v", err)
	}

	if compiled != interpreted {
		t.Fatalf("compiled = %v, interpreted = %v, want bitwise agreement", compiled, interpreted)
	}
}

func TestMakeInstructionEncodesOperandsBigEndian(t *testing.T) {
	ins := MakeInstruction(OpConstant, 65534)
	if len(ins) != 3 {
		t.Fatalf("got length %d, want 3", len(ins))
	}
	if Opcode(ins[0]) != OpConstant {
		t.Fatalf("got opcode %v, want OpConstant", Opcode(ins[0]))
	}
	if got := ReadUint16(ins[1:]); got != 65534 {
		t.Fatalf("got operand %d, want 65534", got)
	}
}

func TestBytecodeProgramIsJumpFree(t *testing.T) {
	// There is no OpJump/OpJumpIfFalse in this instruction set at all,
	// since the expression language has no control flow: every defined
	// opcode must resolve, and none may be a jump.
	for op := range definitions {
		if op == OpCall {
			continue
		}
		def, ok := Get(op)
		if !ok {
			t.Fatalf("opcode %v has no definition", op)
		}
		if strings.Contains(def.Name, "Jump") {
			t.Fatalf("opcode %s is a jump, want a jump-free instruction set", def.Name)
		}
	}
}
