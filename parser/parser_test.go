package parser

import (
	"reflect"
	"testing"

	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/lexer"
	"github.com/informatter/exprlang/registry"
)

func parse(t *testing.T, input string) ast.Operation {
	t.Helper()
	toks, err := lexer.New(input, '.', ',').Scan()
	if err != nil {
		t.Fatalf("lexer.Scan(%q): %v", input, err)
	}
	op, err := Parse(toks, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return op
}

func TestPrecedenceMultiplicationBindsTighterThanAddition(t *testing.T) {
	op := parse(t, "1+2*3")
	bin, ok := op.(ast.BinaryOp)
	if !ok || bin.Kind != ast.Addition {
		t.Fatalf("got %#v, want top-level Addition", op)
	}
	right, ok := bin.Right.(ast.BinaryOp)
	if !ok || right.Kind != ast.Multiplication {
		t.Fatalf("got right=%#v, want Multiplication", bin.Right)
	}
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	op := parse(t, "1-2-3")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Subtraction {
		t.Fatalf("got %#v, want top-level Subtraction", op)
	}
	left, ok := top.Left.(ast.BinaryOp)
	if !ok || left.Kind != ast.Subtraction {
		t.Fatalf("got left=%#v, want Subtraction ((1-2)-3) shape", top.Left)
	}
}

func TestExponentiationIsRightAssociative(t *testing.T) {
	op := parse(t, "2^3^2")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Exponentiation {
		t.Fatalf("got %#v, want top-level Exponentiation", op)
	}
	right, ok := top.Right.(ast.BinaryOp)
	if !ok || right.Kind != ast.Exponentiation {
		t.Fatalf("got right=%#v, want Exponentiation (2^(3^2)) shape", top.Right)
	}
}

func TestUnaryMinusBindsTighterThanExponentiation(t *testing.T) {
	op := parse(t, "-2^2")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Exponentiation {
		t.Fatalf("got %#v, want top-level Exponentiation ((-2)^2)", op)
	}
	if _, ok := top.Left.(ast.UnaryMinus); !ok {
		t.Fatalf("got base=%#v, want UnaryMinus", top.Left)
	}
}

func TestUnaryMinusInExponent(t *testing.T) {
	op := parse(t, "2^-3")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Exponentiation {
		t.Fatalf("got %#v, want top-level Exponentiation", op)
	}
	if _, ok := top.Right.(ast.UnaryMinus); !ok {
		t.Fatalf("got exponent=%#v, want UnaryMinus", top.Right)
	}
}

func TestUnaryMinusAfterOperatorAndOpenParen(t *testing.T) {
	op := parse(t, "2*-(3)")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Multiplication {
		t.Fatalf("got %#v, want top-level Multiplication", op)
	}
	if _, ok := top.Right.(ast.UnaryMinus); !ok {
		t.Fatalf("got right=%#v, want UnaryMinus", top.Right)
	}
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	op := parse(t, "(1+2)*3")
	top, ok := op.(ast.BinaryOp)
	if !ok || top.Kind != ast.Multiplication {
		t.Fatalf("got %#v, want top-level Multiplication", op)
	}
	if _, ok := top.Left.(ast.BinaryOp); !ok {
		t.Fatalf("got left=%#v, want Addition", top.Left)
	}
}

func TestFunctionCallWithMultipleArguments(t *testing.T) {
	op := parse(t, "max(1,2+3,x)")
	fn, ok := op.(ast.Function)
	if !ok {
		t.Fatalf("got %#v, want ast.Function", op)
	}
	if fn.Name != "max" || len(fn.Arguments) != 3 {
		t.Fatalf("got %+v, want 3-arg call to 'max'", fn)
	}
	if _, ok := fn.Arguments[1].(ast.BinaryOp); !ok {
		t.Fatalf("second argument = %#v, want Addition", fn.Arguments[1])
	}
}

func TestNestedFunctionCallArguments(t *testing.T) {
	op := parse(t, "max(min(1,2),3)")
	fn, ok := op.(ast.Function)
	if !ok || fn.Name != "max" || len(fn.Arguments) != 2 {
		t.Fatalf("got %#v, want 2-arg call to 'max'", op)
	}
	inner, ok := fn.Arguments[0].(ast.Function)
	if !ok || inner.Name != "min" || len(inner.Arguments) != 2 {
		t.Fatalf("got first argument %#v, want 2-arg call to 'min'", fn.Arguments[0])
	}
}

func TestIntegerLiteralOverflowPromotesToFloat(t *testing.T) {
	op := parse(t, "99999999999999999999")
	if _, ok := op.(ast.FloatingPointConstant); !ok {
		t.Fatalf("got %#v, want FloatingPointConstant (overflowed int64)", op)
	}
}

func TestEmptyExpressionIsRejected(t *testing.T) {
	toks, err := lexer.New("", '.', ',').Scan()
	if err != nil {
		t.Fatalf("lexer.Scan: %v", err)
	}
	if _, err := Parse(toks, nil); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestMismatchedBracketsAreRejected(t *testing.T) {
	for _, input := range []string{"(1+2", "1+2)", "max(1,2"} {
		toks, err := lexer.New(input, '.', ',').Scan()
		if err != nil {
			t.Fatalf("lexer.Scan(%q): %v", input, err)
		}
		if _, err := Parse(toks, nil); err == nil {
			t.Errorf("Parse(%q): expected a bracket-mismatch error", input)
		}
	}
}

func TestMissingOperandIsRejected(t *testing.T) {
	for _, input := range []string{"1+", "*2", "1 2"} {
		toks, err := lexer.New(input, '.', ',').Scan()
		if err != nil {
			t.Fatalf("lexer.Scan(%q): %v", input, err)
		}
		if _, err := Parse(toks, nil); err == nil {
			t.Errorf("Parse(%q): expected an error", input)
		}
	}
}

func TestRenderRoundTripsThroughParser(t *testing.T) {
	inputs := []string{
		"1+2*3",
		"-2^2",
		"(a+b)*c - d/e % f",
		"max(1, min(x,2.5), -y)",
		"a>b && c<=d || e!=f",
		"1.5e-3 + 2e10",
	}
	for _, input := range inputs {
		original := parse(t, input)
		rendered := ast.Render(original)
		reparsed := parse(t, rendered)
		if !reflect.DeepEqual(original, reparsed) {
			t.Errorf("round trip of %q via %q changed the tree:\n  got  %#v\n  want %#v",
				input, rendered, reparsed, original)
		}
	}
}

func TestFunctionArityIsCheckedAgainstRegistry(t *testing.T) {
	funcs := registry.NewFunctionRegistry(false, true)
	if err := funcs.Register(registry.FunctionInfo{Name: "sin", NumberOfParameters: 1, IsIdempotent: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	toks, err := lexer.New("sin(1,2)", '.', ',').Scan()
	if err != nil {
		t.Fatalf("lexer.Scan: %v", err)
	}
	if _, err := Parse(toks, funcs); err == nil {
		t.Fatal("expected an arity-mismatch error for sin/2")
	}
}

func TestUnknownFunctionIsRejectedWhenRegistryProvided(t *testing.T) {
	funcs := registry.NewFunctionRegistry(false, true)
	toks, err := lexer.New("bogus(1)", '.', ',').Scan()
	if err != nil {
		t.Fatalf("lexer.Scan: %v", err)
	}
	if _, err := Parse(toks, funcs); err == nil {
		t.Fatal("expected an unknown-identifier error for 'bogus'")
	}
}
