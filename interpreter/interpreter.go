// Package interpreter tree-walks an ast.Operation directly, without an
// intermediate bytecode form — the Interpreted counterpart to the
// Compiled mode compiler.Emitter/VM implement. Since every expression
// value is a double, the Visit* methods return (float64, error)
// directly rather than boxing results in any.
package interpreter

import (
	"math"
	"strconv"

	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/registry"
)

// Interpreter evaluates an ast.Operation tree against a variable map and
// a constant registry, left to right, with no short-circuiting of &&/||
// and no lazy function-argument evaluation.
type Interpreter struct {
	Variables map[string]float64
	Constants *registry.ConstantRegistry
	Functions *registry.FunctionRegistry
}

// New creates an Interpreter. constants/functions may be nil, in which
// case a Variable or Function node that isn't in Variables fails lookup
// immediately.
func New(variables map[string]float64, constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) *Interpreter {
	return &Interpreter{Variables: variables, Constants: constants, Functions: functions}
}

// Evaluate walks op to a single float64 result.
func Evaluate(op ast.Operation, variables map[string]float64, constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) (float64, error) {
	return New(variables, constants, functions).Evaluate(op)
}

// Evaluate walks op to a single float64 result.
func (in *Interpreter) Evaluate(op ast.Operation) (float64, error) {
	return op.Accept(in)
}

func (in *Interpreter) VisitIntegerConstant(n ast.IntegerConstant) (float64, error) {
	return float64(n.Value), nil
}

func (in *Interpreter) VisitFloatingPointConstant(n ast.FloatingPointConstant) (float64, error) {
	return n.Value, nil
}

func (in *Interpreter) VisitVariable(n ast.Variable) (float64, error) {
	if in.Variables != nil {
		if v, ok := in.Variables[n.Name]; ok {
			return v, nil
		}
	}
	if in.Constants != nil {
		if c, ok := in.Constants.Lookup(n.Name); ok {
			return c.Value, nil
		}
	}
	return 0, exprerr.NewVariableNotDefinedException(n.Name)
}

func (in *Interpreter) VisitUnaryMinus(n ast.UnaryMinus) (float64, error) {
	v, err := n.Arg.Accept(in)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (in *Interpreter) VisitBinaryOp(n ast.BinaryOp) (float64, error) {
	left, err := n.Left.Accept(in)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Accept(in)
	if err != nil {
		return 0, err
	}
	return ApplyBinary(n.Kind, left, right), nil
}

// ApplyBinary applies a single binary operator to two already-evaluated
// operands. It is exported so compiler.VM can reuse the exact same
// arithmetic: both executors must agree bit for bit.
func ApplyBinary(kind ast.BinaryKind, left, right float64) float64 {
	switch kind {
	case ast.Addition:
		return left + right
	case ast.Subtraction:
		return left - right
	case ast.Multiplication:
		return left * right
	case ast.Division:
		return left / right
	case ast.Modulo:
		return math.Mod(left, right)
	case ast.Exponentiation:
		return math.Pow(left, right)
	case ast.And:
		return boolToFloat(left != 0 && right != 0)
	case ast.Or:
		return boolToFloat(left != 0 || right != 0)
	case ast.LessThan:
		return boolToFloat(left < right)
	case ast.LessOrEqualThan:
		return boolToFloat(left <= right)
	case ast.GreaterThan:
		return boolToFloat(left > right)
	case ast.GreaterOrEqualThan:
		return boolToFloat(left >= right)
	case ast.Equal:
		return boolToFloat(left == right)
	case ast.NotEqual:
		return boolToFloat(left != right)
	default:
		panic("interpreter: unknown BinaryKind")
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (in *Interpreter) VisitFunction(n ast.Function) (float64, error) {
	args := make([]float64, len(n.Arguments))
	for i, argOp := range n.Arguments {
		v, err := argOp.Accept(in)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	if in.Functions == nil {
		return 0, exprerr.NewVariableNotDefinedException(n.Name)
	}
	info, ok := in.Functions.Lookup(n.Name)
	if !ok {
		return 0, exprerr.NewVariableNotDefinedException(n.Name)
	}
	if !info.Accepts(len(args)) {
		return 0, exprerr.NewArgumentException(
			"function '" + n.Name + "' does not accept " + strconv.Itoa(len(args)) + " argument(s)")
	}
	return info.Callable(args)
}
