// Package optimizer rewrites an ast.Operation tree bottom-up before
// execution: idempotent constant subtrees fold to a single literal, and
// a handful of algebraic identities collapse without evaluating their
// operands at all. Unlike every other stage of this pipeline, this one
// is NOT implemented as an ast.OperationVisitor — a pure structural
// rewrite with no external state to thread through reads better as a
// plain recursive type switch.
package optimizer

import (
	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/interpreter"
	"github.com/informatter/exprlang/registry"
)

// Optimizer folds constants and rewrites algebraic identities. Constants
// is consulted so a Variable referencing a registered constant (e.g. pi)
// can participate in folding exactly like a literal; Functions is
// consulted so only idempotent calls are folded.
type Optimizer struct {
	Constants *registry.ConstantRegistry
	Functions *registry.FunctionRegistry
}

// New creates an Optimizer. constants/functions may be nil, in which
// case Variable nodes and Function calls are never folded (only
// literal-only subtrees are).
func New(constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) *Optimizer {
	return &Optimizer{Constants: constants, Functions: functions}
}

// Optimize rewrites op bottom-up and returns the optimized tree.
func Optimize(op ast.Operation, constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) ast.Operation {
	return New(constants, functions).Optimize(op)
}

// Optimize rewrites op bottom-up and returns the optimized tree.
func (o *Optimizer) Optimize(op ast.Operation) ast.Operation {
	switch n := op.(type) {
	case ast.IntegerConstant, ast.FloatingPointConstant:
		return op

	case ast.Variable:
		if o.Constants != nil {
			if info, ok := o.Constants.Lookup(n.Name); ok {
				return ast.FloatingPointConstant{Value: info.Value}
			}
		}
		return op

	case ast.UnaryMinus:
		arg := o.Optimize(n.Arg)
		folded := ast.UnaryMinus{Arg: arg}
		if ast.IsNumericConstant(arg) {
			return ast.FloatingPointConstant{Value: -ast.ConstantValue(arg)}
		}
		return folded

	case ast.BinaryOp:
		left := o.Optimize(n.Left)
		right := o.Optimize(n.Right)
		return o.optimizeBinary(ast.BinaryOp{Kind: n.Kind, Left: left, Right: right})

	case ast.Function:
		args := make([]ast.Operation, len(n.Arguments))
		allConstant := true
		for i, a := range n.Arguments {
			args[i] = o.Optimize(a)
			if !ast.IsNumericConstant(args[i]) {
				allConstant = false
			}
		}
		folded := ast.Function{Name: n.Name, Arguments: args}
		if allConstant && o.Functions != nil {
			if info, ok := o.Functions.Lookup(n.Name); ok && info.IsIdempotent {
				if v, err := interpreter.Evaluate(folded, nil, o.Constants, o.Functions); err == nil {
					return ast.FloatingPointConstant{Value: v}
				}
			}
		}
		return folded

	default:
		return op
	}
}

// optimizeBinary applies algebraic identities before falling back to
// full constant folding when both operands are numeric constants.
func (o *Optimizer) optimizeBinary(n ast.BinaryOp) ast.Operation {
	leftConst := ast.IsNumericConstant(n.Left)
	rightConst := ast.IsNumericConstant(n.Right)

	switch n.Kind {
	case ast.Multiplication:
		if (leftConst && ast.ConstantValue(n.Left) == 0) || (rightConst && ast.ConstantValue(n.Right) == 0) {
			return ast.FloatingPointConstant{Value: 0}
		}

	case ast.Division:
		// 0/x folds to 0 for every x, including x == 0, where IEEE
		// would give NaN. The deviation is documented and kept:
		// changing it now would silently alter results for formulas
		// already relying on it.
		if leftConst && ast.ConstantValue(n.Left) == 0 {
			return ast.FloatingPointConstant{Value: 0}
		}

	case ast.Exponentiation:
		// x^0 == 1 for every x, including 0^0; 0^x is NOT folded
		// unless x is itself a known constant, since 0^x is 1 when
		// x == 0 and folding it blind would be wrong.
		if rightConst && ast.ConstantValue(n.Right) == 0 {
			return ast.FloatingPointConstant{Value: 1}
		}
	}

	if leftConst && rightConst {
		value := interpreter.ApplyBinary(n.Kind, ast.ConstantValue(n.Left), ast.ConstantValue(n.Right))
		return ast.FloatingPointConstant{Value: value}
	}
	return n
}
