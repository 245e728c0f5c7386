package compiler

import (
	"strconv"

	"github.com/informatter/exprlang/ast"
	"github.com/informatter/exprlang/exprerr"
	"github.com/informatter/exprlang/interpreter"
	"github.com/informatter/exprlang/registry"
)

// stack is a minimal float64 value stack; every value in this VM is a
// double, so no boxing is needed.
type stack struct {
	values []float64
}

func (s *stack) push(v float64) {
	s.values = append(s.values, v)
}

func (s *stack) pop() float64 {
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v
}

// VM executes a Bytecode program. It lives in this package rather than
// its own, since this executor has no bytecode format beyond what
// compiler.Bytecode already defines and splitting it out would just be
// an import for its own sake.
type VM struct {
	bytecode  *Bytecode
	variables map[string]float64
	constants *registry.ConstantRegistry
	functions *registry.FunctionRegistry
}

// NewVM creates a VM ready to run bytecode against variables/constants/
// functions. constants/functions may be nil, narrowing lookups to
// variables only.
func NewVM(bytecode *Bytecode, variables map[string]float64, constants *registry.ConstantRegistry, functions *registry.FunctionRegistry) *VM {
	return &VM{bytecode: bytecode, variables: variables, constants: constants, functions: functions}
}

// Run executes the program to completion and returns the single value
// left on the stack.
func (vm *VM) Run() (float64, error) {
	var s stack
	ins := vm.bytecode.Instructions
	ip := 0

	for ip < len(ins) {
		op := Opcode(ins[ip])
		ip++

		switch op {
		case OpEnd:
			return s.pop(), nil

		case OpConstant:
			idx := ReadUint16(ins[ip:])
			ip += 2
			s.push(vm.bytecode.Constants[idx])

		case OpGetVar:
			idx := ReadUint16(ins[ip:])
			ip += 2
			name := vm.bytecode.Names[idx]
			v, err := vm.resolveVariable(name)
			if err != nil {
				return 0, err
			}
			s.push(v)

		case OpNegate:
			s.push(-s.pop())

		case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo, OpPower,
			OpAnd, OpOr, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual:
			right := s.pop()
			left := s.pop()
			s.push(interpreter.ApplyBinary(binaryKindOf(op), left, right))

		case OpCall:
			nameIdx := ReadUint16(ins[ip:])
			ip += 2
			argCount := int(ReadUint8(ins[ip : ip+1]))
			ip++

			args := make([]float64, argCount)
			for i := argCount - 1; i >= 0; i-- {
				args[i] = s.pop()
			}
			v, err := vm.callFunction(vm.bytecode.Names[nameIdx], args)
			if err != nil {
				return 0, err
			}
			s.push(v)

		default:
			return 0, exprerr.NewArgumentException("compiler: unknown opcode in bytecode stream")
		}
	}
	return 0, exprerr.NewArgumentException("compiler: bytecode stream has no OpEnd terminator")
}

func (vm *VM) resolveVariable(name string) (float64, error) {
	if vm.variables != nil {
		if v, ok := vm.variables[name]; ok {
			return v, nil
		}
	}
	if vm.constants != nil {
		if c, ok := vm.constants.Lookup(name); ok {
			return c.Value, nil
		}
	}
	return 0, exprerr.NewVariableNotDefinedException(name)
}

func (vm *VM) callFunction(name string, args []float64) (float64, error) {
	if vm.functions == nil {
		return 0, exprerr.NewVariableNotDefinedException(name)
	}
	info, ok := vm.functions.Lookup(name)
	if !ok {
		return 0, exprerr.NewVariableNotDefinedException(name)
	}
	if !info.Accepts(len(args)) {
		return 0, exprerr.NewArgumentException(
			"function '" + name + "' does not accept " + strconv.Itoa(len(args)) + " argument(s)")
	}
	return info.Callable(args)
}

// binaryKindOf maps an arithmetic/comparison opcode back to the
// ast.BinaryKind interpreter.ApplyBinary expects, so the VM reuses the
// exact same arithmetic as the tree-walking interpreter: both executors
// must agree bit for bit.
func binaryKindOf(op Opcode) ast.BinaryKind {
	for k, o := range binaryOpcodes {
		if o == op {
			return k
		}
	}
	panic("compiler: binaryKindOf called with a non-binary opcode")
}
