package compiler

import (
	"github.com/informatter/exprlang/ast"
)

// Emitter walks an ast.Operation tree and emits straight-line bytecode.
// It implements ast.OperationVisitor so the exact same AST the
// interpreter walks can be compiled. The (float64, error) return value
// of each Visit* method is unused by Emitter — it exists only so
// Emitter satisfies the shared visitor interface; the real output is
// the accumulated instruction/constant/name pools.
type Emitter struct {
	instructions Instructions
	constants    []float64
	names        []string
	nameIndex    map[string]int
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{nameIndex: make(map[string]int)}
}

// Compile emits op into a complete Bytecode program terminated by OpEnd.
func Compile(op ast.Operation) (*Bytecode, error) {
	e := NewEmitter()
	if _, err := op.Accept(e); err != nil {
		return nil, err
	}
	e.emit(OpEnd)
	return &Bytecode{
		Instructions: e.instructions,
		Constants:    e.constants,
		Names:        e.names,
	}, nil
}

func (e *Emitter) emit(op Opcode, operands ...int) {
	e.instructions = append(e.instructions, MakeInstruction(op, operands...)...)
}

func (e *Emitter) addConstant(v float64) int {
	e.constants = append(e.constants, v)
	return len(e.constants) - 1
}

// addName interns name, reusing an existing pool slot when the same
// identifier appears more than once in the program.
func (e *Emitter) addName(name string) int {
	if idx, ok := e.nameIndex[name]; ok {
		return idx
	}
	e.names = append(e.names, name)
	idx := len(e.names) - 1
	e.nameIndex[name] = idx
	return idx
}

func (e *Emitter) VisitIntegerConstant(n ast.IntegerConstant) (float64, error) {
	e.emit(OpConstant, e.addConstant(float64(n.Value)))
	return 0, nil
}

func (e *Emitter) VisitFloatingPointConstant(n ast.FloatingPointConstant) (float64, error) {
	e.emit(OpConstant, e.addConstant(n.Value))
	return 0, nil
}

func (e *Emitter) VisitVariable(n ast.Variable) (float64, error) {
	e.emit(OpGetVar, e.addName(n.Name))
	return 0, nil
}

func (e *Emitter) VisitUnaryMinus(n ast.UnaryMinus) (float64, error) {
	if _, err := n.Arg.Accept(e); err != nil {
		return 0, err
	}
	e.emit(OpNegate)
	return 0, nil
}

var binaryOpcodes = map[ast.BinaryKind]Opcode{
	ast.Addition:           OpAdd,
	ast.Subtraction:        OpSubtract,
	ast.Multiplication:     OpMultiply,
	ast.Division:           OpDivide,
	ast.Modulo:             OpModulo,
	ast.Exponentiation:     OpPower,
	ast.And:                OpAnd,
	ast.Or:                 OpOr,
	ast.LessThan:           OpLess,
	ast.LessOrEqualThan:    OpLessEqual,
	ast.GreaterThan:        OpGreater,
	ast.GreaterOrEqualThan: OpGreaterEqual,
	ast.Equal:              OpEqual,
	ast.NotEqual:           OpNotEqual,
}

func (e *Emitter) VisitBinaryOp(n ast.BinaryOp) (float64, error) {
	if _, err := n.Left.Accept(e); err != nil {
		return 0, err
	}
	if _, err := n.Right.Accept(e); err != nil {
		return 0, err
	}
	e.emit(binaryOpcodes[n.Kind])
	return 0, nil
}

func (e *Emitter) VisitFunction(n ast.Function) (float64, error) {
	for _, arg := range n.Arguments {
		if _, err := arg.Accept(e); err != nil {
			return 0, err
		}
	}
	e.emit(OpCall, e.addName(n.Name), len(n.Arguments))
	return 0, nil
}
