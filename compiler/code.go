// Package compiler implements the Compiled execution mode: an
// ast.Operation tree is emitted once into a flat bytecode program, then
// that program is run by a small stack VM on every evaluation instead
// of re-walking the tree. The bytecode is entirely jump-free: an
// expression language has no control flow, && and || are never
// short-circuited, and function arguments are always evaluated eagerly,
// so straight-line code suffices.
package compiler

import "encoding/binary"

// Opcode identifies a single bytecode instruction.
type Opcode byte

const (
	OpConstant Opcode = iota // push ConstantsPool[operand]
	OpGetVar                 // push Variables[Names[operand]] or Constants[Names[operand]]
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpNegate
	OpAnd
	OpOr
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpCall // operand1: Names[] function-name index (uint16), operand2: argument count (uint8)
	OpEnd
)

// OpCodeDefinition names an opcode and the byte width of each of its
// operands.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]OpCodeDefinition{
	OpConstant:     {"OpConstant", []int{2}},
	OpGetVar:       {"OpGetVar", []int{2}},
	OpAdd:          {"OpAdd", []int{}},
	OpSubtract:     {"OpSubtract", []int{}},
	OpMultiply:     {"OpMultiply", []int{}},
	OpDivide:       {"OpDivide", []int{}},
	OpModulo:       {"OpModulo", []int{}},
	OpPower:        {"OpPower", []int{}},
	OpNegate:       {"OpNegate", []int{}},
	OpAnd:          {"OpAnd", []int{}},
	OpOr:           {"OpOr", []int{}},
	OpLess:         {"OpLess", []int{}},
	OpLessEqual:    {"OpLessEqual", []int{}},
	OpGreater:      {"OpGreater", []int{}},
	OpGreaterEqual: {"OpGreaterEqual", []int{}},
	OpEqual:        {"OpEqual", []int{}},
	OpNotEqual:     {"OpNotEqual", []int{}},
	OpCall:         {"OpCall", []int{2, 1}},
	OpEnd:          {"OpEnd", []int{}},
}

// Get looks up an opcode's definition.
func Get(op Opcode) (OpCodeDefinition, bool) {
	def, ok := definitions[op]
	return def, ok
}

// Instructions is a flat byte-encoded instruction stream.
type Instructions []byte

// Bytecode is the full compiled program: its instruction stream plus the
// constant and name pools its OpConstant/OpGetVar/OpCall operands index
// into.
type Bytecode struct {
	Instructions Instructions
	Constants    []float64
	Names        []string
}

// MakeInstruction encodes a single instruction (opcode + big-endian
// operands) into a standalone byte slice.
func MakeInstruction(op Opcode, operands ...int) Instructions {
	def, ok := Get(op)
	if !ok {
		return Instructions{}
	}

	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}

	instruction := make(Instructions, length)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		case 1:
			instruction[offset] = byte(operand)
		}
		offset += width
	}
	return instruction
}

// ReadUint16 decodes a big-endian uint16 operand at ins[0:2].
func ReadUint16(ins Instructions) uint16 {
	return binary.BigEndian.Uint16(ins)
}

// ReadUint8 decodes a one-byte operand at ins[0].
func ReadUint8(ins Instructions) uint8 {
	return uint8(ins[0])
}
