package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders a Bytecode program as a human-readable instruction
// listing, one line per instruction.
func (bc *Bytecode) Disassemble() string {
	var out strings.Builder
	ins := bc.Instructions
	ip := 0
	offset := 0

	for ip < len(ins) {
		op := Opcode(ins[ip])
		def, ok := Get(op)
		if !ok {
			fmt.Fprintf(&out, "%04d ERROR: unknown opcode %d\n", offset, op)
			break
		}
		ip++

		operands := make([]int, len(def.OperandWidths))
		for i, width := range def.OperandWidths {
			switch width {
			case 2:
				operands[i] = int(ReadUint16(ins[ip:]))
			case 1:
				operands[i] = int(ReadUint8(ins[ip : ip+1]))
			}
			ip += width
		}

		fmt.Fprintf(&out, "%04d %s%s\n", offset, def.Name, formatOperands(op, operands, bc))
		offset = ip
	}
	return out.String()
}

func formatOperands(op Opcode, operands []int, bc *Bytecode) string {
	if len(operands) == 0 {
		return ""
	}
	switch op {
	case OpConstant:
		return fmt.Sprintf(" %d (%v)", operands[0], bc.Constants[operands[0]])
	case OpGetVar:
		return fmt.Sprintf(" %d (%s)", operands[0], bc.Names[operands[0]])
	case OpCall:
		return fmt.Sprintf(" %d (%s) argc=%d", operands[0], bc.Names[operands[0]], operands[1])
	default:
		return fmt.Sprintf(" %v", operands)
	}
}
