package parser

import "github.com/sicsim/sicsim/opcode"

// Command is the tagged union of §3: a line names either a directive or
// an instruction.
type Command interface {
	commandTag()
}

// Directive is a Command naming an assembler directive (START, END,
// BYTE, WORD, RESB, RESW, BASE, NOBASE, EQU, ORG, LTORG), stored
// uppercase.
type Directive struct {
	Name string
}

func (Directive) commandTag() {}

// Instruction is a Command naming a machine instruction. Mnemonic
// preserves any leading '+' that selects format 4; Op is the resolved
// opcode byte and format.
type Instruction struct {
	Mnemonic string
	Op       opcode.OpCode
}

func (Instruction) commandTag() {}

// FormatBytes is the number of object-code bytes this instruction
// occupies.
func (i Instruction) FormatBytes() uint32 {
	return uint32(i.Op.Format)
}
