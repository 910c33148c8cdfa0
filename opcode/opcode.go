// Package opcode holds the forward and reverse mnemonic<->byte tables for
// the SIC/XE instruction set, and the register name<->number table.
package opcode

import "fmt"

// Format is the instruction byte-width: 1, 2, 3, or 4.
type Format int

const (
	Format1 Format = 1
	Format2 Format = 2
	Format3 Format = 3
	Format4 Format = 4
)

// OpCode is the byte-level identity of an instruction: its opcode byte and
// the format it was referenced in. Format-3 and format-4 variants of the
// same mnemonic share the same Code; only Format differs.
type OpCode struct {
	Code   byte
	Format Format
}

// entry is the canonical definition of one mnemonic: its opcode byte and
// the formats it may legally appear in (format-3 mnemonics may also be
// written with a '+' prefix to select format 4).
type entry struct {
	mnemonic string
	code     byte
	formats  []Format
}

// table transcribes the SIC/XE opcode table (mnemonic, opcode byte,
// legal formats). Format-3 entries implicitly also have a '+'-prefixed
// format-4 variant sharing the same opcode byte.
var table = []entry{
	{"ADD", 0x18, []Format{Format3}},
	{"ADDF", 0x58, []Format{Format3}},
	{"ADDR", 0x90, []Format{Format2}},
	{"AND", 0x40, []Format{Format3}},
	{"CLEAR", 0xB4, []Format{Format2}},
	{"COMP", 0x28, []Format{Format3}},
	{"COMPF", 0x88, []Format{Format3}},
	{"COMPR", 0xA0, []Format{Format2}},
	{"DIV", 0x24, []Format{Format3}},
	{"DIVF", 0x64, []Format{Format3}},
	{"DIVR", 0x9C, []Format{Format2}},
	{"FIX", 0xC4, []Format{Format1}},
	{"FLOAT", 0xC0, []Format{Format1}},
	{"HIO", 0xF4, []Format{Format1}},
	{"J", 0x3C, []Format{Format3}},
	{"JEQ", 0x30, []Format{Format3}},
	{"JGT", 0x34, []Format{Format3}},
	{"JLT", 0x38, []Format{Format3}},
	{"JSUB", 0x48, []Format{Format3}},
	{"LDA", 0x00, []Format{Format3}},
	{"LDB", 0x68, []Format{Format3}},
	{"LDCH", 0x50, []Format{Format3}},
	{"LDF", 0x70, []Format{Format3}},
	{"LDL", 0x08, []Format{Format3}},
	{"LDS", 0x6C, []Format{Format3}},
	{"LDT", 0x74, []Format{Format3}},
	{"LDX", 0x04, []Format{Format3}},
	{"LPS", 0xD0, []Format{Format3}},
	{"MUL", 0x20, []Format{Format3}},
	{"MULF", 0x60, []Format{Format3}},
	{"MULR", 0x98, []Format{Format2}},
	{"NORM", 0xC8, []Format{Format1}},
	{"OR", 0x44, []Format{Format3}},
	{"RD", 0xD8, []Format{Format3}},
	{"RMO", 0xAC, []Format{Format2}},
	{"RSUB", 0x4C, []Format{Format3}},
	{"SHIFTL", 0xA4, []Format{Format2}},
	{"SHIFTR", 0xA8, []Format{Format2}},
	{"SIO", 0xF0, []Format{Format1}},
	{"SSK", 0xEC, []Format{Format3}},
	{"STA", 0x0C, []Format{Format3}},
	{"STB", 0x78, []Format{Format3}},
	{"STCH", 0x54, []Format{Format3}},
	{"STF", 0x80, []Format{Format3}},
	{"STI", 0xD4, []Format{Format3}},
	{"STL", 0x14, []Format{Format3}},
	{"STS", 0x7C, []Format{Format3}},
	{"STSW", 0xE8, []Format{Format3}},
	{"STT", 0x84, []Format{Format3}},
	{"STX", 0x10, []Format{Format3}},
	{"SUB", 0x1C, []Format{Format3}},
	{"SUBF", 0x5C, []Format{Format3}},
	{"SUBR", 0x94, []Format{Format2}},
	{"SVC", 0xB0, []Format{Format3}},
	{"TD", 0xE0, []Format{Format3}},
	{"TIO", 0xF8, []Format{Format1}},
	{"TIX", 0x2C, []Format{Format3}},
	{"TIXR", 0xB8, []Format{Format2}},
	{"WD", 0xDC, []Format{Format3}},
}

// forward maps mnemonic text (including a leading '+' for format-4) to its
// OpCode. reverse1, reverse2 and reverse3 map an opcode byte to its
// canonical mnemonic for format-1, format-2 and format-3/4 lookups
// respectively (distinct namespaces since
// some bytes could in principle collide across tables, though SIC/XE's
// table does not in practice).
var (
	forward  = map[string]OpCode{}
	reverse1 = map[byte]string{}
	reverse2 = map[byte]string{}
	reverse3 = map[byte]string{}
)

func init() {
	for _, e := range table {
		for _, f := range e.formats {
			forward[e.mnemonic] = OpCode{Code: e.code, Format: f}
			switch f {
			case Format1:
				reverse1[e.code] = e.mnemonic
			case Format2:
				reverse2[e.code] = e.mnemonic
			case Format3:
				reverse3[e.code] = e.mnemonic
				// every format-3 mnemonic may also be written with a '+'
				// prefix selecting format 4, sharing the same opcode byte.
				forward["+"+e.mnemonic] = OpCode{Code: e.code, Format: Format4}
			}
		}
	}
}

// Lookup resolves a mnemonic (format-4 variants spelled with a leading
// '+') to its OpCode. ok is false for unknown mnemonics.
func Lookup(mnemonic string) (OpCode, bool) {
	op, ok := forward[mnemonic]
	return op, ok
}

// IsMnemonic reports whether s names a known instruction, with or
// without a leading '+'.
func IsMnemonic(s string) bool {
	_, ok := forward[s]
	return ok
}

// ReverseFormat1 resolves an opcode byte to its format-1 mnemonic.
func ReverseFormat1(code byte) (string, bool) {
	m, ok := reverse1[code]
	return m, ok
}

// ReverseFormat2 resolves an opcode byte to its format-2 mnemonic.
func ReverseFormat2(code byte) (string, bool) {
	m, ok := reverse2[code]
	return m, ok
}

// ReverseFormat34 resolves an opcode byte to its format-3/4 mnemonic.
// Per §4.A the caller must mask the low two bits (the n/i flags) out of
// the encoded first byte before calling this.
func ReverseFormat34(maskedCode byte) (string, bool) {
	m, ok := reverse3[maskedCode]
	return m, ok
}

// registers maps SIC/XE register names to their 4-bit register numbers,
// used by format-2 instructions and by PC/SW in STSW-style transfers.
var registers = map[string]byte{
	"A": 0, "X": 1, "L": 2, "B": 3, "S": 4, "T": 5, "F": 6, "PC": 8, "SW": 9,
}

var registerNames = func() map[byte]string {
	m := make(map[byte]string, len(registers))
	for name, num := range registers {
		m[num] = name
	}
	return m
}()

// RegisterNumber resolves a register name to its 4-bit code.
func RegisterNumber(name string) (byte, error) {
	n, ok := registers[name]
	if !ok {
		return 0, fmt.Errorf("opcode: unknown register %q", name)
	}
	return n, nil
}

// RegisterName resolves a 4-bit register code back to its name.
func RegisterName(code byte) (string, error) {
	n, ok := registerNames[code]
	if !ok {
		return "", fmt.Errorf("opcode: unknown register code %d", code)
	}
	return n, nil
}
