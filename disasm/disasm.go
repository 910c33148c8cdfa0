// Package disasm implements component G: inverting loader segments
// back into a decoded-instruction stream annotated with addressing
// flags, per §4.G.
package disasm

import (
	"fmt"

	"github.com/sicsim/sicsim/loader"
	"github.com/sicsim/sicsim/objfile"
	"github.com/sicsim/sicsim/opcode"
)

// Flags is the six-boolean addressing-mode vector of §3.
type Flags struct {
	N, I, X, B, P, E bool
}

// Registers holds a format-2 register pair decoded back to names.
type Registers struct {
	R1, R2 string
}

// Token is a decoded instruction (§3's "Disassembled token").
type Token struct {
	Address  uint32
	Mnemonic string
	Format   opcode.Format
	Flags    Flags
	Displacement int64 // format 3: raw 12-bit field; format 4: 20-bit address
	Reg      *Registers
}

// Error reports a disassembly failure. The only variant is Corrupt
// (§4.G): the End record's start disagrees with the Header's.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "DisasmError::Corrupt: " + e.Message }

// Disassemble loads an object-program text and decodes every
// instruction in its text records.
func Disassemble(text string) ([]Token, error) {
	prog, segs, _ := loader.Load(text)
	if err := checkCorrupt(prog); err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(segs))
	for _, s := range segs {
		tok, err := decodeSegment(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func checkCorrupt(prog *objfile.Program) error {
	if prog.End.FirstExecutableAddr != prog.Header.Start && prog.Header.Start != 0 {
		// Only the entry point and the header start are compared
		// (§4.G); a zero header start (no H record seen) means there is
		// nothing to corroborate against.
		if prog.End.FirstExecutableAddr != prog.Header.Start {
			return &Error{Message: fmt.Sprintf("end record start %#x disagrees with header start %#x", prog.End.FirstExecutableAddr, prog.Header.Start)}
		}
	}
	return nil
}

// DecodeSegment decodes a single loader segment into a Token. Exported
// so the simulator can build its instruction stream directly from
// loader output without re-parsing object-program text.
func DecodeSegment(s loader.Segment) (Token, error) {
	return decodeSegment(s)
}

func decodeSegment(s loader.Segment) (Token, error) {
	switch len(s.Objcode) {
	case 2:
		return decodeFormat1(s)
	case 4:
		return decodeFormat2(s)
	case 6:
		return decodeFormat3(s)
	case 8:
		return decodeFormat4(s)
	default:
		return Token{}, &Error{Message: fmt.Sprintf("unexpected object code length %d at %#x", len(s.Objcode), s.Address)}
	}
}

func decodeFormat1(s loader.Segment) (Token, error) {
	b, err := hexByte(s.Objcode[0:2])
	if err != nil {
		return Token{}, err
	}
	mnemonic, ok := opcode.ReverseFormat1(b)
	if !ok {
		return Token{}, &Error{Message: fmt.Sprintf("unknown format-1 opcode %#x at %#x", b, s.Address)}
	}
	return Token{Address: s.Address, Mnemonic: mnemonic, Format: opcode.Format1}, nil
}

func decodeFormat2(s loader.Segment) (Token, error) {
	b0, err := hexByte(s.Objcode[0:2])
	if err != nil {
		return Token{}, err
	}
	b1, err := hexByte(s.Objcode[2:4])
	if err != nil {
		return Token{}, err
	}
	mnemonic, ok := opcode.ReverseFormat2(b0)
	if !ok {
		return Token{}, &Error{Message: fmt.Sprintf("unknown format-2 opcode %#x at %#x", b0, s.Address)}
	}
	r1name, err1 := opcode.RegisterName(b1 >> 4)
	r2name, err2 := opcode.RegisterName(b1 & 0xF)
	reg := &Registers{}
	if err1 == nil {
		reg.R1 = r1name
	}
	if err2 == nil {
		reg.R2 = r2name
	}
	return Token{Address: s.Address, Mnemonic: mnemonic, Format: opcode.Format2, Reg: reg}, nil
}

func decodeFormat3(s loader.Segment) (Token, error) {
	b0, err := hexByte(s.Objcode[0:2])
	if err != nil {
		return Token{}, err
	}
	b1, err := hexByte(s.Objcode[2:4])
	if err != nil {
		return Token{}, err
	}
	b2, err := hexByte(s.Objcode[4:6])
	if err != nil {
		return Token{}, err
	}
	masked := b0 &^ 0x03
	mnemonic, ok := opcode.ReverseFormat34(masked)
	if !ok {
		return Token{}, &Error{Message: fmt.Sprintf("unknown format-3 opcode %#x at %#x", masked, s.Address)}
	}
	flags := Flags{
		I: b0&0x01 != 0,
		N: b0&0x02 != 0,
		X: b1&0x80 != 0,
		B: b1&0x40 != 0,
		P: b1&0x20 != 0,
		E: b1&0x10 != 0,
	}
	disp := (int64(b1&0x0F) << 8) | int64(b2)
	return Token{Address: s.Address, Mnemonic: mnemonic, Format: opcode.Format3, Flags: flags, Displacement: disp}, nil
}

func decodeFormat4(s loader.Segment) (Token, error) {
	b0, err := hexByte(s.Objcode[0:2])
	if err != nil {
		return Token{}, err
	}
	b1, err := hexByte(s.Objcode[2:4])
	if err != nil {
		return Token{}, err
	}
	b2, err := hexByte(s.Objcode[4:6])
	if err != nil {
		return Token{}, err
	}
	b3, err := hexByte(s.Objcode[6:8])
	if err != nil {
		return Token{}, err
	}
	masked := b0 &^ 0x03
	mnemonic, ok := opcode.ReverseFormat34(masked)
	if !ok {
		return Token{}, &Error{Message: fmt.Sprintf("unknown format-4 opcode %#x at %#x", masked, s.Address)}
	}
	flags := Flags{
		I: b0&0x01 != 0,
		N: b0&0x02 != 0,
		X: b1&0x80 != 0,
		B: b1&0x40 != 0,
		P: b1&0x20 != 0,
		E: b1&0x10 != 0,
	}
	addr := (int64(b1&0x0F) << 16) | (int64(b2) << 8) | int64(b3)
	return Token{Address: s.Address, Mnemonic: "+" + mnemonic, Format: opcode.Format4, Flags: flags, Displacement: addr}, nil
}

func hexByte(s string) (byte, error) {
	var b byte
	if _, err := fmt.Sscanf(s, "%02X", &b); err != nil {
		return 0, &Error{Message: fmt.Sprintf("bad hex byte %q: %v", s, err)}
	}
	return b, nil
}
