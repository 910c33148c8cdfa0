package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sicsim/sicsim/objfile"
	"github.com/sicsim/sicsim/opcode"
	"github.com/sicsim/sicsim/parser"
)

// Encode walks a resolved parser.Program and emits its objfile.Program
// (component E, §4.E).
func Encode(prog *parser.Program) (*objfile.Program, error) {
	out := &objfile.Program{
		Header: objfile.Header{Name: prog.Name, Start: prog.Start, Length: prog.Length},
		End:    objfile.End{FirstExecutableAddr: prog.EntryPoint},
	}

	var acc accumulator
	var mods []objfile.Modification
	var baseAddr uint32
	haveBase := false
	var pendingLiterals []string

	for _, ll := range prog.Lines {
		pl := ll.Parsed

		switch cmd := pl.Command.(type) {
		case parser.Instruction:
			if strings.HasPrefix(pl.Operand1, "=") {
				pendingLiterals = append(pendingLiterals, pl.Operand1)
			}
			code, mod, err := encodeInstruction(pl, ll.LOCCTR, cmd, prog, baseAddr, haveBase)
			if err != nil {
				return nil, err
			}
			acc.append(ll.LOCCTR, code)
			if mod != nil {
				mods = append(mods, *mod)
			}

		case parser.Directive:
			switch cmd.Name {
			case "WORD":
				v, err := parser.EvaluateExpr(pl.Pos, pl.Operand1, prog.Symbols)
				if err != nil {
					return nil, err
				}
				acc.append(ll.LOCCTR, fmt.Sprintf("%06X", uint32(v)&0xFFFFFF))

			case "BYTE":
				bytes, err := parser.ByteValues(pl.Operand1)
				if err != nil {
					return nil, newError(pl.Pos, KindOutOfRange, "%v", err)
				}
				var sb strings.Builder
				for _, b := range bytes {
					fmt.Fprintf(&sb, "%02X", b)
				}
				acc.append(ll.LOCCTR, sb.String())

			case "RESW", "RESB":
				acc.flushGap()

			case "BASE":
				addr, err := resolveAddress(pl.Operand1, prog)
				if err != nil {
					return nil, err
				}
				baseAddr = addr
				haveBase = true

			case "NOBASE":
				haveBase = false

			case "LTORG", "END":
				for _, text := range pendingLiterals {
					lit, ok := prog.Literals.Lookup(text)
					if !ok || lit.Address == nil {
						return nil, newError(pl.Pos, KindUnresolvedSymbol, "literal %q never materialized", text)
					}
					acc.append(*lit.Address, lit.HexValue)
				}
				pendingLiterals = nil
			}
		}
	}

	acc.flush()
	out.Text = acc.finished
	out.Modifications = mods
	return out, nil
}

// resolveAddress resolves a BASE operand or a plain addressing target:
// a literal, a symbol, or (where permitted) a bare numeric value.
func resolveAddress(operand string, prog *parser.Program) (uint32, error) {
	if strings.HasPrefix(operand, "=") {
		lit, ok := prog.Literals.Lookup(operand)
		if !ok || lit.Address == nil {
			return 0, fmt.Errorf("literal %q never materialized", operand)
		}
		return *lit.Address, nil
	}
	if addr, ok := prog.Symbols.Lookup(operand); ok {
		return addr, nil
	}
	if v, ok := parseNumeric(operand); ok {
		return v, nil
	}
	return 0, fmt.Errorf("undefined symbol %q", operand)
}

func parseNumeric(s string) (uint32, bool) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err == nil
	case s != "" && isAllDigits(s):
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err == nil
	default:
		return 0, false
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// encodeInstruction dispatches to the format-specific encoder.
func encodeInstruction(pl parser.ParsedLine, locctr uint32, instr parser.Instruction, prog *parser.Program, baseAddr uint32, haveBase bool) (string, *objfile.Modification, error) {
	switch instr.Op.Format {
	case opcode.Format1:
		return fmt.Sprintf("%02X", instr.Op.Code), nil, nil
	case opcode.Format2:
		return encodeFormat2(pl, instr)
	case opcode.Format3:
		return encodeFormat3(pl, locctr, instr, prog, baseAddr, haveBase)
	case opcode.Format4:
		return encodeFormat4(pl, locctr, instr, prog)
	default:
		return "", nil, newError(pl.Pos, KindOutOfRange, "unknown format for %q", instr.Mnemonic)
	}
}

func encodeFormat2(pl parser.ParsedLine, instr parser.Instruction) (string, *objfile.Modification, error) {
	r1, err := opcode.RegisterNumber(pl.Operand1)
	if err != nil {
		return "", nil, newError(pl.Pos, KindUnknownRegister, "%v", err)
	}
	var r2 byte
	if pl.Operand2 != "" {
		r2, err = opcode.RegisterNumber(pl.Operand2)
		if err != nil {
			return "", nil, newError(pl.Pos, KindUnknownRegister, "%v", err)
		}
	}
	return fmt.Sprintf("%02X%02X", instr.Op.Code, (r1<<4)|r2), nil, nil
}

// operandFlags carries the parsed n/i/x prefix information for format
// 3/4 operand1.
type operandFlags struct {
	n, i, x byte
	source  string // operand text with # / @ prefix stripped
}

func parseOperandFlags(pl parser.ParsedLine) (operandFlags, error) {
	f := operandFlags{}
	op1 := pl.Operand1
	switch {
	case strings.HasPrefix(op1, "#"):
		f.i, f.n = 1, 0
		f.source = op1[1:]
	case strings.HasPrefix(op1, "@"):
		f.i, f.n = 0, 1
		f.source = op1[1:]
	default:
		f.i, f.n = 1, 1
		f.source = op1
	}
	if pl.Operand2 != "" {
		if strings.ToUpper(pl.Operand2) != "X" {
			return f, newError(pl.Pos, KindBadIndexRegister, "operand2 %q is not X", pl.Operand2)
		}
		f.x = 1
	}
	return f, nil
}

func encodeFormat3(pl parser.ParsedLine, locctr uint32, instr parser.Instruction, prog *parser.Program, baseAddr uint32, haveBase bool) (string, *objfile.Modification, error) {
	flags, err := parseOperandFlags(pl)
	if err != nil {
		return "", nil, err
	}

	// Numeric immediate that does not resolve as a symbol: the
	// displacement is the value itself, no p/b bits.
	if flags.i == 1 && flags.n == 0 {
		if v, ok := parseNumeric(flags.source); ok {
			if _, isSym := prog.Symbols.Lookup(flags.source); !isSym {
				return packFormat3(instr.Op.Code, flags, 0, 0, v), nil, nil
			}
		}
	}

	targetAddr, err := resolveOperandTarget(flags.source, prog)
	if err != nil {
		return "", nil, newError(pl.Pos, KindUnresolvedSymbol, "%v", err)
	}

	pc := locctr + 3
	disp := int64(targetAddr) - int64(pc)
	if disp >= -2048 && disp <= 2047 {
		return packFormat3(instr.Op.Code, flags, 0, 1, uint32(disp)&0xFFF), nil, nil
	}
	if haveBase {
		bdisp := int64(targetAddr) - int64(baseAddr)
		if bdisp >= 0 && bdisp <= 4095 {
			return packFormat3(instr.Op.Code, flags, 1, 0, uint32(bdisp)), nil, nil
		}
	}

	// Fall back to format 4: re-encode with a full 20-bit address and a
	// modification record, per §4.E.
	code := packFormat4(instr.Op.Code, flags, targetAddr)
	mod := &objfile.Modification{Address: locctr + 1, HalfByteLength: 5, Sign: '+', Variable: flags.source}
	return code, mod, nil
}

func encodeFormat4(pl parser.ParsedLine, locctr uint32, instr parser.Instruction, prog *parser.Program) (string, *objfile.Modification, error) {
	flags, err := parseOperandFlags(pl)
	if err != nil {
		return "", nil, err
	}

	var targetAddr uint32
	if flags.i == 1 && flags.n == 0 {
		if v, ok := parseNumeric(flags.source); ok {
			if _, isSym := prog.Symbols.Lookup(flags.source); !isSym {
				targetAddr = v
			} else {
				targetAddr, err = resolveOperandTarget(flags.source, prog)
				if err != nil {
					return "", nil, newError(pl.Pos, KindUnresolvedSymbol, "%v", err)
				}
			}
		} else {
			targetAddr, err = resolveOperandTarget(flags.source, prog)
			if err != nil {
				return "", nil, newError(pl.Pos, KindUnresolvedSymbol, "%v", err)
			}
		}
	} else {
		targetAddr, err = resolveOperandTarget(flags.source, prog)
		if err != nil {
			return "", nil, newError(pl.Pos, KindUnresolvedSymbol, "%v", err)
		}
	}

	code := packFormat4(instr.Op.Code, flags, targetAddr)
	mod := &objfile.Modification{Address: locctr + 1, HalfByteLength: 5, Sign: '+', Variable: flags.source}
	return code, mod, nil
}

func resolveOperandTarget(source string, prog *parser.Program) (uint32, error) {
	if strings.HasPrefix(source, "=") {
		lit, ok := prog.Literals.Lookup(source)
		if !ok || lit.Address == nil {
			return 0, fmt.Errorf("literal %q never materialized", source)
		}
		return *lit.Address, nil
	}
	if addr, ok := prog.Symbols.Lookup(source); ok {
		return addr, nil
	}
	return 0, fmt.Errorf("undefined symbol %q", source)
}

// packFormat3 lays out the three format-3 bytes per §4.E: byte0 =
// opcode | (n<<1) | i; byte1 = (x<<7)|(b<<6)|(p<<5)|(e<<4)|high nibble
// of a 12-bit field; byte2 = low byte of the field.
func packFormat3(opcodeByte byte, flags operandFlags, b, p byte, field12 uint32) string {
	byte0 := opcodeByte | (flags.n << 1) | flags.i
	byte1 := (flags.x << 7) | (b << 6) | (p << 5) | (0 << 4) | byte((field12>>8)&0xF)
	byte2 := byte(field12 & 0xFF)
	return fmt.Sprintf("%02X%02X%02X", byte0, byte1, byte2)
}

// packFormat4 lays out the four format-4 bytes: e=1, 20-bit absolute
// address in the low 20 bits.
func packFormat4(opcodeByte byte, flags operandFlags, addr20 uint32) string {
	byte0 := opcodeByte | (flags.n << 1) | flags.i
	byte1 := (flags.x << 7) | (1 << 4) | byte((addr20>>16)&0xF)
	byte2 := byte((addr20 >> 8) & 0xFF)
	byte3 := byte(addr20 & 0xFF)
	return fmt.Sprintf("%02X%02X%02X%02X", byte0, byte1, byte2, byte3)
}
