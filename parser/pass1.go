// Package parser implements component C (token lines -> parsed lines)
// and component D (Pass 1 address resolution) of the assembler.
package parser

import (
	"strconv"
	"strings"

	"github.com/sicsim/sicsim/lexer"
)

// LabeledLine is a ParsedLine annotated with the LOCCTR value assigned
// to the start of its object code (§3).
type LabeledLine struct {
	Parsed ParsedLine
	LOCCTR uint32
}

// Program is the result of Pass 1: every labeled line plus the symbol
// table, literal table, program bounds, and the operand of the last
// BASE directive. Pass 2 does not read BaseSymbol; it tracks BASE and
// NOBASE from the labeled lines themselves.
type Program struct {
	Name        string
	Start       uint32
	Length      uint32
	Lines       []LabeledLine
	Symbols     *SymbolTable
	Literals    *LiteralTable
	BaseSymbol  string // operand of the last BASE; empty after NOBASE or if none
	EndOperand  string // END directive's operand, if any
	EntryPoint  uint32 // first executable address: EndOperand resolved, or Start
}

// Pass1 runs address resolution over parsed lines (§4.D).
func Pass1(lines []ParsedLine) (*Program, error) {
	if len(lines) == 0 {
		return nil, newError(lexer.Position{Line: 0}, KindMissingStart, "empty program")
	}

	prog := &Program{
		Symbols:  NewSymbolTable(),
		Literals: NewLiteralTable(),
	}

	first := lines[0]
	startDir, ok := first.Command.(Directive)
	if !ok || startDir.Name != "START" {
		return nil, newError(first.Pos, KindMissingStart, "first line must be a START directive")
	}
	startAddr, err := parseDecimalOrHex(first.Operand1)
	if err != nil {
		return nil, newError(first.Pos, KindParse, "bad START operand %q: %v", first.Operand1, err)
	}
	prog.Name = first.Label
	prog.Start = startAddr
	locctr := startAddr
	if first.Label != "" {
		if err := prog.Symbols.Define(first.Pos, first.Label, locctr); err != nil {
			return nil, err
		}
	}
	prog.Lines = append(prog.Lines, LabeledLine{Parsed: first, LOCCTR: locctr})

	var orgStack []uint32
	ended := false

	for _, pl := range lines[1:] {
		lineLOCCTR := locctr

		switch cmd := pl.Command.(type) {
		case Instruction:
			if pl.Label != "" {
				if err := prog.Symbols.Define(pl.Pos, pl.Label, lineLOCCTR); err != nil {
					return nil, err
				}
			}
			if strings.HasPrefix(pl.Operand1, "=") {
				if err := prog.Literals.Reference(pl.Operand1); err != nil {
					return nil, newError(pl.Pos, KindParse, "%v", err)
				}
			}
			locctr += cmd.FormatBytes()

		case Directive:
			switch cmd.Name {
			case "WORD":
				if pl.Label != "" {
					if err := prog.Symbols.Define(pl.Pos, pl.Label, lineLOCCTR); err != nil {
						return nil, err
					}
				}
				locctr += 3

			case "RESW":
				if pl.Label != "" {
					if err := prog.Symbols.Define(pl.Pos, pl.Label, lineLOCCTR); err != nil {
						return nil, err
					}
				}
				n, err := strconv.ParseUint(pl.Operand1, 10, 32)
				if err != nil {
					return nil, newError(pl.Pos, KindParse, "bad RESW operand %q", pl.Operand1)
				}
				locctr += 3 * uint32(n)

			case "RESB":
				if pl.Label != "" {
					if err := prog.Symbols.Define(pl.Pos, pl.Label, lineLOCCTR); err != nil {
						return nil, err
					}
				}
				n, err := strconv.ParseUint(pl.Operand1, 10, 32)
				if err != nil {
					return nil, newError(pl.Pos, KindParse, "bad RESB operand %q", pl.Operand1)
				}
				locctr += uint32(n)

			case "BYTE":
				if pl.Label != "" {
					if err := prog.Symbols.Define(pl.Pos, pl.Label, lineLOCCTR); err != nil {
						return nil, err
					}
				}
				n, err := ByteLength(pl.Operand1)
				if err != nil {
					return nil, newError(pl.Pos, KindParse, "%v", err)
				}
				locctr += n

			case "BASE":
				prog.BaseSymbol = pl.Operand1

			case "NOBASE":
				prog.BaseSymbol = ""

			case "EQU":
				v, err := EvaluateExpr(pl.Pos, pl.Operand1, prog.Symbols)
				if err != nil {
					return nil, err
				}
				if pl.Label != "" {
					if err := prog.Symbols.Define(pl.Pos, pl.Label, uint32(v)); err != nil {
						return nil, err
					}
				}

			case "ORG":
				if pl.Operand1 != "" {
					v, err := EvaluateExpr(pl.Pos, pl.Operand1, prog.Symbols)
					if err != nil {
						return nil, err
					}
					orgStack = append(orgStack, locctr)
					locctr = uint32(v)
				} else if len(orgStack) > 0 {
					locctr = orgStack[len(orgStack)-1]
					orgStack = orgStack[:len(orgStack)-1]
				}

			case "LTORG":
				locctr = prog.Literals.MaterializePending(locctr)

			case "END":
				locctr = prog.Literals.MaterializePending(locctr)
				prog.EndOperand = pl.Operand1
				prog.Length = locctr - prog.Start
				prog.Lines = append(prog.Lines, LabeledLine{Parsed: pl, LOCCTR: lineLOCCTR})
				ended = true
			}
		}

		if ended {
			break
		}
		prog.Lines = append(prog.Lines, LabeledLine{Parsed: pl, LOCCTR: lineLOCCTR})
	}

	if !ended {
		locctr = prog.Literals.MaterializePending(locctr)
		prog.Length = locctr - prog.Start
		prog.EntryPoint = prog.Start
	} else if prog.EndOperand != "" {
		if addr, ok := prog.Symbols.Lookup(prog.EndOperand); ok {
			prog.EntryPoint = addr
		} else if v, err := parseDecimalOrHex(prog.EndOperand); err != nil {
			prog.EntryPoint = prog.Start
		} else {
			prog.EntryPoint = v
		}
	} else {
		prog.EntryPoint = prog.Start
	}

	return prog, nil
}

func parseDecimalOrHex(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}
