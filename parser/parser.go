package parser

import (
	"strings"

	"github.com/sicsim/sicsim/lexer"
	"github.com/sicsim/sicsim/opcode"
)

// ParsedLine is a token line classified into a Command, per §3. This is
// a straight structural transform: no semantic checks, no symbol-table
// lookups.
type ParsedLine struct {
	Pos      lexer.Position
	Label    string
	Command  Command
	Operand1 string
	Operand2 string
}

// IsCommandToken classifies a raw token as a known mnemonic or
// directive, for use as a lexer.Classifier.
func IsCommandToken(token string) bool {
	name := token
	if strings.HasPrefix(name, "+") {
		name = name[1:]
	}
	upper := strings.ToUpper(name)
	if lexer.Directives[upper] {
		return true
	}
	return opcode.IsMnemonic(strings.ToUpper(token))
}

// Parse converts lexer.Lines into ParsedLines (component C).
func Parse(lines []lexer.Line) ([]ParsedLine, error) {
	out := make([]ParsedLine, 0, len(lines))
	for _, l := range lines {
		cmd, err := classify(l)
		if err != nil {
			return nil, err
		}
		out = append(out, ParsedLine{
			Pos:      l.Pos,
			Label:    l.Label,
			Command:  cmd,
			Operand1: l.Operand1,
			Operand2: l.Operand2,
		})
	}
	return out, nil
}

func classify(l lexer.Line) (Command, error) {
	if l.Command == "" {
		return nil, newError(l.Pos, KindParse, "line has no command")
	}
	base := l.Command
	if strings.HasPrefix(base, "+") {
		base = base[1:]
	}
	upper := strings.ToUpper(base)
	if lexer.Directives[upper] {
		return Directive{Name: upper}, nil
	}
	mnemonic := strings.ToUpper(l.Command)
	op, ok := opcode.Lookup(mnemonic)
	if !ok {
		return nil, newError(l.Pos, KindParse, "unknown mnemonic or directive %q", l.Command)
	}
	return Instruction{Mnemonic: mnemonic, Op: op}, nil
}
