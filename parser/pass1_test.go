package parser

import (
	"testing"

	"github.com/sicsim/sicsim/lexer"
)

func tokenize(t *testing.T, src string) []lexer.Line {
	t.Helper()
	lines, err := lexer.Tokenize(src, IsCommandToken)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return lines
}

func TestPass1SimpleProgram(t *testing.T) {
	src := "COPY START 1000\nFIRST LDA #5\n STA ALPHA\nALPHA RESW 1\n END FIRST\n"
	parsed, err := Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := Pass1(parsed)
	if err != nil {
		t.Fatalf("Pass1: %v", err)
	}
	// The START operand is decimal: 1000 = 0x3E8.
	if prog.Start != 1000 {
		t.Errorf("Start = %d, want 1000", prog.Start)
	}
	// LOCCTR after ALPHA RESW 1 is 1006+3 = 1009; length = 1009-1000.
	if prog.Length != 0x09 {
		t.Errorf("Length = %#x, want 0x09", prog.Length)
	}
	if addr, ok := prog.Symbols.Lookup("FIRST"); !ok || addr != 1000 {
		t.Errorf("FIRST = %d, %v; want 1000, true", addr, ok)
	}
	if addr, ok := prog.Symbols.Lookup("ALPHA"); !ok || addr != 1006 {
		t.Errorf("ALPHA = %d, %v; want 1006, true", addr, ok)
	}
}

func TestPass1MissingStart(t *testing.T) {
	parsed, err := Parse(tokenize(t, "FIRST LDA #5\n END FIRST\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Pass1(parsed); err == nil {
		t.Fatal("expected MissingStart error")
	}
}

func TestPass1DuplicateSymbol(t *testing.T) {
	parsed, err := Parse(tokenize(t, "COPY START 1000\nFIRST LDA #5\nFIRST STA ALPHA\nALPHA RESW 1\n END FIRST\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Pass1(parsed); err == nil {
		t.Fatal("expected DuplicateSymbol error")
	}
}

func TestPass1ByteDirectiveCountsHexDigitsNotChars(t *testing.T) {
	// X'1A2B' is 4 hex digits = 2 bytes, not len("X'1A2B'")-3 = 4 (one
	// per hex digit) as the original draft's buggy formula would compute.
	src := "PROG START 0\nFIRST BYTE X'1A2B'\nNEXT BYTE C'Z'\n END FIRST\n"
	parsed, err := Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := Pass1(parsed)
	if err != nil {
		t.Fatalf("Pass1: %v", err)
	}
	if addr, _ := prog.Symbols.Lookup("NEXT"); addr != 2 {
		t.Errorf("NEXT = %d, want 2 (2-byte hex literal)", addr)
	}
}

func TestPass1EquExpression(t *testing.T) {
	src := "PROG START 0\nFIVE EQU 5\nTEN EQU FIVE*2\n END\n"
	parsed, err := Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := Pass1(parsed)
	if err != nil {
		t.Fatalf("Pass1: %v", err)
	}
	if v, _ := prog.Symbols.Lookup("TEN"); v != 10 {
		t.Errorf("TEN = %d, want 10", v)
	}
}

func TestPass1LiteralMaterializedAtLtorg(t *testing.T) {
	src := "PROG START 0\nFIRST LDA =C'EOF'\n LTORG\n END FIRST\n"
	parsed, err := Parse(tokenize(t, src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := Pass1(parsed)
	if err != nil {
		t.Fatalf("Pass1: %v", err)
	}
	lit, ok := prog.Literals.Lookup("=C'EOF'")
	if !ok || lit.Address == nil {
		t.Fatalf("literal not materialized: %+v, %v", lit, ok)
	}
	if *lit.Address != 3 {
		t.Errorf("literal address = %d, want 3 (after 3-byte LDA)", *lit.Address)
	}
}
