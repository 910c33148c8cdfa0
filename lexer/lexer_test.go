package lexer

import (
	"strings"
	"testing"
)

func isCmd(tok string) bool {
	if strings.HasPrefix(tok, "+") {
		tok = tok[1:]
	}
	return Directives[strings.ToUpper(tok)] || knownMnemonics[strings.ToUpper(tok)]
}

var knownMnemonics = map[string]bool{
	"LDA": true, "STA": true, "ADD": true, "JSUB": true, "RSUB": true,
	"CLEAR": true, "TIX": true, "J": true,
}

func TestTokenizeLabelAndOperands(t *testing.T) {
	lines, err := Tokenize("COPY START 1000\nFIRST LDA #5\n STA ALPHA,X\n", isCmd)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0].Label != "COPY" || lines[0].Command != "START" || lines[0].Operand1 != "1000" {
		t.Errorf("line0 = %+v", lines[0])
	}
	if lines[1].Label != "FIRST" || lines[1].Command != "LDA" || lines[1].Operand1 != "#5" {
		t.Errorf("line1 = %+v", lines[1])
	}
	if lines[2].Label != "" || lines[2].Command != "STA" || lines[2].Operand1 != "ALPHA" || lines[2].Operand2 != "X" {
		t.Errorf("line2 = %+v", lines[2])
	}
}

func TestCommentStripped(t *testing.T) {
	lines, err := Tokenize("LDA #5 . load five\n. full comment line\nSTA ALPHA\n", isCmd)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (comment-only line dropped): %+v", len(lines), lines)
	}
}

func TestBlankLinesDropped(t *testing.T) {
	lines, err := Tokenize("LDA #5\n\n\nSTA ALPHA\n", isCmd)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
}

func TestLiteralOperandKeptIntact(t *testing.T) {
	lines, err := Tokenize("FIRST LDA =C'EOF'\n", isCmd)
	if err != nil {
		t.Fatal(err)
	}
	if lines[0].Operand1 != "=C'EOF'" {
		t.Errorf("operand1 = %q, want =C'EOF'", lines[0].Operand1)
	}
}

func TestUnterminatedLiteralErrors(t *testing.T) {
	_, err := Tokenize("FIRST LDA =C'EOF\n", isCmd)
	if err == nil {
		t.Fatal("expected unterminated literal error")
	}
	var lexErr *Error
	if !asError(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

func TestNoLabelWhenFirstTokenIsMnemonic(t *testing.T) {
	lines, err := Tokenize("RSUB\n", isCmd)
	if err != nil {
		t.Fatal(err)
	}
	if lines[0].Label != "" || lines[0].Command != "RSUB" {
		t.Errorf("line = %+v", lines[0])
	}
}
