package vm

import (
	"bytes"
	"strings"
	"testing"
)

// program builds a minimal one-text-record object program string from
// its parts, so field widths (6/6/6 for H, 6/2 for T, 6 for E) are
// never hand-counted in the test bodies below.
func program(name string, start, length uint32, textStart uint32, codes string, entry uint32) string {
	h := "H" + pad6(name) + hex6(start) + hex6(length)
	textLen := len(codes) / 2
	t := "T" + hex6(textStart) + hex2(uint32(textLen)) + codes
	e := "E" + hex6(entry)
	return h + "\n" + t + "\n" + e + "\n"
}

func pad6(s string) string {
	for len(s) < 6 {
		s += " "
	}
	return s
}

func hex6(v uint32) string { return sprintfHex(v, 6) }
func hex2(v uint32) string { return sprintfHex(v, 2) }

func sprintfHex(v uint32, width int) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = digits[v&0xF]
		v >>= 4
	}
	return string(out)
}

func TestStepImmediateLoad(t *testing.T) {
	// LDA #0x42 (opcode 0x00, i=1,n=0 -> byte0=0x01; field=0x042).
	v := New()
	text := program("PROG", 0x1000, 3, 0x1000, "010042", 0x1000)
	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	more, err := v.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !more {
		t.Fatal("expected Step to execute an instruction")
	}
	if v.CPU.A != 0x42 {
		t.Errorf("A = %#x, want 0x42", v.CPU.A)
	}
	if v.CPU.PC != 0x1003 {
		t.Errorf("PC = %#x, want 0x1003", v.CPU.PC)
	}
}

func TestStepJsubRsub(t *testing.T) {
	// +JSUB 0x2000 at 0x1000 (format4: opcode 0x48, n=1,i=1 -> byte0=0x4B,
	// e=1 -> byte1=0x10, address 0x002000 -> byte2=0x20, byte3=0x00).
	// RSUB at 0x2000 (format3: opcode 0x4C, n=1,i=1 -> byte0=0x4F, no
	// operand).
	v := New()
	h := "H" + pad6("PROG") + hex6(0x1000) + hex6(7)
	t1 := "T" + hex6(0x1000) + hex2(4) + "4B102000"
	t2 := "T" + hex6(0x2000) + hex2(3) + "4F0000"
	e := "E" + hex6(0x1000)
	text := h + "\n" + t1 + "\n" + t2 + "\n" + e + "\n"

	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := v.Step(); err != nil {
		t.Fatalf("Step JSUB: %v", err)
	}
	if v.CPU.PC != 0x2000 {
		t.Errorf("PC after JSUB = %#x, want 0x2000", v.CPU.PC)
	}
	if v.CPU.L != 0x1004 {
		t.Errorf("L after JSUB = %#x, want 0x1004 (PC after fetch)", v.CPU.L)
	}

	if _, err := v.Step(); err != nil {
		t.Fatalf("Step RSUB: %v", err)
	}
	if v.CPU.PC != 0x1004 {
		t.Errorf("PC after RSUB = %#x, want 0x1004", v.CPU.PC)
	}
}

func TestDivisionByZeroLeavesARegisterUnchanged(t *testing.T) {
	v := New()
	v.CPU.A = 99
	// DIV #0 (opcode 0x24, i=1,n=0 -> byte0=0x25; field=0).
	text := program("PROG", 0x1000, 3, 0x1000, "250000", 0x1000)
	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.CPU.A != 99 {
		t.Errorf("A = %d, want 99 (unchanged by division by zero)", v.CPU.A)
	}
}

func TestShiftLeftIsCircular(t *testing.T) {
	v := New()
	v.CPU.A = 0x800000 // bit 23 set
	// SHIFTL A,2 (opcode 0xA4, r1=A(0), count-1 nibble=1 -> 2 positions).
	text := program("PROG", 0x1000, 2, 0x1000, "A401", 0x1000)
	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	// 0x800000 shifted left circularly by 2 within 24 bits wraps bits 23
	// and 22 around to bits 1 and 0.
	if v.CPU.A != 0x000002 {
		t.Errorf("A = %#x, want 0x000002 (circular shift, not truncating)", v.CPU.A)
	}
}

func TestRunStopsAtBreakpoint(t *testing.T) {
	v := New()
	// LDA #1 at 0x1000, LDA #2 at 0x1003; breakpoint at 0x1003.
	text := program("PROG", 0x1000, 6, 0x1000, "010001010002", 0x1000)
	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v.Breakpoints[0x1003] = true

	if err := v.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.State != StateBreakpointHit {
		t.Errorf("State = %v, want BreakpointHit", v.State)
	}
	if v.CPU.PC != 0x1003 {
		t.Errorf("PC = %#x, want 0x1003", v.CPU.PC)
	}
	if v.CPU.A != 1 {
		t.Errorf("A = %d, want 1 (only the first LDA ran)", v.CPU.A)
	}
}

func TestWriteDeviceOneIsStdout(t *testing.T) {
	var buf bytes.Buffer
	v := NewWithIO(strings.NewReader(""), &buf)
	v.CPU.A = 'X'
	// WD #1 (opcode 0xDC, i=1,n=0 -> byte0=0xDD; field=1).
	text := program("PROG", 0x1000, 3, 0x1000, "DD0001", 0x1000)
	if err := v.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if buf.String() != "X" {
		t.Errorf("stdout = %q, want %q", buf.String(), "X")
	}
}
