package main

import (
	"testing"

	"github.com/sicsim/sicsim/disasm"
)

func TestFormatTokenFormat1(t *testing.T) {
	tok := disasm.Token{Mnemonic: "FIX", Format: 1}
	if got := formatToken(tok); got != "FIX" {
		t.Errorf("formatToken = %q, want %q", got, "FIX")
	}
}

func TestFormatTokenFormat2RegisterPair(t *testing.T) {
	tok := disasm.Token{Mnemonic: "COMPR", Format: 2, Reg: &disasm.Registers{R1: "A", R2: "X"}}
	got := formatToken(tok)
	if got != "COMPR   A,X" {
		t.Errorf("formatToken = %q, want %q", got, "COMPR   A,X")
	}
}

func TestFormatTokenFormat4AddsPlus(t *testing.T) {
	tok := disasm.Token{Mnemonic: "JSUB", Format: 4, Displacement: 0x2000}
	got := formatToken(tok)
	if got != "+JSUB   0x2000" {
		t.Errorf("formatToken = %q, want %q", got, "+JSUB   0x2000")
	}
}
