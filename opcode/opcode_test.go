package opcode

import "testing"

func TestLookupFormat3AndFormat4Share(t *testing.T) {
	f3, ok := Lookup("LDA")
	if !ok {
		t.Fatal("LDA not found")
	}
	if f3.Code != 0x00 || f3.Format != Format3 {
		t.Errorf("LDA = %+v, want code 0x00 format 3", f3)
	}

	f4, ok := Lookup("+LDA")
	if !ok {
		t.Fatal("+LDA not found")
	}
	if f4.Code != f3.Code {
		t.Errorf("+LDA code = %#x, want same as LDA %#x", f4.Code, f3.Code)
	}
	if f4.Format != Format4 {
		t.Errorf("+LDA format = %v, want Format4", f4.Format)
	}
}

func TestFormat1And2HaveNoFormat4Variant(t *testing.T) {
	if _, ok := Lookup("+FIX"); ok {
		t.Error("+FIX should not exist: FIX is format 1")
	}
	if _, ok := Lookup("+CLEAR"); ok {
		t.Error("+CLEAR should not exist: CLEAR is format 2")
	}
}

func TestReverseFormat34MasksFlagBits(t *testing.T) {
	// LDA's opcode byte 0x00 with n=1,i=1 set (simple addressing) is 0x03.
	raw := byte(0x00) | 0x03
	masked := raw &^ 0x03
	mnemonic, ok := ReverseFormat34(masked)
	if !ok || mnemonic != "LDA" {
		t.Errorf("ReverseFormat34(%#x) = %q, %v; want LDA, true", masked, mnemonic, ok)
	}
}

func TestReverseFormat1(t *testing.T) {
	mnemonic, ok := ReverseFormat1(0xC4)
	if !ok || mnemonic != "FIX" {
		t.Errorf("ReverseFormat1(0xC4) = %q, %v; want FIX, true", mnemonic, ok)
	}
}

func TestReverseFormat2(t *testing.T) {
	mnemonic, ok := ReverseFormat2(0xB4)
	if !ok || mnemonic != "CLEAR" {
		t.Errorf("ReverseFormat2(0xB4) = %q, %v; want CLEAR, true", mnemonic, ok)
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	cases := []string{"A", "X", "L", "B", "S", "T", "F", "PC", "SW"}
	for _, name := range cases {
		num, err := RegisterNumber(name)
		if err != nil {
			t.Fatalf("RegisterNumber(%q): %v", name, err)
		}
		back, err := RegisterName(num)
		if err != nil || back != name {
			t.Errorf("RegisterName(%d) = %q, %v; want %q, nil", num, back, err, name)
		}
	}
}

func TestRegisterNumberUnknown(t *testing.T) {
	if _, err := RegisterNumber("Q"); err == nil {
		t.Error("expected error for unknown register Q")
	}
}

func TestIsMnemonic(t *testing.T) {
	if !IsMnemonic("JSUB") {
		t.Error("JSUB should be a known mnemonic")
	}
	if IsMnemonic("NOTAREALOP") {
		t.Error("NOTAREALOP should not be a known mnemonic")
	}
}
