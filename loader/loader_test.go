package loader

import "testing"

func TestLoadSegmentsFormat3Instruction(t *testing.T) {
	text := "HCOPY  001000000010\nT00100003010005\nE001000\n"
	_, segs, warnings := Load(text)
	for _, w := range warnings {
		t.Logf("warning: %v", w)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if segs[0].Address != 0x1000 || segs[0].Objcode != "010005" {
		t.Errorf("segment = %+v, want {0x1000 010005}", segs[0])
	}
}

func TestLoadSegmentsFormat1And2(t *testing.T) {
	// FIX (format1, 0xC4) then CLEAR A (format2, 0xB400)
	text := "HPROG  00000000000003\nT00000003C4B400\nE000000\n"
	_, segs, _ := Load(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Objcode != "C4" {
		t.Errorf("segment0 = %+v, want C4", segs[0])
	}
	if segs[1].Objcode != "B400" {
		t.Errorf("segment1 = %+v, want B400", segs[1])
	}
}

func TestLoadSegmentsFormat4ByEBit(t *testing.T) {
	// +LDA #1234 -> 011004D2 (format4, e bit set in second byte 0x10)
	text := "HPROG  00000000000004\nT00000004011004D2\nE000000\n"
	_, segs, _ := Load(text)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if segs[0].Objcode != "011004D2" {
		t.Errorf("segment = %+v, want 011004D2", segs[0])
	}
}
