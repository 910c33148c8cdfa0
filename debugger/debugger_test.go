package debugger

import (
	"testing"

	"github.com/sicsim/sicsim/vm"
)

func hex6(v uint32) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		out[i] = digits[v&0xF]
		v >>= 4
	}
	return string(out)
}

func simpleProgram() string {
	// LDA #1 at 0x1000, LDA #2 at 0x1003, LDA #3 at 0x1006.
	h := "H" + "PROG  " + hex6(0x1000) + hex6(9)
	tRec := "T" + hex6(0x1000) + "09" + "010001" + "010002" + "010003"
	e := "E" + hex6(0x1000)
	return h + "\n" + tRec + "\n" + e + "\n"
}

func TestStepHitsBreakpoint(t *testing.T) {
	machine := vm.New()
	if err := machine.Load(simpleProgram()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := New(machine)
	d.SetBreakpoint(0x1003)

	if _, err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if machine.State != vm.StateBreakpointHit {
		t.Errorf("State = %v, want BreakpointHit", machine.State)
	}
	bps := d.Breakpoints.All()
	if len(bps) != 1 || bps[0].HitCount != 1 {
		t.Errorf("breakpoints = %+v, want one hit", bps)
	}
}

func TestResolveAddressBySymbol(t *testing.T) {
	machine := vm.New()
	d := New(machine)
	d.LoadSymbols(map[string]uint32{"LOOP": 0x1006})

	addr, err := d.ResolveAddress("LOOP")
	if err != nil || addr != 0x1006 {
		t.Errorf("ResolveAddress(LOOP) = %#x, %v; want 0x1006, nil", addr, err)
	}

	addr, err = d.ResolveAddress("0x2000")
	if err != nil || addr != 0x2000 {
		t.Errorf("ResolveAddress(0x2000) = %#x, %v; want 0x2000, nil", addr, err)
	}
}

func TestRunStopsAtBreakpointViaDebugger(t *testing.T) {
	machine := vm.New()
	if err := machine.Load(simpleProgram()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := New(machine)
	d.SetBreakpoint(0x1006)

	if err := d.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if machine.CPU.PC != 0x1006 {
		t.Errorf("PC = %#x, want 0x1006", machine.CPU.PC)
	}
	if machine.CPU.A != 2 {
		t.Errorf("A = %d, want 2 (two LDAs ran before the breakpoint)", machine.CPU.A)
	}
}
