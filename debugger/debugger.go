package debugger

import (
	"github.com/sicsim/sicsim/vm"
)

// Debugger drives a vm.VM's run loop under breakpoint control. It adds
// no state machine of its own; it only owns the richer BreakpointManager
// a front end needs (IDs, enable/disable, hit counts) and keeps the
// VM's plain address set in sync with it.
type Debugger struct {
	VM          *vm.VM
	Breakpoints *BreakpointManager

	// Symbols resolves label names to addresses for a front end's
	// "break at LABEL" command; populated from the assembled program's
	// symbol table.
	Symbols map[string]uint32
}

// New wraps an already-loaded VM.
func New(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Symbols:     make(map[string]uint32),
	}
}

// LoadSymbols makes label names available to ResolveAddress.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label or a 0x-prefixed/decimal literal to
// an address.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.Symbols[s]; ok {
		return addr, nil
	}
	return parseAddress(s)
}

// SetBreakpoint adds a breakpoint at a resolved address and mirrors it
// into the VM's plain address set.
func (d *Debugger) SetBreakpoint(address uint32) *Breakpoint {
	bp := d.Breakpoints.Add(address)
	d.syncBreakpoints()
	return bp
}

// ClearBreakpoint removes a breakpoint by ID.
func (d *Debugger) ClearBreakpoint(id int) error {
	if err := d.Breakpoints.Delete(id); err != nil {
		return err
	}
	d.syncBreakpoints()
	return nil
}

// ClearBreakpointAt removes whichever breakpoint sits at address.
func (d *Debugger) ClearBreakpointAt(address uint32) error {
	if err := d.Breakpoints.DeleteAt(address); err != nil {
		return err
	}
	d.syncBreakpoints()
	return nil
}

func (d *Debugger) syncBreakpoints() {
	d.VM.Breakpoints = d.Breakpoints.addresses()
}

// Step executes a single instruction regardless of breakpoints.
func (d *Debugger) Step() (bool, error) {
	more, err := d.VM.Step()
	if err == nil && more {
		if bp := d.Breakpoints.Hit(d.VM.CPU.PC); bp != nil {
			d.VM.State = vm.StateBreakpointHit
		}
	}
	return more, err
}

// Run resumes execution until a breakpoint, a fetch miss, or
// cancellation, recording hit counts on whichever breakpoint stopped
// it.
func (d *Debugger) Run(cancel func() bool) error {
	d.syncBreakpoints()
	if err := d.VM.Run(cancel); err != nil {
		return err
	}
	if d.VM.State == vm.StateBreakpointHit {
		d.Breakpoints.Hit(d.VM.CPU.PC)
	}
	return nil
}

// Reset returns both the VM and the run state to Idle.
func (d *Debugger) Reset() {
	d.VM.Reset()
}
