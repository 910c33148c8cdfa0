// Package vm implements component H: the fetch-decode-execute
// simulator over a 1 MiB byte-addressed memory image.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/sicsim/sicsim/disasm"
	"github.com/sicsim/sicsim/loader"
	"github.com/sicsim/sicsim/opcode"
)

// State is the run-loop state machine (§4.H).
type State int

const (
	StateIdle State = iota
	StateRunning
	StateBreakpointHit
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateBreakpointHit:
		return "BreakpointHit"
	case StateHalted:
		return "Halted"
	default:
		return "Unknown"
	}
}

// VM is the simulator: machine state, breakpoints, and the decoded
// instruction stream indexed by its locctr.
type VM struct {
	CPU         *CPU
	Memory      *Memory
	Devices     *DeviceTable
	State       State
	Breakpoints map[uint32]bool

	instructions map[uint32]disasm.Token
	entryPoint   uint32
}

// New creates a VM with a fresh zeroed CPU and memory image, device 0
// reading stdin and device 1 writing stdout.
func New() *VM {
	return NewWithIO(os.Stdin, os.Stdout)
}

// NewWithIO is New with device 0/1 redirected, letting tests substitute
// an in-memory sink.
func NewWithIO(r io.Reader, w io.Writer) *VM {
	return &VM{
		CPU:          &CPU{},
		Memory:       NewMemory(),
		Devices:      NewDeviceTable(r, w),
		State:        StateIdle,
		Breakpoints:  make(map[uint32]bool),
		instructions: make(map[uint32]disasm.Token),
	}
}

// Load places an object program's text-record bytes into memory and
// builds the decoded instruction stream the fetch stage looks up by
// locctr. PC is set to the entry point.
func (v *VM) Load(text string) error {
	prog, segs, warnings := loader.Load(text)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "sicsim: loader warning: %v\n", w)
	}

	for _, seg := range segs {
		data := make([]byte, len(seg.Objcode)/2)
		for i := range data {
			var b byte
			if _, err := fmt.Sscanf(seg.Objcode[i*2:i*2+2], "%02X", &b); err != nil {
				return fmt.Errorf("load: bad object code %q at %#x: %w", seg.Objcode, seg.Address, err)
			}
			data[i] = b
		}
		if err := v.Memory.LoadBytes(seg.Address, data); err != nil {
			return err
		}
		tok, err := disasm.DecodeSegment(seg)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		v.instructions[seg.Address] = tok
	}

	v.entryPoint = prog.End.FirstExecutableAddr
	v.CPU.PC = v.entryPoint
	return nil
}

// Reset zeroes the registers, sets PC back to the loaded entry point,
// and returns the state to Idle (any→Idle per §4.H's state machine).
// Memory contents, the decoded instruction stream and breakpoints are
// kept.
func (v *VM) Reset() {
	v.CPU.Reset()
	v.CPU.PC = v.entryPoint
	v.State = StateIdle
}

// formatBytes reports how many bytes a decoded token occupies in the
// object program, used to advance PC on non-jump instructions.
func formatBytes(f opcode.Format) uint32 {
	switch f {
	case opcode.Format1:
		return 1
	case opcode.Format2:
		return 2
	case opcode.Format3:
		return 3
	case opcode.Format4:
		return 4
	default:
		return 0
	}
}

// Step executes exactly one instruction. It returns false when no
// decoded instruction exists at PC (a fetch miss, which halts the
// machine per §4.H).
func (v *VM) Step() (bool, error) {
	tok, ok := v.instructions[v.CPU.PC]
	if !ok {
		v.State = StateHalted
		return false, nil
	}

	pcAfterFetch := v.CPU.PC + formatBytes(tok.Format)
	jumped, err := v.execute(tok, pcAfterFetch)
	if err != nil {
		return false, err
	}
	if !jumped {
		v.CPU.PC = pcAfterFetch
	}
	return true, nil
}

// Run executes instructions until a breakpoint is hit (checked before
// each step), the instruction stream runs dry, or cancel reports true.
// cancel may be nil.
func (v *VM) Run(cancel func() bool) error {
	v.State = StateRunning
	for {
		if cancel != nil && cancel() {
			v.State = StateIdle
			return nil
		}
		if v.Breakpoints[v.CPU.PC] {
			v.State = StateBreakpointHit
			return nil
		}
		more, err := v.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
