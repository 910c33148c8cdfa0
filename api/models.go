package api

import (
	"github.com/sicsim/sicsim/vm"
)

// Snapshot is a read-only view of simulator state, pushed to a front
// end over the event stream so it can render registers and memory
// without driving the core itself.
type Snapshot struct {
	State  string `json:"state"`
	PC     uint32 `json:"pc"`
	A      uint32 `json:"a"`
	X      uint32 `json:"x"`
	L      uint32 `json:"l"`
	B      uint32 `json:"b"`
	S      uint32 `json:"s"`
	T      uint32 `json:"t"`
	SW     uint32 `json:"sw"`
	CC     int8   `json:"cc"`
	Cycles uint64 `json:"cycles"`
}

// SnapshotOf builds a Snapshot from a live VM.
func SnapshotOf(machine *vm.VM) Snapshot {
	return Snapshot{
		State: machine.State.String(),
		PC:    machine.CPU.PC,
		A:     machine.CPU.A,
		X:     machine.CPU.X,
		L:     machine.CPU.L,
		B:     machine.CPU.B,
		S:     machine.CPU.S,
		T:     machine.CPU.T,
		SW:    machine.CPU.SW,
		CC:    machine.CPU.CC,
	}
}

// Command is a verb a front end sends over the websocket connection to
// drive the core: "step", "run", "reset", "break", "clear", "load".
type Command struct {
	Verb    string `json:"verb"`
	Address uint32 `json:"address,omitempty"`
	Source  string `json:"source,omitempty"`
}

// EventType distinguishes the kinds of messages pushed to subscribers.
type EventType string

const (
	// EventSnapshot carries a Snapshot after a step or run.
	EventSnapshot EventType = "snapshot"
	// EventOutput carries console output produced by a WD instruction.
	EventOutput EventType = "output"
	// EventBreakpoint carries a breakpoint-hit notification.
	EventBreakpoint EventType = "breakpoint"
	// EventError carries a command or execution error.
	EventError EventType = "error"
)

// Event is one message on the broadcast stream.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}
