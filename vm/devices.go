package vm

import (
	"bufio"
	"io"
)

// Device is one memory-mapped I/O device addressed by RD/WD/TD (§4.H).
type Device interface {
	Read() (byte, error)
	Write(b byte) error
	Test() bool // true when ready
}

// DeviceTable resolves device numbers to Devices, isolated from the
// rest of VM so tests can substitute an in-memory device without
// touching the process's stdin/stdout.
type DeviceTable struct {
	stdin  *stdinDevice
	stdout *stdoutDevice
}

// NewDeviceTable wires device 0 to r (defaulting the read side) and
// device 1 to w; all other device numbers are always-ready no-ops.
func NewDeviceTable(r io.Reader, w io.Writer) *DeviceTable {
	return &DeviceTable{
		stdin:  &stdinDevice{r: bufio.NewReader(r)},
		stdout: &stdoutDevice{w: w},
	}
}

func (d *DeviceTable) device(number uint32) Device {
	switch number {
	case 0:
		return d.stdin
	case 1:
		return d.stdout
	default:
		return nopDevice{}
	}
}

type stdinDevice struct{ r *bufio.Reader }

func (d *stdinDevice) Read() (byte, error) { return d.r.ReadByte() }
func (d *stdinDevice) Write(byte) error    { return nil }
func (d *stdinDevice) Test() bool          { return true }

type stdoutDevice struct{ w io.Writer }

func (d *stdoutDevice) Read() (byte, error) { return 0, nil }
func (d *stdoutDevice) Write(b byte) error  { _, err := d.w.Write([]byte{b}); return err }
func (d *stdoutDevice) Test() bool          { return true }

type nopDevice struct{}

func (nopDevice) Read() (byte, error) { return 0, nil }
func (nopDevice) Write(byte) error    { return nil }
func (nopDevice) Test() bool          { return true }
