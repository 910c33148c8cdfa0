package encoder

import "github.com/sicsim/sicsim/objfile"

// textCap is the maximum byte length of a single text record (§4.E,
// §8). The original draft used 55; the corrected cap per spec is 30.
const textCap = 30

// accumulator is the explicit text-record state machine described in
// §9's design notes: object codes are appended one at a time; once the
// in-progress record would exceed textCap bytes, or a reservation gap
// is hit, it is flushed and a fresh one opened at the next address.
type accumulator struct {
	open     bool
	start    uint32
	codes    []string
	length   uint32
	finished []objfile.Text
}

// append adds one object code (hex digit pairs) anchored at addr. If no
// record is open, or addr does not immediately follow the open record,
// the open record is flushed first and a new one started at addr.
func (a *accumulator) append(addr uint32, code string) {
	bytesLen := uint32(len(code) / 2)
	if a.open && a.start+a.length != addr {
		a.flush()
	}
	if !a.open {
		a.open = true
		a.start = addr
		a.codes = nil
		a.length = 0
	}
	if a.length+bytesLen > textCap {
		a.flush()
		a.open = true
		a.start = addr
		a.codes = nil
		a.length = 0
	}
	a.codes = append(a.codes, code)
	a.length += bytesLen
}

// flushGap closes the open record without opening a new one, for
// RESW/RESB reservation gaps that must not be spanned by a text record.
func (a *accumulator) flushGap() {
	a.flush()
}

func (a *accumulator) flush() {
	if a.open && len(a.codes) > 0 {
		a.finished = append(a.finished, objfile.Text{Start: a.start, Objcodes: a.codes})
	}
	a.open = false
	a.codes = nil
	a.length = 0
}
