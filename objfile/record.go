// Package objfile defines the object-program record model (§3, §4.F):
// Header, Text, Modification, and End records, and their fixed-width
// text encoding.
package objfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is the H record: program name, start address, and length.
type Header struct {
	Name   string
	Start  uint32
	Length uint32
}

func (h Header) String() string {
	name := h.Name
	if len(name) > 6 {
		name = name[:6]
	}
	return fmt.Sprintf("H%-6s%06X%06X", name, h.Start, h.Length)
}

// Text is a T record: a run of object codes starting at Start. Length
// (in bytes) is the sum of each code's length in hex-digit pairs.
type Text struct {
	Start    uint32
	Objcodes []string
}

// LengthBytes is the sum of |objcode|/2 across Objcodes (§8's
// length-agreement property).
func (t Text) LengthBytes() uint32 {
	var n uint32
	for _, code := range t.Objcodes {
		n += uint32(len(code) / 2)
	}
	return n
}

func (t Text) String() string {
	return fmt.Sprintf("T%06X%02X%s", t.Start, t.LengthBytes(), strings.Join(t.Objcodes, ""))
}

// Modification is an M record: a relocation directive for a 20-bit
// (half-byte length 5) field.
type Modification struct {
	Address        uint32
	HalfByteLength uint32
	Sign           byte // '+' or '-'; 0 if absent
	Variable       string
}

func (m Modification) String() string {
	base := fmt.Sprintf("M%06X%02X", m.Address, m.HalfByteLength)
	if m.Sign == 0 {
		return base
	}
	return fmt.Sprintf("%s%c%s", base, m.Sign, m.Variable)
}

// End is the E record: the program's first executable address.
type End struct {
	FirstExecutableAddr uint32
}

func (e End) String() string {
	return fmt.Sprintf("E%06X", e.FirstExecutableAddr)
}

// Program is a full object program: one Header, ordered Text records,
// Modification records, and one End record.
type Program struct {
	Header        Header
	Text          []Text
	Modifications []Modification
	End           End
}

// String renders the program as newline-separated H/T/M/E lines, in the
// conventional order: header, text records, modification records, end.
func (p Program) String() string {
	var sb strings.Builder
	sb.WriteString(p.Header.String())
	sb.WriteString("\n")
	for _, t := range p.Text {
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}
	for _, m := range p.Modifications {
		sb.WriteString(m.String())
		sb.WriteString("\n")
	}
	sb.WriteString(p.End.String())
	sb.WriteString("\n")
	return sb.String()
}

// clean strips the '^' field separator and surrounding whitespace some
// assemblers emit between fields; both forms are accepted on read.
func clean(line string) string {
	return strings.ReplaceAll(strings.TrimSpace(line), "^", "")
}

// ParseHeader parses an H record body (everything after the 'H').
func ParseHeader(body string) (Header, error) {
	body = clean(body)
	if len(body) < 18 {
		return Header{}, fmt.Errorf("objfile: short H record %q", body)
	}
	name := strings.TrimSpace(body[0:6])
	start, err := strconv.ParseUint(body[6:12], 16, 32)
	if err != nil {
		return Header{}, fmt.Errorf("objfile: bad H start %q: %w", body[6:12], err)
	}
	length, err := strconv.ParseUint(body[12:18], 16, 32)
	if err != nil {
		return Header{}, fmt.Errorf("objfile: bad H length %q: %w", body[12:18], err)
	}
	return Header{Name: name, Start: uint32(start), Length: uint32(length)}, nil
}

// ParseTextHeader parses a T record's start address and declared
// length, returning the remaining object-code digit string for the
// caller (loader) to segment into instructions.
func ParseTextHeader(body string) (start uint32, declaredLen uint32, codeDigits string, err error) {
	body = clean(body)
	if len(body) < 8 {
		return 0, 0, "", fmt.Errorf("objfile: short T record %q", body)
	}
	s, err := strconv.ParseUint(body[0:6], 16, 32)
	if err != nil {
		return 0, 0, "", fmt.Errorf("objfile: bad T start %q: %w", body[0:6], err)
	}
	l, err := strconv.ParseUint(body[6:8], 16, 32)
	if err != nil {
		return 0, 0, "", fmt.Errorf("objfile: bad T length %q: %w", body[6:8], err)
	}
	return uint32(s), uint32(l), body[8:], nil
}

// ParseModification parses an M record body.
func ParseModification(body string) (Modification, error) {
	body = clean(body)
	if len(body) < 8 {
		return Modification{}, fmt.Errorf("objfile: short M record %q", body)
	}
	addr, err := strconv.ParseUint(body[0:6], 16, 32)
	if err != nil {
		return Modification{}, fmt.Errorf("objfile: bad M address %q: %w", body[0:6], err)
	}
	halfBytes, err := strconv.ParseUint(body[6:8], 16, 32)
	if err != nil {
		return Modification{}, fmt.Errorf("objfile: bad M halfbyte length %q: %w", body[6:8], err)
	}
	m := Modification{Address: uint32(addr), HalfByteLength: uint32(halfBytes)}
	if len(body) > 8 {
		m.Sign = body[8]
		m.Variable = body[9:]
	}
	return m, nil
}

// ParseEnd parses an E record body.
func ParseEnd(body string) (End, error) {
	body = clean(body)
	if len(body) < 6 {
		return End{}, fmt.Errorf("objfile: short E record %q", body)
	}
	start, err := strconv.ParseUint(body[0:6], 16, 32)
	if err != nil {
		return End{}, fmt.Errorf("objfile: bad E start %q: %w", body[0:6], err)
	}
	return End{FirstExecutableAddr: uint32(start)}, nil
}
