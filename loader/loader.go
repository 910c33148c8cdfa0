// Package loader implements component F: parsing an object-program
// text into records (delegated to objfile) and segmenting each text
// record's object-code digit string into individually sized
// instructions by opcode lookup.
package loader

import (
	"fmt"
	"strconv"

	"github.com/sicsim/sicsim/objfile"
	"github.com/sicsim/sicsim/opcode"
)

// Kind classifies a loader failure (§7's LoaderError variants). All are
// lenient: the loader skips the offending line and continues.
type Kind int

const (
	KindShortRecord Kind = iota
	KindBadHex
)

func (k Kind) String() string {
	switch k {
	case KindShortRecord:
		return "LoaderError::ShortRecord"
	case KindBadHex:
		return "LoaderError::BadHex"
	default:
		return "LoaderError"
	}
}

// Warning is a non-fatal loader diagnostic.
type Warning struct {
	Kind    Kind
	Message string
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Segment is one decoded instruction's raw object-code digit string
// (2/4/6/8 hex characters), located at Address.
type Segment struct {
	Address uint32
	Objcode string
}

// Load parses an object-program text and segments every text record's
// body into per-instruction object codes.
func Load(text string) (*objfile.Program, []Segment, []error) {
	prog, warnings := objfile.ParseProgram(text)

	var segments []Segment
	for _, t := range prog.Text {
		addr := t.Start
		for _, digits := range t.Objcodes {
			segs, w := segmentText(addr, digits)
			segments = append(segments, segs...)
			warnings = append(warnings, w...)
			for _, s := range segs {
				addr = s.Address + uint32(len(s.Objcode)/2)
			}
		}
	}
	return prog, segments, warnings
}

// segmentText implements §4.F's segmentation policy: try format-1/2
// exact opcode match first; on miss, mask the low two bits (n/i flags)
// and check format-3/4 by the e-bit of the decoded flags byte. Unknown
// opcodes are skipped two hex characters at a time with a warning
// rather than desynchronizing the rest of the record.
func segmentText(start uint32, digits string) ([]Segment, []error) {
	var segs []Segment
	var warnings []error
	addr := start
	i := 0
	for i+2 <= len(digits) {
		b, err := hexByte(digits[i : i+2])
		if err != nil {
			warnings = append(warnings, Warning{Kind: KindBadHex, Message: err.Error()})
			i += 2
			continue
		}

		if _, ok := opcode.ReverseFormat1(b); ok {
			segs = append(segs, take(&addr, digits, &i, 2))
			continue
		}
		if _, ok := opcode.ReverseFormat2(b); ok {
			if i+4 > len(digits) {
				warnings = append(warnings, Warning{Kind: KindShortRecord, Message: "truncated format-2 instruction"})
				break
			}
			segs = append(segs, take(&addr, digits, &i, 4))
			continue
		}

		masked := b &^ 0x03
		if _, ok := opcode.ReverseFormat34(masked); ok {
			// The e-bit (format-4 flag) is bit 4 (0x10) of the second
			// byte; peek it to choose 6 vs 8 hex characters.
			if i+4 > len(digits) {
				warnings = append(warnings, Warning{Kind: KindShortRecord, Message: "truncated format-3/4 instruction"})
				break
			}
			b1, err := hexByte(digits[i+2 : i+4])
			if err != nil {
				warnings = append(warnings, Warning{Kind: KindBadHex, Message: err.Error()})
				i += 2
				continue
			}
			if b1&0x10 != 0 {
				if i+8 > len(digits) {
					warnings = append(warnings, Warning{Kind: KindShortRecord, Message: "truncated format-4 instruction"})
					break
				}
				segs = append(segs, take(&addr, digits, &i, 8))
			} else {
				segs = append(segs, take(&addr, digits, &i, 6))
			}
			continue
		}

		warnings = append(warnings, Warning{Kind: KindBadHex, Message: fmt.Sprintf("unrecognized opcode byte %#x", b)})
		i += 2
		addr += 1
	}
	return segs, warnings
}

func take(addr *uint32, digits string, i *int, n int) Segment {
	s := Segment{Address: *addr, Objcode: digits[*i : *i+n]}
	*i += n
	*addr += uint32(n / 2)
	return s
}

func hexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("bad hex byte %q: %w", s, err)
	}
	return byte(v), nil
}
