package objfile

import (
	"fmt"
	"strings"
)

// ParseProgram reads a full object-program text (one record per line)
// into a Program. Malformed lines are skipped (loader errors are
// lenient per §7); callers that need strict parsing should inspect the
// returned warnings.
func ParseProgram(text string) (*Program, []error) {
	var prog Program
	var warnings []error
	sawHeader := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		kind := line[0]
		body := line[1:]
		switch kind {
		case 'H', 'h':
			h, err := ParseHeader(body)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			prog.Header = h
			sawHeader = true
		case 'T', 't':
			start, _, digits, err := ParseTextHeader(body)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			prog.Text = append(prog.Text, Text{Start: start, Objcodes: []string{digits}})
		case 'M', 'm':
			m, err := ParseModification(body)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			prog.Modifications = append(prog.Modifications, m)
		case 'E', 'e':
			e, err := ParseEnd(body)
			if err != nil {
				warnings = append(warnings, err)
				continue
			}
			prog.End = e
			if sawHeader && prog.Header.Start != e.FirstExecutableAddr {
				// Not necessarily corrupt for a loader (E's address is the
				// entry point, which may differ from Start); callers doing
				// disassembly apply the stricter §4.G check themselves.
			}
		default:
			warnings = append(warnings, fmt.Errorf("objfile: unrecognized record type %q", string(kind)))
		}
	}
	return &prog, warnings
}
