package parser

import (
	"fmt"
	"strings"
	"sync"
)

// Literal is a single literal-table entry (§3). Address is nil until
// the pool containing it is materialized at LTORG or END; once set it
// is immutable.
type Literal struct {
	Text        string // as written, e.g. =C'EOF' or =X'1A'
	HexValue    string // uppercase hex encoding of the literal's bytes
	LengthBytes uint32
	Address     *uint32
}

// LiteralTable holds every literal referenced by a program, deduped by
// text, guarded by a mutex for the same reason as SymbolTable.
type LiteralTable struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Literal
	pending []string // referenced but not yet materialized, in reference order
}

// NewLiteralTable returns an empty table.
func NewLiteralTable() *LiteralTable {
	return &LiteralTable{entries: make(map[string]*Literal)}
}

// Reference records a use of literal text, parsing its hex value and
// byte length, and queues it for the next LTORG/END if not already
// materialized or pending. It is a no-op if the literal was already
// referenced.
func (t *LiteralTable) Reference(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[text]; ok {
		return nil
	}
	hexValue, length, err := literalBytes(text)
	if err != nil {
		return err
	}
	lit := &Literal{Text: text, HexValue: hexValue, LengthBytes: length}
	t.entries[text] = lit
	t.order = append(t.order, text)
	t.pending = append(t.pending, text)
	return nil
}

// MaterializePending assigns addresses to every literal referenced but
// not yet materialized, starting at startAddr, packing them
// contiguously. It returns the address one past the last literal (the
// new LOCCTR) and clears the pending queue.
func (t *LiteralTable) MaterializePending(startAddr uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	addr := startAddr
	for _, text := range t.pending {
		lit := t.entries[text]
		a := addr
		lit.Address = &a
		addr += lit.LengthBytes
	}
	t.pending = nil
	return addr
}

// Lookup returns a copy of the literal entry for text, if referenced.
func (t *LiteralTable) Lookup(text string) (Literal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	lit, ok := t.entries[text]
	if !ok {
		return Literal{}, false
	}
	return *lit, true
}

// All returns every literal in reference order, for snapshots/dumps.
func (t *LiteralTable) All() []Literal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Literal, 0, len(t.order))
	for _, text := range t.order {
		out = append(out, *t.entries[text])
	}
	return out
}

// literalBytes parses a literal's text (=C'...' or =X'...') into its
// uppercase hex encoding and byte length.
func literalBytes(text string) (hexValue string, length uint32, err error) {
	body := strings.TrimPrefix(text, "=")
	if len(body) < 3 || body[1] != '\'' || body[len(body)-1] != '\'' {
		return "", 0, fmt.Errorf("malformed literal %q", text)
	}
	kind := body[0]
	inner := body[2 : len(body)-1]
	switch kind {
	case 'C', 'c':
		var sb strings.Builder
		for _, r := range inner {
			fmt.Fprintf(&sb, "%02X", byte(r))
		}
		return sb.String(), uint32(len(inner)), nil
	case 'X', 'x':
		hex := strings.ToUpper(inner)
		if len(hex)%2 != 0 {
			hex = "0" + hex
		}
		return hex, uint32(len(hex) / 2), nil
	default:
		return "", 0, fmt.Errorf("unknown literal kind %q in %q", kind, text)
	}
}

// ByteLength reports the byte length a BYTE directive operand occupies,
// per §4.D: character count for C'...', ceil(hex digits/2) for X'...'.
// This is the corrected form of the buggy len(operand)-3 formula the
// original draft used.
func ByteLength(operand string) (uint32, error) {
	if len(operand) < 3 || operand[1] != '\'' || operand[len(operand)-1] != '\'' {
		return 0, fmt.Errorf("malformed BYTE operand %q", operand)
	}
	kind := operand[0]
	inner := operand[2 : len(operand)-1]
	switch kind {
	case 'C', 'c':
		return uint32(len(inner)), nil
	case 'X', 'x':
		return uint32((len(inner) + 1) / 2), nil
	default:
		return 0, fmt.Errorf("unknown BYTE operand kind %q in %q", kind, operand)
	}
}

// ByteValues returns the raw bytes a BYTE directive operand encodes.
func ByteValues(operand string) ([]byte, error) {
	if len(operand) < 3 || operand[1] != '\'' || operand[len(operand)-1] != '\'' {
		return nil, fmt.Errorf("malformed BYTE operand %q", operand)
	}
	kind := operand[0]
	inner := operand[2 : len(operand)-1]
	switch kind {
	case 'C', 'c':
		return []byte(inner), nil
	case 'X', 'x':
		hex := strings.ToUpper(inner)
		if len(hex)%2 != 0 {
			hex = "0" + hex
		}
		out := make([]byte, len(hex)/2)
		for i := range out {
			var b byte
			if _, err := fmt.Sscanf(hex[i*2:i*2+2], "%02X", &b); err != nil {
				return nil, fmt.Errorf("bad hex in BYTE operand %q: %w", operand, err)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown BYTE operand kind %q in %q", kind, operand)
	}
}
