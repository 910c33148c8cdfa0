package parser

import (
	"sync"

	"github.com/sicsim/sicsim/lexer"
)

// Symbol is a single symbol-table entry (§3): unique by label, with an
// assigned address.
type Symbol struct {
	Label   string
	Address uint32
}

// SymbolTable is the symbol table of one assembled Program, shared by
// the assembler and (read-only, post-assembly) by debugger/api
// consumers. It is
// guarded by a mutex per §5 so a reader can snapshot it between
// simulator steps without racing the assembler thread -- mirroring the
// teacher's sync.RWMutex-guarded manager shape rather than a global.
type SymbolTable struct {
	mu      sync.RWMutex
	order   []string
	symbols map[string]*Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define inserts label->address. It fails with KindDuplicateSymbol if
// label is already defined (§4.D).
func (t *SymbolTable) Define(pos lexer.Position, label string, address uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.symbols[label]; exists {
		return newError(pos, KindDuplicateSymbol, "label %q already defined", label)
	}
	t.symbols[label] = &Symbol{Label: label, Address: address}
	t.order = append(t.order, label)
	return nil
}

// Lookup returns the symbol's address and whether it was found.
func (t *SymbolTable) Lookup(label string) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.symbols[label]
	if !ok {
		return 0, false
	}
	return s.Address, true
}

// All returns every symbol in definition order, for snapshots/dumps.
func (t *SymbolTable) All() []Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.symbols[name])
	}
	return out
}

// Count returns the number of defined symbols.
func (t *SymbolTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}
