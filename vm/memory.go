package vm

import "fmt"

// MemorySize is the flat address space simulated instructions run
// against (§1: "1 MiB byte-addressed memory image").
const MemorySize = 1 << 20

// Memory is the machine's flat byte-addressed store. Unlike the
// segmented multi-region memory a general-purpose emulator needs, a
// SIC/XE program addresses one contiguous image, so a single backing
// array replaces segment lookup entirely.
type Memory struct {
	bytes [MemorySize]byte
}

// NewMemory returns a zero-initialized memory image (§3: "zero-initialized
// at simulator construction").
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) checkBounds(addr uint32, n uint32) error {
	if uint64(addr)+uint64(n) > MemorySize {
		return fmt.Errorf("memory access out of range: address %#x (+%d bytes)", addr, n)
	}
	return nil
}

// ReadByte reads a single byte.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// WriteByte writes a single byte.
func (m *Memory) WriteByte(addr uint32, value byte) error {
	if err := m.checkBounds(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = value
	return nil
}

// ReadWord reads a 3-byte big-endian word per §4.H: load_word(a) =
// (M[a]<<16)|(M[a+1]<<8)|M[a+2].
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 3); err != nil {
		return 0, err
	}
	return uint32(m.bytes[addr])<<16 | uint32(m.bytes[addr+1])<<8 | uint32(m.bytes[addr+2]), nil
}

// WriteWord stores a 3-byte big-endian word, mirroring ReadWord.
func (m *Memory) WriteWord(addr uint32, value uint32) error {
	if err := m.checkBounds(addr, 3); err != nil {
		return err
	}
	m.bytes[addr] = byte(value >> 16)
	m.bytes[addr+1] = byte(value >> 8)
	m.bytes[addr+2] = byte(value)
	return nil
}

// LoadBytes copies raw bytes into memory starting at addr, as the
// loader does when placing object-code text-record segments.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	if err := m.checkBounds(addr, uint32(len(data))); err != nil {
		return err
	}
	copy(m.bytes[addr:], data)
	return nil
}
