// Package mmu provides the 4kB memory of the CHIP-8. The MMU is
// unaware of the other components; every access is bounds checked
// so that a malformed program surfaces an error rather than reading
// or writing outside of the address space.
package mmu

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/gochip8/internal/types"
)

const (
	// Size is the size of the address space in bytes.
	Size = 0x1000

	// FontAddress is where the built-in hexadecimal glyphs start.
	FontAddress = 0x050
	// FontHeight is the number of bytes per glyph.
	FontHeight = 5

	// ProgramStart is the address a ROM is loaded to, and the
	// initial value of the program counter.
	ProgramStart = 0x200
	// MaxROMSize is the largest ROM that fits above ProgramStart.
	MaxROMSize = Size - ProgramStart
)

var (
	// ErrAddressOutOfRange is returned for any access at or above Size.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrROMTooLarge is returned when a ROM does not fit in memory.
	ErrROMTooLarge = errors.New("rom too large")
)

// MMU is the memory of the CHIP-8.
//
//	0x000 - 0x1FF - Interpreter (font glyphs at 0x050 - 0x09F)
//	0x200 - 0xFFF - Program ROM and work RAM
type MMU struct {
	raw [Size]byte
}

// NewMMU returns a new MMU with the font loaded.
func NewMMU() *MMU {
	m := &MMU{}
	m.Reset()
	return m
}

// Reset zeroes memory and reloads the font.
func (m *MMU) Reset() {
	m.raw = [Size]byte{}
	copy(m.raw[FontAddress:], font[:])
}

// LoadROM copies rom verbatim into memory starting at ProgramStart.
func (m *MMU) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(m.raw[ProgramStart:], rom)
	return nil
}

// Read returns the byte at the given address.
func (m *MMU) Read(address uint16) (uint8, error) {
	if int(address) >= Size {
		return 0, outOfRange(int(address))
	}
	return m.raw[address], nil
}

// Write writes the byte to the given address.
func (m *MMU) Write(address uint16, value uint8) error {
	if int(address) >= Size {
		return outOfRange(int(address))
	}
	m.raw[address] = value
	return nil
}

// Read16 reads a big-endian word. Both bytes must be in range.
func (m *MMU) Read16(address uint16) (uint16, error) {
	if int(address)+1 >= Size {
		return 0, outOfRange(int(address) + 1)
	}
	return uint16(m.raw[address])<<8 | uint16(m.raw[address+1]), nil
}

// Slice returns the n bytes starting at address. The returned slice
// aliases memory, so writes to it are writes to memory.
func (m *MMU) Slice(address uint16, n int) ([]byte, error) {
	end := int(address) + n
	if end > Size {
		return nil, outOfRange(end - 1)
	}
	return m.raw[address:end], nil
}

// Bytes returns a copy of the whole address space.
func (m *MMU) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, m.raw[:])
	return b
}

func outOfRange(address int) error {
	return fmt.Errorf("%w: 0x%04X", ErrAddressOutOfRange, address)
}

var _ types.Stater = (*MMU)(nil)

func (m *MMU) Load(s *types.State) {
	s.ReadData(m.raw[:])
}

func (m *MMU) Save(s *types.State) {
	s.WriteData(m.raw[:])
}
