package mmu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gochip8/internal/types"
)

func TestMMU_Font(t *testing.T) {
	m := NewMMU()

	// glyph "0" starts the font region, glyph "F" ends it
	zero, err := m.Slice(GlyphAddress(0), FontHeight)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}, zero)

	f, err := m.Slice(GlyphAddress(0xF), FontHeight)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x80, 0xF0, 0x80, 0x80}, f)
	assert.Equal(t, uint16(0x09B), GlyphAddress(0xF))

	// nothing outside the font region is initialised
	for addr := uint16(0); addr < FontAddress; addr++ {
		v, _ := m.Read(addr)
		if v != 0 {
			t.Fatalf("Expected 0x%03X to be zero, got 0x%02X", addr, v)
		}
	}
}

func TestMMU_LoadROM(t *testing.T) {
	t.Run("copies to program start", func(t *testing.T) {
		m := NewMMU()
		require.NoError(t, m.LoadROM([]byte{0x12, 0x34, 0x56}))

		op, err := m.Read16(ProgramStart)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x1234), op)

		v, _ := m.Read(ProgramStart + 2)
		assert.Equal(t, uint8(0x56), v)
	})
	t.Run("fills memory exactly", func(t *testing.T) {
		m := NewMMU()
		rom := make([]byte, MaxROMSize)
		rom[len(rom)-1] = 0xAA
		require.NoError(t, m.LoadROM(rom))

		v, err := m.Read(Size - 1)
		require.NoError(t, err)
		assert.Equal(t, uint8(0xAA), v)
	})
	t.Run("too large", func(t *testing.T) {
		m := NewMMU()
		err := m.LoadROM(make([]byte, MaxROMSize+1))
		assert.ErrorIs(t, err, ErrROMTooLarge)
	})
}

func TestMMU_Bounds(t *testing.T) {
	m := NewMMU()

	_, err := m.Read(Size)
	assert.ErrorIs(t, err, ErrAddressOutOfRange)

	assert.ErrorIs(t, m.Write(0xFFFF, 1), ErrAddressOutOfRange)

	// the second byte of the word is out of range
	_, err = m.Read16(Size - 1)
	assert.ErrorIs(t, err, ErrAddressOutOfRange)

	_, err = m.Slice(Size-2, 3)
	assert.ErrorIs(t, err, ErrAddressOutOfRange)

	s, err := m.Slice(Size-2, 2)
	assert.NoError(t, err)
	assert.Len(t, s, 2)
}

func TestMMU_State(t *testing.T) {
	m := NewMMU()
	require.NoError(t, m.Write(0x300, 0x42))

	st := types.NewState()
	m.Save(st)

	other := NewMMU()
	other.Load(types.StateFromBytes(st.Bytes()))

	v, _ := other.Read(0x300)
	assert.Equal(t, uint8(0x42), v)
	assert.Equal(t, m.Bytes(), other.Bytes())
}
