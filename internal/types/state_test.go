package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	t.Run("write then read", func(t *testing.T) {
		s := NewState()
		s.Write8(0xAB)
		s.Write16(0x1234)
		s.WriteBool(true)
		s.WriteData([]byte{1, 2, 3})

		r := StateFromBytes(s.Bytes())
		assert.Equal(t, uint8(0xAB), r.Read8())
		assert.Equal(t, uint16(0x1234), r.Read16())
		assert.True(t, r.ReadBool())

		p := make([]byte, 3)
		r.ReadData(p)
		assert.Equal(t, []byte{1, 2, 3}, p)
		assert.NoError(t, r.Err())
	})
	t.Run("little endian", func(t *testing.T) {
		s := NewState()
		s.Write16(0x0200)
		assert.Equal(t, []byte{0x00, 0x02}, s.Bytes())
	})
	t.Run("truncated", func(t *testing.T) {
		r := StateFromBytes([]byte{0x01})
		assert.Equal(t, uint16(0), r.Read16())
		assert.ErrorIs(t, r.Err(), ErrStateTruncated)

		r.ResetPosition()
		assert.NoError(t, r.Err())
		assert.Equal(t, uint8(0x01), r.Read8())
	})
}
