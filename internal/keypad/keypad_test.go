package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	s := New()

	_, ok := s.FirstPressed()
	assert.False(t, ok)

	s.Press(0xB)
	s.Press(0x3)
	k, ok := s.FirstPressed()
	assert.True(t, ok)
	assert.Equal(t, Key(0x3), k, "lowest key wins")

	s.Release(0x3)
	k, _ = s.FirstPressed()
	assert.Equal(t, Key(0xB), k)

	assert.True(t, s.Pressed(0xB))
	assert.True(t, s.Pressed(0x1B), "only the low nibble selects a key")

	s.Press(0x20)
	s.Release(0x20)
	s.Reset()
	_, ok = s.FirstPressed()
	assert.False(t, ok)
}
