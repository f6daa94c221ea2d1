package chip8

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/thelolagemann/gochip8/internal/types"
)

const stateVersion = 1

var stateMagic = []byte("C8ST")

// ErrInvalidState is returned when a state was not produced by
// SaveState, or by an incompatible version.
var ErrInvalidState = errors.New("invalid state")

var _ types.Stater = (*Chip8)(nil)

func (c *Chip8) Load(s *types.State) {
	c.CPU.Load(s)
	c.MMU.Load(s)
	c.Video.Load(s)
	c.Keypad.Load(s)
	c.Timer.Load(s)
}

func (c *Chip8) Save(s *types.State) {
	c.CPU.Save(s)
	c.MMU.Save(s)
	c.Video.Save(s)
	c.Keypad.Save(s)
	c.Timer.Save(s)
}

// SaveState returns a snapshot of the whole machine.
func (c *Chip8) SaveState() []byte {
	s := types.NewState()
	s.WriteData(stateMagic)
	s.Write8(stateVersion)
	c.Save(s)
	return s.Bytes()
}

// LoadState restores a snapshot produced by SaveState. If the
// snapshot is invalid the machine is left untouched.
func (c *Chip8) LoadState(b []byte) error {
	s := types.StateFromBytes(b)

	magic := make([]byte, len(stateMagic))
	s.ReadData(magic)
	if !bytes.Equal(magic, stateMagic) {
		return fmt.Errorf("%w: bad header", ErrInvalidState)
	}
	if v := s.Read8(); v != stateVersion {
		return fmt.Errorf("%w: version %d, expected %d", ErrInvalidState, v, stateVersion)
	}

	backup := types.NewState()
	c.Save(backup)

	c.Load(s)
	if err := s.Err(); err != nil {
		c.Load(types.StateFromBytes(backup.Bytes()))
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
