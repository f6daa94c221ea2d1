// Package keypad provides the 16 key hexadecimal keypad of the
// CHIP-8. The keypad is only ever written by an input adapter,
// the interpreter only reads it.
package keypad

import "github.com/thelolagemann/gochip8/internal/types"

// Key represents a key on the keypad, 0x0 - 0xF.
type Key = uint8

// Keys is the number of keys on the keypad.
const Keys = 16

// State represents the state of the keypad.
//
//	+-+-+-+-+
//	|1|2|3|C|
//	+-+-+-+-+
//	|4|5|6|D|
//	+-+-+-+-+
//	|7|8|9|E|
//	+-+-+-+-+
//	|A|0|B|F|
//	+-+-+-+-+
type State struct {
	keys [Keys]bool
}

// New returns a new keypad state with every key released.
func New() *State {
	return &State{}
}

// Press presses a key. Keys outside 0x0 - 0xF are ignored.
func (s *State) Press(k Key) {
	if k < Keys {
		s.keys[k] = true
	}
}

// Release releases a key. Keys outside 0x0 - 0xF are ignored.
func (s *State) Release(k Key) {
	if k < Keys {
		s.keys[k] = false
	}
}

// Pressed reports whether the key is held. Only the low nibble
// of k is used.
func (s *State) Pressed(k Key) bool {
	return s.keys[k&0xF]
}

// FirstPressed returns the lowest held key.
func (s *State) FirstPressed() (Key, bool) {
	for k, down := range s.keys {
		if down {
			return Key(k), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (s *State) Reset() {
	s.keys = [Keys]bool{}
}

var _ types.Stater = (*State)(nil)

func (s *State) Load(st *types.State) {
	for i := range s.keys {
		s.keys[i] = st.ReadBool()
	}
}

func (s *State) Save(st *types.State) {
	for _, down := range s.keys {
		st.WriteBool(down)
	}
}
