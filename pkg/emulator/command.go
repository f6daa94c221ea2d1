package emulator

import (
	"encoding/binary"
	"errors"
	"math"
)

// CommandPacket is a command packet that is sent to the
// emulator to control it.
type CommandPacket struct {
	Command Command
	Data    []byte
}

// Command is a command that is sent to the emulator to
// control it.
type Command int

// ResponsePacket is a response packet that is sent
// from the emulator to the client.
type ResponsePacket struct {
	Command Command
	Data    []byte
	Error   error
}

const (
	// CommandPause pauses the emulator.
	CommandPause Command = iota
	// CommandResume resumes the emulator.
	CommandResume
	// CommandClose closes the emulator.
	CommandClose
	// CommandReset resets the emulator, reloading the ROM.
	CommandReset
	// CommandLoadROM replaces the running ROM with Data.
	CommandLoadROM
	// CommandSaveState writes the machine state to disk. The
	// response carries the path that was written.
	CommandSaveState
	// CommandLoadState restores the machine state from disk, or
	// from Data when it is non-empty.
	CommandLoadState
	// CommandSetSpeed sets the speed of the emulator, see SpeedData.
	CommandSetSpeed
)

var commandNames = map[Command]string{
	CommandPause:     "Pause",
	CommandResume:    "Resume",
	CommandClose:     "Close",
	CommandReset:     "Reset",
	CommandLoadROM:   "LoadROM",
	CommandSaveState: "SaveState",
	CommandLoadState: "LoadState",
	CommandSetSpeed:  "SetSpeed",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "Unknown"
}

// ErrUnknownCommand is returned in a ResponsePacket for a
// command the emulator does not understand.
var ErrUnknownCommand = errors.New("unknown command")

// SpeedData encodes a speed multiplier for CommandSetSpeed.
func SpeedData(speed float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(speed))
	return b
}

// ParseSpeed decodes the data of a CommandSetSpeed packet.
func ParseSpeed(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, errors.New("speed data must be 8 bytes")
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}
