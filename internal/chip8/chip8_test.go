package chip8

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gochip8/internal/cpu"
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/emulator"
)

func TestNew(t *testing.T) {
	c, err := New([]byte{0x6A, 0x3F})
	require.NoError(t, err)
	assert.Equal(t, uint16(mmu.ProgramStart), c.CPU.PC)
	b, _ := c.MMU.Read(mmu.ProgramStart)
	assert.Equal(t, uint8(0x6A), b)

	_, err = New(make([]byte, mmu.MaxROMSize+1))
	assert.True(t, errors.Is(err, mmu.ErrROMTooLarge))

	_, err = New(nil, Speed(0))
	assert.Error(t, err)
	_, err = New(nil, InstructionsPerTick(0))
	assert.Error(t, err)
}

func TestChip8_KeyWaitAcrossFrames(t *testing.T) {
	// LD V3, K; JP $202
	c, err := New([]byte{0xF3, 0x0A, 0x12, 0x02})
	require.NoError(t, err)
	c.Timer.Delay = 5

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Frame())
		assert.Equal(t, uint16(0x200), c.CPU.PC, "key-wait must not advance")
		assert.Equal(t, uint8(0), c.CPU.V[3])
	}
	assert.Equal(t, uint8(2), c.Timer.Delay, "timers keep running during key-wait")

	c.Keypad.Press(0x7)
	require.NoError(t, c.Frame())
	assert.Equal(t, uint16(0x202), c.CPU.PC)
	assert.Equal(t, uint8(0x7), c.CPU.V[3])
}

func TestChip8_Fault(t *testing.T) {
	c, err := New([]byte{0x00, 0xEE})
	require.NoError(t, err)

	err = c.Frame()
	var fault *cpu.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x00EE), fault.Opcode)
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
}

func TestChip8_Reset(t *testing.T) {
	c, err := New([]byte{0x6A, 0x3F, 0x12, 0x02})
	require.NoError(t, err)
	require.NoError(t, c.Frame())
	require.NoError(t, c.MMU.Write(0x300, 0xAA))
	c.Keypad.Press(1)

	c.Reset()
	assert.Equal(t, uint8(0), c.CPU.V[0xA])
	assert.Equal(t, uint16(0x200), c.CPU.PC)
	b, _ := c.MMU.Read(0x300)
	assert.Equal(t, uint8(0), b)
	b, _ = c.MMU.Read(0x200)
	assert.Equal(t, uint8(0x6A), b)
	assert.False(t, c.Keypad.Pressed(1))
}

func TestChip8_State(t *testing.T) {
	// LD I, $050; DRW V0, V1, 5; JP $204
	rom := []byte{0xA0, 0x50, 0xD0, 0x15, 0x12, 0x04}
	c, err := New(rom, WithRandom(func() uint8 { return 4 }))
	require.NoError(t, err)
	c.Timer.Delay = 9
	require.NoError(t, c.Frame())
	saved := c.SaveState()

	restored, err := New(rom, WithState(saved))
	require.NoError(t, err)
	assert.Equal(t, c.CPU.PC, restored.CPU.PC)
	assert.Equal(t, c.CPU.I, restored.CPU.I)
	assert.Equal(t, c.Timer.Delay, restored.Timer.Delay)
	assert.True(t, restored.Video.Pixel(0, 0))
	assert.Equal(t, c.MMU.Bytes(), restored.MMU.Bytes())

	t.Run("invalid", func(t *testing.T) {
		before := restored.SaveState()
		err := restored.LoadState([]byte("nope"))
		assert.True(t, errors.Is(err, ErrInvalidState))

		err = restored.LoadState(saved[:len(saved)/2])
		assert.True(t, errors.Is(err, ErrInvalidState))
		assert.Equal(t, before, restored.SaveState(), "failed load leaves machine untouched")
	})
}

func TestChip8_Commands(t *testing.T) {
	c, err := New([]byte{0x6A, 0x3F, 0x12, 0x02}, WithSaveFolder(t.TempDir()))
	require.NoError(t, err)

	var sound []bool
	c.AttachSoundListener(func(active bool) { sound = append(sound, active) })
	c.Timer.SetSound(10)
	assert.Equal(t, []bool{true}, sound)

	resp := c.handleCommand(emulator.CommandPacket{Command: emulator.CommandPause})
	require.NoError(t, resp.Error)
	assert.Equal(t, emulator.Paused, c.Status())
	assert.Equal(t, []bool{true, false}, sound, "pausing silences the tone")

	c.handleCommand(emulator.CommandPacket{Command: emulator.CommandResume})
	assert.Equal(t, emulator.Running, c.Status())
	assert.Equal(t, []bool{true, false, true}, sound)

	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.CommandSetSpeed, Data: emulator.SpeedData(2)})
	require.NoError(t, resp.Error)
	assert.Equal(t, 2.0, c.Speed())

	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.CommandSetSpeed, Data: emulator.SpeedData(-1)})
	assert.Error(t, resp.Error)

	require.NoError(t, c.Frame())
	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.CommandSaveState})
	require.NoError(t, resp.Error)
	_, err = os.Stat(string(resp.Data))
	require.NoError(t, err)

	c.CPU.V[0xA] = 0
	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.CommandLoadState})
	require.NoError(t, resp.Error)
	assert.Equal(t, uint8(0x3F), c.CPU.V[0xA])

	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.CommandLoadROM, Data: []byte{0x6B, 0x01}})
	require.NoError(t, resp.Error)
	b, _ := c.MMU.Read(0x200)
	assert.Equal(t, uint8(0x6B), b)
	assert.Equal(t, uint8(0), c.CPU.V[0xA])

	resp = c.handleCommand(emulator.CommandPacket{Command: emulator.Command(99)})
	assert.True(t, errors.Is(resp.Error, emulator.ErrUnknownCommand))
}

func TestChip8_Start(t *testing.T) {
	// LD I, $050; DRW V0, V1, 5; JP $204
	c, err := New([]byte{0xA0, 0x50, 0xD0, 0x15, 0x12, 0x04}, Speed(4))
	require.NoError(t, err)

	fb := make(chan []byte, 60)
	events := make(chan event.Event, 60)
	pressed := make(chan keypad.Key, 10)
	released := make(chan keypad.Key, 10)

	result := make(chan error, 1)
	go func() { result <- c.Start(fb, events, pressed, released) }()

	select {
	case frame := <-fb:
		assert.Equal(t, uint8(0xFF), frame[0], "glyph 0 lights the top left pixel")
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}

	resp := c.SendCommand(emulator.CommandPacket{Command: emulator.CommandPause})
	require.NoError(t, resp.Error)
	assert.Equal(t, emulator.Paused, c.Status())
	assert.Equal(t, "gochip8 | 4.00x | Paused", c.Title())

	resp = c.SendCommand(emulator.CommandPacket{Command: emulator.CommandClose})
	require.NoError(t, resp.Error)
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after close")
	}
	assert.Equal(t, emulator.Halted, c.Status())

	var sawQuit bool
	for len(events) > 0 {
		if e := <-events; e.Type == event.Quit {
			sawQuit = true
		}
	}
	assert.True(t, sawQuit)

	resp = c.SendCommand(emulator.CommandPacket{Command: emulator.CommandResume})
	assert.Error(t, resp.Error, "commands fail once stopped")
}

func TestChip8_StartFault(t *testing.T) {
	c, err := New([]byte{0x00, 0xEE}, Speed(4))
	require.NoError(t, err)

	events := make(chan event.Event, 60)
	err = c.Start(make(chan []byte, 1), events, nil, nil)
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.Equal(t, emulator.Errored, c.Status())

	var fatal error
	for len(events) > 0 {
		if e := <-events; e.Type == event.Fatal {
			fatal = e.Data.(error)
		}
	}
	assert.Equal(t, err, fatal)
}

// stubDriver returns err from Start once it has seen an event of type
// until.
type stubDriver struct {
	emu   display.Emulator
	until event.Type
	err   error
}

func (d *stubDriver) Initialize(e display.Emulator) { d.emu = e }

func (d *stubDriver) Start(_ <-chan []byte, events <-chan event.Event, _, _ chan<- keypad.Key) error {
	for e := range events {
		if e.Type == d.until {
			break
		}
	}
	return d.err
}

func (d *stubDriver) Stop() error { return nil }

func runWithTimeout(t *testing.T, c *Chip8, d display.Driver) error {
	t.Helper()
	result := make(chan error, 1)
	go func() { result <- c.Run(d) }()
	select {
	case err := <-result:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestChip8_Run(t *testing.T) {
	t.Run("fault", func(t *testing.T) {
		c, err := New([]byte{0x00, 0xEE}, Speed(4))
		require.NoError(t, err)
		d := &stubDriver{until: event.Fatal}

		err = runWithTimeout(t, c, d)
		assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
		assert.Equal(t, c, d.emu)
		assert.Equal(t, emulator.Errored, c.Status())
	})
	t.Run("driver quits", func(t *testing.T) {
		// JP $200
		c, err := New([]byte{0x12, 0x00}, Speed(4))
		require.NoError(t, err)

		err = runWithTimeout(t, c, &stubDriver{until: event.Title})
		assert.NoError(t, err)
		assert.Equal(t, emulator.Halted, c.Status())
	})
	t.Run("driver error", func(t *testing.T) {
		c, err := New([]byte{0x12, 0x00}, Speed(4))
		require.NoError(t, err)
		failed := errors.New("no display")

		err = runWithTimeout(t, c, &stubDriver{until: event.Title, err: failed})
		assert.Equal(t, failed, err)
		assert.Equal(t, emulator.Halted, c.Status())
	})
}
