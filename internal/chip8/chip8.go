// Package chip8 ties the CHIP-8 components together into a machine
// and drives it: instructions are executed in bursts between 60 Hz
// timer ticks, frames are handed to a display driver whenever the
// display buffer changes, and key events and control commands are
// serviced on every tick.
package chip8

import (
	"fmt"
	"sync"
	"time"

	"github.com/thelolagemann/gochip8/internal/cpu"
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/internal/timer"
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/emulator"
	"github.com/thelolagemann/gochip8/pkg/log"
)

const (
	// TickRate is the rate at which the timers count down, and the
	// rate Start runs frames at when speed is 1.
	TickRate = 60
	// DefaultInstructionsPerTick is the number of instructions
	// executed between timer ticks (600 instructions per second).
	DefaultInstructionsPerTick = 10
)

// Chip8 represents a complete CHIP-8 machine.
type Chip8 struct {
	CPU    *cpu.CPU
	MMU    *mmu.MMU
	Video  *video.Framebuffer
	Keypad *keypad.State
	Timer  *timer.Controller

	Logger log.Logger

	rom                 []byte
	title               string
	instructionsPerTick int
	saveFolder          string

	mu     sync.Mutex
	speed  float64
	status emulator.Status

	soundListeners []timer.SoundListener

	commands chan commandRequest
	done     chan struct{}
}

type commandRequest struct {
	packet   emulator.CommandPacket
	response chan emulator.ResponsePacket
}

// New creates a new machine with rom loaded at mmu.ProgramStart.
// Options are applied after the ROM has been loaded, so WithState
// may override the freshly loaded memory.
func New(rom []byte, opts ...Opt) (*Chip8, error) {
	c := &Chip8{
		MMU:                 mmu.NewMMU(),
		Video:               video.New(),
		Keypad:              keypad.New(),
		Timer:               timer.NewController(),
		Logger:              log.NewNullLogger(),
		rom:                 rom,
		title:               "gochip8",
		instructionsPerTick: DefaultInstructionsPerTick,
		saveFolder:          emulator.SaveFolder,
		speed:               1,
		status:              emulator.Running,
		commands:            make(chan commandRequest),
		done:                make(chan struct{}),
	}
	c.CPU = cpu.NewCPU(c.MMU, c.Video, c.Keypad, c.Timer, c.Logger)

	if err := c.MMU.LoadROM(rom); err != nil {
		return nil, err
	}

	var optErr error
	for _, opt := range opts {
		if err := opt(c); err != nil && optErr == nil {
			optErr = err
		}
	}
	if optErr != nil {
		return nil, optErr
	}

	return c, nil
}

// Step executes a single instruction.
func (c *Chip8) Step() error {
	return c.CPU.Step()
}

// Tick advances the timers by one tick.
func (c *Chip8) Tick() {
	c.Timer.Tick()
}

// Frame executes one tick worth of instructions and then ticks the
// timers. A key-wait simply stalls on the same instruction, so the
// timers keep counting down while the program waits for input.
func (c *Chip8) Frame() error {
	for i := 0; i < c.instructionsPerTick; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	c.Tick()
	return nil
}

// Reset reinitialises every component and reloads the ROM.
func (c *Chip8) Reset() {
	c.MMU.Reset()
	// the ROM was validated when it was first loaded
	_ = c.MMU.LoadROM(c.rom)
	c.CPU.Reset()
	c.Video.Reset()
	c.Keypad.Reset()
	c.Timer.Reset()
	c.setStatus(emulator.Running)
}

// AttachSoundListener registers l to be told when the tone should
// start or stop. Listeners are silenced while the machine is paused.
func (c *Chip8) AttachSoundListener(l timer.SoundListener) {
	c.soundListeners = append(c.soundListeners, l)
	c.Timer.AttachSoundListener(func(active bool) {
		if c.Status() == emulator.Running {
			l(active)
		}
	})
}

func (c *Chip8) notifySound(active bool) {
	for _, l := range c.soundListeners {
		l(active)
	}
}

// Speed returns the speed multiplier of the emulator.
func (c *Chip8) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Status returns the status of the emulator.
func (c *Chip8) Status() emulator.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Chip8) setStatus(s emulator.Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Chip8) tickInterval() time.Duration {
	return time.Duration(float64(time.Second) / (TickRate * c.Speed()))
}

// Title returns the window title for the current state.
func (c *Chip8) Title() string {
	t := fmt.Sprintf("%s | %.2fx", c.title, c.Speed())
	if s := c.Status(); s != emulator.Running {
		t += " | " + s.String()
	}
	return t
}

// SendCommand sends a command to a running emulator and waits for
// it to be processed. Commands are handled between frames by Start.
func (c *Chip8) SendCommand(command emulator.CommandPacket) emulator.ResponsePacket {
	req := commandRequest{packet: command, response: make(chan emulator.ResponsePacket, 1)}
	select {
	case c.commands <- req:
		return <-req.response
	case <-c.done:
		return emulator.ResponsePacket{
			Command: command.Command,
			Error:   fmt.Errorf("emulator is %s", c.Status()),
		}
	}
}

// Start runs the machine until it is closed or faults, pacing frames
// at TickRate times the speed. Frames are sent on fb whenever the
// display changed, key events are read from pressed and released.
// The fault that stopped the machine, if any, is returned.
func (c *Chip8) Start(fb chan<- []byte, events chan<- event.Event, pressed, released <-chan keypad.Key) error {
	defer close(c.done)

	ticker := time.NewTicker(c.tickInterval())
	defer ticker.Stop()

	c.Logger.Infof("starting %s at %.2fx", c.title, c.Speed())
	sendEvent(events, event.Event{Type: event.Title, Data: c.Title()})

	frames := 0
	frameTime := time.Duration(0)
	start := time.Now()
	last := time.Now()

	for {
		select {
		case req := <-c.commands:
			wasSpeed := c.Speed()
			resp := c.handleCommand(req.packet)
			req.response <- resp
			if c.Speed() != wasSpeed {
				ticker.Reset(c.tickInterval())
			}
			sendEvent(events, event.Event{Type: event.Title, Data: c.Title()})

			if req.packet.Command == emulator.CommandClose {
				sendEvent(events, event.Event{Type: event.Quit})
				return nil
			}
		case k := <-pressed:
			c.Keypad.Press(k)
		case k := <-released:
			c.Keypad.Release(k)
		case <-ticker.C:
			if c.Status() != emulator.Running {
				continue
			}

			if err := c.Frame(); err != nil {
				c.setStatus(emulator.Errored)
				c.notifySound(false)
				c.Logger.Errorf("%v", err)
				sendEvent(events, event.Event{Type: event.Fatal, Data: err})
				sendEvent(events, event.Event{Type: event.Title, Data: c.Title()})
				return err
			}

			if c.Video.Dirty() {
				frame := make([]byte, video.FrameSize)
				c.Video.PrepareFrame(frame)
				select {
				case fb <- frame:
				default:
					// driver is behind, retry next tick
					c.Video.Invalidate()
				}
			}

			frames++
			frameTime += time.Since(last)
			last = time.Now()
			if time.Since(start) > time.Second {
				sendEvent(events, event.Event{Type: event.FrameTime, Data: frameTime / time.Duration(frames)})
				frames, frameTime = 0, 0
				start = time.Now()
			}
		}
	}
}

// sendEvent delivers e without blocking the machine on a slow driver.
func sendEvent(events chan<- event.Event, e event.Event) {
	select {
	case events <- e:
	default:
	}
}
