package chip8

import (
	"errors"

	"github.com/thelolagemann/gochip8/pkg/log"
)

// Opt is a function that modifies a Chip8
// instance.
type Opt func(c *Chip8) error

// Debug logs every executed instruction at debug level.
func Debug() Opt {
	return func(c *Chip8) error {
		c.CPU.Debug = true
		return nil
	}
}

func WithLogger(log log.Logger) Opt {
	return func(c *Chip8) error {
		c.Logger = log
		c.CPU.SetLogger(log)
		return nil
	}
}

// WithState restores a state previously produced by SaveState.
func WithState(b []byte) Opt {
	return func(c *Chip8) error {
		return c.LoadState(b)
	}
}

// WithTitle sets the name shown in the window title, usually the
// ROM's file name.
func WithTitle(title string) Opt {
	return func(c *Chip8) error {
		c.title = title
		return nil
	}
}

// WithSaveFolder sets the folder state files are written to.
func WithSaveFolder(dir string) Opt {
	return func(c *Chip8) error {
		c.saveFolder = dir
		return nil
	}
}

// WithRandom replaces the source of random bytes used by CXNN.
func WithRandom(fn func() uint8) Opt {
	return func(c *Chip8) error {
		c.CPU.Rand = fn
		return nil
	}
}

// IndexOverflowFlag controls whether FX1E sets VF when the index
// leaves the address space. It is enabled by default.
func IndexOverflowFlag(enabled bool) Opt {
	return func(c *Chip8) error {
		c.CPU.IndexOverflowFlag = enabled
		return nil
	}
}

// InstructionsPerTick sets how many instructions are executed
// between timer ticks.
func InstructionsPerTick(n int) Opt {
	return func(c *Chip8) error {
		if n < 1 {
			return errors.New("instructions per tick must be at least 1")
		}
		c.instructionsPerTick = n
		return nil
	}
}

func Speed(speed float64) Opt {
	return func(c *Chip8) error {
		if speed <= 0 {
			return errors.New("speed must be positive")
		}
		c.speed = speed
		return nil
	}
}
