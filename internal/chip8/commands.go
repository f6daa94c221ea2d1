package chip8

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/gochip8/internal/mmu"
	"github.com/thelolagemann/gochip8/pkg/emulator"
)

// handleCommand executes a command on the machine goroutine.
func (c *Chip8) handleCommand(p emulator.CommandPacket) emulator.ResponsePacket {
	resp := emulator.ResponsePacket{Command: p.Command}

	switch p.Command {
	case emulator.CommandPause:
		c.setStatus(emulator.Paused)
		c.notifySound(false)
	case emulator.CommandResume:
		if c.Status() == emulator.Paused {
			c.setStatus(emulator.Running)
			c.notifySound(c.Timer.SoundActive())
		}
	case emulator.CommandClose:
		c.setStatus(emulator.Halted)
		c.notifySound(false)
	case emulator.CommandReset:
		c.Reset()
		c.Logger.Infof("reset")
	case emulator.CommandLoadROM:
		if len(p.Data) > mmu.MaxROMSize {
			resp.Error = fmt.Errorf("%w: %d bytes", mmu.ErrROMTooLarge, len(p.Data))
			break
		}
		c.rom = p.Data
		c.Reset()
		c.Logger.Infof("loaded %d byte ROM", len(p.Data))
	case emulator.CommandSaveState:
		path := emulator.StatePath(c.saveFolder, c.rom)
		if err := emulator.WriteState(path, c.SaveState()); err != nil {
			resp.Error = err
			break
		}
		resp.Data = []byte(path)
		c.Logger.Infof("saved state to %s", path)
	case emulator.CommandLoadState:
		b := p.Data
		if len(b) == 0 {
			path := emulator.StatePath(c.saveFolder, c.rom)
			var err error
			if b, err = emulator.ReadState(path); err != nil {
				resp.Error = err
				break
			}
		}
		if err := c.LoadState(b); err != nil {
			resp.Error = err
			break
		}
		c.Logger.Infof("loaded state")
	case emulator.CommandSetSpeed:
		speed, err := emulator.ParseSpeed(p.Data)
		if err != nil {
			resp.Error = err
			break
		}
		if speed <= 0 {
			resp.Error = errors.New("speed must be positive")
			break
		}
		c.mu.Lock()
		c.speed = speed
		c.mu.Unlock()
	default:
		resp.Error = fmt.Errorf("%w: %d", emulator.ErrUnknownCommand, p.Command)
	}

	if resp.Error != nil {
		c.Logger.Errorf("%s: %v", p.Command, resp.Error)
	}
	return resp
}
