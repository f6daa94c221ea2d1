package display

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/emulator"
	"github.com/thelolagemann/gochip8/pkg/log"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

// ScreenshotFolder is where HotkeyScreenshot writes images.
var ScreenshotFolder = "screenshots"

// screenshotScale is the size of a CHIP-8 pixel in a screenshot.
const screenshotScale = 10

// Controls performs hotkey actions on behalf of a driver. Drivers
// hand it every frame they display so that screenshots capture what
// is on screen.
type Controls struct {
	emu   Emulator
	log   log.Logger
	frame []byte

	// copyImage places a screenshot on the clipboard.
	copyImage func(img []byte) error
}

// NewControls returns the hotkey handler for emu.
func NewControls(emu Emulator, logger log.Logger) *Controls {
	if logger == nil {
		logger = log.New()
	}
	return &Controls{emu: emu, log: logger, copyImage: copyFrame}
}

// Frame records the most recently displayed frame.
func (c *Controls) Frame(f []byte) {
	c.frame = f
}

// Handle performs the action bound to h. It reports whether the
// driver should shut down.
func (c *Controls) Handle(h Hotkey) (quit bool) {
	switch h {
	case HotkeyPause:
		c.TogglePause()
	case HotkeySaveState:
		resp := c.emu.SendCommand(SaveState)
		if resp.Error != nil {
			c.log.Errorf("unable to save state: %v", resp.Error)
		} else {
			c.log.Infof("saved state to %s", resp.Data)
		}
	case HotkeyLoadState:
		if resp := c.emu.SendCommand(LoadState); resp.Error != nil {
			c.log.Errorf("unable to load state: %v", resp.Error)
		}
	case HotkeyReset:
		c.emu.SendCommand(Reset)
	case HotkeyScreenshot:
		path, err := c.Screenshot()
		if err != nil {
			c.log.Errorf("unable to take screenshot: %v", err)
		} else {
			c.log.Infof("saved screenshot to %s", path)
		}
	case HotkeyClipboard:
		if c.frame == nil {
			break
		}
		if err := c.copyImage(c.frame); err != nil {
			c.log.Errorf("unable to copy screenshot: %v", err)
		}
	case HotkeyQuit:
		c.emu.SendCommand(Close)
		return true
	}
	return false
}

// TogglePause pauses a running emulator or resumes a paused one.
func (c *Controls) TogglePause() {
	switch c.emu.Status() {
	case emulator.Running:
		c.emu.SendCommand(Pause)
	case emulator.Paused:
		c.emu.SendCommand(Resume)
	}
}

// Screenshot writes the last frame as a scaled PNG into
// ScreenshotFolder and returns its path.
func (c *Controls) Screenshot() (string, error) {
	path := filepath.Join(ScreenshotFolder, time.Now().Format("20060102-150405.000")+".png")
	return path, c.SaveScreenshot(path)
}

// SaveScreenshot writes the last frame as a scaled PNG to path.
func (c *Controls) SaveScreenshot(path string) error {
	if c.frame == nil {
		return fmt.Errorf("no frame to capture")
	}
	img, err := utils.FrameImage(c.frame, video.ScreenWidth, video.ScreenHeight)
	if err != nil {
		return err
	}
	return utils.SavePNG(path, utils.ScaleImage(img, screenshotScale))
}
