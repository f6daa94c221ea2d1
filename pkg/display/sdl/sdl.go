// Package sdl provides a display driver using SDL2. Each CHIP-8
// pixel is drawn as a filled block, scaled to the window.
package sdl

import (
	"runtime"
	"time"

	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/log"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// SDL: this is needed to arrange for main to run on main thread
	runtime.LockOSThread()

	driver := &sdlDriver{}
	display.Install("sdl", driver, []display.DriverOption{
		{
			Name:        "scale",
			Default:     10.0,
			Value:       &driver.scale,
			Type:        "float",
			Description: "Scale the window by this factor",
		},
		{
			Name:        "fullscreen",
			Default:     false,
			Value:       &driver.fullscreen,
			Type:        "bool",
			Description: "Run in fullscreen mode",
		},
	})
}

var hotkeys = map[sdl.Keycode]display.Hotkey{
	sdl.K_ESCAPE:    display.HotkeyQuit,
	sdl.K_p:         display.HotkeyPause,
	sdl.K_BACKSPACE: display.HotkeyReset,
	sdl.K_F5:        display.HotkeySaveState,
	sdl.K_F9:        display.HotkeyLoadState,
	sdl.K_F10:       display.HotkeyClipboard,
	sdl.K_F12:       display.HotkeyScreenshot,
}

type sdlDriver struct {
	scale      float64
	fullscreen bool

	emu      display.Emulator
	controls *display.Controls
	log      log.Logger
}

func (s *sdlDriver) Initialize(e display.Emulator) {
	s.emu = e
	s.log = log.New()
	s.controls = display.NewControls(e, s.log)
}

// Start opens the window and runs the event loop until the emulator
// quits or the window is closed.
func (s *sdlDriver) Start(frames <-chan []byte, evts <-chan event.Event, pressed, released chan<- keypad.Key) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer s.Stop()

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE)
	if s.fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	window, err := sdl.CreateWindow("gochip8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(video.ScreenWidth*s.scale), int32(video.ScreenHeight*s.scale), flags)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	// draw in CHIP-8 pixels, SDL scales to the window
	if err := renderer.SetLogicalSize(video.ScreenWidth, video.ScreenHeight); err != nil {
		return err
	}

	rects := make([]sdl.Rect, 0, video.ScreenWidth*video.ScreenHeight)
	draw := func(f []byte) {
		rects = rects[:0]
		for y := 0; y < video.ScreenHeight; y++ {
			for x := 0; x < video.ScreenWidth; x++ {
				if f[(y*video.ScreenWidth+x)*3] != 0 {
					rects = append(rects, sdl.Rect{X: int32(x), Y: int32(y), W: 1, H: 1})
				}
			}
		}

		renderer.SetDrawColor(video.Off[0], video.Off[1], video.Off[2], 0xFF)
		renderer.Clear()
		if len(rects) > 0 {
			renderer.SetDrawColor(video.On[0], video.On[1], video.On[2], 0xFF)
			renderer.FillRects(rects)
		}
		renderer.Present()
	}

	var last []byte
	pollTicker := time.NewTicker(time.Second / 120)
	defer pollTicker.Stop()

	for {
		select {
		case f := <-frames:
			last = f
			s.controls.Frame(f)
			draw(f)
		case e := <-evts:
			switch e.Type {
			case event.Title:
				window.SetTitle(e.Data.(string))
			case event.Fatal:
				err := e.Data.(error)
				s.log.Errorf("%v", err)
				sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_ERROR, "gochip8", err.Error(), window)
			case event.Quit:
				return nil
			}
		case <-pollTicker.C:
			for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
				switch ev := ev.(type) {
				case *sdl.QuitEvent:
					s.controls.Handle(display.HotkeyQuit)
					return nil
				case *sdl.WindowEvent:
					if ev.Event == sdl.WINDOWEVENT_EXPOSED && last != nil {
						draw(last)
					}
				case *sdl.KeyboardEvent:
					if ev.Repeat != 0 {
						continue
					}
					if k, ok := display.KeyFor(rune(ev.Keysym.Sym)); ok {
						if ev.Type == sdl.KEYDOWN {
							display.SendKey(pressed, k)
						} else {
							display.SendKey(released, k)
						}
						continue
					}
					if h, ok := hotkeys[ev.Keysym.Sym]; ok && ev.Type == sdl.KEYDOWN {
						if s.controls.Handle(h) {
							return nil
						}
					}
				}
			}
		}
	}
}

// Stop stops the display driver.
func (s *sdlDriver) Stop() error {
	sdl.QuitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	return nil
}
