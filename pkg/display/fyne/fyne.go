//go:build !test

// Package fyne provides a display driver using the fyne toolkit,
// with a main menu for loading ROMs and controlling the emulator.
package fyne

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/log"
	"github.com/thelolagemann/gochip8/pkg/utils"
)

func init() {
	driver := &fyneDriver{}
	display.Install("fyne", driver, []display.DriverOption{
		{
			Name:        "scale",
			Default:     10.0,
			Value:       &driver.scale,
			Type:        "float",
			Description: "Scale the window by this factor",
		},
	})
}

var hotkeys = map[fyne.KeyName]display.Hotkey{
	fyne.KeyEscape:    display.HotkeyQuit,
	fyne.KeyP:         display.HotkeyPause,
	fyne.KeyBackspace: display.HotkeyReset,
	fyne.KeyF5:        display.HotkeySaveState,
	fyne.KeyF9:        display.HotkeyLoadState,
	fyne.KeyF10:       display.HotkeyClipboard,
	fyne.KeyF12:       display.HotkeyScreenshot,
}

var speeds = []float64{0.25, 0.5, 1, 2, 4, 8}

type fyneDriver struct {
	scale float64

	emu      display.Emulator
	controls *display.Controls
	log      log.Logger

	app    fyne.App
	window fyne.Window
}

func (f *fyneDriver) Initialize(e display.Emulator) {
	f.emu = e
	f.log = log.New()
	f.controls = display.NewControls(e, f.log)
}

// Start runs the fyne application until the window is closed or the
// emulator quits.
func (f *fyneDriver) Start(frames <-chan []byte, evts <-chan event.Event, pressed, released chan<- keypad.Key) error {
	f.app = app.NewWithID("com.thelolagemann.gochip8")
	f.app.Settings().SetTheme(&defaultTheme{})

	f.window = f.app.NewWindow("gochip8")
	f.window.SetMaster()
	f.window.SetPadded(false)
	f.window.Resize(fyne.NewSize(float32(video.ScreenWidth*f.scale), float32(video.ScreenHeight*f.scale)))

	// create the image to draw to
	img := image.NewRGBA(image.Rect(0, 0, video.ScreenWidth, video.ScreenHeight))
	raster := canvas.NewRasterFromImage(img)
	raster.ScaleMode = canvas.ImageScalePixels
	raster.SetMinSize(fyne.NewSize(video.ScreenWidth, video.ScreenHeight))

	f.window.SetContent(raster)
	f.window.SetMainMenu(f.mainMenu())

	// handle input
	if desk, ok := f.window.Canvas().(desktop.Canvas); ok {
		desk.SetOnKeyDown(func(e *fyne.KeyEvent) {
			if k, ok := keyFor(e.Name); ok {
				display.SendKey(pressed, k)
			} else if h, ok := hotkeys[e.Name]; ok && f.controls.Handle(h) {
				f.app.Quit()
			}
		})
		desk.SetOnKeyUp(func(e *fyne.KeyEvent) {
			if k, ok := keyFor(e.Name); ok {
				display.SendKey(released, k)
			}
		})
	}

	f.window.SetCloseIntercept(func() {
		f.controls.Handle(display.HotkeyQuit)
		f.app.Quit()
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case fr := <-frames:
				f.controls.Frame(fr)
				// copy the framebuffer to the image
				for i := 0; i < video.ScreenWidth*video.ScreenHeight; i++ {
					img.Pix[i*4] = fr[i*3]
					img.Pix[i*4+1] = fr[i*3+1]
					img.Pix[i*4+2] = fr[i*3+2]
					img.Pix[i*4+3] = 255
				}
				raster.Refresh()
			case e := <-evts:
				switch e.Type {
				case event.Title:
					f.window.SetTitle(e.Data.(string))
				case event.Fatal:
					f.log.Errorf("%v", e.Data)
					dialog.ShowError(e.Data.(error), f.window)
				case event.Quit:
					f.app.Quit()
					return
				}
			case <-done:
				return
			}
		}
	}()

	f.window.ShowAndRun()
	return nil
}

// Stop stops the display driver.
func (f *fyneDriver) Stop() error {
	if f.app != nil {
		f.app.Quit()
	}
	return nil
}

func (f *fyneDriver) mainMenu() *fyne.MainMenu {
	openROM := fyne.NewMenuItem("Open ROM", func() {
		path, err := utils.AskForFile("Open ROM", ".")
		if err != nil {
			return
		}
		rom, err := utils.LoadFile(path)
		if err != nil {
			dialog.ShowError(err, f.window)
			return
		}
		if resp := f.emu.SendCommand(display.LoadROM(rom)); resp.Error != nil {
			dialog.ShowError(resp.Error, f.window)
			return
		}
		f.log.Infof("loaded %s", path)
	})
	saveState := fyne.NewMenuItem("Save State", func() {
		f.controls.Handle(display.HotkeySaveState)
	})
	loadState := fyne.NewMenuItem("Load State", func() {
		if resp := f.emu.SendCommand(display.LoadState); resp.Error != nil {
			dialog.ShowError(resp.Error, f.window)
		}
	})
	fileMenu := fyne.NewMenu("File", openROM, fyne.NewMenuItemSeparator(), saveState, loadState)

	emuPause := fyne.NewMenuItem("Pause", func() {
		f.controls.TogglePause()
	})
	emuReset := fyne.NewMenuItem("Reset", func() {
		f.controls.Handle(display.HotkeyReset)
	})
	emuSpeed := fyne.NewMenuItem("Speed", nil)
	emuSpeed.ChildMenu = fyne.NewMenu("")
	for _, s := range speeds {
		speed := s
		item := fyne.NewMenuItem(fmt.Sprintf("%gx", speed), nil)
		item.Checked = f.emu.Speed() == speed
		item.Action = func() {
			if resp := f.emu.SendCommand(display.SetSpeed(speed)); resp.Error != nil {
				f.log.Errorf("unable to set speed: %v", resp.Error)
				return
			}
			for _, i := range emuSpeed.ChildMenu.Items {
				i.Checked = i == item
			}
			emuSpeed.ChildMenu.Refresh()
		}
		emuSpeed.ChildMenu.Items = append(emuSpeed.ChildMenu.Items, item)
	}
	emuMenu := fyne.NewMenu("Emulation", emuPause, emuReset, fyne.NewMenuItemSeparator(), emuSpeed)

	videoMenu := fyne.NewMenu("Video",
		fyne.NewMenuItem("Take Screenshot", func() {
			f.controls.Handle(display.HotkeyScreenshot)
		}),
		fyne.NewMenuItem("Save Screenshot As...", func() {
			path, err := utils.AskForSavePath("Save Screenshot")
			if err != nil {
				return
			}
			if err := f.controls.SaveScreenshot(path); err != nil {
				dialog.ShowError(err, f.window)
			}
		}),
		fyne.NewMenuItem("Copy Screenshot", func() {
			f.controls.Handle(display.HotkeyClipboard)
		}),
	)

	return fyne.NewMainMenu(fileMenu, emuMenu, videoMenu)
}

// keyFor maps a fyne key name to a keypad key. Letters and digits are
// named by their single character.
func keyFor(name fyne.KeyName) (keypad.Key, bool) {
	if len(name) != 1 {
		return 0, false
	}
	return display.KeyFor(rune(name[0]))
}
