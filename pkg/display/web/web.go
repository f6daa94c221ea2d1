// Package web provides a display driver that serves the emulator to
// browsers over a websocket. Every connected client sees the same
// machine and may send it key presses and commands.
package web

import (
	"errors"
	"net/http"

	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/log"
)

func init() {
	driver := &webDriver{}
	display.Install("web", driver, []display.DriverOption{
		{
			Name:        "addr",
			Default:     ":8090",
			Value:       &driver.addr,
			Type:        "string",
			Description: "Address to serve the web client on",
		},
		{
			Name:        "compression",
			Default:     false,
			Value:       &driver.settings.compression,
			Type:        "bool",
			Description: "Compress frames with brotli",
		},
		{
			Name:        "compression-level",
			Default:     5,
			Value:       &driver.settings.compressionLevel,
			Type:        "int",
			Description: "Brotli quality used for frames (0-11)",
		},
		{
			Name:        "frame-patching",
			Default:     true,
			Value:       &driver.settings.framePatching,
			Type:        "bool",
			Description: "Send only the changed pixels of a frame",
		},
		{
			Name:        "patch-ratio",
			Default:     25,
			Value:       &driver.settings.framePatchRatio,
			Type:        "int",
			Description: "Percentage of changed pixels below which a patch is sent",
		},
		{
			Name:        "frame-skipping",
			Default:     true,
			Value:       &driver.settings.frameSkipping,
			Type:        "bool",
			Description: "Skip frames identical to the last one",
		},
	})
}

type webDriver struct {
	addr     string
	settings settings

	emu display.Emulator
	log log.Logger
}

func (w *webDriver) Initialize(e display.Emulator) {
	w.emu = e
	w.log = log.New()
}

// Start serves the web client until the emulator quits or the server
// fails.
func (w *webDriver) Start(frames <-chan []byte, evts <-chan event.Event, pressed, released chan<- keypad.Key) error {
	h := newHub(w.settings, w.log)
	h.player = newPlayer(h, w.emu, pressed, released)
	go h.run()
	defer h.stop()

	srv := &http.Server{Addr: w.addr, Handler: h.handler()}
	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	defer srv.Close()
	w.log.Infof("serving web client on %s", w.addr)

	for {
		select {
		case f := <-frames:
			msgs, err := h.player.process(f, h.currentSettings())
			if err != nil {
				w.log.Errorf("unable to encode frame: %v", err)
			}
			for _, m := range msgs {
				h.send(outbound{data: m})
			}
		case e := <-evts:
			switch e.Type {
			case event.Title:
				h.send(outbound{data: append([]byte{PlayerInfo, Title}, e.Data.(string)...)})
			case event.Fatal:
				h.send(outbound{data: append([]byte{PlayerInfo, Fault}, e.Data.(error).Error()...)})
			case event.Quit:
				return nil
			}
		case err := <-errs:
			return err
		}
	}
}

// Stop stops the display driver.
func (w *webDriver) Stop() error {
	return nil
}
