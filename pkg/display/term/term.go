//go:build linux

// Package term provides a display driver that renders to an ANSI
// terminal using half block characters, two CHIP-8 rows per line.
package term

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/term/termios"
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
	"github.com/thelolagemann/gochip8/pkg/log"
)

func init() {
	driver := &termDriver{}
	display.Install("term", driver, []display.DriverOption{
		{
			Name:        "hold",
			Default:     150,
			Value:       &driver.hold,
			Type:        "int",
			Description: "Milliseconds a key stays pressed, terminals do not report releases",
		},
	})
}

const (
	ctrlC     = 0x03
	escape    = 0x1B
	backspace = 0x7F
)

var hotkeys = map[byte]display.Hotkey{
	ctrlC:     display.HotkeyQuit,
	escape:    display.HotkeyQuit,
	'p':       display.HotkeyPause,
	backspace: display.HotkeyReset,
	'k':       display.HotkeySaveState,
	'l':       display.HotkeyLoadState,
	'o':       display.HotkeyScreenshot,
}

type termDriver struct {
	hold int

	emu      display.Emulator
	controls *display.Controls
	log      log.Logger

	restore func()
}

func (t *termDriver) Initialize(e display.Emulator) {
	t.emu = e
	t.log = log.NewNullLogger() // stderr would tear the picture
	t.controls = display.NewControls(e, t.log)
}

// Start puts the terminal into raw mode and draws frames until the
// emulator quits or a quit key is read.
func (t *termDriver) Start(frames <-chan []byte, evts <-chan event.Event, pressed, released chan<- keypad.Key) error {
	fd := os.Stdin.Fd()
	restore, err := makeRaw(fd)
	if err != nil {
		return err
	}
	t.restore = restore
	defer t.Stop()

	out := bufio.NewWriter(os.Stdout)
	out.WriteString(hideCursor + clearScreen)
	out.Flush()

	input := make(chan byte, 16)
	go func() {
		buf := make([]byte, 1)
		for {
			if n, err := os.Stdin.Read(buf); err != nil || n == 0 {
				close(input)
				return
			}
			input <- buf[0]
		}
	}()

	var (
		mu    sync.Mutex
		held  = make(map[keypad.Key]*time.Timer)
		title string
		fault string
		fps   string
	)
	defer func() {
		mu.Lock()
		for _, timer := range held {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case f := <-frames:
			t.controls.Frame(f)
			out.WriteString(render(f, title+fps, fault))
			out.Flush()
		case e := <-evts:
			switch e.Type {
			case event.Title:
				title = e.Data.(string)
			case event.FrameTime:
				if d := e.Data.(time.Duration); d > 0 {
					fps = fmt.Sprintf(" | %.0f fps", float64(time.Second)/float64(d))
				}
			case event.Fatal:
				fault = e.Data.(error).Error()
			case event.Quit:
				return nil
			}
		case b, ok := <-input:
			if !ok {
				t.controls.Handle(display.HotkeyQuit)
				return nil
			}
			if k, ok := display.KeyFor(rune(b)); ok {
				// a held key repeats, so extend the hold instead of pressing again
				mu.Lock()
				if timer, ok := held[k]; ok {
					timer.Reset(time.Duration(t.hold) * time.Millisecond)
				} else {
					display.SendKey(pressed, k)
					held[k] = time.AfterFunc(time.Duration(t.hold)*time.Millisecond, func() {
						mu.Lock()
						delete(held, k)
						mu.Unlock()
						display.SendKey(released, k)
					})
				}
				mu.Unlock()
				continue
			}
			if h, ok := hotkeys[b]; ok && t.controls.Handle(h) {
				return nil
			}
		}
	}
}

// Stop restores the terminal.
func (t *termDriver) Stop() error {
	if t.restore != nil {
		t.restore()
		t.restore = nil
		os.Stdout.WriteString(showCursor + "\r\n")
	}
	return nil
}

// makeRaw disables line buffering, echo and signal keys on fd and
// returns a function that restores the previous settings.
func makeRaw(fd uintptr) (func(), error) {
	var old syscall.Termios
	if err := termios.Tcgetattr(fd, &old); err != nil {
		return nil, err
	}

	raw := old
	termios.Cfmakeraw(&raw)
	raw.Cc[syscall.VMIN] = 1
	raw.Cc[syscall.VTIME] = 0
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return nil, err
	}

	return func() {
		termios.Tcsetattr(fd, termios.TCSANOW, &old)
	}, nil
}
