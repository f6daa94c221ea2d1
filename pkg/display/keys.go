package display

import (
	"unicode"

	"github.com/thelolagemann/gochip8/internal/keypad"
)

// Keymap maps the left hand side of a QWERTY keyboard onto the
// hexadecimal keypad, preserving its physical layout.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var Keymap = map[rune]keypad.Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyFor returns the keypad key for the host key r, ignoring case.
func KeyFor(r rune) (keypad.Key, bool) {
	k, ok := Keymap[unicode.ToLower(r)]
	return k, ok
}

// Hotkey is an emulator control bound to a host key.
type Hotkey int

// Hotkeys shared by the windowed drivers:
//
//	Escape     quit
//	P          pause / resume
//	Backspace  reset
//	F5 / F9    save / load state
//	F10        copy a screenshot to the clipboard
//	F12        save a screenshot
const (
	HotkeyNone Hotkey = iota
	HotkeyPause
	HotkeySaveState
	HotkeyLoadState
	HotkeyScreenshot
	HotkeyClipboard
	HotkeyReset
	HotkeyQuit
)

var hotkeyNames = map[Hotkey]string{
	HotkeyPause:      "Pause",
	HotkeySaveState:  "SaveState",
	HotkeyLoadState:  "LoadState",
	HotkeyScreenshot: "Screenshot",
	HotkeyClipboard:  "Clipboard",
	HotkeyReset:      "Reset",
	HotkeyQuit:       "Quit",
}

func (h Hotkey) String() string {
	if n, ok := hotkeyNames[h]; ok {
		return n
	}
	return "None"
}

// SendKey forwards k on ch without blocking. Drivers use it so that
// a stopped emulator never stalls their event loop.
func SendKey(ch chan<- keypad.Key, k keypad.Key) {
	select {
	case ch <- k:
	default:
	}
}
