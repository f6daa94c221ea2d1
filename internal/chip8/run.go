package chip8

import (
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/display/event"
)

// Run attaches the machine to driver and runs both until the driver
// returns. The machine is closed once the driver has stopped, and the
// fault that stopped it, if any, is returned so that the caller can
// exit with an error. An error from the driver itself takes priority.
func (c *Chip8) Run(driver display.Driver) error {
	driver.Initialize(c)

	// create framebuffer
	fb := make(chan []byte, 60)

	// create various channels
	events := make(chan event.Event, 60)
	pressed := make(chan keypad.Key, 10)
	released := make(chan keypad.Key, 10)

	result := make(chan error, 1)
	go func() { result <- c.Start(fb, events, pressed, released) }()

	driverErr := driver.Start(fb, events, pressed, released)

	// a stopped machine answers immediately
	c.SendCommand(display.Close)
	if err := <-result; driverErr == nil {
		return err
	}
	return driverErr
}
