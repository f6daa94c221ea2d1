// Package timer provides the delay and sound timers of the CHIP-8.
// Both count down once per tick (60 Hz) until they reach zero,
// independently of how many instructions execute in between.
package timer

import "github.com/thelolagemann/gochip8/internal/types"

// SoundListener is notified whenever the sound timer starts or
// stops being non-zero.
type SoundListener func(active bool)

// Controller holds the two countdown timers.
type Controller struct {
	Delay uint8
	sound uint8

	listeners []SoundListener
}

// NewController returns a new timer controller.
func NewController() *Controller {
	return &Controller{}
}

// AttachSoundListener registers l to be called on sound transitions.
func (c *Controller) AttachSoundListener(l SoundListener) {
	c.listeners = append(c.listeners, l)
}

// Sound returns the sound timer.
func (c *Controller) Sound() uint8 {
	return c.sound
}

// SetSound sets the sound timer, notifying listeners if the tone
// starts or stops as a result.
func (c *Controller) SetSound(v uint8) {
	was := c.sound > 0
	c.sound = v
	c.notify(was)
}

// SoundActive reports whether the tone should be playing.
func (c *Controller) SoundActive() bool {
	return c.sound > 0
}

// Tick decrements each timer that is above zero.
func (c *Controller) Tick() {
	if c.Delay > 0 {
		c.Delay--
	}
	if c.sound > 0 {
		c.sound--
		c.notify(true)
	}
}

func (c *Controller) notify(was bool) {
	if now := c.sound > 0; now != was {
		for _, l := range c.listeners {
			l(now)
		}
	}
}

// Reset stops both timers.
func (c *Controller) Reset() {
	c.Delay = 0
	c.SetSound(0)
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Load(s *types.State) {
	c.Delay = s.Read8()
	c.SetSound(s.Read8())
}

func (c *Controller) Save(s *types.State) {
	s.Write8(c.Delay)
	s.Write8(c.sound)
}
