// Package video provides the 64x32 monochrome display buffer of the
// CHIP-8. Sprites are XORed onto the buffer with coordinates wrapping
// around the edges, and the buffer tracks whether it has changed
// since the last prepared frame.
package video

import (
	"github.com/thelolagemann/gochip8/internal/types"
	"github.com/thelolagemann/gochip8/pkg/bits"
)

const (
	// ScreenWidth is the width of the display in pixels.
	ScreenWidth = 64
	// ScreenHeight is the height of the display in pixels.
	ScreenHeight = 32

	// FrameSize is the size of an RGB frame in bytes.
	FrameSize = ScreenWidth * ScreenHeight * 3
)

// Colour is an RGB triplet.
type Colour [3]uint8

var (
	// On is the colour of a set pixel.
	On = Colour{0xFF, 0xFF, 0xFF}
	// Off is the colour of a clear pixel.
	Off = Colour{0x00, 0x00, 0x00}
)

// Framebuffer is the display buffer, indexed [y][x].
type Framebuffer struct {
	pixels [ScreenHeight][ScreenWidth]bool
	dirty  bool
}

// New returns a new, cleared Framebuffer.
func New() *Framebuffer {
	return &Framebuffer{dirty: true}
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	f.pixels = [ScreenHeight][ScreenWidth]bool{}
	f.dirty = true
}

// Reset clears the buffer.
func (f *Framebuffer) Reset() {
	f.Clear()
}

// Pixel returns the state of the pixel at x, y. Coordinates wrap.
func (f *Framebuffer) Pixel(x, y int) bool {
	return f.pixels[y%ScreenHeight][x%ScreenWidth]
}

// Draw XORs sprite onto the buffer with its top left corner at x, y.
// Each byte is one row, most significant bit leftmost. Pixels that
// fall past an edge wrap around to the opposite edge. Draw reports
// whether any set sprite bit turned a lit pixel off.
func (f *Framebuffer) Draw(x, y uint8, sprite []byte) bool {
	collision := false
	for row, b := range sprite {
		ty := (int(y) + row) % ScreenHeight
		for col := 0; col < 8; col++ {
			if !bits.Test(b, uint8(7-col)) {
				continue
			}
			tx := (int(x) + col) % ScreenWidth
			if f.pixels[ty][tx] {
				collision = true
			}
			f.pixels[ty][tx] = !f.pixels[ty][tx]
		}
	}
	f.dirty = true
	return collision
}

// Dirty reports whether the buffer changed since the last call
// to PrepareFrame.
func (f *Framebuffer) Dirty() bool {
	return f.dirty
}

// Invalidate marks the buffer as changed.
func (f *Framebuffer) Invalidate() {
	f.dirty = true
}

// PrepareFrame renders the buffer into dst as packed RGB, rows top to
// bottom, and clears the dirty flag. dst must be at least FrameSize.
func (f *Framebuffer) PrepareFrame(dst []byte) {
	i := 0
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			c := Off
			if f.pixels[y][x] {
				c = On
			}
			dst[i], dst[i+1], dst[i+2] = c[0], c[1], c[2]
			i += 3
		}
	}
	f.dirty = false
}

// Frame returns a newly allocated RGB frame of the buffer.
func (f *Framebuffer) Frame() []byte {
	b := make([]byte, FrameSize)
	f.PrepareFrame(b)
	return b
}

var _ types.Stater = (*Framebuffer)(nil)

func (f *Framebuffer) Load(s *types.State) {
	for y := range f.pixels {
		for x := range f.pixels[y] {
			f.pixels[y][x] = s.ReadBool()
		}
	}
	f.dirty = true
}

func (f *Framebuffer) Save(s *types.State) {
	for y := range f.pixels {
		for x := range f.pixels[y] {
			s.WriteBool(f.pixels[y][x])
		}
	}
}
