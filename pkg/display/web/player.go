package web

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/google/brotli/go/cbrotli"
	"github.com/thelolagemann/gochip8/internal/keypad"
	"github.com/thelolagemann/gochip8/internal/video"
	"github.com/thelolagemann/gochip8/pkg/display"
	"github.com/thelolagemann/gochip8/pkg/emulator"
)

const (
	// pixels is the number of pixels in a frame.
	pixels = video.ScreenWidth * video.ScreenHeight
	// cacheSize is the number of frames and patches a client mirrors.
	cacheSize = 64
)

// settings control how frames are sent to clients. They are shared by
// every client, any client may change them.
type settings struct {
	compression      bool
	compressionLevel int
	framePatching    bool
	framePatchRatio  int // percentage of changed pixels below which a patch is sent
	frameSkipping    bool
}

// Player connects the clients to the emulator. It turns frames into
// messages and client input into key events and commands.
type Player struct {
	hub               *hub
	emu               display.Emulator
	pressed, released chan<- keypad.Key

	patchCache, frameCache *cache
	currentFrame           []byte // RGBA
	dirtiedPixels          []byte // RGBA, alpha 0 where unchanged
	framesSkipped          int
	compressed             bool // whether the caches hold compressed data

	mu sync.Mutex
}

func newPlayer(h *hub, emu display.Emulator, pressed, released chan<- keypad.Key) *Player {
	p := &Player{
		hub:           h,
		emu:           emu,
		pressed:       pressed,
		released:      released,
		patchCache:    newCache(cacheSize),
		frameCache:    newCache(cacheSize),
		currentFrame:  make([]byte, pixels*4),
		dirtiedPixels: make([]byte, pixels*4),
	}
	for i := 0; i < pixels; i++ {
		p.currentFrame[i*4] = video.Off[0]
		p.currentFrame[i*4+1] = video.Off[1]
		p.currentFrame[i*4+2] = video.Off[2]
		p.currentFrame[i*4+3] = 255
	}
	return p
}

// process compares the RGB frame f with the last frame and returns the
// messages that bring clients up to date. Only the changed pixels are
// sent when few enough of them changed, and anything already in a
// client's cache is sent as its index.
func (p *Player) process(f []byte, s settings) ([][]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// cached entries are only valid for the encoding they were made with
	if s.compression != p.compressed {
		p.patchCache.reset()
		p.frameCache.reset()
		p.compressed = s.compression
	}

	dirtiedPixelCount := 0
	for i := range p.dirtiedPixels {
		p.dirtiedPixels[i] = 0
	}
	for i := 0; i < pixels; i++ {
		r, g, b := f[i*3], f[i*3+1], f[i*3+2]
		if p.currentFrame[i*4] != r || p.currentFrame[i*4+1] != g || p.currentFrame[i*4+2] != b {
			p.dirtiedPixels[i*4] = r
			p.dirtiedPixels[i*4+1] = g
			p.dirtiedPixels[i*4+2] = b
			p.dirtiedPixels[i*4+3] = 255
			dirtiedPixelCount++
		}

		p.currentFrame[i*4] = r
		p.currentFrame[i*4+1] = g
		p.currentFrame[i*4+2] = b
	}

	if dirtiedPixelCount == 0 && s.frameSkipping {
		p.framesSkipped++
		return nil, nil
	}

	var msgs [][]byte
	if p.framesSkipped > 0 {
		skipped := make([]byte, 5)
		skipped[0] = FrameSkip
		binary.LittleEndian.PutUint32(skipped[1:], uint32(p.framesSkipped))
		msgs = append(msgs, skipped)
		p.framesSkipped = 0
	}

	// determine if we should patch the frame
	kind, cachedKind, c, buffer := Frame, FrameCache, p.frameCache, p.currentFrame
	if s.framePatching && dirtiedPixelCount*100 < s.framePatchRatio*pixels {
		kind, cachedKind, c, buffer = FramePatch, PatchCache, p.patchCache, p.dirtiedPixels
	}

	output, err := p.encode(buffer, s)
	if err != nil {
		return msgs, err
	}
	hash := xxhash.Sum64(output)

	c.Lock()
	defer c.Unlock()
	if idx := c.index(hash); idx != -1 {
		msgs = append(msgs, indexMessage(cachedKind, idx, nil))
	} else {
		msgs = append(msgs, indexMessage(kind, c.add(hash, output), output))
	}
	return msgs, nil
}

// encode returns a copy of buffer, compressed when enabled.
func (p *Player) encode(buffer []byte, s settings) ([]byte, error) {
	if s.compression {
		return cbrotli.Encode(buffer, cbrotli.WriterOptions{
			Quality: s.compressionLevel,
		})
	}
	return append([]byte(nil), buffer...), nil
}

// sync returns the messages a newly connected client needs: the
// current frame and the contents of both caches.
func (p *Player) sync(s settings) ([][]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, err := p.encode(p.currentFrame, settings{compression: p.compressed, compressionLevel: s.compressionLevel})
	if err != nil {
		return nil, err
	}

	return [][]byte{
		append([]byte{FrameSync}, frame...),
		cacheSync(PatchCacheSync, p.patchCache),
		cacheSync(FrameCacheSync, p.frameCache),
	}, nil
}

// cacheSync encodes every entry of c as length, index and data.
func cacheSync(t Type, c *cache) []byte {
	c.RLock()
	defer c.RUnlock()

	data := []byte{t}
	for i, e := range c.cache {
		if len(e.data) == 0 {
			continue
		}

		var length, idx = make([]byte, 2), make([]byte, 2)
		binary.LittleEndian.PutUint16(length, uint16(len(e.data)))
		binary.LittleEndian.PutUint16(idx, uint16(i))

		data = append(data, length...)
		data = append(data, idx...)
		data = append(data, e.data...)
	}
	return data
}

func indexMessage(t Type, idx int, data []byte) []byte {
	msg := make([]byte, 3, 3+len(data))
	msg[0] = t
	binary.LittleEndian.PutUint16(msg[1:], uint16(idx))
	return append(msg, data...)
}

// handle acts on a message sent by a client that is not a hub setting.
func (p *Player) handle(c *Client, message []byte) {
	// handle special case of pause/play
	if len(message) == 1 {
		if message[0] == 0 {
			p.emu.SendCommand(display.Pause)
		} else {
			p.emu.SendCommand(display.Resume)
		}
		return
	}

	switch message[0] {
	case commandMessage:
		var command emulator.CommandPacket
		switch message[1] {
		case Reset:
			command = display.Reset
		case SaveState:
			command = display.SaveState
		case LoadState:
			command = display.LoadState
		default:
			return
		}
		if resp := p.emu.SendCommand(command); resp.Error != nil {
			p.hub.send(outbound{data: append([]byte{PlayerInfo, Fault}, resp.Error.Error()...), to: c})
		}
	default:
		key, state := message[0], message[1]
		if key >= keypad.Keys {
			return
		}
		if state == 0 {
			display.SendKey(p.released, keypad.Key(key))
		} else {
			display.SendKey(p.pressed, keypad.Key(key))
		}
	}
}
