//go:build !test

package audio

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"
)

// Beeper plays the tone on an SDL audio device.
type Beeper struct {
	device sdl.AudioDeviceID
	tone   []byte

	mu      sync.Mutex
	playing bool
}

// OpenAudio opens the default audio device for mono 32 bit float
// output.
func OpenAudio() (*Beeper, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	device, err := sdl.OpenAudioDevice("", false, &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_F32LSB,
		Channels: 1,
		Samples:  512,
	}, nil, 0)
	if err != nil {
		return nil, err
	}

	return &Beeper{
		device: device,
		tone:   squareWave(Frequency, Volume, sampleRate, toneLength),
	}, nil
}

// Beep starts or stops the tone. It has the signature of a sound
// listener so it can be attached to the machine directly.
func (b *Beeper) Beep(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if active == b.playing {
		return
	}
	b.playing = active

	sdl.ClearQueuedAudio(b.device)
	if active {
		if err := sdl.QueueAudio(b.device, b.tone); err != nil {
			b.playing = false
			return
		}
	}
	sdl.PauseAudioDevice(b.device, !active)
}

// SetTone replaces the queued tone, for example with a sample
// returned by LoadSample.
func (b *Beeper) SetTone(tone []byte) {
	b.mu.Lock()
	b.tone = tone
	b.mu.Unlock()
}

// Close stops the tone and closes the audio device.
func (b *Beeper) Close() {
	b.Beep(false)
	sdl.CloseAudioDevice(b.device)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}
