// Package audio plays the CHIP-8 tone. The machine only ever asks for
// a single fixed tone to start or stop, so the tone is generated once
// as a square wave and queued on the audio device while it sounds.
package audio

import (
	"encoding/binary"
	"math"
)

const (
	sampleRate = 44100
	// Frequency of the tone in Hz.
	Frequency = 440
	// Volume of the tone, 0 - 1.
	Volume = 0.25
	// toneLength is how much tone is queued at a time. The sound
	// timer can hold at most 255/60 seconds.
	toneLength = 5
)

// squareWave returns seconds of a square wave at freq, as little
// endian 32 bit float samples. The samples alternate between volume
// and -volume every half period.
func squareWave(freq, volume float64, rate, seconds int) []byte {
	n := rate * seconds
	out := make([]byte, n*4)
	period := float64(rate) / freq

	for i := 0; i < n; i++ {
		s := float32(volume)
		if math.Mod(float64(i), period) >= period/2 {
			s = -s
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
