package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
)

// ErrInvalidSample is returned by LoadSample for files that are not
// usable PCM WAV data.
var ErrInvalidSample = errors.New("invalid wav sample")

// LoadSample decodes a WAV file for use as the tone instead of the
// square wave. The first channel is resampled to the device rate and
// repeated until it fills the queued tone length.
func LoadSample(r io.ReadSeeker) ([]byte, error) {
	dec := wav.NewDecoder(r)
	if dec == nil || !dec.IsValidFile() {
		return nil, ErrInvalidSample
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	chans := int(dec.NumChans)
	if chans == 0 || dec.SampleRate == 0 || dec.BitDepth == 0 || len(buf.Data) < chans {
		return nil, ErrInvalidSample
	}

	// 8 bit samples are unsigned
	var offset float32
	if dec.BitDepth == 8 {
		offset = 128
	}
	scale := float32(uint64(1) << (dec.BitDepth - 1))

	floatBuf := buf.AsFloat32Buffer()
	mono := make([]float32, 0, len(floatBuf.Data)/chans)
	for i := 0; i < len(floatBuf.Data); i += chans {
		mono = append(mono, (floatBuf.Data[i]-offset)/scale)
	}

	// nearest neighbour resample to the device rate
	srcRate := int(dec.SampleRate)
	n := len(mono) * sampleRate / srcRate
	if n == 0 {
		return nil, ErrInvalidSample
	}
	resampled := make([]float32, n)
	for i := range resampled {
		resampled[i] = mono[i*srcRate/sampleRate]
	}

	total := sampleRate * toneLength
	if total < n {
		total = n
	}
	out := make([]byte, total*4)
	for i := 0; i < total; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(resampled[i%n]))
	}
	return out, nil
}
