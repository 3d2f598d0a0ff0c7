package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sample buffers use the signed 16-bit amplitude convention: full scale is
// [-32768, 32767], but intermediate values may exceed it.
const (
	FullScale16 = 32768.0
	MaxInt16    = 32767.0
)

// PCM is interleaved little-endian signed integer audio. It is the container
// representation handed to collaborators that work on encoded audio rather
// than on floating-point samples.
type PCM struct {
	Data        []byte
	SampleRate  int
	Channels    int
	SampleWidth int // bytes per sample, 1-4
}

// Samples returns the number of samples (all channels) held in Data
func (p *PCM) Samples() int {
	if p.SampleWidth <= 0 {
		return 0
	}
	return len(p.Data) / p.SampleWidth
}

// Frames returns the number of complete multi-channel frames
func (p *PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return p.Samples() / p.Channels
}

// MaxAmplitude returns the largest magnitude representable at this width,
// e.g. 32768 for 16-bit audio.
func (p *PCM) MaxAmplitude() float64 {
	return math.Ldexp(1, 8*p.SampleWidth-1)
}

// At returns sample i as a signed integer
func (p *PCM) At(i int) int {
	off := i * p.SampleWidth
	b := p.Data[off : off+p.SampleWidth]
	switch p.SampleWidth {
	case 1:
		return int(int8(b[0]))
	case 2:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		return int(v<<8) >> 8
	default:
		return int(int32(binary.LittleEndian.Uint32(b)))
	}
}

// Set stores v at sample i, saturating at the width's range
func (p *PCM) Set(i int, v int) {
	lo, hi := intRange(p.SampleWidth)
	v = min(max(v, lo), hi)

	off := i * p.SampleWidth
	b := p.Data[off : off+p.SampleWidth]
	switch p.SampleWidth {
	case 1:
		b[0] = byte(int8(v))
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case 3:
		b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
	default:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	}
}

// EncodePCM converts a floating-point buffer to fixed point at the given width.
// Values are truncated toward zero and saturated, never wrapped.
func EncodePCM(samples []float64, sampleRate, channels, sampleWidth int) (*PCM, error) {
	if sampleWidth < 1 || sampleWidth > 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedSampleWidth, sampleWidth)
	}

	p := &PCM{
		Data:        make([]byte, len(samples)*sampleWidth),
		SampleRate:  sampleRate,
		Channels:    channels,
		SampleWidth: sampleWidth,
	}
	for i, v := range samples {
		p.Set(i, ToFixedPoint(v, sampleWidth))
	}
	return p, nil
}

// Decode converts the fixed-point data back to the 16-bit floating convention
func (p *PCM) Decode() []float64 {
	out := make([]float64, p.Samples())
	for i := range out {
		out[i] = ToFloating(p.At(i), p.SampleWidth)
	}
	return out
}

// ToFixedPoint maps a 16-bit-scale floating sample to an integer of the given
// byte width, truncating toward zero and saturating at the width's range.
func ToFixedPoint(v float64, sampleWidth int) int {
	lo, hi := intRange(sampleWidth)
	if math.IsNaN(v) {
		return 0
	}

	scaled := math.Ldexp(v, 8*sampleWidth-16)
	if scaled >= float64(hi) {
		return hi
	}
	if scaled <= float64(lo) {
		return lo
	}
	return int(scaled)
}

// ToFloating maps a fixed-point sample of the given width to the 16-bit
// floating convention.
func ToFloating(v int, sampleWidth int) float64 {
	return math.Ldexp(float64(v), 16-8*sampleWidth)
}

// intRange returns the signed integer range for a byte width
func intRange(sampleWidth int) (int, int) {
	bits := 8*sampleWidth - 1
	return -(1 << bits), (1 << bits) - 1
}
