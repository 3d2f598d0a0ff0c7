// Package audio decodes recordings into floating-point sample buffers and
// encodes processed buffers back to 16-bit WAV.
package audio

// Buffer is a decoded recording: interleaved samples on the signed 16-bit
// amplitude scale plus the format details needed to encode it again.
type Buffer struct {
	Samples     []float64
	SampleRate  int
	Channels    int
	SampleWidth int    // bytes per sample of the source encoding
	Format      string // container key, e.g. "wav", "mp3"
}

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Format     string
}

// Frames returns the number of multi-channel frames; a trailing partial frame is not counted
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Metadata summarises the buffer for reports and the UI
func (b *Buffer) Metadata() *Metadata {
	return &Metadata{
		Duration:   b.Duration(),
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		BitDepth:   b.SampleWidth * 8,
		Format:     b.Format,
	}
}
