package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Output files are always 16-bit PCM WAV
const (
	outputBitDepth = 16
	wavPCMFormat   = 1
)

// EncodeWAV writes the buffer to path as 16-bit PCM WAV, replacing any existing file.
// Samples beyond the 16-bit range saturate.
func EncodeWAV(path string, buf *Buffer) error {
	if buf == nil || buf.SampleRate <= 0 || buf.Channels <= 0 {
		return fmt.Errorf("%w: %s: invalid buffer", ErrEncode, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := WriteWAV(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, path, err)
	}
	return nil
}

// WriteWAV encodes the buffer as 16-bit PCM WAV to w
func WriteWAV(w io.WriteSeeker, buf *Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, outputBitDepth, buf.Channels, wavPCMFormat)

	data := make([]int, len(buf.Samples)-len(buf.Samples)%buf.Channels)
	for i := range data {
		data[i] = ToFixedPoint(buf.Samples[i], outputBitDepth/8)
	}

	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return nil
}
