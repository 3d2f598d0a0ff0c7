package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// WAV format tags accepted by the WAV decoder
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Decoder builds a Buffer from an encoded stream
type Decoder interface {
	Decode(r io.ReadSeeker) (*Buffer, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(r io.ReadSeeker) (*Buffer, error)

// Decode calls f(r)
func (f DecoderFunc) Decode(r io.ReadSeeker) (*Buffer, error) { return f(r) }

// Registry maps file extensions (without the dot, lower case) to decoders
type Registry struct {
	codecs map[string]Decoder
	mtx    sync.RWMutex
}

// NewRegistry returns a registry with the built-in decoders registered
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Decoder)}
	r.Register("wav", DecoderFunc(decodeWAV))
	r.Register("wave", DecoderFunc(decodeWAV))
	r.Register("aif", DecoderFunc(decodeAIFF))
	r.Register("aiff", DecoderFunc(decodeAIFF))
	r.Register("mp3", DecoderFunc(decodeMP3))
	r.Register("ogg", DecoderFunc(decodeVorbis))
	r.Register("oga", DecoderFunc(decodeVorbis))
	return r
}

// Register adds or replaces the decoder for a format key
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

// Get returns the decoder for a format key
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// defaultRegistry backs the package-level Decode helpers
var defaultRegistry = NewRegistry()

// FormatOf returns the format key for a path, derived from its extension
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Decode reads a whole file into a Buffer using the default registry
func Decode(path string) (*Buffer, error) {
	return defaultRegistry.DecodeFile(path)
}

// DecodeFile reads a whole file into a Buffer. Every failure wraps ErrDecode.
func (r *Registry) DecodeFile(path string) (*Buffer, error) {
	format := FormatOf(path)
	dec, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w %q", ErrDecode, path, ErrUnsupportedFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	if buf.SampleRate <= 0 || buf.Channels <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid stream parameters (%d Hz, %d channels)", ErrDecode, path, buf.SampleRate, buf.Channels)
	}
	buf.Format = format

	return buf, nil
}

// decodeWAV decodes integer PCM WAV files of 8-32 bits
func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a WAV file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	// 8-bit WAV stores unsigned samples centred on 128
	offset := 0
	if dec.BitDepth == 8 {
		offset = 128
	}
	return fromIntBuffer(pcm, int(dec.BitDepth), offset)
}

// decodeAIFF decodes integer PCM AIFF files
func decodeAIFF(r io.ReadSeeker) (*Buffer, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not an AIFF file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	return fromIntBuffer(pcm, int(dec.BitDepth), 0)
}

// fromIntBuffer rescales go-audio integer samples to the 16-bit convention
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth, offset int) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("missing PCM format")
	}
	if pcm.SourceBitDepth > 0 {
		bitDepth = pcm.SourceBitDepth
	}
	if bitDepth%8 != 0 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedSampleWidth, bitDepth)
	}
	width := bitDepth / 8

	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = ToFloating(v-offset, width)
	}

	return &Buffer{
		Samples:     samples,
		SampleRate:  pcm.Format.SampleRate,
		Channels:    pcm.Format.NumChannels,
		SampleWidth: width,
	}, nil
}

// decodeMP3 decodes MPEG-1/2 layer III. go-mp3 always yields 16-bit stereo.
func decodeMP3(r io.ReadSeeker) (*Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read MP3 frames: %w", err)
	}

	pcm := &PCM{Data: raw[:len(raw)/2*2], SampleRate: dec.SampleRate(), Channels: 2, SampleWidth: 2}
	return &Buffer{
		Samples:     pcm.Decode(),
		SampleRate:  pcm.SampleRate,
		Channels:    pcm.Channels,
		SampleWidth: pcm.SampleWidth,
	}, nil
}

// decodeVorbis decodes Ogg Vorbis; float samples in [-1, 1] are mapped to the 16-bit scale
func decodeVorbis(r io.ReadSeeker) (*Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v) * FullScale16
	}

	return &Buffer{
		Samples:     samples,
		SampleRate:  format.SampleRate,
		Channels:    format.Channels,
		SampleWidth: 2,
	}, nil
}

// DecodeBytes decodes an in-memory file of the given format with the default registry
func DecodeBytes(data []byte, format string) (*Buffer, error) {
	dec, ok := defaultRegistry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrDecode, ErrUnsupportedFormat, format)
	}
	buf, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	buf.Format = strings.ToLower(format)
	return buf, nil
}
