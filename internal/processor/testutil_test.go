package processor

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/voicelift/internal/audio"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64   // Total duration in seconds
	SampleRate   int       // Sample rate (default: 44100)
	Channels     int       // Interleaved channels (default: 1)
	ToneFreqs    []float64 // Sine frequencies in Hz, summed
	ToneLevel    float64   // Level of each tone in dBFS (e.g., -12.0)
	NoiseLevel   float64   // White noise level in dBFS (0 = no noise, -60 = quiet noise)
	SilenceGap   struct {
		Start    float64 // Start time of silence gap in seconds
		Duration float64 // Duration of silence gap in seconds
	}
}

// generateSamples creates interleaved samples on the 16-bit scale. Every
// channel carries the same tones; noise is independent per sample.
func generateSamples(opts TestAudioOptions) []float64 {
	// Set defaults
	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 1.0
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}

	frames := int(opts.DurationSecs * float64(opts.SampleRate))
	samples := make([]float64, frames*opts.Channels)

	toneAmp := 0.0
	if len(opts.ToneFreqs) > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0) * audio.FullScale16
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0) * audio.FullScale16
	}

	silenceStart := int(opts.SilenceGap.Start * float64(opts.SampleRate))
	silenceEnd := int((opts.SilenceGap.Start + opts.SilenceGap.Duration) * float64(opts.SampleRate))

	// Simple LCG random number generator for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		// LCG parameters from Numerical Recipes
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	for i := 0; i < frames; i++ {
		if i >= silenceStart && i < silenceEnd && opts.SilenceGap.Duration > 0 {
			continue
		}

		var tone float64
		ts := float64(i) / float64(opts.SampleRate)
		for _, f := range opts.ToneFreqs {
			tone += toneAmp * math.Sin(2.0*math.Pi*f*ts)
		}
		for c := 0; c < opts.Channels; c++ {
			v := tone
			if noiseAmp > 0 {
				v += noiseAmp * nextRandom()
			}
			samples[i*opts.Channels+c] = v
		}
	}
	return samples
}

// generateTestAudio writes synthetic audio as a 16-bit WAV in a test temp dir
// and returns its path.
func generateTestAudio(t *testing.T, name string, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}

	path := filepath.Join(t.TempDir(), name)
	buf := &audio.Buffer{
		Samples:     generateSamples(opts),
		SampleRate:  opts.SampleRate,
		Channels:    opts.Channels,
		SampleWidth: 2,
	}
	if err := audio.EncodeWAV(path, buf); err != nil {
		t.Fatalf("failed to write test audio: %v", err)
	}
	return path
}

// newTestPipeline builds a pipeline on the default config with an identity
// noise reducer, so tests are isolated from the real denoiser.
func newTestPipeline(t *testing.T, cfg *Config) *Pipeline {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p, err := NewPipeline(cfg, Capabilities{NoiseReducer: identityReducer{}}, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

type identityReducer struct{}

func (identityReducer) Reduce(samples []float64, sampleRate int) ([]float64, error) {
	return append([]float64(nil), samples...), nil
}

func peakAbs(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}
