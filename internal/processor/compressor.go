package processor

import (
	"fmt"
	"math"

	"github.com/linuxmatters/voicelift/internal/audio"
)

// EncodedAudio is the fixed-point container handed to a DynamicsCompressor
type EncodedAudio = audio.PCM

// DynamicsCompressor compresses encoded audio. The result must keep the
// input's sample rate, channel count, sample width and length.
type DynamicsCompressor interface {
	Compress(in *EncodedAudio) (*EncodedAudio, error)
}

// RMSCompressor is a feed-forward compressor driven by the RMS of the frames
// preceding each frame. Gain reduction ramps in dB: it rises towards the
// target over the attack time and falls back over the release time.
type RMSCompressor struct {
	Threshold float64 // dBFS, relative to the width's full scale
	Ratio     float64 // n:1
	Attack    float64 // ms, also the RMS look-behind window
	Release   float64 // ms
}

// NewRMSCompressor builds the compressor from the chain configuration
func NewRMSCompressor(cfg *Config) *RMSCompressor {
	return &RMSCompressor{
		Threshold: cfg.CompThreshold,
		Ratio:     cfg.CompRatio,
		Attack:    cfg.CompAttack,
		Release:   cfg.CompRelease,
	}
}

// Compress returns a new compressed copy of in
func (c *RMSCompressor) Compress(in *EncodedAudio) (*EncodedAudio, error) {
	if in == nil || in.Channels < 1 || in.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid encoded audio")
	}
	if c.Ratio < 1 {
		return nil, fmt.Errorf("compressor ratio must be at least 1, got %g", c.Ratio)
	}

	out := &EncodedAudio{
		Data:        append([]byte(nil), in.Data...),
		SampleRate:  in.SampleRate,
		Channels:    in.Channels,
		SampleWidth: in.SampleWidth,
	}

	frames := in.Frames()
	channels := in.Channels
	threshRMS := in.MaxAmplitude() * DbToLinear(c.Threshold)
	lookFrames := int(c.Attack * float64(in.SampleRate) / 1000)
	attackFrames := c.Attack * float64(in.SampleRate) / 1000
	releaseFrames := c.Release * float64(in.SampleRate) / 1000

	// Running sum of squares over frames [i-lookFrames, i)
	var sumSq float64
	windowStart := 0
	attenuation := 0.0

	for i := 0; i < frames; i++ {
		if i > 0 {
			for ch := 0; ch < channels; ch++ {
				v := float64(in.At((i-1)*channels + ch))
				sumSq += v * v
			}
		}
		for windowStart < i-lookFrames {
			for ch := 0; ch < channels; ch++ {
				v := float64(in.At(windowStart*channels + ch))
				sumSq -= v * v
			}
			windowStart++
		}

		rms := 0.0
		if n := (i - windowStart) * channels; n > 0 && sumSq > 0 {
			rms = math.Sqrt(sumSq / float64(n))
		}

		maxAttenuation := (1 - 1/c.Ratio) * dbOverThreshold(rms, threshRMS)
		if rms > threshRMS && attenuation <= maxAttenuation {
			attenuation += rampStep(maxAttenuation, attackFrames)
			attenuation = math.Min(attenuation, maxAttenuation)
		} else {
			attenuation -= rampStep(maxAttenuation, releaseFrames)
			attenuation = math.Max(attenuation, 0)
		}

		if attenuation != 0 {
			gain := DbToLinear(-attenuation)
			for ch := 0; ch < channels; ch++ {
				idx := i*channels + ch
				out.Set(idx, int(math.Floor(float64(in.At(idx))*gain)))
			}
		}
	}

	return out, nil
}

// dbOverThreshold returns how far rms sits above the threshold, never negative
func dbOverThreshold(rms, threshRMS float64) float64 {
	if rms == 0 || threshRMS <= 0 {
		return 0
	}
	return math.Max(LinearToDb(rms/threshRMS), 0)
}

// rampStep is the per-frame change for a ramp of the given length; a ramp
// shorter than one frame jumps straight to the target.
func rampStep(target, frames float64) float64 {
	if frames < 1 {
		return target
	}
	return target / frames
}
