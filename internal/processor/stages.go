package processor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/linuxmatters/voicelift/internal/audio"
	"github.com/linuxmatters/voicelift/internal/filter"
)

// Stage is one step of the processing chain. Apply must not modify samples
// and must return a buffer of the same length.
type Stage interface {
	ID() StageID
	Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error)
}

// NoiseReducer removes noise from a single stream of samples. The result
// must have the same length as the input.
type NoiseReducer interface {
	Reduce(samples []float64, sampleRate int) ([]float64, error)
}

// =============================================================================
// Noise reduction
// =============================================================================

// NoiseReductionStage delegates to the injected NoiseReducer
type NoiseReductionStage struct {
	Reducer NoiseReducer
	Mode    ChannelMode
}

func (s *NoiseReductionStage) ID() StageID { return StageNoiseReduction }

func (s *NoiseReductionStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	if s.Reducer == nil {
		return nil, fmt.Errorf("%w: no noise reducer configured", ErrExternalCapability)
	}

	return eachChannel(s.Mode, run.Channels, samples, func(x []float64) ([]float64, error) {
		out, err := s.Reducer.Reduce(append([]float64(nil), x...), run.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: noise reducer: %w", ErrExternalCapability, err)
		}
		if len(out) != len(x) {
			return nil, fmt.Errorf("%w: noise reducer returned %d samples for %d", ErrExternalCapability, len(out), len(x))
		}
		return out, nil
	})
}

// =============================================================================
// Equalizer
// =============================================================================

// EqualizerStage removes rumble then applies the boxy and presence corrections.
// Each operation filters the output of the previous one.
type EqualizerStage struct {
	cfg *Config
}

func (s *EqualizerStage) ID() StageID { return StageEqualizer }

func (s *EqualizerStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	highpass, err := designOrSkip(run, s.cfg, StageEqualizer, "rumble highpass",
		filter.Spec{Kind: filter.Highpass, Order: s.cfg.FilterOrder, Low: s.cfg.HighpassFreq, SampleRate: run.SampleRate})
	if err != nil {
		return nil, err
	}
	boxy, err := designOrSkip(run, s.cfg, StageEqualizer, "boxy band", s.cfg.BoxyBand.spec(s.cfg.FilterOrder, run.SampleRate))
	if err != nil {
		return nil, err
	}
	presence, err := designOrSkip(run, s.cfg, StageEqualizer, "presence band", s.cfg.PresenceBand.spec(s.cfg.FilterOrder, run.SampleRate))
	if err != nil {
		return nil, err
	}

	if highpass == nil && boxy == nil && presence == nil {
		return append([]float64(nil), samples...), nil
	}

	return eachChannel(s.cfg.ChannelMode, run.Channels, samples, func(x []float64) ([]float64, error) {
		var err error
		out := x
		if highpass != nil {
			if out, err = filter.Apply(*highpass, out); err != nil {
				return nil, err
			}
		}
		if boxy != nil {
			if out, err = bandCorrect(*boxy, out, s.cfg.BoxyBand.GainDB); err != nil {
				return nil, err
			}
		}
		if presence != nil {
			if out, err = bandCorrect(*presence, out, s.cfg.PresenceBand.GainDB); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// bandCorrect adds the band-limited signal back scaled by the signed gain
func bandCorrect(c filter.Coefficients, x []float64, gainDB float64) ([]float64, error) {
	band, err := filter.Apply(c, x)
	if err != nil {
		return nil, err
	}
	factor := DbToLinear(gainDB)
	for i := range band {
		band[i] = x[i] + band[i]*factor
	}
	return band, nil
}

// =============================================================================
// De-esser
// =============================================================================

// DeEsserStage subtracts a share of the sibilance band from the signal
type DeEsserStage struct {
	cfg *Config
}

func (s *DeEsserStage) ID() StageID { return StageDeEsser }

func (s *DeEsserStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	c, err := designOrSkip(run, s.cfg, StageDeEsser, "sibilance band",
		filter.Spec{Kind: filter.Bandpass, Order: s.cfg.FilterOrder, Low: s.cfg.DeessLow, High: s.cfg.DeessHigh, SampleRate: run.SampleRate})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return append([]float64(nil), samples...), nil
	}

	return eachChannel(s.cfg.ChannelMode, run.Channels, samples, func(x []float64) ([]float64, error) {
		ess, err := filter.Apply(*c, x)
		if err != nil {
			return nil, err
		}
		for i := range ess {
			ess[i] = x[i] - s.cfg.DeessAmount*ess[i]
		}
		return ess, nil
	})
}

// designOrSkip designs a filter for the run. With SkipUnsupportedBands set, a
// spec the sample rate cannot support is recorded on the run and nil returned.
func designOrSkip(run *Run, cfg *Config, stage StageID, name string, spec filter.Spec) (*filter.Coefficients, error) {
	c, err := filter.Design(spec)
	if err == nil {
		return &c, nil
	}
	if cfg.SkipUnsupportedBands && errors.Is(err, filter.ErrInvalidFilterSpec) {
		run.skip(stage, name, err)
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}

// =============================================================================
// Compressor
// =============================================================================

// CompressorStage round-trips the buffer through fixed point so the injected
// DynamicsCompressor can work on encoded audio. It always sees the
// interleaved stream.
type CompressorStage struct {
	Compressor DynamicsCompressor
}

func (s *CompressorStage) ID() StageID { return StageCompressor }

func (s *CompressorStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	if s.Compressor == nil {
		return nil, fmt.Errorf("%w: no compressor configured", ErrExternalCapability)
	}

	enc, err := audio.EncodePCM(samples, run.SampleRate, run.Channels, run.SampleWidth)
	if err != nil {
		return nil, err
	}

	compressed, err := s.Compressor.Compress(enc)
	if err != nil {
		return nil, fmt.Errorf("%w: compressor: %w", ErrExternalCapability, err)
	}
	if compressed == nil || compressed.SampleWidth != enc.SampleWidth || compressed.Samples() != enc.Samples() {
		return nil, fmt.Errorf("%w: compressor changed the audio format or length", ErrExternalCapability)
	}

	return compressed.Decode(), nil
}

// =============================================================================
// Saturator
// =============================================================================

// SaturatorStage applies tanh soft clipping: out = tanh(drive * x) * ceiling
type SaturatorStage struct {
	cfg *Config
}

func (s *SaturatorStage) ID() StageID { return StageSaturator }

func (s *SaturatorStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = math.Tanh(s.cfg.SatDrive*v) * s.cfg.SatCeiling
	}
	return out, nil
}

// =============================================================================
// Limiter
// =============================================================================

// LimiterStage scales the buffer so its peak across all channels equals the
// target. Silence is returned unchanged.
type LimiterStage struct {
	cfg *Config
}

func (s *LimiterStage) ID() StageID { return StageLimiter }

func (s *LimiterStage) Apply(ctx context.Context, run *Run, samples []float64) ([]float64, error) {
	out := append([]float64(nil), samples...)

	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return out, nil
	}

	gain := s.cfg.LimiterTarget / peak
	for i := range out {
		out[i] *= gain
	}
	return out, nil
}
