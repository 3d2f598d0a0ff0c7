// Package processor runs decoded recordings through the speech enhancement chain
package processor

import (
	"fmt"
	"math"

	"github.com/linuxmatters/voicelift/internal/filter"
)

// StageID identifies a stage in the processing chain
type StageID string

// Stage identifiers for the processing chain
const (
	StageNoiseReduction StageID = "noise_reduction"
	StageEqualizer      StageID = "equalizer"
	StageDeEsser        StageID = "deesser"
	StageCompressor     StageID = "compressor"
	StageSaturator      StageID = "saturator"
	StageLimiter        StageID = "limiter"
)

// CanonicalOrder is the only order stages ever run in.
// - NoiseReduction first: the gate works best on the raw noise floor
// - Equalizer: rumble removal and tonal balance before any dynamics
// - DeEsser: after the presence boost that emphasises sibilance
// - Compressor: evens dynamics on the tonally corrected signal
// - Saturator: soft harmonic colouring of the compressed peaks
// - Limiter: whole-buffer peak normalisation, MUST be last
var CanonicalOrder = []StageID{
	StageNoiseReduction,
	StageEqualizer,
	StageDeEsser,
	StageCompressor,
	StageSaturator,
	StageLimiter,
}

// stageLabels are the display names used by the UI and reports
var stageLabels = map[StageID]string{
	StageNoiseReduction: "Noise reduction",
	StageEqualizer:      "Equalizer",
	StageDeEsser:        "De-esser",
	StageCompressor:     "Compressor",
	StageSaturator:      "Saturator",
	StageLimiter:        "Limiter",
}

// Label returns the human readable stage name
func (id StageID) Label() string {
	if l, ok := stageLabels[id]; ok {
		return l
	}
	return string(id)
}

// StageSelection holds one switch per stage. It is supplied once per batch
// and applied to every file.
type StageSelection struct {
	NoiseReduction bool
	Equalizer      bool
	DeEsser        bool
	Compressor     bool
	Saturator      bool
	Limiter        bool
}

// AllStages enables the complete chain
func AllStages() StageSelection {
	return StageSelection{true, true, true, true, true, true}
}

// Enabled reports whether the stage is selected
func (s StageSelection) Enabled(id StageID) bool {
	switch id {
	case StageNoiseReduction:
		return s.NoiseReduction
	case StageEqualizer:
		return s.Equalizer
	case StageDeEsser:
		return s.DeEsser
	case StageCompressor:
		return s.Compressor
	case StageSaturator:
		return s.Saturator
	case StageLimiter:
		return s.Limiter
	}
	return false
}

// Count returns the number of selected stages
func (s StageSelection) Count() int {
	n := 0
	for _, id := range CanonicalOrder {
		if s.Enabled(id) {
			n++
		}
	}
	return n
}

// Any reports whether at least one stage is selected
func (s StageSelection) Any() bool {
	return s.Count() > 0
}

// ChannelMode controls how multi-channel buffers reach the sample stages
type ChannelMode string

const (
	// PerChannel deinterleaves, processes each channel on its own, then reinterleaves
	PerChannel ChannelMode = "per-channel"

	// Interleaved treats the interleaved buffer as one mono stream, matching
	// earlier releases. Filters then run across channel boundaries.
	Interleaved ChannelMode = "interleaved"
)

// BandCorrection is an additive band adjustment: out = x + bandpass(x) * 10^(GainDB/20)
type BandCorrection struct {
	Low    float64 // Hz, lower band edge
	High   float64 // Hz, upper band edge
	GainDB float64 // signed correction factor in dB
}

// Config holds the DSP parameters for every stage
type Config struct {
	// ChannelMode selects per-channel or legacy single-stream processing
	ChannelMode ChannelMode

	// FilterOrder is the Butterworth prototype order for every filter in the chain
	FilterOrder int

	// SkipUnsupportedBands skips an equalizer or de-esser operation whose band
	// cannot be designed at the file's sample rate instead of failing the run.
	SkipUnsupportedBands bool

	// Equalizer - rumble highpass then two additive band corrections
	HighpassFreq float64 // Hz, rumble cutoff
	BoxyBand     BandCorrection
	PresenceBand BandCorrection

	// De-esser - subtract a share of the sibilance band
	DeessLow    float64 // Hz
	DeessHigh   float64 // Hz
	DeessAmount float64 // fraction of the band removed (0-1)

	// Compressor - RMS look-behind compressor on the fixed-point buffer
	CompThreshold float64 // dBFS
	CompRatio     float64 // n:1
	CompAttack    float64 // ms
	CompRelease   float64 // ms

	// Saturator - tanh soft clipper
	SatDrive   float64 // input gain before tanh
	SatCeiling float64 // output amplitude at tanh = 1

	// Limiter - whole-buffer peak normalisation
	LimiterTarget float64 // peak amplitude after limiting (16-bit scale)
}

// DefaultConfig returns the voice chain tuned for spoken word recordings.
func DefaultConfig() *Config {
	return &Config{
		ChannelMode:          PerChannel,
		FilterOrder:          filter.DefaultOrder, // 12dB/oct skirts
		SkipUnsupportedBands: false,

		// Equalizer
		HighpassFreq: 80.0,                                              // sub-bass rumble
		BoxyBand:     BandCorrection{Low: 200, High: 400, GainDB: -3.0}, // boxy resonance
		PresenceBand: BandCorrection{Low: 3000, High: 5000, GainDB: 3.0}, // presence

		// De-esser
		DeessLow:    5000.0,
		DeessHigh:   8000.0,
		DeessAmount: 0.4,

		// Compressor
		CompThreshold: -20.0,
		CompRatio:     4.0,
		CompAttack:    5.0,
		CompRelease:   50.0,

		// Saturator
		SatDrive:   1.02,
		SatCeiling: 32767.0,

		// Limiter - headroom below the 16-bit ceiling
		LimiterTarget: 30000.0,
	}
}

// Validate checks parameters that do not depend on the file's sample rate.
// Cutoffs are checked against Nyquist when each filter is designed.
func (cfg *Config) Validate() error {
	switch cfg.ChannelMode {
	case PerChannel, Interleaved:
	default:
		return fmt.Errorf("unknown channel mode %q", cfg.ChannelMode)
	}
	if cfg.FilterOrder < 1 {
		return fmt.Errorf("filter order must be at least 1, got %d", cfg.FilterOrder)
	}
	if cfg.DeessAmount < 0 || cfg.DeessAmount > 1 {
		return fmt.Errorf("de-esser amount must be within 0-1, got %g", cfg.DeessAmount)
	}
	if cfg.CompRatio < 1 {
		return fmt.Errorf("compressor ratio must be at least 1, got %g", cfg.CompRatio)
	}
	if cfg.CompAttack < 0 || cfg.CompRelease < 0 {
		return fmt.Errorf("compressor attack and release must not be negative")
	}
	if cfg.SatDrive <= 0 || cfg.SatCeiling <= 0 {
		return fmt.Errorf("saturator drive and ceiling must be positive")
	}
	if cfg.LimiterTarget <= 0 {
		return fmt.Errorf("limiter target must be positive, got %g", cfg.LimiterTarget)
	}
	return nil
}

// NamedFilter is one designed filter of the chain, used by reports
type NamedFilter struct {
	Stage StageID
	Name  string
	Spec  filter.Spec
}

// FilterChain lists the filter specifications the selected stages design at
// the given sample rate, in the order they are applied.
func (cfg *Config) FilterChain(sel StageSelection, sampleRate int) []NamedFilter {
	var chain []NamedFilter
	if sel.Equalizer {
		chain = append(chain,
			NamedFilter{StageEqualizer, "rumble highpass", filter.Spec{Kind: filter.Highpass, Order: cfg.FilterOrder, Low: cfg.HighpassFreq, SampleRate: sampleRate}},
			NamedFilter{StageEqualizer, "boxy band", cfg.BoxyBand.spec(cfg.FilterOrder, sampleRate)},
			NamedFilter{StageEqualizer, "presence band", cfg.PresenceBand.spec(cfg.FilterOrder, sampleRate)},
		)
	}
	if sel.DeEsser {
		chain = append(chain, NamedFilter{StageDeEsser, "sibilance band", filter.Spec{Kind: filter.Bandpass, Order: cfg.FilterOrder, Low: cfg.DeessLow, High: cfg.DeessHigh, SampleRate: sampleRate}})
	}
	return chain
}

func (b BandCorrection) spec(order, sampleRate int) filter.Spec {
	return filter.Spec{Kind: filter.Bandpass, Order: order, Low: b.Low, High: b.High, SampleRate: sampleRate}
}

// DbToLinear converts decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibel value.
// Inverse of DbToLinear.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return -120.0 // Practical floor for audio
	}
	return 20.0 * math.Log10(linear)
}
