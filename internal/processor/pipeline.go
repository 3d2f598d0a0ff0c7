package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Run is one buffer going through the chain. Samples are interleaved on the
// signed 16-bit amplitude scale.
type Run struct {
	Samples     []float64
	SampleRate  int
	Channels    int
	SampleWidth int // bytes per sample at the fixed-point boundary, 1-4 (0 means 2)
	Selection   StageSelection

	skipped []SkippedOperation
}

// SkippedOperation records a filter the run could not design and left out
type SkippedOperation struct {
	Stage  StageID
	Name   string
	Reason string
}

func (r *Run) skip(stage StageID, name string, err error) {
	r.skipped = append(r.skipped, SkippedOperation{Stage: stage, Name: name, Reason: err.Error()})
}

// Result is the processed buffer plus what ran
type Result struct {
	Samples []float64
	Applied []StageID
	Skipped []SkippedOperation
	Timings map[StageID]time.Duration
}

// StageProgress is reported before and after each selected stage
type StageProgress struct {
	Stage StageID
	Index int  // 1-based position among the selected stages
	Total int  // number of selected stages
	Done  bool // false when starting, true when finished
}

// ProgressFunc receives stage progress; it may be nil
type ProgressFunc func(StageProgress)

// Capabilities are the external collaborators the chain delegates to
type Capabilities struct {
	NoiseReducer NoiseReducer
	Compressor   DynamicsCompressor
}

// Pipeline runs selected stages in CanonicalOrder. It holds only immutable
// configuration so independent runs may share it across goroutines.
type Pipeline struct {
	cfg    *Config
	stages map[StageID]Stage
	log    logrus.FieldLogger
}

// NewPipeline builds the six stages from cfg. A nil compressor falls back to
// the built-in RMSCompressor; a nil logger discards output.
func NewPipeline(cfg *Config, caps Capabilities, log logrus.FieldLogger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processing config: %w", err)
	}
	if caps.Compressor == nil {
		caps.Compressor = NewRMSCompressor(cfg)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Pipeline{
		cfg: cfg,
		stages: map[StageID]Stage{
			StageNoiseReduction: &NoiseReductionStage{Reducer: caps.NoiseReducer, Mode: cfg.ChannelMode},
			StageEqualizer:      &EqualizerStage{cfg: cfg},
			StageDeEsser:        &DeEsserStage{cfg: cfg},
			StageCompressor:     &CompressorStage{Compressor: caps.Compressor},
			StageSaturator:      &SaturatorStage{cfg: cfg},
			StageLimiter:        &LimiterStage{cfg: cfg},
		},
		log: log,
	}, nil
}

// Config returns the configuration the pipeline was built with
func (p *Pipeline) Config() *Config {
	return p.cfg
}

// Process runs the selected stages over run.Samples. The input slice is never
// modified. Any stage failure aborts the run with a *StageError.
func (p *Pipeline) Process(ctx context.Context, run Run, progress ProgressFunc) (*Result, error) {
	if err := validateRun(&run); err != nil {
		return nil, err
	}

	total := run.Selection.Count()
	result := &Result{Timings: make(map[StageID]time.Duration, total)}
	samples := run.Samples
	index := 0

	for _, id := range CanonicalOrder {
		if !run.Selection.Enabled(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		index++
		if progress != nil {
			progress(StageProgress{Stage: id, Index: index, Total: total})
		}

		start := time.Now()
		out, err := p.stages[id].Apply(ctx, &run, samples)
		if err != nil {
			p.log.WithFields(logrus.Fields{"stage": id, "error": err}).Debug("stage failed")
			return nil, &StageError{Stage: id, Err: err}
		}
		if len(out) != len(samples) {
			return nil, &StageError{Stage: id, Err: fmt.Errorf("%w: stage returned %d samples for %d", ErrInvalidRun, len(out), len(samples))}
		}
		elapsed := time.Since(start)

		p.log.WithFields(logrus.Fields{
			"stage":    id,
			"samples":  len(out),
			"duration": elapsed,
		}).Debug("stage complete")

		samples = out
		result.Applied = append(result.Applied, id)
		result.Timings[id] = elapsed

		if progress != nil {
			progress(StageProgress{Stage: id, Index: index, Total: total, Done: true})
		}
	}

	if len(result.Applied) == 0 {
		samples = append([]float64(nil), run.Samples...)
	}
	result.Samples = samples
	result.Skipped = run.skipped

	return result, nil
}

// validateRun rejects impossible stream parameters and fills the default width
func validateRun(run *Run) error {
	if run.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d Hz", ErrInvalidRun, run.SampleRate)
	}
	if run.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidRun, run.Channels)
	}
	if run.SampleWidth == 0 {
		run.SampleWidth = 2
	}
	if run.SampleWidth < 1 || run.SampleWidth > 4 {
		return fmt.Errorf("%w: sample width %d bytes", ErrInvalidRun, run.SampleWidth)
	}
	run.skipped = nil
	return nil
}
