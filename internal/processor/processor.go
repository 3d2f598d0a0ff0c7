package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/audio"
)

// DefaultSuffix is appended to the input's base name to form the output name
const DefaultSuffix = " - edit"

// Phase is the coarse step of a file's processing
type Phase string

// Processing phases reported through Progress
const (
	PhaseDecoding   Phase = "Decoding"
	PhaseProcessing Phase = "Processing"
	PhaseEncoding   Phase = "Encoding"
)

// Progress is reported while a file is processed
type Progress struct {
	Phase    Phase
	Stage    StageProgress // set during PhaseProcessing
	Metadata *audio.Metadata
	Levels   *analysis.Levels // input levels once decoded
}

// Options controls where ProcessAudio writes and which stages run
type Options struct {
	Selection StageSelection
	OutputDir string // empty writes next to the input
	Suffix    string // empty means DefaultSuffix
}

// ProcessingResult contains the results of processing one file
type ProcessingResult struct {
	InputPath  string
	OutputPath string
	Metadata   *audio.Metadata
	Input      *analysis.Levels
	Output     *analysis.Levels
	Applied    []StageID
	Skipped    []SkippedOperation
	Timings    map[StageID]time.Duration
	Elapsed    time.Duration
	Selection  StageSelection
	Config     *Config // parameters used, for reports
}

// OutputPath returns "<dir>/<name><suffix>.wav" for an input file
func OutputPath(inputPath, outputDir, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+suffix+".wav")
}

// ProcessAudio decodes inputPath, runs the selected stages and writes a
// 16-bit WAV. Decode and encode failures wrap audio.ErrDecode and
// audio.ErrEncode; stage failures are *StageError.
func ProcessAudio(ctx context.Context, inputPath string, p *Pipeline, opts Options, progressCallback func(Progress)) (*ProcessingResult, error) {
	start := time.Now()
	report := func(pr Progress) {
		if progressCallback != nil {
			progressCallback(pr)
		}
	}

	report(Progress{Phase: PhaseDecoding})
	buf, err := audio.Decode(inputPath)
	if err != nil {
		return nil, err
	}
	if len(buf.Samples) == 0 {
		return nil, fmt.Errorf("%s: %w", inputPath, ErrEmptyBuffer)
	}
	metadata := buf.Metadata()
	inputLevels := analysis.Measure(buf.Samples, buf.SampleRate, buf.Channels)

	outputPath := OutputPath(inputPath, opts.OutputDir, opts.Suffix)
	if sameFile(inputPath, outputPath) {
		return nil, fmt.Errorf("output %s would overwrite the input", outputPath)
	}

	report(Progress{Phase: PhaseProcessing, Metadata: metadata, Levels: inputLevels})
	res, err := p.Process(ctx, Run{
		Samples:     buf.Samples,
		SampleRate:  buf.SampleRate,
		Channels:    buf.Channels,
		SampleWidth: buf.SampleWidth,
		Selection:   opts.Selection,
	}, func(sp StageProgress) {
		report(Progress{Phase: PhaseProcessing, Stage: sp, Metadata: metadata, Levels: inputLevels})
	})
	if err != nil {
		return nil, err
	}

	report(Progress{Phase: PhaseEncoding, Metadata: metadata, Levels: inputLevels})
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrEncode, err)
		}
	}
	out := &audio.Buffer{
		Samples:     res.Samples,
		SampleRate:  buf.SampleRate,
		Channels:    buf.Channels,
		SampleWidth: 2,
		Format:      "wav",
	}
	if err := audio.EncodeWAV(outputPath, out); err != nil {
		return nil, err
	}

	return &ProcessingResult{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Metadata:   metadata,
		Input:      inputLevels,
		Output:     analysis.Measure(res.Samples, buf.SampleRate, buf.Channels),
		Applied:    res.Applied,
		Skipped:    res.Skipped,
		Timings:    res.Timings,
		Elapsed:    time.Since(start),
		Selection:  opts.Selection,
		Config:     p.Config(),
	}, nil
}

// sameFile reports whether two paths name the same file
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
