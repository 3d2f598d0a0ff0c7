package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/audio"
	"github.com/linuxmatters/voicelift/internal/mains"
	"github.com/linuxmatters/voicelift/internal/processor"
	"github.com/sirupsen/logrus"
)

func fakeResult(dir string) *processor.ProcessingResult {
	in := cleanLevels()
	in.NoiseFloorDBFS = -40 // fires background_noise_high

	out := cleanLevels()
	out.PeakDBFS = -0.8
	out.RMSDBFS = -14

	return &processor.ProcessingResult{
		InputPath:  filepath.Join(dir, "show.flac"),
		OutputPath: filepath.Join(dir, "show - edit.wav"),
		Metadata: &audio.Metadata{
			Duration:   90,
			SampleRate: 48000,
			Channels:   2,
			BitDepth:   24,
			Format:     "flac",
		},
		Input:  in,
		Output: out,
		Applied: []processor.StageID{
			processor.StageEqualizer,
			processor.StageLimiter,
		},
		Skipped: []processor.SkippedOperation{
			{Stage: processor.StageDeEsser, Name: "sibilance band", Reason: "cutoff above Nyquist"},
		},
		Timings: map[processor.StageID]time.Duration{
			processor.StageEqualizer: 120 * time.Millisecond,
			processor.StageLimiter:   4 * time.Millisecond,
		},
		Elapsed:   2 * time.Second,
		Selection: processor.StageSelection{Equalizer: true, Limiter: true},
		Config:    processor.DefaultConfig(),
	}
}

func TestWriteReport(t *testing.T) {
	res := fakeResult(t.TempDir())
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	WriteReport(&buf, ReportData{
		InputPath: res.InputPath,
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		Result:    res,
	})
	got := buf.String()

	for _, want := range []string{
		"Voicelift Processing Report",
		"File:      show.flac",
		"Output:    show - edit.wav",
		"FLAC, 48000 Hz, 24-bit, stereo",
		"Processing Summary",
		"Total:           3.0s (30x real-time)",
		"Stages (in processing order)",
		" 2. Equalizer        APPLIED",
		" 1. Noise reduction  DISABLED",
		"skipped sibilance band: cutoff above Nyquist",
		"Filter Chain",
		"b = [",
		"response: 50 Hz",
		"Level Measurements",
		"Speech Bands",
		"Boxy (200-400 Hz) energy",
		"Presence (3k-5k Hz) share",
		"Recording Tips",
		"Background noise is high",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q\n%s", want, got)
		}
	}

	if strings.Contains(got, "De-esser         APPLIED") {
		t.Error("de-esser reported as applied")
	}
}

func TestWriteReportWithoutLevels(t *testing.T) {
	res := fakeResult(t.TempDir())
	res.Input = nil
	res.Output = nil
	res.Config = nil

	var buf bytes.Buffer
	WriteReport(&buf, ReportData{InputPath: res.InputPath, Result: res})
	got := buf.String()

	for _, absent := range []string{"Level Measurements", "Filter Chain", "Recording Tips"} {
		if strings.Contains(got, absent) {
			t.Errorf("report should omit %q", absent)
		}
	}
	// Elapsed stands in for a missing start/end time
	if !strings.Contains(got, "Total:           2.0s") {
		t.Errorf("total should fall back to elapsed time:\n%s", got)
	}
}

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	res := fakeResult(dir)

	path, err := GenerateReport(ReportData{InputPath: res.InputPath, Result: res})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if want := filepath.Join(dir, "show - edit.log"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("Voicelift Processing Report")) {
		t.Errorf("unexpected report start: %q", data[:40])
	}

	if _, err := GenerateReport(ReportData{InputPath: "x.wav"}); err == nil {
		t.Error("expected error without a result")
	}
}

func TestReportPath(t *testing.T) {
	if got := ReportPath("/tmp/a - edit.wav"); got != "/tmp/a - edit.log" {
		t.Errorf("ReportPath = %q", got)
	}
}

func TestInterpretations(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{interpretCentroid(1800), "balanced, natural voice"},
		{interpretCentroid(7000), "very bright, potentially harsh"},
		{interpretCrest(0), ""},
		{interpretCrest(5), "dense, heavily compressed"},
		{interpretCrest(16), "natural speech dynamics"},
		{interpretPeak(0), "clipping"},
		{interpretPeak(-0.5), "near clipping"},
		{interpretPeak(-6), ""},
		{interpretPeak(-30), "very quiet"},
		{interpretBand("Boxy", 0.3), "muddy low mids"},
		{interpretBand("Presence", 0.005), "dull, lacks clarity"},
		{interpretBand("Sibilance", 0.01), ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBandRange(t *testing.T) {
	if got := bandRange(analysis.Band{Low: 5000, High: 8000}); got != "(5k-8k Hz)" {
		t.Errorf("bandRange = %q", got)
	}
	if got := bandRange(analysis.Band{Low: 200, High: 1500}); got != "(200-1.5k Hz)" {
		t.Errorf("bandRange = %q", got)
	}
}

func TestDisplayAnalysisResults(t *testing.T) {
	m := cleanLevels()
	m.CrestDB = 4

	var buf bytes.Buffer
	DisplayAnalysisResults(&buf, AnalysisData{
		InputPath: "/rec/guest.mp3",
		Metadata:  &audio.Metadata{Duration: 125, SampleRate: 44100, Channels: 1, BitDepth: 16, Format: "mp3"},
		Levels:    m,
		Mains:     &mains.Detection{Hz: 60, Source: "fixed"},
	})
	got := buf.String()

	for _, want := range []string{
		"ANALYSIS: guest.mp3",
		"Duration:    2m 5s",
		"Channels:    mono",
		"MP3, 16-bit",
		"Signal/Noise:   48.0 dB",
		"60 Hz (fixed)",
		"RECORDING TIPS",
		"heavily compressed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{125 * time.Second, "2m 5s"},
		{3725 * time.Second, "1h 2m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDebugLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), DebugLogName)

	log, closer, err := NewDebugLogger(path, false)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}
	log.Debug("hidden")
	log.WithField("file", "a.wav").Warn("shown")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug message written without verbose")
	}
	if !strings.Contains(string(data), "file=a.wav") {
		t.Errorf("warning missing fields: %q", data)
	}

	verbose, closer, err := NewDebugLogger(path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if verbose.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", verbose.GetLevel())
	}

	if Discard().IsLevelEnabled(logrus.ErrorLevel) {
		t.Error("Discard logger should drop errors")
	}
}
