package processor

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/voicelift/internal/audio"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, suffix, want string
	}{
		{"/rec/show.wav", "", "", "/rec/show - edit.wav"},
		{"/rec/show.mp3", "", "", "/rec/show - edit.wav"},
		{"/rec/show.final.flac", "/out", "", "/out/show.final - edit.wav"},
		{"show.ogg", "", "-clean", "show-clean.wav"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.dir, tt.suffix); got != tt.want {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.dir, tt.suffix, got, tt.want)
		}
	}
}

func TestProcessAudio_EndToEnd(t *testing.T) {
	input := generateTestAudio(t, "interview.wav", TestAudioOptions{
		DurationSecs: 1.5,
		SampleRate:   44100,
		Channels:     2,
		ToneFreqs:    []float64{220, 3500},
		ToneLevel:    -20,
		NoiseLevel:   -50,
		SilenceGap: struct {
			Start    float64
			Duration float64
		}{Start: 0.5, Duration: 0.25},
	})

	var phases []Phase
	var stagesDone int
	res, err := ProcessAudio(context.Background(), input, newTestPipeline(t, nil), Options{Selection: AllStages()}, func(p Progress) {
		if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
			phases = append(phases, p.Phase)
		}
		if p.Stage.Done {
			stagesDone++
		}
	})
	if err != nil {
		t.Fatalf("ProcessAudio failed: %v", err)
	}

	wantPath := filepath.Join(filepath.Dir(input), "interview - edit.wav")
	if res.OutputPath != wantPath {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, wantPath)
	}
	if want := []Phase{PhaseDecoding, PhaseProcessing, PhaseEncoding}; len(phases) != 3 || phases[0] != want[0] || phases[1] != want[1] || phases[2] != want[2] {
		t.Errorf("phases = %v, want %v", phases, want)
	}
	if stagesDone != 6 {
		t.Errorf("%d stages reported done, want 6", stagesDone)
	}
	if len(res.Applied) != 6 {
		t.Errorf("Applied = %v", res.Applied)
	}

	out, err := audio.Decode(res.OutputPath)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if out.SampleRate != 44100 || out.Channels != 2 || out.SampleWidth != 2 {
		t.Errorf("output format %d Hz / %d ch / %d bytes", out.SampleRate, out.Channels, out.SampleWidth)
	}
	if out.Frames() != 66150 {
		t.Errorf("output has %d frames, want 66150", out.Frames())
	}
	if math.Abs(res.Metadata.Duration-1.5) > 1e-9 {
		t.Errorf("input duration = %g, want 1.5", res.Metadata.Duration)
	}

	// 30000 truncates to 29999 or 30000 at 16-bit
	if peak := peakAbs(out.Samples); peak < 29999 || peak > 30000 {
		t.Errorf("output peak = %.0f, want 30000", peak)
	}
	if res.Input == nil || res.Output == nil {
		t.Fatal("levels not measured")
	}
	if math.Abs(res.Output.PeakDBFS-LinearToDb(30000/audio.FullScale16)) > 0.01 {
		t.Errorf("output peak = %.2f dBFS", res.Output.PeakDBFS)
	}
}

func TestProcessAudio_LimiterOnly(t *testing.T) {
	input := generateTestAudio(t, "quiet.wav", TestAudioOptions{ToneFreqs: []float64{1000}, ToneLevel: -30})
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	res, err := ProcessAudio(context.Background(), input, newTestPipeline(t, nil), Options{
		Selection: StageSelection{Limiter: true},
		OutputDir: outDir,
		Suffix:    "_lim",
	}, nil)
	if err != nil {
		t.Fatalf("ProcessAudio failed: %v", err)
	}
	if res.OutputPath != filepath.Join(outDir, "quiet_lim.wav") {
		t.Errorf("OutputPath = %q", res.OutputPath)
	}

	out, err := audio.Decode(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if peak := peakAbs(out.Samples); peak < 29999 || peak > 30000 {
		t.Errorf("output peak = %.0f, want 30000", peak)
	}
}

func TestProcessAudio_Errors(t *testing.T) {
	p := newTestPipeline(t, nil)
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ProcessAudio(context.Background(), filepath.Join(dir, "nope.wav"), p, Options{Selection: AllStages()}, nil)
		if !errors.Is(err, audio.ErrDecode) {
			t.Errorf("error = %v, want ErrDecode", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := ProcessAudio(context.Background(), path, p, Options{Selection: AllStages()}, nil)
		if !errors.Is(err, audio.ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("edited input gets a new name", func(t *testing.T) {
		input := generateTestAudio(t, "take - edit.wav", TestAudioOptions{ToneFreqs: []float64{440}, ToneLevel: -10, DurationSecs: 0.1})
		before, err := os.ReadFile(input)
		if err != nil {
			t.Fatal(err)
		}

		res, err := ProcessAudio(context.Background(), input, p, Options{Selection: AllStages()}, nil)
		if err != nil {
			t.Fatalf("ProcessAudio failed: %v", err)
		}
		if filepath.Base(res.OutputPath) != "take - edit - edit.wav" {
			t.Errorf("OutputPath = %q", res.OutputPath)
		}
		after, _ := os.ReadFile(input)
		if string(after) != string(before) {
			t.Error("input file was modified")
		}
	})

	t.Run("stage failure leaves no output", func(t *testing.T) {
		input := generateTestAudio(t, "narrow.wav", TestAudioOptions{SampleRate: 8000, ToneFreqs: []float64{300}, ToneLevel: -10})
		_, err := ProcessAudio(context.Background(), input, p, Options{Selection: AllStages()}, nil)

		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("error = %v, want *StageError", err)
		}
		if _, statErr := os.Stat(OutputPath(input, "", "")); !os.IsNotExist(statErr) {
			t.Errorf("output written despite failure: %v", statErr)
		}
	})
}

func TestSameFile(t *testing.T) {
	if !sameFile("a/b.wav", "a/../a/b.wav") {
		t.Error("equivalent relative paths not matched")
	}
	if sameFile("a.wav", "a - edit.wav") {
		t.Error("distinct paths matched")
	}
}
