package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/voicelift/internal/audio"
	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/denoise"
	"github.com/linuxmatters/voicelift/internal/logging"
	"github.com/linuxmatters/voicelift/internal/mains"
	"github.com/linuxmatters/voicelift/internal/processor"
)

func parse(t *testing.T, args ...string) *CLI {
	t.Helper()
	c := &CLI{}
	parser, err := kong.New(c, kong.Name("voicelift"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return c
}

func TestSelection(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want processor.StageSelection
	}{
		{"defaults to every stage", []string{"a.wav"}, processor.AllStages()},
		{
			"negated stages",
			[]string{"--no-sat", "--no-deess", "a.wav"},
			processor.StageSelection{NoiseReduction: true, Equalizer: true, Compressor: true, Limiter: true},
		},
		{"only", []string{"--only=eq,limit", "a.wav"}, processor.StageSelection{Equalizer: true, Limiter: true}},
		{"all overrides", []string{"--all", "--no-noise", "--only=limit", "a.wav"}, processor.AllStages()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.args...).Selection())
		})
	}
}

func TestProcessingFlags(t *testing.T) {
	c := parse(t, "--channel-mode=interleaved", "--skip-unsupported-bands", "--jobs=3", "-o", "out", "a.wav", "b.wav")

	cfg := c.ProcessingConfig()
	assert.Equal(t, processor.Interleaved, cfg.ChannelMode)
	assert.True(t, cfg.SkipUnsupportedBands)
	assert.Equal(t, 30000.0, cfg.LimiterTarget, "DSP defaults are kept")
	assert.Equal(t, 3, c.Jobs)
	assert.Equal(t, []string{"a.wav", "b.wav"}, []string{filepath.Base(c.Files[0]), filepath.Base(c.Files[1])})
	assert.Equal(t, processor.DefaultSuffix, c.OutputSuffix())

	assert.Equal(t, "_x", parse(t, "--suffix=_x", "a.wav").OutputSuffix())
	assert.Equal(t, "off", parse(t, "a.wav").Dehum)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicelift.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"jobs": 2, "dehum": "60", "sat": false}`), 0o644))

	c := &CLI{}
	parser, err := kong.New(c, kong.Configuration(kong.JSON, path))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"a.wav"})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Jobs)
	assert.Equal(t, "60", c.Dehum)
	assert.False(t, c.Sat)
	assert.True(t, c.Limit)
}

func TestNewNoiseReducer(t *testing.T) {
	off := newNoiseReducer(mains.Detection{Source: mains.SettingOff})
	require.Len(t, off, 1)
	assert.IsType(t, &denoise.SpectralGate{}, off[0])

	hum := newNoiseReducer(mains.Detection{Hz: 50, Source: "fixed"})
	require.Len(t, hum, 2)
	assert.IsType(t, &denoise.HumRemover{}, hum[0])
}

func TestRunPlain(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "voice.wav")
	writeTone(t, good)
	missing := filepath.Join(dir, "missing.wav")

	c := parse(t, "--only=limit", "--logs", "--no-tui", dir)
	pipeline, err := processor.NewPipeline(c.ProcessingConfig(), processor.Capabilities{}, logging.Discard())
	require.NoError(t, err)
	opts := processor.Options{Selection: c.Selection(), Suffix: c.OutputSuffix()}

	s := runPlain(context.Background(), c, []string{good, missing}, pipeline, opts, logging.Discard())
	assert.Equal(t, batch.Summary{Succeeded: 1, Failed: 1}, s)
	assert.FileExists(t, filepath.Join(dir, "voice - edit.wav"))
	assert.FileExists(t, filepath.Join(dir, "voice - edit.log"))
}

func TestAnalyseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTone(t, path)

	data, err := analyseFile(path, mains.Detection{Hz: 60, Source: "fixed"})
	require.NoError(t, err)
	require.NotNil(t, data.Levels)
	assert.Equal(t, 44100, data.Metadata.SampleRate)
	assert.Equal(t, 60, data.Mains.Hz)
	assert.InDelta(t, -6.0, data.Levels.PeakDBFS, 0.1)

	noHum, err := analyseFile(path, mains.Detection{Source: mains.SettingOff})
	require.NoError(t, err)
	assert.Nil(t, noHum.Mains)

	_, err = analyseFile(filepath.Join(t.TempDir(), "none.wav"), mains.Detection{})
	assert.Error(t, err)
}

// writeTone writes one second of a 1 kHz sine at -6 dBFS
func writeTone(t *testing.T, path string) {
	t.Helper()
	const rate = 44100
	samples := make([]float64, rate)
	for i := range samples {
		samples[i] = 16384 * math.Sin(2*math.Pi*1000*float64(i)/rate)
	}
	require.NoError(t, audio.EncodeWAV(path, &audio.Buffer{
		Samples:     samples,
		SampleRate:  rate,
		Channels:    1,
		SampleWidth: 2,
		Format:      "wav",
	}))
}
