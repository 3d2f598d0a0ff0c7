package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/processor"
)

func newTestModel(t *testing.T, files ...string) (Model, *bool) {
	t.Helper()
	cancelled := false
	log, _ := test.NewNullLogger()
	m := NewModel(files, 2, 6, func() { cancelled = true }, log)
	return m, &cancelled
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModelFileLifecycle(t *testing.T) {
	m, _ := newTestModel(t, "a.wav", "b.wav")
	in := &analysis.Levels{PeakDBFS: -3, RMSDBFS: -24}

	m = update(t, m, FileStartMsg{Index: 1, OutputPath: "b - edit.wav"})
	assert.Equal(t, StatusDecoding, m.Files[1].Status)
	assert.Equal(t, StatusQueued, m.Files[0].Status)

	m = update(t, m, ProgressMsg{Index: 1, Progress: processor.Progress{
		Phase:  processor.PhaseProcessing,
		Stage:  processor.StageProgress{Stage: processor.StageDeEsser, Index: 3, Total: 6},
		Levels: in,
	}})
	fp := m.Files[1]
	assert.Equal(t, StatusProcessing, fp.Status)
	assert.Equal(t, processor.StageDeEsser, fp.Stage)
	assert.Same(t, in, fp.Input)
	assert.InDelta(t, 0.1+0.8*2.0/6.0, fp.Progress(), 1e-9)
	assert.Equal(t, "Stage 3/6: De-esser", phaseLabel(fp))

	m = update(t, m, ProgressMsg{Index: 1, Progress: processor.Progress{Phase: processor.PhaseEncoding}})
	assert.Equal(t, StatusEncoding, m.Files[1].Status)
	assert.Same(t, in, m.Files[1].Input, "levels survive later progress without them")

	out := &analysis.Levels{PeakDBFS: -0.8, RMSDBFS: -14}
	m = update(t, m, FileCompleteMsg{Index: 1, ReportPath: "b - edit.log", Result: &processor.ProcessingResult{
		OutputPath: "out/b - edit.wav",
		Input:      in,
		Output:     out,
	}})
	fp = m.Files[1]
	assert.Equal(t, StatusComplete, fp.Status)
	assert.Equal(t, "out/b - edit.wav", fp.OutputPath)
	assert.Equal(t, 1.0, fp.Progress())
	assert.Equal(t, 1, m.CompletedFiles)
	assert.Contains(t, levelSummary(fp.Input, fp.Output), "Δ +10.0 dB")
}

func TestModelOutcomes(t *testing.T) {
	m, _ := newTestModel(t, "a.wav", "b.wav", "c.wav")

	m = update(t, m, FileCompleteMsg{Index: 0, Error: errors.New("decode failed")})
	m = update(t, m, FileCompleteMsg{Index: 1, Error: batch.ErrNotStarted})
	m = update(t, m, FileCompleteMsg{Index: 2, Error: context.Canceled})

	assert.Equal(t, StatusError, m.Files[0].Status)
	assert.Equal(t, StatusCancelled, m.Files[1].Status)
	assert.Equal(t, StatusCancelled, m.Files[2].Status)
	assert.Equal(t, 1, m.FailedFiles)
	assert.Equal(t, 2, m.CancelledFiles)
	assert.Equal(t, 0, m.CompletedFiles)
}

func TestModelUnknownIndex(t *testing.T) {
	m, _ := newTestModel(t, "a.wav")
	m = update(t, m, FileStartMsg{Index: 5})
	m = update(t, m, FileCompleteMsg{Index: -1})
	assert.Equal(t, StatusQueued, m.Files[0].Status)
	assert.Zero(t, m.FailedFiles+m.CompletedFiles)
}

func TestModelCancel(t *testing.T) {
	m, cancelled := newTestModel(t, "a.wav")
	ctrlC := tea.KeyMsg{Type: tea.KeyCtrlC}

	next, cmd := m.Update(ctrlC)
	m = next.(Model)
	assert.True(t, *cancelled)
	assert.True(t, m.Cancelling)
	assert.Nil(t, cmd, "first Ctrl-C keeps the program running")

	_, cmd = m.Update(ctrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelAllComplete(t *testing.T) {
	m, _ := newTestModel(t, "a.wav")
	m.Width = 80

	next, cmd := m.Update(AllCompleteMsg{Summary: batch.Summary{Succeeded: 1}})
	m = next.(Model)
	assert.True(t, m.Done)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, m.View(), "Processing Complete")
}

func TestProgressStages(t *testing.T) {
	tests := []struct {
		name string
		fp   FileProgress
		want float64
	}{
		{"queued", FileProgress{Status: StatusQueued}, 0},
		{"decoding", FileProgress{Status: StatusDecoding}, 0},
		{"measured", FileProgress{Status: StatusProcessing}, 0.1},
		{"first stage done", FileProgress{Status: StatusProcessing, StageIndex: 1, StageTotal: 4, StageDone: true}, 0.3},
		{"last stage done", FileProgress{Status: StatusProcessing, StageIndex: 4, StageTotal: 4, StageDone: true}, 0.9},
		{"encoding", FileProgress{Status: StatusEncoding}, 0.9},
		{"error", FileProgress{Status: StatusError}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.fp.Progress(), 1e-9)
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:05", formatElapsed(5_400_000_000))
	assert.Equal(t, "01:01:01", formatElapsed(3661_000_000_000))
}

func TestAnalysisModel(t *testing.T) {
	m := NewAnalysisModel([]string{"a.wav", "b.wav"})
	next, _ := m.Update(AnalysisStartMsg{Index: 1})
	m = next.(AnalysisModel)
	assert.Equal(t, 1, m.Current)

	next, _ = m.Update(AnalysisCompleteMsg{Index: 1, Error: errors.New("bad")})
	m = next.(AnalysisModel)
	assert.EqualError(t, m.Results[1].Error, "bad")

	next, cmd := m.Update(AnalysisDoneMsg{})
	m = next.(AnalysisModel)
	assert.True(t, m.Done)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
