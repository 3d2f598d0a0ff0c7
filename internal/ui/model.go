// Package ui provides the Bubbletea terminal user interface for voicelift
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/processor"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusDecoding
	StatusProcessing
	StatusEncoding
	StatusComplete
	StatusError
	StatusCancelled
)

// active reports whether a worker currently holds the file
func (s FileStatus) active() bool {
	return s == StatusDecoding || s == StatusProcessing || s == StatusEncoding
}

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath  string
	OutputPath string
	ReportPath string
	Status     FileStatus

	// Stage tracking during StatusProcessing
	Stage      processor.StageID
	StageIndex int
	StageTotal int
	StageDone  bool

	StartTime   time.Time
	ElapsedTime time.Duration

	Input  *analysis.Levels // measured once decoded
	Output *analysis.Levels
	Result *processor.ProcessingResult

	Error error
}

// Progress estimates completion of the file from 0.0 to 1.0. Decoding and
// encoding take a fixed share; the rest is split between the stages.
func (fp FileProgress) Progress() float64 {
	switch fp.Status {
	case StatusDecoding:
		return 0
	case StatusProcessing:
		if fp.StageTotal == 0 {
			return 0.1
		}
		done := fp.StageIndex - 1
		if fp.StageDone {
			done++
		}
		return 0.1 + 0.8*float64(done)/float64(fp.StageTotal)
	case StatusEncoding:
		return 0.9
	case StatusComplete:
		return 1
	}
	return 0
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	Files          []FileProgress
	TotalFiles     int
	Workers        int
	Stages         int
	CompletedFiles int
	FailedFiles    int
	CancelledFiles int

	StartTime  time.Time
	Done       bool
	Cancelling bool

	cancel context.CancelFunc
	log    logrus.FieldLogger

	Width  int
	Height int
}

// NewModel creates a UI model for the given input files. cancel is called on
// the first Ctrl-C so in-flight files stop at the next stage boundary.
func NewModel(inputFiles []string, workers, stages int, cancel context.CancelFunc, log logrus.FieldLogger) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{InputPath: path, Status: StatusQueued}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return Model{
		Files:      files,
		TotalFiles: len(inputFiles),
		Workers:    workers,
		Stages:     stages,
		StartTime:  time.Now(),
		cancel:     cancel,
		log:        log,
	}
}

// Init initializes the model. Batch workers deliver messages with
// tea.Program.Send, so there is nothing to start.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.Done || m.Cancelling || m.cancel == nil {
				return m, tea.Quit
			}
			m.log.Info("cancellation requested")
			m.Cancelling = true
			m.cancel()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case FileStartMsg:
		if fp := m.file(msg.Index); fp != nil {
			fp.Status = StatusDecoding
			fp.OutputPath = msg.OutputPath
			fp.StartTime = time.Now()
		}
		return m, nil

	case ProgressMsg:
		if fp := m.file(msg.Index); fp != nil {
			*fp = updateFileProgress(*fp, msg.Progress)
		}
		return m, nil

	case FileCompleteMsg:
		if fp := m.file(msg.Index); fp != nil {
			m.complete(fp, msg)
		}
		return m, nil

	case AllCompleteMsg:
		m.log.WithFields(logrus.Fields{
			"succeeded": msg.Summary.Succeeded,
			"failed":    msg.Summary.Failed,
			"cancelled": msg.Summary.Cancelled,
		}).Debug("batch complete")
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// file returns the tracked file at index, or nil for an unknown index
func (m *Model) file(index int) *FileProgress {
	if index < 0 || index >= len(m.Files) {
		m.log.WithField("index", index).Warn("message for unknown file")
		return nil
	}
	return &m.Files[index]
}

func (m *Model) complete(fp *FileProgress, msg FileCompleteMsg) {
	if !fp.StartTime.IsZero() {
		fp.ElapsedTime = time.Since(fp.StartTime)
	}
	fp.Error = msg.Error
	fp.ReportPath = msg.ReportPath

	switch {
	case msg.Error == nil:
		fp.Status = StatusComplete
		fp.Result = msg.Result
		if msg.Result != nil {
			fp.OutputPath = msg.Result.OutputPath
			fp.Input = msg.Result.Input
			fp.Output = msg.Result.Output
		}
		m.CompletedFiles++
	case errors.Is(msg.Error, batch.ErrNotStarted), errors.Is(msg.Error, context.Canceled):
		fp.Status = StatusCancelled
		m.CancelledFiles++
	default:
		fp.Status = StatusError
		m.FailedFiles++
	}
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// updateFileProgress applies a processor progress report to a file
func updateFileProgress(fp FileProgress, p processor.Progress) FileProgress {
	switch p.Phase {
	case processor.PhaseDecoding:
		fp.Status = StatusDecoding
	case processor.PhaseProcessing:
		fp.Status = StatusProcessing
		if p.Stage.Stage != "" {
			fp.Stage = p.Stage.Stage
			fp.StageIndex = p.Stage.Index
			fp.StageTotal = p.Stage.Total
			fp.StageDone = p.Stage.Done
		}
	case processor.PhaseEncoding:
		fp.Status = StatusEncoding
	}

	if p.Levels != nil {
		fp.Input = p.Levels
	}
	if !fp.StartTime.IsZero() {
		fp.ElapsedTime = time.Since(fp.StartTime)
	}
	return fp
}
