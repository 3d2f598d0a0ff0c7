package ui

import (
	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/processor"
)

// FileStartMsg indicates a worker has picked up a file
type FileStartMsg struct {
	Index      int
	OutputPath string
}

// ProgressMsg carries a phase or stage update for one file
type ProgressMsg struct {
	Index    int
	Progress processor.Progress
}

// FileCompleteMsg indicates a file has finished, failed or been cancelled
type FileCompleteMsg struct {
	Index      int
	Result     *processor.ProcessingResult
	ReportPath string // empty unless --logs
	Error      error
}

// AllCompleteMsg indicates the batch has ended
type AllCompleteMsg struct {
	Summary batch.Summary
}
