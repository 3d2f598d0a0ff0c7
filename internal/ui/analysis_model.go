package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/voicelift/internal/logging"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// AnalysisModel is the Bubbletea model for analysis-only mode. Files are
// measured one at a time; results are printed after the program exits.
type AnalysisModel struct {
	Files   []string
	Current int // index being measured, -1 before the first starts

	StartTime time.Time

	spinnerIndex int

	// Results holds one entry per file, filled as files complete
	Results []AnalysisCompleteMsg
	Done    bool

	Width  int
	Height int
}

// AnalysisStartMsg signals a file is being measured
type AnalysisStartMsg struct {
	Index int
}

// AnalysisCompleteMsg carries the measurements for one file
type AnalysisCompleteMsg struct {
	Index int
	Data  logging.AnalysisData
	Error error
}

// AnalysisDoneMsg signals every file has been measured
type AnalysisDoneMsg struct{}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time

// NewAnalysisModel creates a new analysis UI model
func NewAnalysisModel(files []string) AnalysisModel {
	return AnalysisModel{
		Files:     files,
		Current:   -1,
		StartTime: time.Now(),
		Results:   make([]AnalysisCompleteMsg, len(files)),
	}
}

// Init initializes the model
func (m AnalysisModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil

	case AnalysisStartMsg:
		m.Current = msg.Index
		m.StartTime = time.Now()
		return m, nil

	case AnalysisCompleteMsg:
		if msg.Index >= 0 && msg.Index < len(m.Results) {
			m.Results[msg.Index] = msg
		}
		return m, nil

	case AnalysisDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m AnalysisModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Voicelift"))
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Analysis Mode"))
	b.WriteString("\n\n")

	if m.Current < 0 || m.Current >= len(m.Files) {
		b.WriteString("Waiting...")
		return b.String()
	}

	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	fmt.Fprintf(&b, "Analysing: %s", fileStyle.Render(filepath.Base(m.Files[m.Current])))
	if len(m.Files) > 1 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d of %d)", m.Current+1, len(m.Files))))
	}
	b.WriteString("\n\n")

	if !m.Done {
		spinner := lipgloss.NewStyle().Foreground(accentColor).Render(spinnerFrames[m.spinnerIndex])
		fmt.Fprintf(&b, "%s Measuring levels and spectrum... [%s]", spinner, formatElapsed(time.Since(m.StartTime)))
	}
	b.WriteString("\n")

	return b.String()
}
