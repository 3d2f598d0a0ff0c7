package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/voicelift/internal/analysis"
)

// Colour palette
var (
	accentColor  = lipgloss.Color("#0087AF")
	okColor      = lipgloss.Color("#00AA00")
	busyColor    = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#D70000")
	mutedColor   = lipgloss.Color("#888888")
	trackColor   = lipgloss.Color("#444444")
	contentWidth = 64
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

func icon(c lipgloss.Color, s string) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderOverallProgress(m))
	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := titleStyle.Render("Voicelift - Speech Enhancement")
	subtitle := subtitleStyle.Render(fmt.Sprintf("Processing %d file(s) through %d stage(s) with %d worker(s)",
		m.TotalFiles, m.Stages, m.Workers))
	return title + "\n" + subtitle
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		return fmt.Sprintf(" %s %s → %s\n   %s",
			icon(okColor, "✓"), fileName, filepath.Base(file.OutputPath),
			levelSummary(file.Input, file.Output))

	case StatusDecoding, StatusProcessing, StatusEncoding:
		return fmt.Sprintf(" %s %s → %s\n%s",
			icon(busyColor, "⚙"), fileName, filepath.Base(file.OutputPath),
			renderFileDetails(file))

	case StatusError:
		return fmt.Sprintf(" %s %s\n   Error: %v", icon(errorColor, "✗"), fileName, file.Error)

	case StatusCancelled:
		return fmt.Sprintf(" %s %s\n   %s", icon(mutedColor, "–"), fileName, mutedStyle.Render("Cancelled"))

	default:
		return fmt.Sprintf(" %s %s\n   %s", icon(mutedColor, "○"), fileName, mutedStyle.Render("Queued..."))
	}
}

// phaseLabel describes what the worker is doing with the file
func phaseLabel(file FileProgress) string {
	switch file.Status {
	case StatusDecoding:
		return "Decoding"
	case StatusEncoding:
		return "Encoding WAV"
	case StatusProcessing:
		if file.StageTotal == 0 {
			return "Measuring input"
		}
		return fmt.Sprintf("Stage %d/%d: %s", file.StageIndex, file.StageTotal, file.Stage.Label())
	}
	return ""
}

// renderFileDetails renders detailed progress for an active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(contentWidth)

	var content strings.Builder
	content.WriteString(phaseLabel(file))
	content.WriteString("\n")
	content.WriteString(renderProgressBar(file.Progress(), 40))
	content.WriteString("\n\n")
	fmt.Fprintf(&content, "⏱  Elapsed: %s", formatElapsed(file.ElapsedTime))

	if in := file.Input; in != nil {
		fmt.Fprintf(&content, "\n📊 Input Peak: %.1f dBFS | RMS: %.1f dBFS | Floor: %.1f dBFS",
			in.PeakDBFS, in.RMSDBFS, in.NoiseFloorDBFS)
	}

	return box.Render(content.String())
}

// levelSummary compares input and output levels of a finished file
func levelSummary(in, out *analysis.Levels) string {
	if in == nil || out == nil {
		return ""
	}
	return fmt.Sprintf("Peak: %.1f → %.1f dBFS | RMS: %.1f → %.1f dBFS | Δ %+.1f dB",
		in.PeakDBFS, out.PeakDBFS, in.RMSDBFS, out.RMSDBFS, out.RMSDBFS-in.RMSDBFS)
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	bar := lipgloss.NewStyle().Foreground(accentColor).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(trackColor).Render(strings.Repeat("━", width-filled))

	return fmt.Sprintf("%s %3d%%", bar, int(progress*100))
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(contentWidth)

	active := 0
	for _, f := range m.Files {
		if f.Status.active() {
			active++
		}
	}

	finished := m.CompletedFiles + m.FailedFiles + m.CancelledFiles
	content := fmt.Sprintf("%d/%d finished, %d active | %s",
		finished, m.TotalFiles, active, formatElapsed(time.Since(m.StartTime)))
	if m.Cancelling {
		content += "\n" + icon(busyColor, "Cancelling, waiting for active files to stop... (Ctrl-C again to quit)")
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	heading, colour := "✨ Processing Complete!", okColor
	switch {
	case m.Cancelling:
		heading, colour = "Processing Cancelled", busyColor
	case m.FailedFiles > 0:
		heading, colour = "Processing Finished With Errors", errorColor
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colour).Render(heading))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file))
		case StatusError, StatusCancelled:
			b.WriteString(renderFileEntry(file))
		default:
			continue
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d succeeded, %d failed, %d cancelled in %s\n",
		m.CompletedFiles, m.FailedFiles, m.CancelledFiles, formatElapsed(time.Since(m.StartTime)))

	return b.String()
}

// renderCompletedFile renders a summary for a completed file
func renderCompletedFile(file FileProgress) string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s %s → %s\n   %s",
		icon(okColor, "✓"), filepath.Base(file.InputPath), filepath.Base(file.OutputPath),
		levelSummary(file.Input, file.Output))

	if res := file.Result; res != nil && len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "\n   %s", mutedStyle.Render(fmt.Sprintf("%d filter(s) skipped at this sample rate", len(res.Skipped))))
	}
	if file.ReportPath != "" {
		fmt.Fprintf(&b, "\n   %s", mutedStyle.Render("Report: "+filepath.Base(file.ReportPath)))
	}
	return b.String()
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
