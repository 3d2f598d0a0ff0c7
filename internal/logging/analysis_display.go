// Package logging writes per-file processing reports and the debug log.
// This file provides console display for analysis-only mode.

package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/audio"
	"github.com/linuxmatters/voicelift/internal/mains"
)

// AnalysisData is everything analysis-only mode prints for one file
type AnalysisData struct {
	InputPath string
	Metadata  *audio.Metadata
	Levels    *analysis.Levels
	Mains     *mains.Detection // nil when hum removal is off
}

// DisplayAnalysisResults prints input measurements and recording tips without
// processing the file. Used by --analyze for quick inspection.
func DisplayAnalysisResults(w io.Writer, data AnalysisData) {
	m := data.Levels

	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if md := data.Metadata; md != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(md.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", md.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(md.Channels))
		fmt.Fprintf(w, "Format:      %s, %d-bit\n", strings.ToUpper(md.Format), md.BitDepth)
		fmt.Fprintln(w)
	}
	if m == nil {
		return
	}

	writeAnalysisSection(w, "DYNAMICS")
	fmt.Fprintf(w, "  Peak Level:     %s dBFS %s\n", formatMetricDB(m.PeakDBFS, 1), interpretPeak(m.PeakDBFS))
	fmt.Fprintf(w, "  RMS Level:      %s dBFS\n", formatMetricDB(m.RMSDBFS, 1))
	fmt.Fprintf(w, "  Crest Factor:   %.1f dB (%s)\n", m.CrestDB, interpretCrest(m.CrestDB))
	fmt.Fprintf(w, "  Noise Floor:    %s dBFS\n", formatMetricDB(m.NoiseFloorDBFS, 1))
	if !isDigitalSilence(m.NoiseFloorDBFS) && !isDigitalSilence(m.RMSDBFS) {
		fmt.Fprintf(w, "  Signal/Noise:   %.1f dB\n", m.RMSDBFS-m.NoiseFloorDBFS)
	}
	fmt.Fprintln(w)

	writeAnalysisSection(w, "SPECTRAL SUMMARY")
	silent := isDigitalSilence(m.RMSDBFS)
	fmt.Fprintf(w, "  Centroid:       %s Hz", formatMetricSpectral(m.SpectralCentroid, 0, silent))
	if !silent {
		fmt.Fprintf(w, " (%s)", interpretCentroid(m.SpectralCentroid))
	}
	fmt.Fprintln(w)
	for _, b := range m.Bands {
		fmt.Fprintf(w, "  %-15s %s dB, %s of spectrum", b.Name+":", formatMetricDB(b.EnergyDB, 1), formatMetricWithUnit(b.Share*100, 1, "%"))
		if note := interpretBand(b.Name, b.Share); note != "" {
			fmt.Fprintf(w, " (%s)", note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	if data.Mains != nil {
		writeAnalysisSection(w, "MAINS HUM")
		fmt.Fprintf(w, "  Frequency:      %d Hz (%s)\n", data.Mains.Hz, data.Mains.Source)
		fmt.Fprintln(w)
	}

	if tips := GenerateRecordingTips(m); len(tips) > 0 {
		writeAnalysisSection(w, "RECORDING TIPS")
		for _, tip := range tips {
			fmt.Fprintf(w, "  * %s\n", wrapText(tip.Message, 66, "    "))
		}
		fmt.Fprintln(w)
	}
}

// writeAnalysisSection writes a section header for analysis output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}
