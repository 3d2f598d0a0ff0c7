// Package logging writes per-file processing reports and the debug log

package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/filter"
	"github.com/linuxmatters/voicelift/internal/processor"
)

// ============================================================================
// Level Interpretation Functions
// ============================================================================
// These functions turn measurements into short human-readable descriptions.

// interpretCentroid describes spectral "brightness" based on centre of gravity.
//
// Reference values for speech:
// - Male voiced speech: 500-2500 Hz
// - Female voiced speech: 800-3500 Hz
// - Unvoiced consonants: 3000-8000+ Hz
func interpretCentroid(hz float64) string {
	switch {
	case hz < 500:
		return "very dark, bass-heavy"
	case hz < 1500:
		return "warm, full-bodied"
	case hz < 2500:
		return "balanced, natural voice"
	case hz < 4000:
		return "present, forward"
	case hz < 6000:
		return "bright, crisp"
	default:
		return "very bright, potentially harsh"
	}
}

// interpretCrest describes the peak-to-RMS ratio in dB.
// Natural speech sits around 15-20 dB; heavy compression pushes it below 10.
func interpretCrest(db float64) string {
	switch {
	case db <= 0:
		return ""
	case db < 8:
		return "dense, heavily compressed"
	case db < 12:
		return "controlled dynamics"
	case db < 20:
		return "natural speech dynamics"
	default:
		return "very peaky, transients dominate"
	}
}

// interpretPeak flags peaks at or near the clipping point
func interpretPeak(dbfs float64) string {
	switch {
	case dbfs >= -0.1:
		return "clipping"
	case dbfs > -1:
		return "near clipping"
	case dbfs < -20:
		return "very quiet"
	default:
		return ""
	}
}

// interpretBand describes a speech band's share of the spectrum
func interpretBand(name string, share float64) string {
	pct := share * 100
	switch name {
	case "Boxy":
		if pct > 25 {
			return "muddy low mids"
		}
	case "Presence":
		if pct < 1 {
			return "dull, lacks clarity"
		}
	case "Sibilance":
		if pct > 5 {
			return "sibilant"
		}
	}
	return ""
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a processing report
type ReportData struct {
	InputPath string
	StartTime time.Time
	EndTime   time.Time
	Result    *processor.ProcessingResult
}

// ReportPath returns the log path for an output file: "show - edit.wav" → "show - edit.log"
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport writes a processing report next to the output file and
// returns its path.
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Processing Summary - per-stage timings
// 3. Stages - applied, disabled and skipped operations
// 4. Filter Chain - designed coefficients and response at key frequencies
// 5. Level Measurements - Input/Output table
// 6. Speech Bands - Input/Output table with interpretations
// 7. Recording Tips
func GenerateReport(data ReportData) (string, error) {
	if data.Result == nil {
		return "", fmt.Errorf("no processing result for %s", data.InputPath)
	}

	logPath := ReportPath(data.Result.OutputPath)
	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	WriteReport(f, data)
	return logPath, nil
}

// WriteReport renders the report body to w
func WriteReport(w io.Writer, data ReportData) {
	res := data.Result

	writeReportHeader(w, data)
	writeProcessingSummary(w, data)
	writeStages(w, res)

	if res.Config != nil && res.Metadata != nil {
		writeFilterChain(w, res.Config, res.Selection, res.Metadata.SampleRate)
	}

	writeLevelTable(w, res.Input, res.Output)
	writeBandTable(w, res.Input, res.Output)

	if tips := GenerateRecordingTips(res.Input); len(tips) > 0 {
		writeSection(w, "Recording Tips")
		for _, tip := range tips {
			fmt.Fprintf(w, "* %s\n", wrapText(tip.Message, 76, "  "))
		}
		fmt.Fprintln(w, "")
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// =============================================================================
// Report Section Writers
// =============================================================================

// writeReportHeader outputs the report header with file info and timestamp.
func writeReportHeader(w io.Writer, data ReportData) {
	res := data.Result
	fmt.Fprintln(w, "Voicelift Processing Report")
	fmt.Fprintln(w, "===========================")
	fmt.Fprintf(w, "File:      %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(w, "Output:    %s\n", filepath.Base(res.OutputPath))
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if m := res.Metadata; m != nil {
		fmt.Fprintf(w, "Duration:  %s\n", formatDuration(time.Duration(m.Duration*float64(time.Second))))
		fmt.Fprintf(w, "Format:    %s, %d Hz, %d-bit, %s\n", strings.ToUpper(m.Format), m.SampleRate, m.BitDepth, channelName(m.Channels))
	}
	if res.Config != nil {
		fmt.Fprintf(w, "Channels:  %s processing\n", res.Config.ChannelMode)
	}
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs per-stage timings.
func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")
	res := data.Result

	for _, id := range res.Applied {
		fmt.Fprintf(w, "%-16s %s\n", id.Label()+":", formatDuration(res.Timings[id]))
	}

	total := data.EndTime.Sub(data.StartTime)
	if total <= 0 {
		total = res.Elapsed
	}
	fmt.Fprintf(w, "%-16s %s", "Total:", formatDuration(total))
	if res.Metadata != nil && res.Metadata.Duration > 0 && total > 0 {
		audio := time.Duration(res.Metadata.Duration * float64(time.Second))
		fmt.Fprintf(w, " (%.0fx real-time)", float64(audio)/float64(total))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

// writeStages lists every stage in chain order with its status.
func writeStages(w io.Writer, res *processor.ProcessingResult) {
	writeSection(w, "Stages (in processing order)")

	applied := make(map[processor.StageID]bool, len(res.Applied))
	for _, id := range res.Applied {
		applied[id] = true
	}

	for i, id := range processor.CanonicalOrder {
		status := "DISABLED"
		if applied[id] {
			status = "APPLIED"
		}
		fmt.Fprintf(w, "%2d. %-16s %s\n", i+1, id.Label(), status)
		if res.Config != nil && applied[id] {
			if detail := stageDetail(id, res.Config); detail != "" {
				fmt.Fprintf(w, "    %s\n", detail)
			}
		}
		for _, s := range res.Skipped {
			if s.Stage == id {
				fmt.Fprintf(w, "    skipped %s: %s\n", s.Name, s.Reason)
			}
		}
	}
	fmt.Fprintln(w, "")
}

// stageDetail summarises the parameters a stage ran with
func stageDetail(id processor.StageID, cfg *processor.Config) string {
	switch id {
	case processor.StageEqualizer:
		return fmt.Sprintf("highpass %.0f Hz, %.0f-%.0f Hz %+.1f dB, %.0f-%.0f Hz %+.1f dB",
			cfg.HighpassFreq,
			cfg.BoxyBand.Low, cfg.BoxyBand.High, cfg.BoxyBand.GainDB,
			cfg.PresenceBand.Low, cfg.PresenceBand.High, cfg.PresenceBand.GainDB)
	case processor.StageDeEsser:
		return fmt.Sprintf("%.0f-%.0f Hz, amount %.2f", cfg.DeessLow, cfg.DeessHigh, cfg.DeessAmount)
	case processor.StageCompressor:
		return fmt.Sprintf("threshold %.1f dBFS, ratio %.1f:1, attack %.0f ms, release %.0f ms",
			cfg.CompThreshold, cfg.CompRatio, cfg.CompAttack, cfg.CompRelease)
	case processor.StageSaturator:
		return fmt.Sprintf("tanh drive %.2f, ceiling %.0f", cfg.SatDrive, cfg.SatCeiling)
	case processor.StageLimiter:
		return fmt.Sprintf("peak target %.0f (%.2f dBFS)", cfg.LimiterTarget, processor.LinearToDb(cfg.LimiterTarget/32768))
	}
	return ""
}

// responseFrequencies are the points the filter chain section reports
var responseFrequencies = []float64{50, 80, 300, 1000, 4000, 6500}

// writeFilterChain outputs every designed filter with its coefficients
func writeFilterChain(w io.Writer, cfg *processor.Config, sel processor.StageSelection, sampleRate int) {
	chain := cfg.FilterChain(sel, sampleRate)
	if len(chain) == 0 {
		return
	}

	writeSection(w, "Filter Chain")
	for i, nf := range chain {
		fmt.Fprintf(w, "%2d. %s (%s): %s\n", i+1, nf.Name, nf.Stage.Label(), nf.Spec)

		c, err := filter.Design(nf.Spec)
		if err != nil {
			fmt.Fprintf(w, "    not designed: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "    b = %s\n", formatCoefficients(c.B))
		fmt.Fprintf(w, "    a = %s\n", formatCoefficients(c.A))

		var points []string
		for _, hz := range responseFrequencies {
			if hz < float64(sampleRate)/2 {
				points = append(points, fmt.Sprintf("%.0f Hz %s dB", hz, formatMetricSigned(c.MagnitudeDB(hz, sampleRate), 1)))
			}
		}
		fmt.Fprintf(w, "    response: %s\n", strings.Join(points, ", "))
	}
	fmt.Fprintln(w, "")
}

func formatCoefficients(v []float64) string {
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = fmt.Sprintf("%+.8f", c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// writeLevelTable outputs the Input → Output level comparison.
func writeLevelTable(w io.Writer, input, output *analysis.Levels) {
	if input == nil || output == nil {
		return
	}
	writeSection(w, "Level Measurements")

	table := NewMetricTable()
	table.AddDBRow("Peak Level", input.PeakDBFS, output.PeakDBFS, 2, interpretPeak(output.PeakDBFS))
	table.AddDBRow("RMS Level", input.RMSDBFS, output.RMSDBFS, 2, "")
	table.AddMetricRow("Crest Factor", input.CrestDB, output.CrestDB, 1, "dB", interpretCrest(output.CrestDB))

	silentIn := isDigitalSilence(input.RMSDBFS)
	silentOut := isDigitalSilence(output.RMSDBFS)
	table.AddRow("Spectral Centroid", []string{
		formatMetricSpectral(input.SpectralCentroid, 0, silentIn),
		formatMetricSpectral(output.SpectralCentroid, 0, silentOut),
	}, "Hz", interpretCentroid(output.SpectralCentroid))

	fmt.Fprint(w, table.String())
	fmt.Fprintf(w, "Gain change: %s dB RMS\n", formatMetricSigned(output.RMSDBFS-input.RMSDBFS, 1))
	fmt.Fprintln(w, "")
}

// writeBandTable outputs energy and spectral share of each speech band.
func writeBandTable(w io.Writer, input, output *analysis.Levels) {
	if input == nil || output == nil || len(input.Bands) == 0 || len(output.Bands) == 0 {
		return
	}
	writeSection(w, "Speech Bands")

	table := NewMetricTable()
	for i, in := range input.Bands {
		if i >= len(output.Bands) {
			break
		}
		out := output.Bands[i]
		label := fmt.Sprintf("%s %s", in.Name, bandRange(in.Band))
		table.AddRow(label+" energy", []string{formatMetricDB(in.EnergyDB, 1), formatMetricDB(out.EnergyDB, 1)}, "dB", "")
		table.AddMetricRow(label+" share", in.Share*100, out.Share*100, 1, "%", interpretBand(in.Name, out.Share))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

func bandRange(b analysis.Band) string {
	khz := func(hz float64) string {
		if hz >= 1000 {
			return strings.TrimSuffix(fmt.Sprintf("%.1f", hz/1000), ".0") + "k"
		}
		return fmt.Sprintf("%.0f", hz)
	}
	return fmt.Sprintf("(%s-%s Hz)", khz(b.Low), khz(b.High))
}

// bandShare returns the named band's share of the spectrum, or NaN
func bandShare(l *analysis.Levels, name string) float64 {
	if l == nil {
		return math.NaN()
	}
	for _, b := range l.Bands {
		if b.Name == name {
			return b.Share
		}
	}
	return math.NaN()
}
