// Package logging writes per-file processing reports and the debug log.
// This file contains the aligned comparison tables used by reports (Input → Output).

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow represents a single row in a comparison table.
// Values are pre-formatted strings to allow for mixed formatting (decimals, scientific notation).
type MetricRow struct {
	Label          string   // Row label, e.g., "Peak Level"
	Values         []string // One value per column (Input, Output)
	Unit           string   // Unit suffix, e.g., "dBFS", "Hz", "" for unitless
	Interpretation string   // Optional interpretation text (only shown if non-empty)
}

// MetricTable formats aligned columns for metric comparison.
// Handles variable column widths, missing values, and optional interpretation column.
type MetricTable struct {
	Headers []string    // Column headers, e.g., ["Input", "Output"]
	Rows    []MetricRow // Data rows
}

// String renders the table. Labels are left-aligned, values right-aligned
// under their header, and the interpretation column appears only when some
// row carries one.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	w := t.widths()
	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", w.label+2))
	for i, h := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", w.values[i], h)
	}
	if w.unit > 0 {
		sb.WriteString(strings.Repeat(" ", w.unit+1))
	}
	if w.interp {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", w.label, row.Label)
		for i := range t.Headers {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			fmt.Fprintf(&sb, "%*s  ", w.values[i], val)
		}
		if w.unit > 0 {
			fmt.Fprintf(&sb, "%-*s ", w.unit, row.Unit)
		}
		if w.interp {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

type tableWidths struct {
	label  int
	values []int
	unit   int
	interp bool
}

func (t *MetricTable) widths() tableWidths {
	w := tableWidths{values: make([]int, len(t.Headers))}
	for i, h := range t.Headers {
		w.values[i] = len(h)
	}
	for _, row := range t.Rows {
		w.label = max(w.label, len(row.Label))
		w.unit = max(w.unit, len(row.Unit))
		w.interp = w.interp || row.Interpretation != ""
		for i, v := range row.Values {
			if i < len(w.values) {
				w.values[i] = max(w.values[i], len(v))
			}
		}
	}
	return w
}

// =============================================================================
// Metric Formatting Helpers
// =============================================================================

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// DigitalSilenceThreshold is the dBFS level below which we consider the signal to be digital silence.
// Zero samples measure as -Inf; anything below -120 dBFS is effectively silent.
const DigitalSilenceThreshold = -120.0

// isDigitalSilence returns true if the value represents digital silence (true zero or below threshold).
func isDigitalSilence(value float64) bool {
	return math.IsInf(value, -1) || value <= DigitalSilenceThreshold
}

// formatMetric formats a numeric value with appropriate precision.
// Handles:
// - Regular floats: formatted to specified decimal places
// - Very small values (< 0.0001): scientific notation
// - NaN/Inf: returns MissingValue
// - Zero: returns "0" with appropriate decimals
func formatMetric(value float64, decimals int) string {
	// Handle invalid values
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	// Use scientific notation for very small non-zero values
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}

	// Standard formatting
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatMetricDB formats a dB value with special handling for digital silence.
// Shows "< -120" for values at or below the measurement floor (-Inf or very low values).
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if isDigitalSilence(value) {
		return "< -120"
	}
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, value)
}

// SpectralSilenceValue is the placeholder for spectral metrics when digital silence is detected.
// Spectral analysis is undefined for zero-signal audio - there's no spectrum to analyse.
const SpectralSilenceValue = "n/a"

// formatMetricSpectral formats a spectral metric value with special handling for digital silence.
// When isDigitalSilence is true, returns "n/a" since spectral metrics are undefined for zero signal.
func formatMetricSpectral(value float64, decimals int, isDigitalSilence bool) string {
	if isDigitalSilence {
		return SpectralSilenceValue
	}
	return formatMetric(value, decimals)
}

// formatMetricSigned formats a value with explicit sign for positive values.
// Useful for showing gain changes like "+2.5 dB" or "-1.2 dB".
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	format := fmt.Sprintf("%%+.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatMetricWithUnit combines value and unit for display.
// Returns "value unit" if unit is non-empty, otherwise just "value".
func formatMetricWithUnit(value float64, decimals int, unit string) string {
	formatted := formatMetric(value, decimals)
	if formatted == MissingValue || unit == "" {
		return formatted
	}
	return formatted + " " + unit
}

// =============================================================================
// Table Builder Helpers
// =============================================================================

// NewMetricTable creates a new MetricTable with Input/Output headers.
func NewMetricTable() *MetricTable {
	return &MetricTable{
		Headers: []string{"Input", "Output"},
		Rows:    make([]MetricRow, 0),
	}
}

// AddRow adds a row to the table with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds a row with numeric values, formatting them automatically.
// Pass math.NaN() for missing values - they will display as "-".
func (t *MetricTable) AddMetricRow(label string, input, output float64, decimals int, unit string, interpretation string) {
	t.AddRow(label, []string{formatMetric(input, decimals), formatMetric(output, decimals)}, unit, interpretation)
}

// AddDBRow adds a dBFS row, showing "< -120" for digital silence.
func (t *MetricTable) AddDBRow(label string, input, output float64, decimals int, interpretation string) {
	t.AddRow(label, []string{formatMetricDB(input, decimals), formatMetricDB(output, decimals)}, "dBFS", interpretation)
}
