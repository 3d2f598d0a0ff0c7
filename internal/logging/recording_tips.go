package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/voicelift/internal/analysis"
)

// RecordingTip represents a single piece of actionable recording advice
// derived from the input level measurements.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "level_too_quiet")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// tipRule inspects input levels and returns a tip or nil
type tipRule func(*analysis.Levels) *RecordingTip

var tipRules = []tipRule{
	tipLevelTooHot,
	tipLevelTooQuiet,
	tipLevelQuiet,
	tipBackgroundNoise,
	tipPoorSNR,
	tipBoxy,
	tipDull,
	tipSibilance,
	tipOverCompressed,
	tipPeaky,
}

// GenerateRecordingTips analyses the input measurements and returns
// prioritised recording improvement suggestions.
func GenerateRecordingTips(m *analysis.Levels) []RecordingTip {
	if m == nil || isDigitalSilence(m.RMSDBFS) {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	for _, rule := range tipRules {
		if tip := rule(m); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. For example, "poor_snr" is suppressed when
// "background_noise_high" fires because the latter already implies the former.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "level_too_quiet", "level_quiet":
			if fired["level_clipping"] || fired["level_near_clipping"] {
				continue
			}
		case "poor_snr":
			if fired["background_noise_high"] {
				continue
			}
		case "peaky":
			if fired["level_clipping"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipLevelTooHot fires when the sample peak reaches or nears full scale.
func tipLevelTooHot(m *analysis.Levels) *RecordingTip {
	if m.PeakDBFS <= -1.0 {
		return nil
	}
	if m.PeakDBFS >= -0.1 {
		return &RecordingTip{
			Priority: 10,
			RuleID:   "level_clipping",
			Message:  "Your recording is clipping - turn your microphone gain down by 6-10 dB to prevent distortion.",
		}
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "level_near_clipping",
		Message:  "Your recording is very close to clipping - turn your microphone gain down by 3-6 dB to give yourself some headroom.",
	}
}

// tipLevelTooQuiet fires when the RMS level is below -40 dBFS.
// Gain target is -20 dBFS RMS.
func tipLevelTooQuiet(m *analysis.Levels) *RecordingTip {
	if m.RMSDBFS >= -40.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_too_quiet",
		Message:  fmt.Sprintf("Your microphone gain is too low - try increasing it by about %.0f dB.", -20.0-m.RMSDBFS),
	}
}

// tipLevelQuiet fires for RMS levels between -40 and -30 dBFS.
func tipLevelQuiet(m *analysis.Levels) *RecordingTip {
	if m.RMSDBFS < -40.0 || m.RMSDBFS >= -30.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 8,
		RuleID:   "level_quiet",
		Message:  fmt.Sprintf("Your recording is a bit quiet - increasing your microphone gain by about %.0f dB would improve quality.", -20.0-m.RMSDBFS),
	}
}

// tipBackgroundNoise fires when the noise floor is elevated.
func tipBackgroundNoise(m *analysis.Levels) *RecordingTip {
	switch {
	case m.NoiseFloorDBFS > -45.0:
		return &RecordingTip{
			Priority: 9,
			RuleID:   "background_noise_high",
			Message:  fmt.Sprintf("Background noise is high (%.0f dBFS) - try turning off fans, air conditioning, or other appliances before recording.", m.NoiseFloorDBFS),
		}
	case m.NoiseFloorDBFS > -55.0:
		return &RecordingTip{
			Priority: 6,
			RuleID:   "background_noise_moderate",
			Message:  fmt.Sprintf("Background noise is slightly elevated (%.0f dBFS) - if possible, turn off any fans or appliances nearby.", m.NoiseFloorDBFS),
		}
	}
	return nil
}

// tipPoorSNR fires when the voice sits less than 15 dB above the noise floor.
func tipPoorSNR(m *analysis.Levels) *RecordingTip {
	if isDigitalSilence(m.NoiseFloorDBFS) || m.RMSDBFS-m.NoiseFloorDBFS >= 15.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "poor_snr",
		Message:  "The gap between your voice and the background noise is very small. Move closer to your microphone and reduce background noise if possible.",
	}
}

// tipBoxy fires when the 200-400 Hz band holds more than a quarter of the energy.
func tipBoxy(m *analysis.Levels) *RecordingTip {
	if share := bandShare(m, "Boxy"); !(share > 0.25) {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "boxy",
		Message:  "Your voice sounds boxy - a small or untreated room, or sitting too close to a directional microphone, builds up the low mids. Soft furnishings or moving back slightly will help.",
	}
}

// tipDull fires when almost no energy reaches the 3-5 kHz presence band.
func tipDull(m *analysis.Levels) *RecordingTip {
	if share := bandShare(m, "Presence"); !(share < 0.005) {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		RuleID:   "dull",
		Message:  "Your recording sounds dull. Speak towards the front of the microphone rather than past it, and check nothing is covering the capsule.",
	}
}

// tipSibilance fires when the 5-8 kHz band is strong and the spectrum is bright.
func tipSibilance(m *analysis.Levels) *RecordingTip {
	if share := bandShare(m, "Sibilance"); !(share > 0.05) || m.SpectralCentroid <= 3000.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		RuleID:   "sibilance",
		Message:  "Your recording has noticeable sibilance (harsh 's' and 'sh' sounds). Try angling your microphone slightly off-axis - point it at your chin rather than directly at your mouth.",
	}
}

// tipOverCompressed fires when the crest factor is below 6 dB.
// CrestDB == 0 is treated as unmeasured and skipped.
func tipOverCompressed(m *analysis.Levels) *RecordingTip {
	if m.CrestDB >= 6.0 || m.CrestDB == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "over_compressed",
		Message:  "Your recording sounds heavily compressed, possibly by automatic gain control. If your microphone software has an 'AGC' or 'auto-level' setting, try turning it off and setting the gain manually.",
	}
}

// tipPeaky fires when peaks sit more than 25 dB above the RMS level,
// usually plosives or desk knocks.
func tipPeaky(m *analysis.Levels) *RecordingTip {
	if m.CrestDB <= 25.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "peaky",
		Message:  "A few loud peaks stand well above your voice, often plosives or bumps to the desk or mic stand. A pop filter and a shock mount help keep them down.",
	}
}
