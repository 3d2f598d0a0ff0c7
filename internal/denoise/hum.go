package denoise

import (
	"fmt"

	"github.com/linuxmatters/voicelift/internal/filter"
	"github.com/linuxmatters/voicelift/internal/mains"
)

// HumRemover notches the mains fundamental and its harmonics with
// Butterworth band-reject filters.
type HumRemover struct {
	Frequency int     // mains fundamental in Hz, 50 or 60
	Harmonics int     // number of multiples to notch, fundamental included
	Width     float64 // notch width as a fraction of each harmonic's frequency
}

// NewHumRemover returns a remover for the given mains frequency
func NewHumRemover(hz int) *HumRemover {
	return &HumRemover{Frequency: hz, Harmonics: 4, Width: 0.06}
}

// Notches returns the band-reject specs applied at a sample rate. Harmonics
// whose upper edge would reach 90% of Nyquist are left out.
func (h *HumRemover) Notches(sampleRate int) []filter.Spec {
	limit := 0.45 * float64(sampleRate) / (1 + h.Width/2)

	var specs []filter.Spec
	for _, f := range mains.Harmonics(h.Frequency, h.Harmonics, limit) {
		half := f * h.Width / 2
		specs = append(specs, filter.Spec{
			Kind:       filter.Bandreject,
			Low:        f - half,
			High:       f + half,
			SampleRate: sampleRate,
		})
	}
	return specs
}

// Reduce filters samples through every notch in turn
func (h *HumRemover) Reduce(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, sampleRate)
	}
	if h.Frequency <= 0 || h.Width <= 0 {
		return append([]float64(nil), samples...), nil
	}

	out := append([]float64(nil), samples...)
	for _, spec := range h.Notches(sampleRate) {
		c, err := filter.Design(spec)
		if err != nil {
			return nil, fmt.Errorf("hum notch %s: %w", spec, err)
		}
		if out, err = filter.Apply(c, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Chain runs reducers in sequence, each on the previous output
type Chain []Reducer

// Reduce implements Reducer
func (c Chain) Reduce(samples []float64, sampleRate int) ([]float64, error) {
	out := samples
	for _, r := range c {
		next, err := r.Reduce(out, sampleRate)
		if err != nil {
			return nil, err
		}
		if len(next) != len(out) {
			return nil, fmt.Errorf("%T returned %d samples for %d", r, len(next), len(out))
		}
		out = next
	}
	if len(c) == 0 {
		out = append([]float64(nil), samples...)
	}
	return out, nil
}
