// Package denoise provides the noise reducers plugged into the noise
// reduction stage: a stationary spectral gate and a mains hum remover.
package denoise

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidSampleRate is returned for non-positive sample rates
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Reducer is the contract shared by every noise reducer in this package
type Reducer interface {
	Reduce(samples []float64, sampleRate int) ([]float64, error)
}

// SpectralGate is a stationary spectral gate. It estimates a per-frequency
// noise threshold from the dB magnitude statistics of the whole signal and
// attenuates time-frequency cells that stay below it.
type SpectralGate struct {
	FFTSize      int     // STFT frame length, power of two
	HopSize      int     // STFT hop; FFTSize/4 gives 75% overlap
	ThresholdStd float64 // threshold = mean + ThresholdStd * std of the bin's dB magnitude
	FreqSmoothHz float64 // mask smoothing across frequency
	TimeSmoothMs float64 // mask smoothing across time
	PropDecrease float64 // 1.0 removes gated cells entirely, 0 disables the gate
}

// chunkFrames bounds how many STFT frames are held in memory at once
const chunkFrames = 2048

// NewSpectralGate returns a gate with speech-friendly defaults
func NewSpectralGate() *SpectralGate {
	return &SpectralGate{
		FFTSize:      1024,
		HopSize:      256,
		ThresholdStd: 1.5,
		FreqSmoothHz: 500,
		TimeSmoothMs: 50,
		PropDecrease: 1.0,
	}
}

// stft computes centred, Hann-windowed frames of a signal on demand
type stft struct {
	padded []float64
	window []float64
	fft    *fourier.FFT
	frame  []float64
	n, hop int
	frames int
}

func newSTFT(samples []float64, n, hop int) *stft {
	// Centre frames by padding half a frame on either side
	pad := n / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	return &stft{
		padded: padded,
		window: hann(n),
		fft:    fourier.NewFFT(n),
		frame:  make([]float64, n),
		n:      n,
		hop:    hop,
		frames: (len(padded)-n)/hop + 1,
	}
}

func (s *stft) spectrum(f int, dst []complex128) []complex128 {
	off := f * s.hop
	for j := range s.frame {
		s.frame[j] = s.padded[off+j] * s.window[j]
	}
	return s.fft.Coefficients(dst, s.frame)
}

// Reduce returns a gated copy of samples of the same length
func (g *SpectralGate) Reduce(samples []float64, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, sampleRate)
	}
	n, hop := g.FFTSize, g.HopSize
	if n < 16 || n&(n-1) != 0 || hop < 1 || hop > n/2 {
		return nil, fmt.Errorf("invalid STFT geometry: fft %d, hop %d", n, hop)
	}
	if len(samples) < n || g.PropDecrease <= 0 {
		return append([]float64(nil), samples...), nil
	}

	st := newSTFT(samples, n, hop)
	bins := n/2 + 1
	thresh := g.thresholds(st, bins)

	freqRadius := int(g.FreqSmoothHz / (float64(sampleRate) / float64(n)))
	timeRadius := int(g.TimeSmoothMs / (float64(hop) / float64(sampleRate) * 1000))
	fk := triangle(freqRadius)
	tk := triangle(timeRadius)

	out := make([]float64, len(st.padded))
	norm := make([]float64, len(st.padded))
	seq := make([]float64, n)

	for start := 0; start < st.frames; start += chunkFrames {
		end := min(start+chunkFrames, st.frames)
		lo := max(start-timeRadius, 0)
		hi := min(end+timeRadius, st.frames)

		// Frequency-smoothed binary masks for the chunk plus its time margins
		spec := make([][]complex128, hi-lo)
		mask := make([][]float64, hi-lo)
		for f := lo; f < hi; f++ {
			c := st.spectrum(f, nil)
			m := make([]float64, bins)
			for b, v := range c {
				if ampToDB(cmplx.Abs(v)) > thresh[b] {
					m[b] = 1
				}
			}
			spec[f-lo] = c
			mask[f-lo] = convolve(m, fk)
		}

		for f := start; f < end; f++ {
			c := spec[f-lo]
			for b := range c {
				m := timeSmoothed(mask, f-lo, b, tk)
				c[b] *= complex(m*g.PropDecrease+(1-g.PropDecrease), 0)
			}

			// Weighted overlap-add with the synthesis window; gonum leaves the inverse unscaled
			seq = st.fft.Sequence(seq, c)
			off := f * hop
			for j, v := range seq {
				out[off+j] += v / float64(n) * st.window[j]
				norm[off+j] += st.window[j] * st.window[j]
			}
		}
	}

	pad := n / 2
	result := make([]float64, len(samples))
	for i := range result {
		if w := norm[i+pad]; w > 1e-8 {
			result[i] = out[i+pad] / w
		}
	}
	return result, nil
}

// thresholds returns the per-bin gate threshold in dB
func (g *SpectralGate) thresholds(st *stft, bins int) []float64 {
	sum := make([]float64, bins)
	sumSq := make([]float64, bins)
	var c []complex128
	for f := 0; f < st.frames; f++ {
		c = st.spectrum(f, c)
		for b, v := range c {
			d := ampToDB(cmplx.Abs(v))
			sum[b] += d
			sumSq[b] += d * d
		}
	}

	thresh := make([]float64, bins)
	frames := float64(st.frames)
	for b := range thresh {
		mean := sum[b] / frames
		std := math.Sqrt(math.Max(sumSq[b]/frames-mean*mean, 0))
		thresh[b] = mean + g.ThresholdStd*std
	}
	return thresh
}

// timeSmoothed applies the time kernel to bin b around row i, renormalising at the edges
func timeSmoothed(mask [][]float64, i, b int, k []float64) float64 {
	r := len(k) / 2
	var acc, wsum float64
	for j, w := range k {
		idx := i + j - r
		if idx < 0 || idx >= len(mask) {
			continue
		}
		acc += mask[idx][b] * w
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return acc / wsum
}

// triangle returns a normalised triangular kernel of half width r
func triangle(r int) []float64 {
	if r < 1 {
		return []float64{1}
	}
	k := make([]float64, 2*r+1)
	var sum float64
	for i := range k {
		k[i] = float64(r + 1 - abs(i-r))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolve applies a centred kernel with edge renormalisation
func convolve(x, k []float64) []float64 {
	r := len(k) / 2
	out := make([]float64, len(x))
	for i := range x {
		var acc, wsum float64
		for j, w := range k {
			idx := i + j - r
			if idx < 0 || idx >= len(x) {
				continue
			}
			acc += x[idx] * w
			wsum += w
		}
		if wsum > 0 {
			out[i] = acc / wsum
		}
	}
	return out
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		// periodic window for overlap-add
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

func ampToDB(a float64) float64 {
	return 20 * math.Log10(math.Max(a, 1e-10))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
