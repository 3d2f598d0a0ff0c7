// Package analysis measures level and spectral statistics of sample buffers.
// Samples use the signed 16-bit amplitude scale; 0 dBFS is 32768.
package analysis

import (
	"math"
	"math/cmplx"
	"sort"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
)

// WindowSize is the STFT frame length used for spectral measurements
const WindowSize = 4096

// fullScale is the amplitude of a 0 dBFS sample
const fullScale = 32768.0

// floorDB is reported for silence
const floorDB = -120.0

// Band is a named frequency range
type Band struct {
	Name string
	Low  float64 // Hz, inclusive
	High float64 // Hz, exclusive
}

// SpeechBands are the ranges the voice chain acts on
var SpeechBands = []Band{
	{"Boxy", 200, 400},
	{"Presence", 3000, 5000},
	{"Sibilance", 5000, 8000},
}

// BandLevel is the measured energy of one band
type BandLevel struct {
	Band
	EnergyDB float64 // mean power per frame relative to a full-scale sine, dB
	Share    float64 // fraction of the total spectral energy (0-1)
}

// Levels summarises a buffer
type Levels struct {
	PeakDBFS         float64
	RMSDBFS          float64
	CrestDB          float64 // peak minus RMS
	NoiseFloorDBFS   float64 // RMS of the quietest non-silent windows
	SpectralCentroid float64 // Hz, energy-weighted mean frequency
	Bands            []BandLevel
	Peak             float64 // linear, 16-bit scale
	RMS              float64 // linear, 16-bit scale
}

// Measure computes levels across all channels and the spectrum of the mono downmix
func Measure(samples []float64, sampleRate, channels int) *Levels {
	peak, rms := PeakRMS(samples)

	l := &Levels{
		Peak:     peak,
		RMS:      rms,
		PeakDBFS: toDBFS(peak),
		RMSDBFS:  toDBFS(rms),
	}
	if rms > 0 {
		l.CrestDB = l.PeakDBFS - l.RMSDBFS
	}

	if sampleRate <= 0 {
		l.NoiseFloorDBFS = floorDB
		return l
	}
	mono := Downmix(samples, channels)
	l.NoiseFloorDBFS = toDBFS(NoiseFloor(mono, sampleRate))
	spec := NewSpectrum(mono, sampleRate)
	l.SpectralCentroid = spec.Centroid()
	total := spec.Energy(0, float64(sampleRate)/2+1)
	for _, b := range SpeechBands {
		e := spec.Energy(b.Low, b.High)
		bl := BandLevel{Band: b, EnergyDB: spec.energyDB(e)}
		if total > 0 {
			bl.Share = e / total
		}
		l.Bands = append(l.Bands, bl)
	}

	return l
}

// PeakRMS returns the absolute peak and RMS of the buffer
func PeakRMS(samples []float64) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sumSq float64
	for _, v := range samples {
		a := math.Abs(v)
		if a > peak {
			peak = a
		}
		sumSq += v * v
	}
	return peak, math.Sqrt(sumSq / float64(len(samples)))
}

// noiseWindow is the RMS window length used for noise floor estimation
const noiseWindow = 50 * time.Millisecond

// noisePercentile selects the quiet windows treated as background noise
const noisePercentile = 0.1

// NoiseFloor estimates background noise as the mean RMS of the quietest 10%
// of 50 ms windows. Digitally silent windows are ignored so gated or padded
// recordings are not reported as noise free.
func NoiseFloor(mono []float64, sampleRate int) float64 {
	size := int(noiseWindow.Seconds() * float64(sampleRate))
	if size < 1 || len(mono) < size {
		_, rms := PeakRMS(mono)
		return rms
	}

	var levels []float64
	for start := 0; start+size <= len(mono); start += size {
		if _, rms := PeakRMS(mono[start : start+size]); rms > 0 {
			levels = append(levels, rms)
		}
	}
	if len(levels) == 0 {
		return 0
	}
	sort.Float64s(levels)

	n := max(1, int(float64(len(levels))*noisePercentile))
	var sum float64
	for _, v := range levels[:n] {
		sum += v
	}
	return sum / float64(n)
}

// Downmix averages interleaved channels into one stream
func Downmix(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	out := make([]float64, len(samples)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// Spectrum is the averaged power spectrum of a mono buffer
type Spectrum struct {
	Power      []float64 // per bin, mean over frames
	Resolution float64   // Hz per bin
	frames     int
}

// NewSpectrum averages Hann-windowed FFT power over non-overlapping frames.
// Buffers shorter than WindowSize are zero padded.
func NewSpectrum(samples []float64, sampleRate int) *Spectrum {
	fft := fourier.NewFFT(WindowSize)
	window := hann(WindowSize)

	s := &Spectrum{
		Power:      make([]float64, WindowSize/2+1),
		Resolution: float64(sampleRate) / WindowSize,
	}
	if len(samples) == 0 {
		return s
	}

	frame := make([]float64, WindowSize)
	var coeffs []complex128
	for start := 0; start < len(samples); start += WindowSize {
		end := min(start+WindowSize, len(samples))
		for j := range frame {
			frame[j] = 0
		}
		for j, v := range samples[start:end] {
			frame[j] = v * window[j]
		}

		coeffs = fft.Coefficients(coeffs, frame)
		for bin, c := range coeffs {
			m := cmplx.Abs(c)
			s.Power[bin] += m * m
		}
		s.frames++
	}
	for i := range s.Power {
		s.Power[i] /= float64(s.frames)
	}
	return s
}

// Energy sums the power of bins whose centre lies in [low, high)
func (s *Spectrum) Energy(low, high float64) float64 {
	var e float64
	for bin := 1; bin < len(s.Power); bin++ {
		f := float64(bin) * s.Resolution
		if f >= low && f < high {
			e += s.Power[bin]
		}
	}
	return e
}

// EnergyDB is Energy expressed in dB relative to a full-scale sine
func (s *Spectrum) EnergyDB(low, high float64) float64 {
	return s.energyDB(s.Energy(low, high))
}

func (s *Spectrum) energyDB(e float64) float64 {
	// Parseval: a Hann-windowed full-scale sine carries 3/32 * N^2 * A^2 in
	// the one-sided spectrum.
	ref := 3.0 / 32.0 * WindowSize * WindowSize * fullScale * fullScale
	if e <= 0 {
		return floorDB
	}
	return 10 * math.Log10(e/ref)
}

// Centroid returns the energy-weighted mean frequency
func (s *Spectrum) Centroid() float64 {
	var num, den float64
	for bin := 1; bin < len(s.Power); bin++ {
		num += float64(bin) * s.Resolution * s.Power[bin]
		den += s.Power[bin]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// BandEnergy is a shorthand for the spectrum energy of one band
func BandEnergy(samples []float64, sampleRate int, low, high float64) float64 {
	return NewSpectrum(samples, sampleRate).Energy(low, high)
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func toDBFS(v float64) float64 {
	if v <= 0 {
		return floorDB
	}
	return 20 * math.Log10(v/fullScale)
}
