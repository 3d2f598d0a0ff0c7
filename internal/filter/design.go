// Package filter designs Butterworth IIR filters and applies them to sample buffers
package filter

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Kind identifies the band shape of a designed filter
type Kind int

// Supported band shapes
const (
	Highpass   Kind = iota // attenuates below the cutoff
	Bandpass               // passes the band between Low and High
	Bandreject             // attenuates the band between Low and High
)

// DefaultOrder is the Butterworth prototype order used by every pipeline stage.
const DefaultOrder = 2

// String returns the short name of the band shape
func (k Kind) String() string {
	switch k {
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandreject:
		return "bandreject"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// isBand reports whether the kind needs two cutoff frequencies
func (k Kind) isBand() bool {
	return k == Bandpass || k == Bandreject
}

// Spec describes a filter to design.
// High is ignored for Highpass. Order 0 means DefaultOrder.
type Spec struct {
	Kind       Kind
	Order      int
	Low        float64 // Hz, the cutoff for Highpass, lower band edge otherwise
	High       float64 // Hz, upper band edge for band kinds
	SampleRate int     // Hz
}

// String renders the spec for logs and reports
func (s Spec) String() string {
	if s.Kind.isBand() {
		return fmt.Sprintf("%s %.0f-%.0f Hz (order %d @ %d Hz)", s.Kind, s.Low, s.High, s.order(), s.SampleRate)
	}
	return fmt.Sprintf("%s %.0f Hz (order %d @ %d Hz)", s.Kind, s.Low, s.order(), s.SampleRate)
}

func (s Spec) order() int {
	if s.Order == 0 {
		return DefaultOrder
	}
	return s.Order
}

// Validate checks that every cutoff lies strictly between 0 and Nyquist and
// that band edges are ordered.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d Hz must be positive", ErrInvalidFilterSpec, s.SampleRate)
	}
	if s.order() < 1 {
		return fmt.Errorf("%w: order %d must be at least 1", ErrInvalidFilterSpec, s.Order)
	}

	nyquist := 0.5 * float64(s.SampleRate)
	checkCutoff := func(name string, f float64) error {
		if math.IsNaN(f) || f <= 0 || f >= nyquist {
			return fmt.Errorf("%w: %s cutoff %.1f Hz outside (0, %.1f) Hz", ErrInvalidFilterSpec, name, f, nyquist)
		}
		return nil
	}

	switch s.Kind {
	case Highpass:
		return checkCutoff("highpass", s.Low)
	case Bandpass, Bandreject:
		if err := checkCutoff("lower", s.Low); err != nil {
			return err
		}
		if err := checkCutoff("upper", s.High); err != nil {
			return err
		}
		if s.Low >= s.High {
			return fmt.Errorf("%w: lower edge %.1f Hz must be below upper edge %.1f Hz", ErrInvalidFilterSpec, s.Low, s.High)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown filter kind %s", ErrInvalidFilterSpec, s.Kind)
	}
}

// Design derives the transfer function of a digital Butterworth filter.
//
// The analog prototype is transformed in zero/pole/gain form (prewarped
// bilinear mapping) and only expanded to polynomials at the end, which keeps
// the band designs numerically stable at speech sample rates.
//
// A highpass of order N yields N+1 numerator and denominator coefficients.
// The low-pass to band transforms double the order, so band kinds yield 2N+1.
// The denominator is normalised so A[0] == 1.
func Design(s Spec) (Coefficients, error) {
	if err := s.Validate(); err != nil {
		return Coefficients{}, err
	}

	// Work with the frequency axis normalised to Nyquist, as classic
	// designers do, and prewarp with fs = 2.
	const fs = 2.0
	nyquist := 0.5 * float64(s.SampleRate)
	warp := func(hz float64) float64 {
		return 2 * fs * math.Tan(math.Pi*(hz/nyquist)/fs)
	}

	z, p, k := butterworthPrototype(s.order())

	switch s.Kind {
	case Highpass:
		z, p, k = lowpassToHighpass(z, p, k, warp(s.Low))
	case Bandpass:
		lo, hi := warp(s.Low), warp(s.High)
		z, p, k = lowpassToBandpass(z, p, k, math.Sqrt(lo*hi), hi-lo)
	case Bandreject:
		lo, hi := warp(s.Low), warp(s.High)
		z, p, k = lowpassToBandstop(z, p, k, math.Sqrt(lo*hi), hi-lo)
	}

	z, p, k = bilinear(z, p, k, fs)

	b := realPoly(z)
	for i := range b {
		b[i] *= k
	}
	a := realPoly(p)

	return Coefficients{B: b, A: a}, nil
}

// HighpassFilter designs an order-2 Butterworth highpass
func HighpassFilter(sampleRate int, cutoff float64) (Coefficients, error) {
	return Design(Spec{Kind: Highpass, Low: cutoff, SampleRate: sampleRate})
}

// BandpassFilter designs an order-2 Butterworth bandpass
func BandpassFilter(sampleRate int, low, high float64) (Coefficients, error) {
	return Design(Spec{Kind: Bandpass, Low: low, High: high, SampleRate: sampleRate})
}

// BandrejectFilter designs an order-2 Butterworth band-reject
func BandrejectFilter(sampleRate int, low, high float64) (Coefficients, error) {
	return Design(Spec{Kind: Bandreject, Low: low, High: high, SampleRate: sampleRate})
}

// butterworthPrototype returns the analog low-pass prototype with unity cutoff:
// no zeros, N poles evenly spaced on the left half of the unit circle, gain 1.
func butterworthPrototype(order int) ([]complex128, []complex128, float64) {
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		theta := math.Pi * float64(m) / float64(2*order)
		poles = append(poles, -cmplx.Exp(complex(0, theta)))
	}
	return nil, poles, 1
}

func lowpassToHighpass(z, p []complex128, k, wo float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)

	zhp := make([]complex128, 0, len(z)+degree)
	for _, zi := range z {
		zhp = append(zhp, complex(wo, 0)/zi)
	}
	for i := 0; i < degree; i++ {
		zhp = append(zhp, 0)
	}

	php := make([]complex128, len(p))
	for i, pi := range p {
		php[i] = complex(wo, 0) / pi
	}

	k *= real(prodNeg(z) / prodNeg(p))
	return zhp, php, k
}

func lowpassToBandpass(z, p []complex128, k, wo, bw float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)

	zbp := splitBand(z, complex(bw/2, 0), wo, false)
	for i := 0; i < degree; i++ {
		zbp = append(zbp, 0)
	}
	pbp := splitBand(p, complex(bw/2, 0), wo, false)

	k *= math.Pow(bw, float64(degree))
	return zbp, pbp, k
}

func lowpassToBandstop(z, p []complex128, k, wo, bw float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)

	zbs := splitBand(z, complex(bw/2, 0), wo, true)
	for i := 0; i < degree; i++ {
		zbs = append(zbs, complex(0, wo))
	}
	for i := 0; i < degree; i++ {
		zbs = append(zbs, complex(0, -wo))
	}
	pbs := splitBand(p, complex(bw/2, 0), wo, true)

	k *= real(prodNeg(z) / prodNeg(p))
	return zbs, pbs, k
}

// splitBand maps every root r to the pair s ± sqrt(s² - wo²), where s is
// r*half for band-pass and half/r for band-stop.
func splitBand(roots []complex128, half complex128, wo float64, invert bool) []complex128 {
	out := make([]complex128, 2*len(roots))
	wo2 := complex(wo*wo, 0)
	for i, r := range roots {
		s := r * half
		if invert {
			s = half / r
		}
		d := cmplx.Sqrt(s*s - wo2)
		out[i] = s + d
		out[i+len(roots)] = s - d
	}
	return out
}

// bilinear maps an analog zpk system to the z-plane. Zeros at infinity land on z = -1.
func bilinear(z, p []complex128, k, fs float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)
	fs2 := complex(2*fs, 0)

	zz := make([]complex128, 0, len(z)+degree)
	num := complex(1, 0)
	for _, zi := range z {
		zz = append(zz, (fs2+zi)/(fs2-zi))
		num *= fs2 - zi
	}
	for i := 0; i < degree; i++ {
		zz = append(zz, -1)
	}

	pz := make([]complex128, len(p))
	den := complex(1, 0)
	for i, pi := range p {
		pz[i] = (fs2 + pi) / (fs2 - pi)
		den *= fs2 - pi
	}

	return zz, pz, k * real(num/den)
}

// prodNeg returns the product of -r over all roots (1 for no roots)
func prodNeg(roots []complex128) complex128 {
	prod := complex(1, 0)
	for _, r := range roots {
		prod *= -r
	}
	return prod
}

// realPoly expands prod(x - r) and returns the real parts of its coefficients,
// highest power first. Roots come in conjugate pairs so imaginary parts cancel.
func realPoly(roots []complex128) []float64 {
	c := make([]complex128, len(roots)+1)
	c[0] = 1
	for i, r := range roots {
		for j := i + 1; j > 0; j-- {
			c[j] -= r * c[j-1]
		}
	}

	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}
