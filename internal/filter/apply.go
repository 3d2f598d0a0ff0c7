package filter

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Coefficients is the transfer function of a linear time-invariant recursive
// filter: B holds the feed-forward (numerator) terms and A the feedback
// (denominator) terms, highest power of z⁻¹ last. Design always returns A[0] == 1.
//
// Values are never mutated after design; Apply only reads them.
type Coefficients struct {
	B []float64
	A []float64
}

// Validate reports whether the coefficients can drive Apply
func (c Coefficients) Validate() error {
	if len(c.A) == 0 || len(c.B) == 0 {
		return fmt.Errorf("%w: empty coefficient vector", ErrInvalidCoefficients)
	}
	if c.A[0] == 0 {
		return fmt.Errorf("%w: leading denominator coefficient is zero", ErrInvalidCoefficients)
	}
	return nil
}

// Len returns the number of taps of the longer coefficient vector
func (c Coefficients) Len() int {
	return max(len(c.A), len(c.B))
}

// Apply filters x with the direct form II transposed recurrence and returns a
// new slice of the same length. Filter history before the first sample is zero.
//
//	y[n] = b0*x[n] + z0
//	zi   = b(i+1)*x[n] - a(i+1)*y[n] + z(i+1)
func Apply(c Coefficients, x []float64) ([]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	n := c.Len()
	b := make([]float64, n)
	a := make([]float64, n)
	copy(b, c.B)
	copy(a, c.A)

	// Normalise so a[0] == 1 for callers that hand-build coefficients
	if a0 := a[0]; a0 != 1 {
		for i := 0; i < n; i++ {
			b[i] /= a0
			a[i] /= a0
		}
	}

	y := make([]float64, len(x))
	// state[n-1] stays zero and terminates the delay line
	state := make([]float64, n)

	for i, xi := range x {
		yi := b[0]*xi + state[0]
		for j := 1; j < n; j++ {
			state[j-1] = b[j]*xi - a[j]*yi + state[j]
		}
		y[i] = yi
	}

	return y, nil
}

// Response evaluates the complex frequency response at freq Hz
func (c Coefficients) Response(freq float64, sampleRate int) complex128 {
	w := 2 * math.Pi * freq / float64(sampleRate)
	return evalPoly(c.B, w) / evalPoly(c.A, w)
}

// MagnitudeDB returns the response magnitude at freq Hz in dB
func (c Coefficients) MagnitudeDB(freq float64, sampleRate int) float64 {
	mag := cmplx.Abs(c.Response(freq, sampleRate))
	if mag <= 0 {
		return -120.0
	}
	return 20 * math.Log10(mag)
}

// evalPoly evaluates sum(coeffs[k] * e^{-jwk})
func evalPoly(coeffs []float64, w float64) complex128 {
	var sum complex128
	for k, v := range coeffs {
		sum += complex(v, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return sum
}
