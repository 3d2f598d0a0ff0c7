package filter

import "errors"

var (
	// ErrInvalidFilterSpec is returned when a filter cannot be designed for the
	// requested kind, cutoffs and sample rate. Cutoffs are never clamped.
	ErrInvalidFilterSpec = errors.New("invalid filter specification")

	// ErrInvalidCoefficients is returned when coefficient vectors cannot describe
	// a recursive filter (empty denominator or zero leading term).
	ErrInvalidCoefficients = errors.New("invalid filter coefficients")
)
