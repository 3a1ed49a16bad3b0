package effects

import "errors"

var (
	// ErrUnknownEffect is returned for effect names outside the fixed set
	ErrUnknownEffect = errors.New("unknown effect")

	// ErrInvalidSampleRate is returned when the sample rate is not positive
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrNonFiniteInput is returned when the input holds NaN or Inf samples
	ErrNonFiniteInput = errors.New("input contains non-finite samples")
)
