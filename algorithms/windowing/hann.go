package windowing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Hann is a raised cosine window. The periodic form (symmetric=false)
// overlap-adds to a constant at hops of size/4, which STFT synthesis
// relies on; the symmetric form is the filter-design variant.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a Hann window of size samples
func NewHann(size int, symmetric bool) *Hann {
	size = max(size, 0)
	coeffs := make([]float64, size)

	switch {
	case size == 1:
		coeffs[0] = 1.0
	case size > 1:
		period := float64(size)
		if symmetric {
			period = float64(size - 1)
		}
		for i := range coeffs {
			coeffs[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/period)
		}
	}

	return &Hann{size: size, symmetric: symmetric, coefficients: coeffs}
}

// Size returns the window length
func (h *Hann) Size() int {
	return h.size
}

// Symmetric reports whether this is the symmetric (filter design) form
func (h *Hann) Symmetric() bool {
	return h.symmetric
}

// Coefficients returns a copy of the window
func (h *Hann) Coefficients() []float64 {
	return append([]float64(nil), h.coefficients...)
}

// Apply returns signal multiplied by the window, or nil when the lengths
// differ
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}
	return floats.MulTo(make([]float64, h.size), signal, h.coefficients)
}

// ApplyInPlace multiplies frame by the window
func (h *Hann) ApplyInPlace(frame []float64) error {
	if len(frame) != h.size {
		return fmt.Errorf("frame of %d samples does not fit a %d sample window", len(frame), h.size)
	}
	floats.Mul(frame, h.coefficients)
	return nil
}

// SumSquare returns the overlap-added squared window for numFrames frames
// spaced hopSize apart. ISTFT divides by this envelope to undo the analysis
// and synthesis windows.
func (h *Hann) SumSquare(numFrames, hopSize int) []float64 {
	if numFrames <= 0 || hopSize <= 0 {
		return []float64{}
	}

	squared := floats.MulTo(make([]float64, h.size), h.coefficients, h.coefficients)
	out := make([]float64, h.size+hopSize*(numFrames-1))
	for f := range numFrames {
		floats.Add(out[f*hopSize:f*hopSize+h.size], squared)
	}
	return out
}
